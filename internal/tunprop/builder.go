// Package tunprop translates server-pushed tunnel configuration directives
// (ifconfig, routes, redirect-gateway, dhcp-option, ...) into calls against a
// platform TunBuilder.
//
// A single configuration pass is synchronous and single-threaded: it runs to
// completion or to the first fatal error. Malformed route and dhcp-option
// directives are logged and skipped without aborting the pass; interface,
// topology and final builder settings are fatal on failure.
package tunprop

// TunBuilder is the capability interface of the platform-specific tunnel
// configurator. Implementations perform (or record) the actual address,
// route, DNS and proxy changes. Every method that returns an error is
// treated as fatal by the engine unless documented otherwise at the call
// site.
type TunBuilder interface {
	// AddAddress configures a local tunnel address. gateway may be empty.
	// net30 marks an IPv4 point-to-point /30 pairing where gateway is the
	// remote endpoint.
	AddAddress(address string, prefixLen int, gateway string, ipv6, net30 bool) error

	// AddRoute installs a route through the tunnel.
	AddRoute(address string, prefixLen int, ipv6 bool) error

	// ExcludeRoute pins a destination to the pre-tunnel default path.
	// Builders without native exclusion should fail here and rely on the
	// exclude-route emulator instead.
	ExcludeRoute(address string, prefixLen int, ipv6 bool) error

	// RerouteGW requests full-tunnel redirection per family. flags is the
	// parsed redirect-gateway flag set, forwarded verbatim.
	RerouteGW(ipv4, ipv6 bool, flags RedirectGatewayFlags) error

	AddDNSServer(address string, ipv6 bool) error
	AddWINSServer(address string) error
	AddSearchDomain(domain string) error

	AddProxyBypass(host string) error
	SetProxyAutoConfigURL(url string) error
	SetProxyHTTP(host string, port int) error
	SetProxyHTTPS(host string, port int) error

	// SetBlockIPv6 toggles dropping of IPv6 traffic outside the tunnel.
	SetBlockIPv6(block bool)

	SetRemoteAddress(address string, ipv6 bool) error
	SetMTU(mtu int) error
	SetSessionName(name string) error
}

// StatsEvent is an observational event reported to the statistics sink.
type StatsEvent string

// EventRerouteGWNoDNS is reported when full-tunnel IPv4 redirection is
// active but the server pushed no DNS server and no fallback is configured.
const EventRerouteGWNoDNS StatsEvent = "redirect-gateway-no-dns"

// SessionStats receives observational events. Implementations must not
// fail; events are fire-and-forget.
type SessionStats interface {
	Event(e StatsEvent)
}
