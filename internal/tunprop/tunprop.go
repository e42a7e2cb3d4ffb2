package tunprop

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ovpnclient/tunprop/internal/addr"
	"github.com/ovpnclient/tunprop/internal/errors"
	"github.com/ovpnclient/tunprop/internal/log"
	"github.com/ovpnclient/tunprop/internal/options"
)

type topology int

const (
	topologyNet30 topology = iota
	topologySubnet
)

type dhcpOptionFlags uint

const fAddDNS dhcpOptionFlags = 1 << 0

var googleDNSServers = []string{"8.8.8.8", "8.8.4.4"}

// Configure runs one configuration pass: it interprets the pushed directive
// list and applies the resulting tunnel addressing, routes, DNS/WINS/proxy
// settings and session parameters to the builder.
//
// state and stats may be nil. A non-nil eerFactory makes the engine emulate
// route exclusion instead of calling the builder's native ExcludeRoute.
// quiet suppresses the log lines of skipped directives.
func Configure(tb TunBuilder,
	state *State,
	stats SessionStats,
	serverAddr addr.Addr,
	config *Config,
	opt options.OptionList,
	eerFactory EmulateExcludeRouteFactory,
	quiet bool) error {

	if config == nil {
		config = &Config{}
	}

	// The emulator lives for exactly this pass.
	var eer EmulateExcludeRoute
	if eerFactory != nil {
		eer = eerFactory.New()
	}

	ipVerMask, err := tunIfconfig(tb, state, opt)
	if err != nil {
		return err
	}

	ipv, err := NewIPVerFlags(opt, ipVerMask)
	if err != nil {
		return err
	}

	if config.RemoteList != nil && config.RemoteBypass {
		addRemoteBypassRoutes(tb, config.RemoteList, serverAddr, eer, quiet)
	}

	if err := addRoutes(tb, opt, ipv, eer, quiet); err != nil {
		return err
	}

	if eer != nil && eer.Enabled(ipv) {
		if err := eer.Emulate(tb, ipv, serverAddr); err != nil {
			return errors.NewRouteError("exclude route emulation failed", err)
		}
	}

	if err := tb.RerouteGW(ipv.RGV4(), ipv.RGV6(), ipv.APIFlags()); err != nil {
		return errors.NewRouteError("redirect-gateway rejected by builder", err)
	}

	dhcpFlags := addDHCPOptions(tb, opt, quiet)

	tb.SetBlockIPv6(opt.Exists("block-ipv6"))

	if ipv.RGV4() && dhcpFlags&fAddDNS == 0 {
		if config.GoogleDNSFallback {
			if !quiet {
				log.Infof("Google DNS fallback enabled")
			}
			if err := addGoogleDNS(tb); err != nil {
				return err
			}
		} else if stats != nil {
			stats.Event(EventRerouteGWNoDNS)
		}
	}

	if err := tb.SetRemoteAddress(serverAddr.String(), serverAddr.IsV6()); err != nil {
		return errors.NewConfigError("set remote address rejected by builder", err)
	}

	if config.MTU != 0 {
		if err := tb.SetMTU(config.MTU); err != nil {
			return errors.NewConfigError("set MTU rejected by builder", err)
		}
	}

	if config.SessionName != "" {
		if err := tb.SetSessionName(config.SessionName); err != nil {
			return errors.NewConfigError("set session name rejected by builder", err)
		}
	}

	return nil
}

// routeGateway extracts the IPv4 route-gateway directive, if pushed. An IPv6
// route-gateway is invalid here; IPv6 gateways travel with ifconfig-ipv6.
func routeGateway(opt options.OptionList) (string, error) {
	o, ok := opt.Get("route-gateway")
	if !ok {
		return "", nil
	}
	arg, err := o.Get(1)
	if err != nil {
		return "", errors.NewInterfaceError("route-gateway", err)
	}
	gateway, err := addr.FromString(arg, "route-gateway")
	if err != nil {
		return "", errors.NewInterfaceError("route-gateway", err)
	}
	if gateway.Version() != addr.V4 {
		return "", errors.New(errors.ErrCodeInterface,
			"route-gateway is not IPv4 (IPv6 route-gateway is passed with the ifconfig-ipv6 directive)")
	}
	return gateway.String(), nil
}

// tunIfconfig resolves the addressing topology and applies the ifconfig and
// ifconfig-ipv6 directives. It returns the mask of configured families;
// configuring neither family is fatal.
func tunIfconfig(tb TunBuilder, state *State, opt options.OptionList) (addr.VersionMask, error) {
	top := topologyNet30
	if o, ok := opt.Get("topology"); ok {
		topStr, err := o.Get(1)
		if err != nil {
			return 0, errors.NewTopologyError("topology", err)
		}
		switch topStr {
		case "subnet":
			top = topologySubnet
		case "net30":
			top = topologyNet30
		default:
			return 0, errors.New(errors.ErrCodeTopology, "only topology 'subnet' and 'net30' supported")
		}
	}

	var mask addr.VersionMask

	if o, ok := opt.Get("ifconfig"); ok {
		localStr, err := o.Get(1)
		if err != nil {
			return 0, errors.NewInterfaceError("ifconfig", err)
		}
		switch top {
		case topologySubnet:
			pair, err := addr.PairFromString(localStr, o.GetOptional(2), "ifconfig")
			if err != nil {
				return 0, errors.NewInterfaceError("ifconfig", err)
			}
			if pair.Version() != addr.V4 {
				return 0, errors.New(errors.ErrCodeInterface, "ifconfig address is not IPv4 (topology subnet)")
			}
			prefixLen, err := pair.PrefixLen()
			if err != nil {
				return 0, errors.NewInterfaceError("ifconfig", err)
			}
			gateway, err := routeGateway(opt)
			if err != nil {
				return 0, err
			}
			if err := tb.AddAddress(pair.Addr.String(), prefixLen, gateway, false, false); err != nil {
				return 0, errors.NewInterfaceError("add IPv4 address rejected by builder (topology subnet)", err)
			}
			if state != nil {
				state.VPNIPv4 = pair.Addr
			}
			mask |= addr.V4Mask

		case topologyNet30:
			remoteStr, err := o.Get(2)
			if err != nil {
				return 0, errors.NewInterfaceError("ifconfig", err)
			}
			local, err := addr.FromString(localStr, "ifconfig")
			if err != nil {
				return 0, errors.NewInterfaceError("ifconfig", err)
			}
			remote, err := addr.FromString(remoteStr, "ifconfig")
			if err != nil {
				return 0, errors.NewInterfaceError("ifconfig", err)
			}
			if local.Version() != addr.V4 || remote.Version() != addr.V4 {
				return 0, errors.New(errors.ErrCodeInterface, "ifconfig address is not IPv4 (topology net30)")
			}
			netmask := addr.MustFromString("255.255.255.252")
			localNet, _ := local.And(netmask)
			remoteNet, _ := remote.And(netmask)
			if !localNet.Equal(remoteNet) {
				return 0, errors.New(errors.ErrCodeInterface,
					"ifconfig addresses are not in the same /30 subnet (topology net30)")
			}
			if err := tb.AddAddress(local.String(), 30, remote.String(), false, true); err != nil {
				return 0, errors.NewInterfaceError("add IPv4 address rejected by builder (topology net30)", err)
			}
			if state != nil {
				state.VPNIPv4 = local
			}
			mask |= addr.V4Mask
		}
	}

	// Topology does not apply to IPv6.
	if o, ok := opt.Get("ifconfig-ipv6"); ok {
		addrStr, err := o.Get(1)
		if err != nil {
			return 0, errors.NewInterfaceError("ifconfig-ipv6", err)
		}
		pair, err := addr.PairFromString(addrStr, "", "ifconfig-ipv6")
		if err != nil {
			return 0, errors.NewInterfaceError("ifconfig-ipv6", err)
		}
		if pair.Version() != addr.V6 {
			return 0, errors.New(errors.ErrCodeInterface, "ifconfig-ipv6 address is not IPv6")
		}
		gateway := ""
		if o.Size() >= 3 {
			gw, err := addr.FromString(o.GetOptional(2), "ifconfig-ipv6")
			if err != nil {
				return 0, errors.NewInterfaceError("ifconfig-ipv6", err)
			}
			if gw.Version() != addr.V6 {
				return 0, errors.New(errors.ErrCodeInterface, "ifconfig-ipv6 gateway is not IPv6")
			}
			gateway = gw.String()
		}
		prefixLen, err := pair.PrefixLen()
		if err != nil {
			return 0, errors.NewInterfaceError("ifconfig-ipv6", err)
		}
		if err := tb.AddAddress(pair.Addr.String(), prefixLen, gateway, true, false); err != nil {
			return 0, errors.NewInterfaceError("add IPv6 address rejected by builder", err)
		}
		if state != nil {
			state.VPNIPv6 = pair.Addr
		}
		mask |= addr.V6Mask
	}

	if mask == 0 {
		return 0, errors.New(errors.ErrCodeInterface, "one of ifconfig or ifconfig-ipv6 must be specified")
	}
	return mask, nil
}

// addExcludeRoute is the shared add/exclude primitive. Inclusions always go
// to the builder. Exclusions go to the builder only when no emulator is
// present; the emulator itself is notified of every decision.
func addExcludeRoute(tb TunBuilder, add bool, a addr.Addr, prefixLen int, ipv6 bool, eer EmulateExcludeRoute) error {
	if add {
		if err := tb.AddRoute(a.String(), prefixLen, ipv6); err != nil {
			return errors.NewRouteError(fmt.Sprintf("add route %s/%d rejected by builder", a, prefixLen), err)
		}
	} else if eer == nil {
		if err := tb.ExcludeRoute(a.String(), prefixLen, ipv6); err != nil {
			return errors.NewRouteError(fmt.Sprintf("exclude route %s/%d rejected by builder", a, prefixLen), err)
		}
	}
	if eer != nil {
		eer.AddRoute(add, a, prefixLen)
	}
	return nil
}

// routeTarget inspects the trailing target argument of a route directive:
// "vpn_gateway" adds, "net_gateway" excludes, absence defaults to add. Any
// other literal skips this directive.
func routeTarget(o options.Option, targetIndex int) (bool, error) {
	if o.Size() < targetIndex+1 {
		return true, nil
	}
	switch o.GetOptional(targetIndex) {
	case "vpn_gateway":
		return true, nil
	case "net_gateway":
		return false, nil
	default:
		return false, errors.NewDirectiveError(o.Render(), errors.New(errors.ErrCodeRoute,
			"route destinations other than vpn_gateway or net_gateway are not supported"))
	}
}

// addRoutes processes every route/route-ipv6 directive of the active
// families. Parse failures skip the single directive; builder refusals are
// fatal.
func addRoutes(tb TunBuilder, opt options.OptionList, ipv IPVerFlags, eer EmulateExcludeRoute, quiet bool) error {
	handle := func(o options.Option, label string, apply func(options.Option) error) error {
		err := apply(o)
		if err == nil {
			return nil
		}
		var de *errors.DirectiveError
		if stderrors.As(err, &de) {
			if !quiet {
				log.Warnf("Error parsing %s route: %s : %v", label, o.Render(), de.Reason)
			}
			return nil
		}
		return err
	}

	if ipv.V4() {
		for _, o := range opt.GetAll("route") {
			if err := handle(o, "IPv4", func(o options.Option) error {
				addrStr, err := o.Get(1)
				if err != nil {
					return errors.NewDirectiveError(o.Render(), err)
				}
				pair, err := addr.PairFromString(addrStr, o.GetOptional(2), "route")
				if err != nil {
					return errors.NewDirectiveError(o.Render(), err)
				}
				if !pair.IsCanonical() {
					return errors.NewDirectiveError(o.Render(), errors.New(errors.ErrCodeRoute, "route is not canonical"))
				}
				if pair.Version() != addr.V4 {
					return errors.NewDirectiveError(o.Render(), errors.New(errors.ErrCodeRoute, "route is not IPv4"))
				}
				prefixLen, err := pair.RoutePrefixLen()
				if err != nil {
					return errors.NewDirectiveError(o.Render(), err)
				}
				add, err := routeTarget(o, 3)
				if err != nil {
					return err
				}
				if !ipv.RGV4() || !add {
					return addExcludeRoute(tb, add, pair.Addr, prefixLen, false, eer)
				}
				return nil
			}); err != nil {
				return err
			}
		}
	}

	if ipv.V6() {
		for _, o := range opt.GetAll("route-ipv6") {
			if err := handle(o, "IPv6", func(o options.Option) error {
				addrStr, err := o.Get(1)
				if err != nil {
					return errors.NewDirectiveError(o.Render(), err)
				}
				pair, err := addr.PairFromString(addrStr, "", "route-ipv6")
				if err != nil {
					return errors.NewDirectiveError(o.Render(), err)
				}
				if !pair.IsCanonical() {
					return errors.NewDirectiveError(o.Render(), errors.New(errors.ErrCodeRoute, "route is not canonical"))
				}
				if pair.Version() != addr.V6 {
					return errors.NewDirectiveError(o.Render(), errors.New(errors.ErrCodeRoute, "route is not IPv6"))
				}
				prefixLen, err := pair.RoutePrefixLen()
				if err != nil {
					return errors.NewDirectiveError(o.Render(), err)
				}
				add, err := routeTarget(o, 2)
				if err != nil {
					return err
				}
				if !ipv.RGV6() || !add {
					return addExcludeRoute(tb, add, pair.Addr, prefixLen, true, eer)
				}
				return nil
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

// addRemoteBypassRoutes requests host exclusions for every cached server
// address except the active one. Per-address failures never abort the pass.
func addRemoteBypassRoutes(tb TunBuilder, remotes RemoteList, serverAddr addr.Addr, eer EmulateExcludeRoute, quiet bool) {
	for _, a := range remotes.CachedIPAddressList() {
		if a.Equal(serverAddr) {
			continue
		}
		if err := addExcludeRoute(tb, false, a, addr.VersionSize(a.Version()), a.IsV6(), eer); err != nil {
			if !quiet {
				log.Warnf("Error adding remote bypass route: %s : %v", a, err)
			}
		}
	}
}

// validatePort parses a TCP port number pushed with a proxy option.
func validatePort(s, title string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewParseError(fmt.Sprintf("%s port '%s'", title, s), err)
	}
	if port < 1 || port > 65535 {
		return 0, errors.Newf(errors.ErrCodeParse, "%s port %d out of range", title, port)
	}
	return port, nil
}

// addDHCPOptions iterates all dhcp-option directives. Example:
//
//	[dhcp-option] [DNS] [172.16.0.23]
//	[dhcp-option] [WINS] [172.16.0.23]
//	[dhcp-option] [DOMAIN] [example.com]
//	[dhcp-option] [DOMAIN] [foo1.com foo2.com foo3.com]
//	[dhcp-option] [PROXY_HTTP] [foo.bar.gov] [1234]
//	[dhcp-option] [PROXY_HTTPS] [foo.bar.gov] [1234]
//	[dhcp-option] [PROXY_BYPASS] [server1] [server2] ...
//	[dhcp-option] [PROXY_AUTO_CONFIG_URL] [http://...]
//
// Each directive is handled independently; failures are logged and skipped.
// Proxy settings are accumulated and applied once after the loop.
func addDHCPOptions(tb TunBuilder, opt options.OptionList, quiet bool) dhcpOptionFlags {
	var flags dhcpOptionFlags
	var autoConfigURL string
	var httpHost, httpsHost string
	var httpPort, httpsPort int

	for _, o := range opt.GetAll("dhcp-option") {
		err := func() error {
			optType, err := o.Get(1)
			if err != nil {
				return err
			}
			switch optType {
			case "DNS":
				if err := o.ExactArgs(3); err != nil {
					return err
				}
				ip, err := addr.FromString(o.GetOptional(2), "dns-server-ip")
				if err != nil {
					return err
				}
				if err := tb.AddDNSServer(ip.String(), ip.IsV6()); err != nil {
					return errors.NewDHCPOptionError("add DNS server rejected by builder", err)
				}
				flags |= fAddDNS

			case "WINS":
				if err := o.ExactArgs(3); err != nil {
					return err
				}
				ip, err := addr.FromString(o.GetOptional(2), "wins-server-ip")
				if err != nil {
					return err
				}
				if ip.Version() != addr.V4 {
					return errors.New(errors.ErrCodeDHCPOption, "WINS addresses must be IPv4")
				}
				if err := tb.AddWINSServer(ip.String()); err != nil {
					return errors.NewDHCPOptionError("add WINS server rejected by builder", err)
				}

			case "DOMAIN":
				if err := o.MinArgs(3); err != nil {
					return err
				}
				for j := 2; j < o.Size(); j++ {
					for _, domain := range strings.Fields(o.GetOptional(j)) {
						if err := tb.AddSearchDomain(domain); err != nil {
							return errors.NewDHCPOptionError("add search domain rejected by builder", err)
						}
					}
				}

			case "PROXY_BYPASS":
				if err := o.MinArgs(3); err != nil {
					return err
				}
				for j := 2; j < o.Size(); j++ {
					for _, host := range strings.Fields(o.GetOptional(j)) {
						if err := tb.AddProxyBypass(host); err != nil {
							return errors.NewDHCPOptionError("add proxy bypass rejected by builder", err)
						}
					}
				}

			case "PROXY_AUTO_CONFIG_URL":
				if err := o.ExactArgs(3); err != nil {
					return err
				}
				autoConfigURL = o.GetOptional(2)

			case "PROXY_HTTP":
				if err := o.ExactArgs(4); err != nil {
					return err
				}
				port, err := validatePort(o.GetOptional(3), "PROXY_HTTP")
				if err != nil {
					return err
				}
				httpHost = o.GetOptional(2)
				httpPort = port

			case "PROXY_HTTPS":
				if err := o.ExactArgs(4); err != nil {
					return err
				}
				port, err := validatePort(o.GetOptional(3), "PROXY_HTTPS")
				if err != nil {
					return err
				}
				httpsHost = o.GetOptional(2)
				httpsPort = port

			default:
				if !quiet {
					log.Warnf("Unknown pushed DHCP option: %s", o.Render())
				}
			}
			return nil
		}()
		if err != nil && !quiet {
			log.Warnf("Error parsing dhcp-option: %s : %v", o.Render(), err)
		}
	}

	if err := func() error {
		if httpHost != "" {
			if err := tb.SetProxyHTTP(httpHost, httpPort); err != nil {
				return errors.NewDHCPOptionError("set HTTP proxy rejected by builder", err)
			}
		}
		if httpsHost != "" {
			if err := tb.SetProxyHTTPS(httpsHost, httpsPort); err != nil {
				return errors.NewDHCPOptionError("set HTTPS proxy rejected by builder", err)
			}
		}
		if autoConfigURL != "" {
			if err := tb.SetProxyAutoConfigURL(autoConfigURL); err != nil {
				return errors.NewDHCPOptionError("set proxy auto-config URL rejected by builder", err)
			}
		}
		return nil
	}(); err != nil && !quiet {
		log.Warnf("Error setting dhcp-option for proxy: %v", err)
	}

	return flags
}

// addGoogleDNS registers the Google resolvers as fallback DNS servers.
func addGoogleDNS(tb TunBuilder) error {
	for _, server := range googleDNSServers {
		if err := tb.AddDNSServer(server, false); err != nil {
			return errors.NewDHCPOptionError("add Google DNS fallback server rejected by builder", err)
		}
	}
	return nil
}
