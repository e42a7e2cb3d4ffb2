//go:build linux

package netcfg

import (
	"fmt"
	"net"

	"github.com/coreos/go-iptables/iptables"
	"github.com/hashicorp/go-multierror"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/ovpnclient/tunprop/internal/log"
	"github.com/ovpnclient/tunprop/internal/tunprop"
)

const blockIPv6Chain = "OUTPUT"

// LinuxBuilder applies tunnel configuration to a Linux network interface
// through netlink. DNS and IPv6-block changes are staged and written by
// Commit after the configuration pass succeeds; Teardown reverts everything
// this builder installed.
type LinuxBuilder struct {
	link       netlink.Link
	resolvConf string
	metric     int

	gw4 net.IP
	gw6 net.IP

	dnsServers    []string
	searchDomains []string
	blockIPv6     bool

	installedRoutes []*netlink.Route
	ip6t            *iptables.IPTables
}

var _ tunprop.TunBuilder = (*LinuxBuilder)(nil)

// NewLinuxBuilder binds a builder to an existing tunnel interface and brings
// it up.
func NewLinuxBuilder(ifaceName, resolvConf string, metric int) (*LinuxBuilder, error) {
	link, err := netlink.LinkByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("interface %s not found: %w", ifaceName, err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return nil, fmt.Errorf("failed to bring up %s: %w", ifaceName, err)
	}

	ip6t, err := iptables.NewWithProtocol(iptables.ProtocolIPv6)
	if err != nil {
		// IPv6 might not be available, that's okay
		log.Debugf("IPv6 iptables not available: %v", err)
		ip6t = nil
	}

	return &LinuxBuilder{
		link:       link,
		resolvConf: resolvConf,
		metric:     metric,
		ip6t:       ip6t,
	}, nil
}

// IfaceName returns the bound interface name.
func (b *LinuxBuilder) IfaceName() string {
	return b.link.Attrs().Name
}

// DNSServers returns the DNS servers staged so far.
func (b *LinuxBuilder) DNSServers() []string {
	return append([]string(nil), b.dnsServers...)
}

func dstNet(address string, prefixLen int, ipv6 bool) (*net.IPNet, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return nil, fmt.Errorf("invalid address %q", address)
	}
	bits := 32
	if ipv6 {
		bits = 128
	} else {
		ip = ip.To4()
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(prefixLen, bits)}, nil
}

// AddAddress implements tunprop.TunBuilder.
func (b *LinuxBuilder) AddAddress(address string, prefixLen int, gateway string, ipv6, net30 bool) error {
	nlAddr, err := netlink.ParseAddr(fmt.Sprintf("%s/%d", address, prefixLen))
	if err != nil {
		return fmt.Errorf("invalid tunnel address %s/%d: %w", address, prefixLen, err)
	}

	log.Debugf("Adding address %s to %s", nlAddr, b.IfaceName())
	if err := netlink.AddrAdd(b.link, nlAddr); err != nil {
		return fmt.Errorf("failed to add address %s: %w", nlAddr, err)
	}

	if gateway != "" {
		if gw := net.ParseIP(gateway); gw != nil {
			if ipv6 {
				b.gw6 = gw
			} else {
				b.gw4 = gw.To4()
			}
		}
	}
	return nil
}

func (b *LinuxBuilder) addRoute(dst *net.IPNet, gw net.IP, linkIndex int) error {
	route := &netlink.Route{
		LinkIndex: linkIndex,
		Dst:       dst,
		Gw:        gw,
		Priority:  b.metric,
		Table:     unix.RT_TABLE_MAIN,
	}
	log.Debugf("Adding route [dst=%s gw=%s metric=%d]", dst, gw, b.metric)
	if err := netlink.RouteAdd(route); err != nil {
		return err
	}
	b.installedRoutes = append(b.installedRoutes, route)
	return nil
}

// AddRoute implements tunprop.TunBuilder. Routes point into the tunnel.
func (b *LinuxBuilder) AddRoute(address string, prefixLen int, ipv6 bool) error {
	dst, err := dstNet(address, prefixLen, ipv6)
	if err != nil {
		return err
	}
	gw := b.gw4
	if ipv6 {
		gw = b.gw6
	}
	if err := b.addRoute(dst, gw, b.link.Attrs().Index); err != nil {
		return fmt.Errorf("failed to add route %s: %w", dst, err)
	}
	return nil
}

// ExcludeRoute implements tunprop.TunBuilder. An excluded destination is
// pinned to the pre-tunnel default gateway with a more specific route.
func (b *LinuxBuilder) ExcludeRoute(address string, prefixLen int, ipv6 bool) error {
	dst, err := dstNet(address, prefixLen, ipv6)
	if err != nil {
		return err
	}
	gw, linkIndex, err := b.physicalGateway(ipv6)
	if err != nil {
		return fmt.Errorf("cannot exclude %s: %w", dst, err)
	}
	if err := b.addRoute(dst, gw, linkIndex); err != nil {
		return fmt.Errorf("failed to exclude route %s: %w", dst, err)
	}
	return nil
}

// physicalGateway finds the default gateway that does not point into the
// tunnel.
func (b *LinuxBuilder) physicalGateway(ipv6 bool) (net.IP, int, error) {
	family := netlink.FAMILY_V4
	if ipv6 {
		family = netlink.FAMILY_V6
	}
	routes, err := netlink.RouteList(nil, family)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list routes: %w", err)
	}
	for _, r := range routes {
		if r.Dst != nil {
			if ones, _ := r.Dst.Mask.Size(); ones != 0 {
				continue
			}
		}
		if r.Gw == nil || r.LinkIndex == b.link.Attrs().Index {
			continue
		}
		return r.Gw, r.LinkIndex, nil
	}
	return nil, 0, fmt.Errorf("no default gateway outside the tunnel")
}

// RerouteGW implements tunprop.TunBuilder. With the def1 flag the default
// route is overridden by two half-space routes instead of being replaced,
// so teardown never leaves the host without a default route.
func (b *LinuxBuilder) RerouteGW(ipv4, ipv6 bool, flags tunprop.RedirectGatewayFlags) error {
	def1 := flags&tunprop.RGDef1 != 0

	if ipv4 {
		if err := b.rerouteFamily(false, def1); err != nil {
			return err
		}
	}
	if ipv6 {
		if err := b.rerouteFamily(true, def1); err != nil {
			return err
		}
	}
	return nil
}

func (b *LinuxBuilder) rerouteFamily(ipv6, def1 bool) error {
	gw := b.gw4
	zero, half := "0.0.0.0", "128.0.0.0"
	bits := 32
	if ipv6 {
		gw = b.gw6
		zero, half = "::", "8000::"
		bits = 128
	}

	linkIndex := b.link.Attrs().Index
	if def1 {
		for _, prefix := range []string{zero, half} {
			dst := &net.IPNet{IP: net.ParseIP(prefix), Mask: net.CIDRMask(1, bits)}
			if err := b.addRoute(dst, gw, linkIndex); err != nil {
				return fmt.Errorf("failed to add redirect route %s: %w", dst, err)
			}
		}
		return nil
	}

	dst := &net.IPNet{IP: net.ParseIP(zero), Mask: net.CIDRMask(0, bits)}
	route := &netlink.Route{
		LinkIndex: linkIndex,
		Dst:       dst,
		Gw:        gw,
		Priority:  b.metric,
		Table:     unix.RT_TABLE_MAIN,
	}
	log.Debugf("Replacing default route [dst=%s gw=%s]", dst, gw)
	if err := netlink.RouteReplace(route); err != nil {
		return fmt.Errorf("failed to replace default route: %w", err)
	}
	b.installedRoutes = append(b.installedRoutes, route)
	return nil
}

// AddDNSServer implements tunprop.TunBuilder. Servers are staged until
// Commit.
func (b *LinuxBuilder) AddDNSServer(address string, ipv6 bool) error {
	b.dnsServers = append(b.dnsServers, address)
	return nil
}

// AddWINSServer implements tunprop.TunBuilder. WINS has no meaning on this
// platform; the directive is accepted and dropped.
func (b *LinuxBuilder) AddWINSServer(address string) error {
	log.Debugf("Ignoring WINS server %s", address)
	return nil
}

// AddSearchDomain implements tunprop.TunBuilder.
func (b *LinuxBuilder) AddSearchDomain(domain string) error {
	b.searchDomains = append(b.searchDomains, domain)
	return nil
}

// AddProxyBypass implements tunprop.TunBuilder. Proxy settings are not
// applied system-wide on this platform.
func (b *LinuxBuilder) AddProxyBypass(host string) error {
	log.Debugf("Ignoring proxy bypass %s", host)
	return nil
}

// SetProxyAutoConfigURL implements tunprop.TunBuilder.
func (b *LinuxBuilder) SetProxyAutoConfigURL(url string) error {
	log.Debugf("Ignoring proxy auto-config URL %s", url)
	return nil
}

// SetProxyHTTP implements tunprop.TunBuilder.
func (b *LinuxBuilder) SetProxyHTTP(host string, port int) error {
	log.Debugf("Ignoring HTTP proxy %s:%d", host, port)
	return nil
}

// SetProxyHTTPS implements tunprop.TunBuilder.
func (b *LinuxBuilder) SetProxyHTTPS(host string, port int) error {
	log.Debugf("Ignoring HTTPS proxy %s:%d", host, port)
	return nil
}

// SetBlockIPv6 implements tunprop.TunBuilder. The firewall rules are staged
// until Commit.
func (b *LinuxBuilder) SetBlockIPv6(block bool) {
	b.blockIPv6 = block
}

// SetRemoteAddress implements tunprop.TunBuilder.
func (b *LinuxBuilder) SetRemoteAddress(address string, ipv6 bool) error {
	log.Infof("Configuring tunnel to server %s", address)
	return nil
}

// SetMTU implements tunprop.TunBuilder.
func (b *LinuxBuilder) SetMTU(mtu int) error {
	log.Debugf("Setting MTU of %s to %d", b.IfaceName(), mtu)
	if err := netlink.LinkSetMTU(b.link, mtu); err != nil {
		return fmt.Errorf("failed to set MTU %d: %w", mtu, err)
	}
	return nil
}

// SetSessionName implements tunprop.TunBuilder.
func (b *LinuxBuilder) SetSessionName(name string) error {
	log.Infof("Session %q on %s", name, b.IfaceName())
	return nil
}

func (b *LinuxBuilder) blockIPv6Rule() []string {
	return []string{"!", "-o", b.IfaceName(), "-j", "REJECT"}
}

// Commit applies the staged DNS and IPv6-block settings. Call it after the
// configuration pass succeeded.
func (b *LinuxBuilder) Commit() error {
	if len(b.dnsServers) > 0 || len(b.searchDomains) > 0 {
		if err := WriteResolvConf(b.resolvConf, b.dnsServers, b.searchDomains); err != nil {
			return err
		}
	}

	if b.blockIPv6 {
		if b.ip6t == nil {
			return fmt.Errorf("cannot block IPv6: ip6tables not available")
		}
		log.Infof("Blocking IPv6 traffic outside %s", b.IfaceName())
		if err := b.ip6t.AppendUnique("filter", blockIPv6Chain, b.blockIPv6Rule()...); err != nil {
			return fmt.Errorf("failed to install IPv6 block rule: %w", err)
		}
	}
	return nil
}

// Teardown reverts everything this builder installed. All cleanup steps run
// even when some fail; the failures are aggregated.
func (b *LinuxBuilder) Teardown() error {
	var result *multierror.Error

	for i := len(b.installedRoutes) - 1; i >= 0; i-- {
		route := b.installedRoutes[i]
		if err := netlink.RouteDel(route); err != nil {
			log.Warnf("Failed to remove route [dst=%s]: %v", route.Dst, err)
			result = multierror.Append(result, err)
		}
	}
	b.installedRoutes = nil

	if err := RestoreResolvConf(b.resolvConf); err != nil {
		result = multierror.Append(result, err)
	}

	if b.blockIPv6 && b.ip6t != nil {
		if err := b.ip6t.DeleteIfExists("filter", blockIPv6Chain, b.blockIPv6Rule()...); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}
