// Package netcfg contains the platform tunnel builders: a recording trace
// builder usable everywhere and a netlink-backed builder for Linux.
package netcfg

import (
	"fmt"
	"sync"

	"github.com/ovpnclient/tunprop/internal/log"
	"github.com/ovpnclient/tunprop/internal/tunprop"
)

// Snapshot is the JSON-friendly result of a traced configuration pass.
type Snapshot struct {
	Addresses      []SnapshotAddress `json:"addresses"`
	Routes         []SnapshotRoute   `json:"routes"`
	ExcludedRoutes []SnapshotRoute   `json:"excluded_routes"`
	RerouteIPv4    bool              `json:"reroute_ipv4"`
	RerouteIPv6    bool              `json:"reroute_ipv6"`
	DNSServers     []string          `json:"dns_servers"`
	WINSServers    []string          `json:"wins_servers,omitempty"`
	SearchDomains  []string          `json:"search_domains,omitempty"`
	ProxyBypass    []string          `json:"proxy_bypass,omitempty"`
	ProxyAutoURL   string            `json:"proxy_auto_config_url,omitempty"`
	ProxyHTTP      string            `json:"proxy_http,omitempty"`
	ProxyHTTPS     string            `json:"proxy_https,omitempty"`
	BlockIPv6      bool              `json:"block_ipv6"`
	RemoteAddress  string            `json:"remote_address"`
	MTU            int               `json:"mtu,omitempty"`
	SessionName    string            `json:"session_name,omitempty"`
}

type SnapshotAddress struct {
	Address   string `json:"address"`
	PrefixLen int    `json:"prefix_len"`
	Gateway   string `json:"gateway,omitempty"`
	IPv6      bool   `json:"ipv6"`
}

type SnapshotRoute struct {
	Address   string `json:"address"`
	PrefixLen int    `json:"prefix_len"`
	IPv6      bool   `json:"ipv6"`
}

// TraceBuilder implements tunprop.TunBuilder without touching the system.
// Every action is logged and recorded, so a dry run shows exactly what a
// real pass would do.
type TraceBuilder struct {
	mu   sync.Mutex
	snap Snapshot
}

var _ tunprop.TunBuilder = (*TraceBuilder)(nil)

// NewTraceBuilder creates an empty trace builder.
func NewTraceBuilder() *TraceBuilder {
	return &TraceBuilder{}
}

// Snapshot returns a copy of everything recorded so far.
func (t *TraceBuilder) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// DNSServers returns the pushed DNS servers recorded so far.
func (t *TraceBuilder) DNSServers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.snap.DNSServers...)
}

func (t *TraceBuilder) AddAddress(address string, prefixLen int, gateway string, ipv6, net30 bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: address %s/%d gw=%s", address, prefixLen, gateway)
	t.snap.Addresses = append(t.snap.Addresses, SnapshotAddress{address, prefixLen, gateway, ipv6})
	return nil
}

func (t *TraceBuilder) AddRoute(address string, prefixLen int, ipv6 bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: route add %s/%d", address, prefixLen)
	t.snap.Routes = append(t.snap.Routes, SnapshotRoute{address, prefixLen, ipv6})
	return nil
}

func (t *TraceBuilder) ExcludeRoute(address string, prefixLen int, ipv6 bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: route exclude %s/%d", address, prefixLen)
	t.snap.ExcludedRoutes = append(t.snap.ExcludedRoutes, SnapshotRoute{address, prefixLen, ipv6})
	return nil
}

func (t *TraceBuilder) RerouteGW(ipv4, ipv6 bool, flags tunprop.RedirectGatewayFlags) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: reroute gateway ipv4=%v ipv6=%v flags=%b", ipv4, ipv6, flags)
	t.snap.RerouteIPv4 = ipv4
	t.snap.RerouteIPv6 = ipv6
	return nil
}

func (t *TraceBuilder) AddDNSServer(address string, ipv6 bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: dns server %s", address)
	t.snap.DNSServers = append(t.snap.DNSServers, address)
	return nil
}

func (t *TraceBuilder) AddWINSServer(address string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: wins server %s", address)
	t.snap.WINSServers = append(t.snap.WINSServers, address)
	return nil
}

func (t *TraceBuilder) AddSearchDomain(domain string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: search domain %s", domain)
	t.snap.SearchDomains = append(t.snap.SearchDomains, domain)
	return nil
}

func (t *TraceBuilder) AddProxyBypass(host string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: proxy bypass %s", host)
	t.snap.ProxyBypass = append(t.snap.ProxyBypass, host)
	return nil
}

func (t *TraceBuilder) SetProxyAutoConfigURL(url string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: proxy auto-config url %s", url)
	t.snap.ProxyAutoURL = url
	return nil
}

func (t *TraceBuilder) SetProxyHTTP(host string, port int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: http proxy %s:%d", host, port)
	t.snap.ProxyHTTP = fmt.Sprintf("%s:%d", host, port)
	return nil
}

func (t *TraceBuilder) SetProxyHTTPS(host string, port int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: https proxy %s:%d", host, port)
	t.snap.ProxyHTTPS = fmt.Sprintf("%s:%d", host, port)
	return nil
}

func (t *TraceBuilder) SetBlockIPv6(block bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if block {
		log.Infof("tun: blocking IPv6")
	}
	t.snap.BlockIPv6 = block
}

func (t *TraceBuilder) SetRemoteAddress(address string, ipv6 bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: remote address %s", address)
	t.snap.RemoteAddress = address
	return nil
}

func (t *TraceBuilder) SetMTU(mtu int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: mtu %d", mtu)
	t.snap.MTU = mtu
	return nil
}

func (t *TraceBuilder) SetSessionName(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Infof("tun: session %q", name)
	t.snap.SessionName = name
	return nil
}
