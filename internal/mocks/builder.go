// Package mocks provides hand-written mocks for testing components that
// depend on the platform tunnel builder without touching any real network
// configuration.
package mocks

import (
	"github.com/ovpnclient/tunprop/internal/tunprop"
)

// AddressCall records one AddAddress invocation.
type AddressCall struct {
	Address   string
	PrefixLen int
	Gateway   string
	IPv6      bool
	Net30     bool
}

// RouteCall records one AddRoute or ExcludeRoute invocation.
type RouteCall struct {
	Address   string
	PrefixLen int
	IPv6      bool
}

// DNSCall records one AddDNSServer invocation.
type DNSCall struct {
	Address string
	IPv6    bool
}

// HostPort records one proxy host/port pair.
type HostPort struct {
	Host string
	Port int
}

// MockTunBuilder is a mock implementation of the tunprop.TunBuilder
// interface. Every call is recorded for verification; behavior can be
// overridden per method via the *Func fields to inject refusals.
type MockTunBuilder struct {
	AddAddressFunc            func(address string, prefixLen int, gateway string, ipv6, net30 bool) error
	AddRouteFunc              func(address string, prefixLen int, ipv6 bool) error
	ExcludeRouteFunc          func(address string, prefixLen int, ipv6 bool) error
	RerouteGWFunc             func(ipv4, ipv6 bool, flags tunprop.RedirectGatewayFlags) error
	AddDNSServerFunc          func(address string, ipv6 bool) error
	AddWINSServerFunc         func(address string) error
	AddSearchDomainFunc       func(domain string) error
	AddProxyBypassFunc        func(host string) error
	SetProxyAutoConfigURLFunc func(url string) error
	SetProxyHTTPFunc          func(host string, port int) error
	SetProxyHTTPSFunc         func(host string, port int) error
	SetRemoteAddressFunc      func(address string, ipv6 bool) error
	SetMTUFunc                func(mtu int) error
	SetSessionNameFunc        func(name string) error

	// Recorded calls for verification in tests.
	Addresses      []AddressCall
	Routes         []RouteCall
	ExcludedRoutes []RouteCall
	DNSServers     []string
	DNSServerCalls []DNSCall
	WINSServers    []string
	SearchDomains  []string
	ProxyBypass    []string
	ProxyAutoURL   string
	ProxyHTTP      HostPort
	ProxyHTTPS     HostPort
	RemoteAddress  string
	RemoteIsIPv6   bool
	MTU            int
	SessionName    string
	BlockIPv6      bool

	RerouteGWCalls int
	RerouteV4      bool
	RerouteV6      bool
	RerouteFlags   tunprop.RedirectGatewayFlags
	BlockIPv6Calls int
}

var _ tunprop.TunBuilder = (*MockTunBuilder)(nil)

// NewMockTunBuilder creates a new mock builder that accepts every call.
func NewMockTunBuilder() *MockTunBuilder {
	return &MockTunBuilder{}
}

// AddAddress implements tunprop.TunBuilder.
func (m *MockTunBuilder) AddAddress(address string, prefixLen int, gateway string, ipv6, net30 bool) error {
	if m.AddAddressFunc != nil {
		if err := m.AddAddressFunc(address, prefixLen, gateway, ipv6, net30); err != nil {
			return err
		}
	}
	m.Addresses = append(m.Addresses, AddressCall{address, prefixLen, gateway, ipv6, net30})
	return nil
}

// AddRoute implements tunprop.TunBuilder.
func (m *MockTunBuilder) AddRoute(address string, prefixLen int, ipv6 bool) error {
	if m.AddRouteFunc != nil {
		if err := m.AddRouteFunc(address, prefixLen, ipv6); err != nil {
			return err
		}
	}
	m.Routes = append(m.Routes, RouteCall{address, prefixLen, ipv6})
	return nil
}

// ExcludeRoute implements tunprop.TunBuilder.
func (m *MockTunBuilder) ExcludeRoute(address string, prefixLen int, ipv6 bool) error {
	if m.ExcludeRouteFunc != nil {
		if err := m.ExcludeRouteFunc(address, prefixLen, ipv6); err != nil {
			return err
		}
	}
	m.ExcludedRoutes = append(m.ExcludedRoutes, RouteCall{address, prefixLen, ipv6})
	return nil
}

// RerouteGW implements tunprop.TunBuilder.
func (m *MockTunBuilder) RerouteGW(ipv4, ipv6 bool, flags tunprop.RedirectGatewayFlags) error {
	if m.RerouteGWFunc != nil {
		if err := m.RerouteGWFunc(ipv4, ipv6, flags); err != nil {
			return err
		}
	}
	m.RerouteGWCalls++
	m.RerouteV4 = ipv4
	m.RerouteV6 = ipv6
	m.RerouteFlags = flags
	return nil
}

// AddDNSServer implements tunprop.TunBuilder.
func (m *MockTunBuilder) AddDNSServer(address string, ipv6 bool) error {
	if m.AddDNSServerFunc != nil {
		if err := m.AddDNSServerFunc(address, ipv6); err != nil {
			return err
		}
	}
	m.DNSServers = append(m.DNSServers, address)
	m.DNSServerCalls = append(m.DNSServerCalls, DNSCall{Address: address, IPv6: ipv6})
	return nil
}

// AddWINSServer implements tunprop.TunBuilder.
func (m *MockTunBuilder) AddWINSServer(address string) error {
	if m.AddWINSServerFunc != nil {
		if err := m.AddWINSServerFunc(address); err != nil {
			return err
		}
	}
	m.WINSServers = append(m.WINSServers, address)
	return nil
}

// AddSearchDomain implements tunprop.TunBuilder.
func (m *MockTunBuilder) AddSearchDomain(domain string) error {
	if m.AddSearchDomainFunc != nil {
		if err := m.AddSearchDomainFunc(domain); err != nil {
			return err
		}
	}
	m.SearchDomains = append(m.SearchDomains, domain)
	return nil
}

// AddProxyBypass implements tunprop.TunBuilder.
func (m *MockTunBuilder) AddProxyBypass(host string) error {
	if m.AddProxyBypassFunc != nil {
		if err := m.AddProxyBypassFunc(host); err != nil {
			return err
		}
	}
	m.ProxyBypass = append(m.ProxyBypass, host)
	return nil
}

// SetProxyAutoConfigURL implements tunprop.TunBuilder.
func (m *MockTunBuilder) SetProxyAutoConfigURL(url string) error {
	if m.SetProxyAutoConfigURLFunc != nil {
		if err := m.SetProxyAutoConfigURLFunc(url); err != nil {
			return err
		}
	}
	m.ProxyAutoURL = url
	return nil
}

// SetProxyHTTP implements tunprop.TunBuilder.
func (m *MockTunBuilder) SetProxyHTTP(host string, port int) error {
	if m.SetProxyHTTPFunc != nil {
		if err := m.SetProxyHTTPFunc(host, port); err != nil {
			return err
		}
	}
	m.ProxyHTTP = HostPort{host, port}
	return nil
}

// SetProxyHTTPS implements tunprop.TunBuilder.
func (m *MockTunBuilder) SetProxyHTTPS(host string, port int) error {
	if m.SetProxyHTTPSFunc != nil {
		if err := m.SetProxyHTTPSFunc(host, port); err != nil {
			return err
		}
	}
	m.ProxyHTTPS = HostPort{host, port}
	return nil
}

// SetBlockIPv6 implements tunprop.TunBuilder.
func (m *MockTunBuilder) SetBlockIPv6(block bool) {
	m.BlockIPv6Calls++
	m.BlockIPv6 = block
}

// SetRemoteAddress implements tunprop.TunBuilder.
func (m *MockTunBuilder) SetRemoteAddress(address string, ipv6 bool) error {
	if m.SetRemoteAddressFunc != nil {
		if err := m.SetRemoteAddressFunc(address, ipv6); err != nil {
			return err
		}
	}
	m.RemoteAddress = address
	m.RemoteIsIPv6 = ipv6
	return nil
}

// SetMTU implements tunprop.TunBuilder.
func (m *MockTunBuilder) SetMTU(mtu int) error {
	if m.SetMTUFunc != nil {
		if err := m.SetMTUFunc(mtu); err != nil {
			return err
		}
	}
	m.MTU = mtu
	return nil
}

// SetSessionName implements tunprop.TunBuilder.
func (m *MockTunBuilder) SetSessionName(name string) error {
	if m.SetSessionNameFunc != nil {
		if err := m.SetSessionNameFunc(name); err != nil {
			return err
		}
	}
	m.SessionName = name
	return nil
}

// MockSessionStats records observational events.
type MockSessionStats struct {
	Events []tunprop.StatsEvent
}

var _ tunprop.SessionStats = (*MockSessionStats)(nil)

// Event implements tunprop.SessionStats.
func (m *MockSessionStats) Event(e tunprop.StatsEvent) {
	m.Events = append(m.Events, e)
}
