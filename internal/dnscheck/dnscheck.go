// Package dnscheck probes the reachability of pushed DNS servers after a
// configuration pass. A server passes the check when it answers a plain UDP
// query for a well-known name within the timeout; the answer content is not
// validated beyond being a parseable DNS response.
package dnscheck

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/miekg/dns"

	"github.com/ovpnclient/tunprop/internal/log"
)

const (
	defaultDNSPort = "53"

	// probeDomain is a name every public resolver can answer.
	probeDomain = "dns.google."

	// udpClientTimeout is shorter than typical context timeouts to avoid
	// races between the two deadlines.
	udpClientTimeout = 3 * time.Second
)

// Checker probes DNS servers over UDP.
type Checker struct {
	client *dns.Client
	domain string
}

// NewChecker creates a Checker with the default probe domain.
func NewChecker() *Checker {
	return &Checker{
		client: &dns.Client{
			Net:     "udp",
			Timeout: udpClientTimeout,
		},
		domain: probeDomain,
	}
}

// Probe sends one A query to the given server. The address may carry an
// explicit port; port 53 is assumed otherwise. Returns the round-trip time
// on success.
func (c *Checker) Probe(ctx context.Context, server string) (time.Duration, error) {
	host := server
	if ip := net.ParseIP(server); ip != nil {
		// Bare IP, including IPv6 whose colons would otherwise read as a
		// port separator.
		host = net.JoinHostPort(server, defaultDNSPort)
	} else if !containsPort(host) {
		host = net.JoinHostPort(host, defaultDNSPort)
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		return 0, fmt.Errorf("invalid DNS server address %q: %w", server, err)
	}

	req := new(dns.Msg)
	req.SetQuestion(c.domain, dns.TypeA)
	req.RecursionDesired = true

	resp, rtt, err := c.client.ExchangeContext(ctx, req, host)
	if err != nil {
		return 0, fmt.Errorf("DNS probe of %s failed: %w", host, err)
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return 0, fmt.Errorf("DNS probe of %s returned rcode %s", host, dns.RcodeToString[resp.Rcode])
	}
	return rtt, nil
}

// CheckAll probes every server and aggregates the failures. A nil result
// means all servers answered.
func (c *Checker) CheckAll(ctx context.Context, servers []string) error {
	var result *multierror.Error
	for _, server := range servers {
		rtt, err := c.Probe(ctx, server)
		if err != nil {
			log.Warnf("DNS server %s failed reachability check: %v", server, err)
			result = multierror.Append(result, err)
			continue
		}
		log.Infof("DNS server %s answered in %s", server, rtt)
	}
	return result.ErrorOrNil()
}

// containsPort checks if the address contains a port number.
func containsPort(address string) bool {
	// For IPv6 addresses like [::1]:53, check after the closing bracket
	if idx := lastIndex(address, ']'); idx != -1 {
		return len(address) > idx+1 && address[idx+1] == ':'
	}
	return lastIndex(address, ':') != -1
}

func lastIndex(s string, char byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == char {
			return i
		}
	}
	return -1
}
