package emuexr

import (
	"testing"

	"github.com/ovpnclient/tunprop/internal/addr"
	"github.com/ovpnclient/tunprop/internal/mocks"
	"github.com/ovpnclient/tunprop/internal/options"
	"github.com/ovpnclient/tunprop/internal/tunprop"
)

func mustIPVerFlags(t *testing.T, directives options.OptionList, mask addr.VersionMask) tunprop.IPVerFlags {
	t.Helper()
	ipv, err := tunprop.NewIPVerFlags(directives, mask)
	if err != nil {
		t.Fatalf("NewIPVerFlags: unexpected error: %v", err)
	}
	return ipv
}

func TestEnabled(t *testing.T) {
	redirect := options.OptionList{{"redirect-gateway", "def1"}}

	e := Factory{}.New()
	if !e.Enabled(mustIPVerFlags(t, redirect, addr.V4Mask)) {
		t.Errorf("Enabled should be true under active IPv4 redirect")
	}
	if e.Enabled(mustIPVerFlags(t, nil, addr.V4Mask)) {
		t.Errorf("Enabled should be false without redirect-gateway")
	}
}

func TestComplement_SingleExclusion(t *testing.T) {
	root := prefix{a: addr.FromUint32(0), len: 0}
	excluded := []prefix{{a: addr.MustFromString("10.0.0.0"), len: 8}}

	got := complement(root, excluded)

	// The complement of 10.0.0.0/8 within 0.0.0.0/0 is 8 prefixes, one per
	// level of the split, and must not contain the excluded prefix.
	if len(got) != 8 {
		t.Fatalf("Expected 8 complement prefixes, got %d: %v", len(got), got)
	}

	expected := map[string]bool{
		"128.0.0.0/1": true,
		"64.0.0.0/2":  true,
		"32.0.0.0/3":  true,
		"16.0.0.0/4":  true,
		"0.0.0.0/5":   true,
		"8.0.0.0/7":   true,
		"11.0.0.0/8":  true,
		"12.0.0.0/6":  true,
	}
	for _, p := range got {
		if !expected[p.String()] {
			t.Errorf("Unexpected complement prefix %s", p)
		}
	}

	// Union coverage check: every prefix must be disjoint from the
	// exclusion.
	for _, p := range got {
		if covers(p, excluded[0]) || covers(excluded[0], p) {
			t.Errorf("Complement prefix %s overlaps exclusion", p)
		}
	}
}

func TestComplement_ExcludeEverything(t *testing.T) {
	root := prefix{a: addr.FromUint32(0), len: 0}
	got := complement(root, []prefix{{a: addr.FromUint32(0), len: 0}})
	if len(got) != 0 {
		t.Errorf("Excluding the root should leave no complement, got %v", got)
	}
}

func TestComplement_NoExclusions(t *testing.T) {
	root := prefix{a: addr.FromUint32(0), len: 0}
	got := complement(root, nil)
	if len(got) != 1 || got[0].String() != "0.0.0.0/0" {
		t.Errorf("Empty exclusion set should leave the root itself, got %v", got)
	}
}

func TestEmulate_InstallsComplementAndServerBypass(t *testing.T) {
	tb := mocks.NewMockTunBuilder()
	redirect := options.OptionList{{"redirect-gateway", "def1"}}
	ipv := mustIPVerFlags(t, redirect, addr.V4Mask)
	server := addr.MustFromString("203.0.113.7")

	e := Factory{}.New()
	e.AddRoute(false, addr.MustFromString("192.168.1.0"), 24)
	// Adds are ignored by the emulator.
	e.AddRoute(true, addr.MustFromString("10.0.0.0"), 8)

	if err := e.Emulate(tb, ipv, server); err != nil {
		t.Fatalf("Emulate: unexpected error: %v", err)
	}

	if len(tb.Routes) == 0 {
		t.Fatalf("Expected emulated include routes to be installed")
	}

	for _, r := range tb.Routes {
		if r.IPv6 {
			t.Errorf("Unexpected IPv6 route %v under IPv4-only redirect", r)
		}
		if r.Address == "192.168.1.0" && r.PrefixLen == 24 {
			t.Errorf("Excluded route must not appear in the include set")
		}
		if r.Address == server.String() && r.PrefixLen == 32 {
			t.Errorf("Server address must not appear in the include set")
		}
	}
}

func TestEmulate_IPv6(t *testing.T) {
	tb := mocks.NewMockTunBuilder()
	redirect := options.OptionList{{"redirect-gateway", "ipv6", "!ipv4"}}
	ipv := mustIPVerFlags(t, redirect, addr.V6Mask)

	e := Factory{}.New()
	e.AddRoute(false, addr.MustFromString("2001:db8::"), 32)

	if err := e.Emulate(tb, ipv, addr.MustFromString("fd00::1")); err != nil {
		t.Fatalf("Emulate: unexpected error: %v", err)
	}

	if len(tb.Routes) == 0 {
		t.Fatalf("Expected emulated IPv6 include routes")
	}
	for _, r := range tb.Routes {
		if !r.IPv6 {
			t.Errorf("Expected only IPv6 routes, got %v", r)
		}
	}
}
