package addr

import (
	"testing"
)

func TestNetmaskPrefixLenRoundTrip_IPv4(t *testing.T) {
	for p := 1; p <= 32; p++ {
		mask, err := NetmaskFromPrefixLen(V4, p)
		if err != nil {
			t.Fatalf("NetmaskFromPrefixLen(V4, %d): unexpected error: %v", p, err)
		}
		got, err := mask.PrefixLen()
		if err != nil {
			t.Fatalf("PrefixLen() for /%d: unexpected error: %v", p, err)
		}
		if got != p {
			t.Errorf("PrefixLen(NetmaskFromPrefixLen(%d)) = %d, want %d", p, got, p)
		}
	}
}

func TestNetmaskPrefixLenRoundTrip_IPv6(t *testing.T) {
	for p := 0; p <= 128; p++ {
		mask, err := NetmaskFromPrefixLen(V6, p)
		if err != nil {
			t.Fatalf("NetmaskFromPrefixLen(V6, %d): unexpected error: %v", p, err)
		}
		got, err := mask.PrefixLen()
		if err != nil {
			t.Fatalf("PrefixLen() for /%d: unexpected error: %v", p, err)
		}
		if got != p {
			t.Errorf("PrefixLen(NetmaskFromPrefixLen(%d)) = %d, want %d", p, got, p)
		}
	}
}

func TestNetmaskFromPrefixLen_IPv4RejectsZero(t *testing.T) {
	if _, err := NetmaskFromPrefixLen(V4, 0); err == nil {
		t.Errorf("Expected error for IPv4 prefix length 0")
	}
	if _, err := NetmaskFromPrefixLen(V4, 33); err == nil {
		t.Errorf("Expected error for IPv4 prefix length 33")
	}
	if _, err := NetmaskFromPrefixLen(V6, 129); err == nil {
		t.Errorf("Expected error for IPv6 prefix length 129")
	}
}

func TestPrefixLen_MalformedNetmask(t *testing.T) {
	tests := []string{
		"255.0.255.0",
		"0.255.255.255",
		"255.255.255.253",
		"128.128.0.0",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			mask := MustFromString(s)
			if _, err := mask.PrefixLen(); err == nil {
				t.Errorf("PrefixLen(%s): expected malformed netmask error", s)
			}
		})
	}

	// Non-contiguous IPv6 netmask.
	mask := MustFromString("ffff:ffff::ffff")
	if _, err := mask.PrefixLen(); err == nil {
		t.Errorf("Expected malformed netmask error for ffff:ffff::ffff")
	}

	// All-zero IPv4 netmask is rejected on the strict path.
	if _, err := MustFromString("0.0.0.0").PrefixLen(); err == nil {
		t.Errorf("Expected malformed netmask error for 0.0.0.0")
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantVer Version
		wantStr string
		wantErr bool
	}{
		{name: "ipv4", input: "10.0.0.1", wantVer: V4, wantStr: "10.0.0.1"},
		{name: "ipv6", input: "fd00::1", wantVer: V6, wantStr: "fd00::1"},
		{name: "ipv6 canonicalized", input: "fd00:0:0:0:0:0:0:1", wantVer: V6, wantStr: "fd00::1"},
		{name: "ipv4-mapped treated as ipv4", input: "::ffff:10.0.0.1", wantVer: V4, wantStr: "10.0.0.1"},
		{name: "garbage", input: "not-an-address", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "trailing junk", input: "10.0.0.1x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := FromString(tt.input, "test")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FromString(%q): expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromString(%q): unexpected error: %v", tt.input, err)
			}
			if a.Version() != tt.wantVer {
				t.Errorf("Version() = %v, want %v", a.Version(), tt.wantVer)
			}
			if a.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", a.String(), tt.wantStr)
			}
		})
	}
}

func TestFromBytesRoundTrip(t *testing.T) {
	for _, s := range []string{"192.168.1.254", "2001:db8::42"} {
		a := MustFromString(s)
		b, err := FromBytes(a.Bytes())
		if err != nil {
			t.Fatalf("FromBytes(%s): unexpected error: %v", s, err)
		}
		if !a.Equal(b) {
			t.Errorf("FromBytes(Bytes(%s)) = %s, want %s", s, b, a)
		}
	}

	if _, err := FromBytes([]byte{1, 2, 3}); err == nil {
		t.Errorf("Expected error for 3-byte input")
	}
}

func TestBitwiseOps(t *testing.T) {
	a := MustFromString("10.0.0.1")
	mask := MustFromString("255.255.255.252")

	masked, err := a.And(mask)
	if err != nil {
		t.Fatalf("And: unexpected error: %v", err)
	}
	if masked.String() != "10.0.0.0" {
		t.Errorf("10.0.0.1 & 255.255.255.252 = %s, want 10.0.0.0", masked)
	}

	joined, err := masked.Or(MustFromString("0.0.0.3"))
	if err != nil {
		t.Fatalf("Or: unexpected error: %v", err)
	}
	if joined.String() != "10.0.0.3" {
		t.Errorf("10.0.0.0 | 0.0.0.3 = %s, want 10.0.0.3", joined)
	}

	if MustFromString("0.0.0.0").Not().String() != "255.255.255.255" {
		t.Errorf("^0.0.0.0 should be 255.255.255.255")
	}
}

func TestBitwiseOps_FamilyMismatch(t *testing.T) {
	v4 := MustFromString("10.0.0.1")
	v6 := MustFromString("fd00::1")

	if _, err := v4.And(v6); err == nil {
		t.Errorf("Expected family mismatch error for v4 & v6")
	}
	if _, err := v6.Or(v4); err == nil {
		t.Errorf("Expected family mismatch error for v6 | v4")
	}
	if _, err := (Addr{}).And(v4); err == nil {
		t.Errorf("Expected error for zero-value operand")
	}
}

func TestUnspecified(t *testing.T) {
	if !MustFromString("0.0.0.0").Unspecified() {
		t.Errorf("0.0.0.0 should be unspecified")
	}
	if !MustFromString("::").Unspecified() {
		t.Errorf(":: should be unspecified")
	}
	if MustFromString("10.0.0.1").Unspecified() {
		t.Errorf("10.0.0.1 should not be unspecified")
	}
}

func TestEqual(t *testing.T) {
	if !MustFromString("10.0.0.1").Equal(MustFromString("10.0.0.1")) {
		t.Errorf("Expected identical addresses to compare equal")
	}
	if MustFromString("10.0.0.1").Equal(MustFromString("10.0.0.2")) {
		t.Errorf("Expected different addresses to compare unequal")
	}
	if MustFromString("0.0.0.0").Equal(MustFromString("::")) {
		t.Errorf("Expected cross-family comparison to be unequal")
	}
}
