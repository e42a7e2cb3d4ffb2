package addr

import "testing"

func TestPairFromString(t *testing.T) {
	tests := []struct {
		name       string
		addr       string
		mask       string
		wantVer    Version
		wantPrefix int
		wantErr    bool
	}{
		{name: "ipv4 with netmask", addr: "10.8.0.0", mask: "255.255.255.0", wantVer: V4, wantPrefix: 24},
		{name: "ipv4 host", addr: "10.8.0.5", mask: "", wantVer: V4, wantPrefix: 32},
		{name: "ipv6 cidr", addr: "fd00:1234::/64", mask: "", wantVer: V6, wantPrefix: 64},
		{name: "ipv6 host", addr: "fd00::1", mask: "", wantVer: V6, wantPrefix: 128},
		{name: "cidr plus netmask", addr: "10.8.0.0/24", mask: "255.255.255.0", wantErr: true},
		{name: "family mismatch", addr: "10.8.0.0", mask: "ffff::", wantErr: true},
		{name: "bad prefix", addr: "fd00::/129", wantErr: true},
		{name: "bad address", addr: "10.8.0", mask: "255.255.255.0", wantErr: true},
		{name: "bad netmask", addr: "10.8.0.0", mask: "not-a-mask", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := PairFromString(tt.addr, tt.mask, "test")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("PairFromString(%q, %q): expected error", tt.addr, tt.mask)
				}
				return
			}
			if err != nil {
				t.Fatalf("PairFromString(%q, %q): unexpected error: %v", tt.addr, tt.mask, err)
			}
			if pair.Version() != tt.wantVer {
				t.Errorf("Version() = %v, want %v", pair.Version(), tt.wantVer)
			}
			prefix, err := pair.PrefixLen()
			if err != nil {
				t.Fatalf("PrefixLen(): unexpected error: %v", err)
			}
			if prefix != tt.wantPrefix {
				t.Errorf("PrefixLen() = %d, want %d", prefix, tt.wantPrefix)
			}
		})
	}
}

func TestPairIsCanonical(t *testing.T) {
	tests := []struct {
		name string
		addr string
		mask string
		want bool
	}{
		{name: "canonical network", addr: "192.168.1.0", mask: "255.255.255.0", want: true},
		{name: "host bits set", addr: "192.168.1.5", mask: "255.255.255.0", want: false},
		{name: "host route", addr: "192.168.1.5", mask: "255.255.255.255", want: true},
		{name: "default route", addr: "0.0.0.0", mask: "0.0.0.0", want: true},
		{name: "canonical ipv6", addr: "2001:db8::/32", mask: "", want: true},
		{name: "ipv6 host bits set", addr: "2001:db8::1/32", mask: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := PairFromString(tt.addr, tt.mask, "test")
			if err != nil {
				t.Fatalf("PairFromString: unexpected error: %v", err)
			}
			if got := pair.IsCanonical(); got != tt.want {
				t.Errorf("IsCanonical() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPairRoutePrefixLen(t *testing.T) {
	pair, err := PairFromString("0.0.0.0", "0.0.0.0", "route")
	if err != nil {
		t.Fatalf("PairFromString: unexpected error: %v", err)
	}

	// The strict addressing path rejects an all-zero IPv4 netmask.
	if _, err := pair.PrefixLen(); err == nil {
		t.Errorf("Expected PrefixLen() to reject all-zero IPv4 netmask")
	}

	// The route path maps it to /0.
	prefix, err := pair.RoutePrefixLen()
	if err != nil {
		t.Fatalf("RoutePrefixLen(): unexpected error: %v", err)
	}
	if prefix != 0 {
		t.Errorf("RoutePrefixLen() = %d, want 0", prefix)
	}
}
