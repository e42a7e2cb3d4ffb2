package tunprop

import (
	"testing"

	"github.com/ovpnclient/tunprop/internal/addr"
	"github.com/ovpnclient/tunprop/internal/options"
)

func TestParseRedirectGatewayFlags(t *testing.T) {
	tests := []struct {
		name string
		opt  options.OptionList
		want RedirectGatewayFlags
	}{
		{
			name: "none",
			opt:  options.OptionList{},
			want: 0,
		},
		{
			name: "plain redirect-gateway",
			opt:  options.OptionList{{"redirect-gateway"}},
			want: RGEnable | RGRerouteGW | RGIPv4,
		},
		{
			name: "def1 with bypasses",
			opt:  options.OptionList{{"redirect-gateway", "def1", "bypass-dhcp", "bypass-dns"}},
			want: RGEnable | RGRerouteGW | RGIPv4 | RGDef1 | RGBypassDHCP | RGBypassDNS,
		},
		{
			name: "dual stack",
			opt:  options.OptionList{{"redirect-gateway", "ipv6"}},
			want: RGEnable | RGRerouteGW | RGIPv4 | RGIPv6,
		},
		{
			name: "ipv6 only",
			opt:  options.OptionList{{"redirect-gateway", "ipv6", "!ipv4"}},
			want: RGEnable | RGRerouteGW | RGIPv6,
		},
		{
			name: "negation wins regardless of order",
			opt:  options.OptionList{{"redirect-gateway", "!ipv4"}, {"redirect-gateway", "ipv6"}},
			want: RGEnable | RGRerouteGW | RGIPv6,
		},
		{
			name: "redirect-private does not reroute",
			opt:  options.OptionList{{"redirect-private", "local"}},
			want: RGEnable | RGIPv4 | RGLocal,
		},
		{
			name: "unknown arguments ignored",
			opt:  options.OptionList{{"redirect-gateway", "nonsense", "block-local", "autolocal"}},
			want: RGEnable | RGRerouteGW | RGIPv4 | RGBlockLocal | RGAutoLocal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRedirectGatewayFlags(tt.opt)
			if got != tt.want {
				t.Errorf("parseRedirectGatewayFlags() = %b, want %b", got, tt.want)
			}
		})
	}
}

func TestNewIPVerFlags(t *testing.T) {
	tests := []struct {
		name    string
		opt     options.OptionList
		mask    addr.VersionMask
		wantErr bool
		rgV4    bool
		rgV6    bool
	}{
		{
			name: "no redirect",
			opt:  options.OptionList{},
			mask: addr.V4Mask,
		},
		{
			name: "v4 redirect on v4 tunnel",
			opt:  options.OptionList{{"redirect-gateway"}},
			mask: addr.V4Mask,
			rgV4: true,
		},
		{
			name: "dual redirect on dual tunnel",
			opt:  options.OptionList{{"redirect-gateway", "ipv6"}},
			mask: addr.V4Mask | addr.V6Mask,
			rgV4: true,
			rgV6: true,
		},
		{
			name:    "v4 redirect without v4 tunnel",
			opt:     options.OptionList{{"redirect-gateway"}},
			mask:    addr.V6Mask,
			wantErr: true,
		},
		{
			name:    "v6 redirect without v6 tunnel",
			opt:     options.OptionList{{"redirect-gateway", "ipv6"}},
			mask:    addr.V4Mask,
			wantErr: true,
		},
		{
			name: "redirect-private needs no check",
			opt:  options.OptionList{{"redirect-private", "ipv6"}},
			mask: addr.V4Mask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ipv, err := NewIPVerFlags(tt.opt, tt.mask)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewIPVerFlags() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewIPVerFlags() unexpected error: %v", err)
			}
			if ipv.RGV4() != tt.rgV4 || ipv.RGV6() != tt.rgV6 {
				t.Errorf("RGV4/RGV6 = %v/%v, want %v/%v", ipv.RGV4(), ipv.RGV6(), tt.rgV4, tt.rgV6)
			}
		})
	}
}
