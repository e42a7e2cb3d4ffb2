package tunprop

import (
	"github.com/ovpnclient/tunprop/internal/addr"
	"github.com/ovpnclient/tunprop/internal/errors"
	"github.com/ovpnclient/tunprop/internal/options"
)

// RedirectGatewayFlags is the parsed flag set of the redirect-gateway and
// redirect-private directives. The engine only interprets the enable and
// per-family bits; the full set is forwarded to the builder's RerouteGW call
// as an opaque payload.
type RedirectGatewayFlags uint

const (
	RGEnable RedirectGatewayFlags = 1 << iota
	RGRerouteGW
	RGLocal
	RGAutoLocal
	RGDef1
	RGBypassDHCP
	RGBypassDNS
	RGBlockLocal
	RGIPv4
	RGIPv6
)

// parseRedirectGatewayFlags folds every redirect-gateway/redirect-private
// directive into one flag set. A plain "redirect-gateway" redirects IPv4;
// the "ipv6" argument adds IPv6 and "!ipv4" removes IPv4.
func parseRedirectGatewayFlags(opt options.OptionList) RedirectGatewayFlags {
	var flags RedirectGatewayFlags
	notIPv4 := false

	apply := func(o options.Option, reroute bool) {
		flags |= RGEnable | RGIPv4
		if reroute {
			flags |= RGRerouteGW
		}
		for i := 1; i < o.Size(); i++ {
			switch o.GetOptional(i) {
			case "local":
				flags |= RGLocal
			case "autolocal":
				flags |= RGAutoLocal
			case "def1":
				flags |= RGDef1
			case "bypass-dhcp":
				flags |= RGBypassDHCP
			case "bypass-dns":
				flags |= RGBypassDNS
			case "block-local":
				flags |= RGBlockLocal
			case "ipv6":
				flags |= RGIPv6
			case "!ipv4":
				notIPv4 = true
			}
		}
	}

	for _, o := range opt.GetAll("redirect-gateway") {
		apply(o, true)
	}
	for _, o := range opt.GetAll("redirect-private") {
		apply(o, false)
	}

	if notIPv4 {
		flags &^= RGIPv4
	}
	return flags
}

// IPVerFlags combines the configured IP families with the per-family
// redirect-gateway decision.
type IPVerFlags struct {
	mask    addr.VersionMask
	rgFlags RedirectGatewayFlags
}

// NewIPVerFlags resolves the redirect-gateway directives against the version
// mask produced by interface configuration. Requesting redirection for a
// family that was never configured is an error.
func NewIPVerFlags(opt options.OptionList, mask addr.VersionMask) (IPVerFlags, error) {
	flags := parseRedirectGatewayFlags(opt)
	ipv := IPVerFlags{mask: mask, rgFlags: flags}

	if ipv.rerouteEnabled() {
		if flags&RGIPv4 != 0 && !mask.HasV4() {
			return IPVerFlags{}, errors.New(errors.ErrCodeRoute,
				"redirect-gateway requests IPv4 but no IPv4 tunnel address is configured")
		}
		if flags&RGIPv6 != 0 && !mask.HasV6() {
			return IPVerFlags{}, errors.New(errors.ErrCodeRoute,
				"redirect-gateway requests IPv6 but no IPv6 tunnel address is configured")
		}
	}
	return ipv, nil
}

func (i IPVerFlags) rerouteEnabled() bool {
	return i.rgFlags&RGEnable != 0 && i.rgFlags&RGRerouteGW != 0
}

// V4 reports whether an IPv4 tunnel address was configured.
func (i IPVerFlags) V4() bool { return i.mask.HasV4() }

// V6 reports whether an IPv6 tunnel address was configured.
func (i IPVerFlags) V6() bool { return i.mask.HasV6() }

// RGV4 reports whether full-tunnel IPv4 redirection is active.
func (i IPVerFlags) RGV4() bool {
	return i.V4() && i.rerouteEnabled() && i.rgFlags&RGIPv4 != 0
}

// RGV6 reports whether full-tunnel IPv6 redirection is active.
func (i IPVerFlags) RGV6() bool {
	return i.V6() && i.rerouteEnabled() && i.rgFlags&RGIPv6 != 0
}

// APIFlags returns the raw redirect-gateway flag set for the builder.
func (i IPVerFlags) APIFlags() RedirectGatewayFlags { return i.rgFlags }
