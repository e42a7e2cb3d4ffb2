package addr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ovpnclient/tunprop/internal/errors"
)

// AddrMaskPair is an address with its netmask, as pushed by ifconfig and
// route directives.
type AddrMaskPair struct {
	Addr    Addr
	Netmask Addr
}

// PairFromString parses an address plus optional netmask.
//
// Accepted forms, matching the directive grammar:
//
//	"10.8.0.5" + "255.255.255.0"   (separate netmask argument)
//	"fd00::1/64"                   (CIDR, netmask argument must be empty)
//	"10.8.0.5" + ""                (host netmask of the address family)
//
// The title names the source directive for diagnostics.
func PairFromString(addrStr, maskStr, title string) (AddrMaskPair, error) {
	if i := strings.IndexByte(addrStr, '/'); i >= 0 {
		if maskStr != "" {
			return AddrMaskPair{}, errors.Newf(errors.ErrCodeParse,
				"error parsing %s '%s': both CIDR suffix and netmask argument given", title, addrStr)
		}
		a, err := FromString(addrStr[:i], title)
		if err != nil {
			return AddrMaskPair{}, err
		}
		prefixLen, err := strconv.Atoi(addrStr[i+1:])
		if err != nil {
			return AddrMaskPair{}, errors.NewParseError(
				fmt.Sprintf("error parsing %s prefix length '%s'", title, addrStr[i+1:]), err)
		}
		mask, err := NetmaskFromPrefixLen(a.Version(), prefixLen)
		if err != nil {
			return AddrMaskPair{}, err
		}
		return AddrMaskPair{Addr: a, Netmask: mask}, nil
	}

	a, err := FromString(addrStr, title)
	if err != nil {
		return AddrMaskPair{}, err
	}
	if maskStr == "" {
		// No netmask pushed: host route semantics.
		mask, err := NetmaskFromPrefixLen(a.Version(), VersionSize(a.Version()))
		if err != nil {
			return AddrMaskPair{}, err
		}
		return AddrMaskPair{Addr: a, Netmask: mask}, nil
	}
	mask, err := FromString(maskStr, title)
	if err != nil {
		return AddrMaskPair{}, err
	}
	if mask.Version() != a.Version() {
		return AddrMaskPair{}, errors.Newf(errors.ErrCodeParse,
			"error parsing %s: netmask %s family does not match address %s", title, maskStr, addrStr)
	}
	return AddrMaskPair{Addr: a, Netmask: mask}, nil
}

// Version returns the IP family of the pair.
func (p AddrMaskPair) Version() Version {
	return p.Addr.Version()
}

// IsCanonical reports whether the address has no host bits set under the
// netmask, i.e. addr & netmask == addr.
func (p AddrMaskPair) IsCanonical() bool {
	masked, err := p.Addr.And(p.Netmask)
	if err != nil {
		return false
	}
	return masked.Equal(p.Addr)
}

// PrefixLen converts the netmask to a prefix length; an all-zero IPv4
// netmask is rejected as malformed. This is the strict path used for
// interface addressing.
func (p AddrMaskPair) PrefixLen() (int, error) {
	return p.Netmask.PrefixLen()
}

// RoutePrefixLen is the lenient variant for route construction: an
// unspecified netmask of either family maps to prefix length 0, so default
// routes like "route 0.0.0.0 0.0.0.0" stay expressible.
func (p AddrMaskPair) RoutePrefixLen() (int, error) {
	if p.Netmask.Unspecified() {
		return 0, nil
	}
	return p.Netmask.PrefixLen()
}

// String renders the pair as "addr/netmask".
func (p AddrMaskPair) String() string {
	return p.Addr.String() + "/" + p.Netmask.String()
}
