// Package emuexr emulates route exclusion for platforms whose tunnel API
// cannot express "exclude this destination from the tunnel".
//
// During a configuration pass the emulator accumulates the excluded routes.
// At the end it computes, per redirected family, the complement of the
// excluded set within the default route and installs that complement as
// ordinary include routes, which has the same effect as native exclusion
// under a full-tunnel redirect.
package emuexr

import (
	"fmt"

	"github.com/ovpnclient/tunprop/internal/addr"
	"github.com/ovpnclient/tunprop/internal/errors"
	"github.com/ovpnclient/tunprop/internal/log"
	"github.com/ovpnclient/tunprop/internal/tunprop"
)

type prefix struct {
	a   addr.Addr
	len int
}

func (p prefix) String() string {
	return fmt.Sprintf("%s/%d", p.a, p.len)
}

// Emulator implements tunprop.EmulateExcludeRoute. One instance covers one
// configuration pass.
type Emulator struct {
	excluded4 []prefix
	excluded6 []prefix
}

var _ tunprop.EmulateExcludeRoute = (*Emulator)(nil)

// Factory implements tunprop.EmulateExcludeRouteFactory.
type Factory struct{}

// New returns a fresh emulator for one configuration pass.
func (Factory) New() tunprop.EmulateExcludeRoute {
	return &Emulator{}
}

// Enabled reports whether emulation applies: at least one active family has
// redirect-gateway requested.
func (e *Emulator) Enabled(ipv tunprop.IPVerFlags) bool {
	return ipv.RGV4() || ipv.RGV6()
}

// AddRoute records an add/exclude decision. Only exclusions matter to the
// complement computation: under an active redirect, plain adds are already
// covered by the default route.
func (e *Emulator) AddRoute(add bool, a addr.Addr, prefixLen int) {
	if add {
		return
	}
	switch a.Version() {
	case addr.V4:
		e.excluded4 = append(e.excluded4, prefix{a, prefixLen})
	case addr.V6:
		e.excluded6 = append(e.excluded6, prefix{a, prefixLen})
	}
}

// Emulate installs the complement include routes on the builder. The active
// server address is excluded as a host route too, so the emulated
// full-tunnel set never captures the control channel.
func (e *Emulator) Emulate(tb tunprop.TunBuilder, ipv tunprop.IPVerFlags, serverAddr addr.Addr) error {
	if ipv.RGV4() {
		excluded := e.excluded4
		if serverAddr.Version() == addr.V4 {
			excluded = append(excluded, prefix{serverAddr, 32})
		}
		if err := emulateFamily(tb, addr.V4, excluded); err != nil {
			return err
		}
	}
	if ipv.RGV6() {
		excluded := e.excluded6
		if serverAddr.Version() == addr.V6 {
			excluded = append(excluded, prefix{serverAddr, 128})
		}
		if err := emulateFamily(tb, addr.V6, excluded); err != nil {
			return err
		}
	}
	return nil
}

func emulateFamily(tb tunprop.TunBuilder, ver addr.Version, excluded []prefix) error {
	root := prefix{a: zeroAddr(ver), len: 0}
	includes := complement(root, excluded)
	log.Debugf("Emulating %d %s exclusions with %d include routes", len(excluded), ver, len(includes))
	for _, p := range includes {
		if err := tb.AddRoute(p.a.String(), p.len, ver == addr.V6); err != nil {
			return errors.NewRouteError(fmt.Sprintf("add emulated include route %s rejected by builder", p), err)
		}
	}
	return nil
}

func zeroAddr(ver addr.Version) addr.Addr {
	if ver == addr.V6 {
		a, _ := addr.FromBytes(make([]byte, 16))
		return a
	}
	return addr.FromUint32(0)
}

// complement returns the set of prefixes covering root minus every excluded
// prefix: the tree under root is split along excluded prefixes, keeping the
// halves that contain no exclusion.
func complement(root prefix, excluded []prefix) []prefix {
	var out []prefix
	var walk func(p prefix)
	walk = func(p prefix) {
		overlap := false
		for _, e := range excluded {
			if covers(e, p) {
				// The whole prefix is excluded.
				return
			}
			if covers(p, e) {
				overlap = true
			}
		}
		if !overlap {
			out = append(out, p)
			return
		}
		lo, hi := split(p)
		walk(lo)
		walk(hi)
	}
	walk(root)
	return out
}

// covers reports whether prefix a contains prefix b.
func covers(a, b prefix) bool {
	if a.a.Version() != b.a.Version() || a.len > b.len {
		return false
	}
	if a.len == 0 {
		return true
	}
	mask, err := addr.NetmaskFromPrefixLen(a.a.Version(), a.len)
	if err != nil {
		return false
	}
	aNet, err := a.a.And(mask)
	if err != nil {
		return false
	}
	bNet, err := b.a.And(mask)
	if err != nil {
		return false
	}
	return aNet.Equal(bNet)
}

// split halves a prefix into its two child prefixes.
func split(p prefix) (prefix, prefix) {
	lo := prefix{a: p.a, len: p.len + 1}
	hiBytes := p.a.Bytes()
	hiBytes[p.len/8] |= 1 << (7 - p.len%8)
	hiAddr, _ := addr.FromBytes(hiBytes)
	return lo, prefix{a: hiAddr, len: p.len + 1}
}
