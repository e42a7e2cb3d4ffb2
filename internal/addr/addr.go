// Package addr provides version-aware IP address and address/netmask-pair
// value types for interpreting server-pushed tunnel directives.
//
// An Addr is a tagged variant over IPv4 (32-bit) and IPv6 (128-bit)
// representations. Bitwise operations are only defined between addresses of
// the same family; mixing families is an error, never a silent coercion.
package addr

import (
	"bytes"
	"fmt"
	"net/netip"

	"github.com/ovpnclient/tunprop/internal/errors"
)

// Version is the IP family of an Addr.
type Version uint8

const (
	VersionUnspec Version = iota
	V4
	V6
)

// String returns a human-readable family name.
func (v Version) String() string {
	switch v {
	case V4:
		return "IPv4"
	case V6:
		return "IPv6"
	default:
		return "unspec"
	}
}

// VersionMask is a bitset over the IP families configured on a tunnel.
type VersionMask uint8

const (
	V4Mask VersionMask = 1 << 0
	V6Mask VersionMask = 1 << 1
)

// HasV4 reports whether the IPv4 bit is set.
func (m VersionMask) HasV4() bool { return m&V4Mask != 0 }

// HasV6 reports whether the IPv6 bit is set.
func (m VersionMask) HasV6() bool { return m&V6Mask != 0 }

// Mask returns the VersionMask bit for the family.
func (v Version) Mask() VersionMask {
	switch v {
	case V4:
		return V4Mask
	case V6:
		return V6Mask
	default:
		return 0
	}
}

// VersionSize returns the bit width of the family (32 or 128).
func VersionSize(v Version) int {
	switch v {
	case V4:
		return 32
	case V6:
		return 128
	default:
		return 0
	}
}

// Addr is an IPv4 or IPv6 address. The zero value has no family and is only
// usable as a placeholder; every operation on it fails or reports
// unspecified.
type Addr struct {
	ver Version
	v4  uint32
	v6  [16]byte
}

// FromString parses an IPv4 dotted-quad or an IPv6 address. The title, if
// non-empty, names the source directive for diagnostics.
func FromString(s, title string) (Addr, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		if title == "" {
			return Addr{}, errors.NewParseError(fmt.Sprintf("error parsing IP address '%s'", s), err)
		}
		return Addr{}, errors.NewParseError(fmt.Sprintf("error parsing %s IP address '%s'", title, s), err)
	}
	if ip.Is4() || ip.Is4In6() {
		b := ip.Unmap().As4()
		return Addr{
			ver: V4,
			v4:  uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]),
		}, nil
	}
	return Addr{ver: V6, v6: ip.As16()}, nil
}

// MustFromString is FromString that panics on error, for constants and tests.
func MustFromString(s string) Addr {
	a, err := FromString(s, "")
	if err != nil {
		panic(err)
	}
	return a
}

// FromBytes builds an Addr from a 4-byte or 16-byte big-endian slice.
func FromBytes(b []byte) (Addr, error) {
	switch len(b) {
	case 4:
		return FromUint32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
	case 16:
		var v6 [16]byte
		copy(v6[:], b)
		return Addr{ver: V6, v6: v6}, nil
	default:
		return Addr{}, errors.Newf(errors.ErrCodeParse, "address must be 4 or 16 bytes, got %d", len(b))
	}
}

// FromUint32 builds an IPv4 Addr from its host-order 32-bit value.
func FromUint32(v uint32) Addr {
	return Addr{ver: V4, v4: v}
}

// Version returns the IP family of the address.
func (a Addr) Version() Version { return a.ver }

// IsV6 reports whether the address is IPv6.
func (a Addr) IsV6() bool { return a.ver == V6 }

// Bytes returns the big-endian byte representation (4 or 16 bytes).
func (a Addr) Bytes() []byte {
	switch a.ver {
	case V4:
		return []byte{byte(a.v4 >> 24), byte(a.v4 >> 16), byte(a.v4 >> 8), byte(a.v4)}
	case V6:
		b := make([]byte, 16)
		copy(b, a.v6[:])
		return b
	default:
		return nil
	}
}

// String renders the canonical textual form of the address.
func (a Addr) String() string {
	switch a.ver {
	case V4:
		ip := netip.AddrFrom4([4]byte{byte(a.v4 >> 24), byte(a.v4 >> 16), byte(a.v4 >> 8), byte(a.v4)})
		return ip.String()
	case V6:
		return netip.AddrFrom16(a.v6).String()
	default:
		return "<unspec>"
	}
}

// Unspecified reports whether the address is all-zero.
func (a Addr) Unspecified() bool {
	switch a.ver {
	case V4:
		return a.v4 == 0
	case V6:
		return a.v6 == [16]byte{}
	default:
		return true
	}
}

// Equal reports whether two addresses have the same family and value.
func (a Addr) Equal(other Addr) bool {
	if a.ver != other.ver {
		return false
	}
	switch a.ver {
	case V4:
		return a.v4 == other.v4
	case V6:
		return a.v6 == other.v6
	default:
		return true
	}
}

func (a Addr) checkSameFamily(other Addr, op string) error {
	if a.ver == VersionUnspec || other.ver == VersionUnspec {
		return errors.Newf(errors.ErrCodeParse, "%s on address without a family", op)
	}
	if a.ver != other.ver {
		return errors.Newf(errors.ErrCodeParse, "%s between %s and %s address", op, a.ver, other.ver)
	}
	return nil
}

// And returns the bitwise AND of two same-family addresses.
func (a Addr) And(other Addr) (Addr, error) {
	if err := a.checkSameFamily(other, "bitwise AND"); err != nil {
		return Addr{}, err
	}
	if a.ver == V4 {
		return Addr{ver: V4, v4: a.v4 & other.v4}, nil
	}
	ret := Addr{ver: V6}
	for i := range a.v6 {
		ret.v6[i] = a.v6[i] & other.v6[i]
	}
	return ret, nil
}

// Or returns the bitwise OR of two same-family addresses.
func (a Addr) Or(other Addr) (Addr, error) {
	if err := a.checkSameFamily(other, "bitwise OR"); err != nil {
		return Addr{}, err
	}
	if a.ver == V4 {
		return Addr{ver: V4, v4: a.v4 | other.v4}, nil
	}
	ret := Addr{ver: V6}
	for i := range a.v6 {
		ret.v6[i] = a.v6[i] | other.v6[i]
	}
	return ret, nil
}

// Not returns the bitwise complement of the address.
func (a Addr) Not() Addr {
	switch a.ver {
	case V4:
		return Addr{ver: V4, v4: ^a.v4}
	case V6:
		ret := Addr{ver: V6}
		for i := range a.v6 {
			ret.v6[i] = ^a.v6[i]
		}
		return ret
	default:
		return a
	}
}

// NetmaskFromPrefixLen builds a netmask of the given family.
//
// IPv4 rejects prefix length 0: an all-zero IPv4 netmask has never been a
// valid tunnel address mask here, so /0 must go through the route-side
// AddrMaskPair.RoutePrefixLen path instead. IPv6 accepts the full [0,128]
// range.
func NetmaskFromPrefixLen(ver Version, prefixLen int) (Addr, error) {
	switch ver {
	case V4:
		if prefixLen < 1 || prefixLen > 32 {
			return Addr{}, errors.Newf(errors.ErrCodeParse, "bad IPv4 prefix length %d", prefixLen)
		}
		return Addr{ver: V4, v4: v4NetmaskUnchecked(prefixLen)}, nil
	case V6:
		if prefixLen < 0 || prefixLen > 128 {
			return Addr{}, errors.Newf(errors.ErrCodeParse, "bad IPv6 prefix length %d", prefixLen)
		}
		return Addr{ver: V6, v6: v6NetmaskUnchecked(prefixLen)}, nil
	default:
		return Addr{}, errors.New(errors.ErrCodeParse, "netmask requested for address without a family")
	}
}

func v4NetmaskUnchecked(prefixLen int) uint32 {
	if prefixLen >= 32 {
		return ^uint32(0)
	}
	return ^(uint32(1)<<(32-prefixLen) - 1)
}

func v6NetmaskUnchecked(prefixLen int) [16]byte {
	var m [16]byte
	for i := 0; i < prefixLen/8; i++ {
		m[i] = 0xff
	}
	if rem := prefixLen % 8; rem != 0 {
		m[prefixLen/8] = ^byte(0xff >> rem)
	}
	return m
}

// PrefixLen converts a netmask to its prefix length via binary search over
// the candidate lengths, rejecting any value that is not a contiguous run of
// leading one-bits.
func (a Addr) PrefixLen() (int, error) {
	switch a.ver {
	case V4:
		if a.v4 == ^uint32(0) {
			return 32, nil
		}
		low, high := 1, 32
		for i := 0; i < 5; i++ {
			mid := (high + low) / 2
			test := v4NetmaskUnchecked(mid)
			if a.v4 == test {
				return mid, nil
			} else if a.v4 > test {
				low = mid
			} else {
				high = mid
			}
		}
		return 0, errors.Newf(errors.ErrCodeParse, "malformed IPv4 netmask %s", a)
	case V6:
		allOnes := true
		for _, b := range a.v6 {
			if b != 0xff {
				allOnes = false
				break
			}
		}
		if allOnes {
			return 128, nil
		}
		if a.v6 == [16]byte{} {
			return 0, nil
		}
		low, high := 1, 128
		for i := 0; i < 7; i++ {
			mid := (high + low) / 2
			test := v6NetmaskUnchecked(mid)
			switch bytes.Compare(a.v6[:], test[:]) {
			case 0:
				return mid, nil
			case 1:
				low = mid
			default:
				high = mid
			}
		}
		return 0, errors.Newf(errors.ErrCodeParse, "malformed IPv6 netmask %s", a)
	default:
		return 0, errors.New(errors.ErrCodeParse, "prefix length of address without a family")
	}
}
