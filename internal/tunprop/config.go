package tunprop

import "github.com/ovpnclient/tunprop/internal/addr"

// RemoteList exposes the cached addresses of previously observed servers,
// used for remote-bypass exclusion so reconnection attempts are not routed
// into the tunnel they are trying to re-establish.
type RemoteList interface {
	CachedIPAddressList() []addr.Addr
}

// StaticRemoteList is a fixed RemoteList, handy for profiles and tests.
type StaticRemoteList []addr.Addr

// CachedIPAddressList implements RemoteList.
func (l StaticRemoteList) CachedIPAddressList() []addr.Addr {
	return l
}

// Config is the immutable per-session input to a configuration pass.
type Config struct {
	// SessionName is applied to the builder when non-empty.
	SessionName string

	// MTU is applied to the builder when non-zero.
	MTU int

	// GoogleDNSFallback registers 8.8.8.8/8.8.4.4 when full-tunnel IPv4
	// redirection is active and the server pushed no DNS server.
	GoogleDNSFallback bool

	// RemoteList plus RemoteBypass preconfigure exclusion routes for cached
	// server addresses other than the active one. The active server address
	// is never excluded here since redirect-gateway handling already keeps a
	// pathway for it.
	RemoteList   RemoteList
	RemoteBypass bool
}

// State is the resulting local tunnel state of a successful configuration
// pass. It is owned by the caller and written exactly once; the engine never
// reads it back.
type State struct {
	// IfaceName is filled by the builder/platform layer, not by this engine.
	IfaceName string

	VPNIPv4 addr.Addr
	VPNIPv6 addr.Addr

	// TunPrefix reports whether the builder applies its own address/route
	// prefix semantics.
	TunPrefix bool
}
