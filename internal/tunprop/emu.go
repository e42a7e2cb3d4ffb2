package tunprop

import "github.com/ovpnclient/tunprop/internal/addr"

// EmulateExcludeRoute approximates native route exclusion on platforms whose
// tunnel API cannot express it: it accumulates excluded routes during a
// configuration pass and finally emits an equivalent set of narrower include
// routes.
//
// One instance spans exactly one configuration pass and holds no state
// across sessions.
type EmulateExcludeRoute interface {
	// Enabled reports whether emulation applies: only meaningful when at
	// least one active family has redirect-gateway requested, since the
	// emulation carves exclusions out of a full-tunnel default route.
	Enabled(ipv IPVerFlags) bool

	// AddRoute records an inclusion (add=true) or exclusion (add=false).
	// The engine notifies the emulator of every add/exclude decision, even
	// for routes it also passed to the builder directly.
	AddRoute(add bool, a addr.Addr, prefixLen int)

	// Emulate is invoked once after all routing directives are processed
	// and installs the computed include set on the builder.
	Emulate(tb TunBuilder, ipv IPVerFlags, serverAddr addr.Addr) error
}

// EmulateExcludeRouteFactory constructs a fresh emulator per configuration
// pass. A nil factory means the builder's native exclusion is always used.
type EmulateExcludeRouteFactory interface {
	New() EmulateExcludeRoute
}
