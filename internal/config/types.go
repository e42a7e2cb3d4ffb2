package config

// Profile is the on-disk session profile. It carries everything a
// configuration pass needs besides the pushed directives themselves: session
// identity, fallback policy, the cached server addresses for remote bypass
// and the platform settings of the network applier.
type Profile struct {
	// Session holds per-session tunnel parameters.
	Session *SessionConfig `toml:"session" json:"session"`
	// Remotes lists cached server addresses used for bypass exclusions.
	Remotes *RemotesConfig `toml:"remotes" json:"remotes,omitempty"`
	// Options points at the pushed directive input.
	Options *OptionsConfig `toml:"options" json:"options"`
	// Network holds settings of the platform network applier.
	Network *NetworkConfig `toml:"network" json:"network,omitempty"`

	absPath string
}

type SessionConfig struct {
	// Name is applied as the session name when non-empty.
	Name string `toml:"name" json:"name"`
	// MTU is applied to the tunnel interface when non-zero.
	MTU int `toml:"mtu" json:"mtu" validate:"eq=0|gte=68,lte=65535"`
	// GoogleDNSFallback registers public Google resolvers when full-tunnel
	// redirection is active and the server pushed no DNS server.
	GoogleDNSFallback bool `toml:"google_dns_fallback" json:"google_dns_fallback"`
	// Server is the address of the connected server, used for bypass host
	// routes when exclusion is emulated.
	Server string `toml:"server" json:"server" validate:"required,ip"`
}

type RemotesConfig struct {
	// Bypass enables exclusion routes for every cached address except the
	// connected server.
	Bypass bool `toml:"bypass" json:"bypass"`
	// Addresses are the cached server addresses.
	Addresses []string `toml:"addresses" json:"addresses" validate:"dive,ip"`
}

type OptionsConfig struct {
	// File is a path to a pushed directive file, one directive per line.
	File string `toml:"file,omitempty" json:"file,omitempty"`
	// Inline embeds the directives directly in the profile. Exactly one of
	// File and Inline must be set.
	Inline string `toml:"inline,omitempty" json:"inline,omitempty"`
}

type NetworkConfig struct {
	// Interface is the tunnel interface the applier configures.
	Interface string `toml:"interface" json:"interface"`
	// ResolvConf is the resolver configuration file rewritten with pushed
	// DNS servers and search domains (default: /etc/resolv.conf).
	ResolvConf string `toml:"resolv_conf" json:"resolv_conf"`
	// RouteMetric is the metric assigned to installed routes.
	RouteMetric int `toml:"route_metric" json:"route_metric" validate:"gte=0"`
	// EmulateExcludeRoutes carves exclusions out of the default route
	// instead of relying on more-specific bypass routes.
	EmulateExcludeRoutes bool `toml:"emulate_exclude_routes" json:"emulate_exclude_routes"`
}
