package commands

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ovpnclient/tunprop/internal/config"
	"github.com/ovpnclient/tunprop/internal/dnscheck"
	"github.com/ovpnclient/tunprop/internal/emuexr"
	"github.com/ovpnclient/tunprop/internal/log"
	"github.com/ovpnclient/tunprop/internal/netcfg"
	"github.com/ovpnclient/tunprop/internal/tunprop"
)

const dnsCheckTimeout = 10 * time.Second

// tunnelBuilder is what apply needs on top of the engine's builder surface:
// staged-state commit, rollback, and visibility of the pushed DNS servers.
type tunnelBuilder interface {
	tunprop.TunBuilder
	DNSServers() []string
}

func CreateApplyCommand() *ApplyCommand {
	gc := &ApplyCommand{
		fs: flag.NewFlagSet("apply", flag.ExitOnError),
	}

	gc.fs.StringVar(&gc.Iface, "iface", "", "Tunnel interface to configure (overrides the profile)")
	gc.fs.BoolVar(&gc.DryRun, "dry-run", false, "Log the resulting configuration without touching the system")
	gc.fs.BoolVar(&gc.CheckDNS, "check-dns", false, "Probe the pushed DNS servers after configuring")
	gc.fs.StringVar(&gc.OptionsFile, "options", "", "Pushed directive file (overrides the profile)")

	return gc
}

// ApplyCommand interprets the profile's pushed directives and applies the
// resulting network configuration.
type ApplyCommand struct {
	fs      *flag.FlagSet
	profile *config.Profile

	Iface       string
	DryRun      bool
	CheckDNS    bool
	OptionsFile string
}

func (g *ApplyCommand) Name() string {
	return g.fs.Name()
}

func (g *ApplyCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	profile, err := loadAndValidateProfileOrFail(ctx.ProfilePath)
	if err != nil {
		return err
	}
	g.profile = profile

	if g.Iface != "" {
		g.profile.Network.Interface = g.Iface
	}
	if g.OptionsFile != "" {
		g.profile.Options.File = g.OptionsFile
		g.profile.Options.Inline = ""
	}

	if !g.DryRun && g.profile.Network.Interface == "" {
		return fmt.Errorf("no tunnel interface: set network.interface in the profile or pass -iface")
	}

	return nil
}

func (g *ApplyCommand) Run() error {
	opts, err := g.profile.DirectiveList()
	if err != nil {
		return err
	}
	serverAddr, err := g.profile.ServerAddr()
	if err != nil {
		return err
	}
	sessionCfg, err := g.profile.SessionConfig()
	if err != nil {
		return err
	}

	var factory tunprop.EmulateExcludeRouteFactory
	if g.profile.Network.EmulateExcludeRoutes {
		factory = emuexr.Factory{}
	}

	var tb tunnelBuilder
	if g.DryRun {
		log.Infof("Dry run: tracing configuration for server %s", serverAddr)
		tb = netcfg.NewTraceBuilder()
	} else {
		tb, err = newPlatformBuilder(g.profile.Network)
		if err != nil {
			return err
		}
	}

	state := &tunprop.State{IfaceName: g.profile.Network.Interface}
	if err := tunprop.Configure(tb, state, nil, serverAddr, sessionCfg, opts, factory, false); err != nil {
		rollback(tb)
		return fmt.Errorf("configuration failed: %v", err)
	}

	if err := commit(tb); err != nil {
		rollback(tb)
		return fmt.Errorf("failed to commit configuration: %v", err)
	}

	if !state.VPNIPv4.Unspecified() {
		log.Infof("Tunnel IPv4 address: %s", state.VPNIPv4)
	}
	if !state.VPNIPv6.Unspecified() {
		log.Infof("Tunnel IPv6 address: %s", state.VPNIPv6)
	}

	if g.CheckDNS {
		servers := tb.DNSServers()
		if len(servers) == 0 {
			log.Warnf("No DNS servers were pushed, skipping DNS check")
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), dnsCheckTimeout)
		defer cancel()
		if err := dnscheck.NewChecker().CheckAll(ctx, servers); err != nil {
			return fmt.Errorf("DNS check failed: %v", err)
		}
	}

	return nil
}

// committer is implemented by builders that stage part of their work.
type committer interface {
	Commit() error
}

// rollbacker is implemented by builders that can revert what they installed.
type rollbacker interface {
	Teardown() error
}

func commit(tb tunprop.TunBuilder) error {
	if c, ok := tb.(committer); ok {
		return c.Commit()
	}
	return nil
}

func rollback(tb tunprop.TunBuilder) {
	if r, ok := tb.(rollbacker); ok {
		if err := r.Teardown(); err != nil {
			log.Warnf("Rollback incomplete: %v", err)
		}
	}
}
