package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ovpnclient/tunprop/internal/api"
	"github.com/ovpnclient/tunprop/internal/log"
)

const shutdownTimeout = 10 * time.Second

// serveEnv is the environment configuration of the API server. Every field
// can be overridden with a TUNPROP_-prefixed variable.
type serveEnv struct {
	Listen string `default:"127.0.0.1:8321"`
}

func CreateServeCommand() *ServeCommand {
	gc := &ServeCommand{
		fs: flag.NewFlagSet("serve", flag.ExitOnError),
	}

	gc.fs.StringVar(&gc.Listen, "listen", "", "API listen address (overrides TUNPROP_LISTEN)")

	return gc
}

// ServeCommand runs the HTTP API server.
type ServeCommand struct {
	fs *flag.FlagSet

	Listen      string
	profilePath string
}

func (g *ServeCommand) Name() string {
	return g.fs.Name()
}

func (g *ServeCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	// The profile is loaded per request, but fail early on a broken one.
	if _, err := loadAndValidateProfileOrFail(ctx.ProfilePath); err != nil {
		return err
	}
	g.profilePath = ctx.ProfilePath

	if g.Listen == "" {
		var env serveEnv
		if err := envconfig.Process("tunprop", &env); err != nil {
			return err
		}
		g.Listen = env.Listen
	}

	return nil
}

func (g *ServeCommand) Run() error {
	server := api.NewServer(g.profilePath, g.Listen)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		return err
	}
	return <-errCh
}
