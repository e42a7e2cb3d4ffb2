// Package commands implements the CLI subcommands.
package commands

import (
	"fmt"

	"github.com/ovpnclient/tunprop/internal/config"
)

// Runner is one CLI subcommand.
type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

// AppContext carries the global flags shared by every subcommand.
type AppContext struct {
	ProfilePath string
	Verbose     bool
}

func loadAndValidateProfileOrFail(profilePath string) (*config.Profile, error) {
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %v", err)
	}

	if err = profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile validation failed: %v", err)
	}
	return profile, nil
}
