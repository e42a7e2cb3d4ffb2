//go:build !linux

package commands

import (
	"fmt"
	"runtime"

	"github.com/ovpnclient/tunprop/internal/config"
)

func newPlatformBuilder(network *config.NetworkConfig) (tunnelBuilder, error) {
	return nil, fmt.Errorf("applying network configuration is not supported on %s, use -dry-run", runtime.GOOS)
}
