//go:build linux

package commands

import (
	"github.com/ovpnclient/tunprop/internal/config"
	"github.com/ovpnclient/tunprop/internal/netcfg"
)

func newPlatformBuilder(network *config.NetworkConfig) (tunnelBuilder, error) {
	return netcfg.NewLinuxBuilder(network.Interface, network.ResolvConf, network.RouteMetric)
}
