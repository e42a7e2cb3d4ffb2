// Package config loads and validates TOML session profiles and converts them
// into the inputs of a configuration pass.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ovpnclient/tunprop/internal/addr"
	"github.com/ovpnclient/tunprop/internal/errors"
	"github.com/ovpnclient/tunprop/internal/log"
	"github.com/ovpnclient/tunprop/internal/options"
	"github.com/ovpnclient/tunprop/internal/tunprop"
)

const defaultResolvConf = "/etc/resolv.conf"

// LoadProfile reads and parses a profile file. Parse errors are reported with
// their position in the file.
func LoadProfile(path string) (*Profile, error) {
	profileFile := filepath.Clean(path)

	if !filepath.IsAbs(profileFile) {
		abs, err := filepath.Abs(profileFile)
		if err != nil {
			return nil, errors.NewConfigError("failed to get absolute profile path", err)
		}
		profileFile = abs
	}

	content, err := os.ReadFile(profileFile)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read profile %s", profileFile), err)
	}

	var profile Profile
	if err := toml.Unmarshal(content, &profile); err != nil {
		var derr *toml.DecodeError
		if stderrors.As(err, &derr) {
			log.Errorf(derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, errors.New(errors.ErrCodeConfig, "failed to parse profile")
		}
		return nil, errors.NewConfigError("failed to parse profile", err)
	}

	profile.absPath = profileFile
	applyDefaults(&profile)

	log.Debugf("Profile path: %s", profileFile)
	return &profile, nil
}

func applyDefaults(p *Profile) {
	if p.Network == nil {
		p.Network = &NetworkConfig{}
	}
	if p.Network.ResolvConf == "" {
		p.Network.ResolvConf = defaultResolvConf
	}
}

// Serialize encodes the profile back to TOML.
func (p *Profile) Serialize() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return &buf, nil
}

// Dir returns the directory containing the profile file. Relative paths
// inside the profile resolve against it.
func (p *Profile) Dir() string {
	return filepath.Dir(p.absPath)
}

// ServerAddr parses the connected server address.
func (p *Profile) ServerAddr() (addr.Addr, error) {
	return addr.FromString(p.Session.Server, "server")
}

// SessionConfig converts the profile into the engine's session config.
func (p *Profile) SessionConfig() (*tunprop.Config, error) {
	cfg := &tunprop.Config{
		SessionName:       p.Session.Name,
		MTU:               p.Session.MTU,
		GoogleDNSFallback: p.Session.GoogleDNSFallback,
	}
	if p.Remotes != nil {
		remotes := make(tunprop.StaticRemoteList, 0, len(p.Remotes.Addresses))
		for _, s := range p.Remotes.Addresses {
			a, err := addr.FromString(s, "remotes.addresses")
			if err != nil {
				return nil, err
			}
			remotes = append(remotes, a)
		}
		cfg.RemoteList = remotes
		cfg.RemoteBypass = p.Remotes.Bypass
	}
	return cfg, nil
}

// DirectiveList loads the pushed directives named by the profile, either
// from the referenced file or from the inline block.
func (p *Profile) DirectiveList() (options.OptionList, error) {
	if p.Options == nil {
		return nil, errors.New(errors.ErrCodeConfig, "profile has no options section")
	}
	if p.Options.Inline != "" {
		return options.Parse(p.Options.Inline)
	}

	file := p.Options.File
	if !filepath.IsAbs(file) {
		file = filepath.Join(p.Dir(), file)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read options file %s", file), err)
	}
	return options.Parse(string(content))
}
