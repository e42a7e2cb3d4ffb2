package commands

import (
	"os"
	"path/filepath"
	"testing"
)

const testProfile = `
[session]
name = "cli-test"
server = "203.0.113.7"

[options]
inline = """
topology subnet
ifconfig 10.8.0.5 255.255.255.0
route 10.10.0.0 255.255.0.0
dhcp-option DNS 172.16.0.23
"""
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestApplyCommand_DryRun(t *testing.T) {
	ctx := &AppContext{ProfilePath: writeProfile(t, testProfile)}

	cmd := CreateApplyCommand()
	if cmd.Name() != "apply" {
		t.Errorf("Name = %q", cmd.Name())
	}
	if err := cmd.Init([]string{"-dry-run"}, ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestApplyCommand_MissingProfile(t *testing.T) {
	ctx := &AppContext{ProfilePath: filepath.Join(t.TempDir(), "nope.toml")}

	cmd := CreateApplyCommand()
	if err := cmd.Init([]string{"-dry-run"}, ctx); err == nil {
		t.Fatalf("Init must fail for a missing profile")
	}
}

func TestApplyCommand_NoInterface(t *testing.T) {
	ctx := &AppContext{ProfilePath: writeProfile(t, testProfile)}

	cmd := CreateApplyCommand()
	if err := cmd.Init(nil, ctx); err == nil {
		t.Fatalf("Init without -dry-run must require an interface")
	}
}

func TestApplyCommand_IfaceOverride(t *testing.T) {
	ctx := &AppContext{ProfilePath: writeProfile(t, testProfile)}

	cmd := CreateApplyCommand()
	if err := cmd.Init([]string{"-iface", "tun7", "-dry-run"}, ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if cmd.profile.Network.Interface != "tun7" {
		t.Errorf("Interface = %q, want tun7", cmd.profile.Network.Interface)
	}
}

func TestApplyCommand_OptionsFileOverride(t *testing.T) {
	dir := t.TempDir()
	optionsPath := filepath.Join(dir, "pushed.txt")
	if err := os.WriteFile(optionsPath, []byte("ifconfig 10.0.0.1 10.0.0.2\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ctx := &AppContext{ProfilePath: writeProfile(t, testProfile)}

	cmd := CreateApplyCommand()
	if err := cmd.Init([]string{"-options", optionsPath, "-dry-run"}, ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestApplyCommand_BadDirectives(t *testing.T) {
	profile := `
[session]
server = "203.0.113.7"

[options]
inline = "route 10.0.0.0 255.0.0.0"
`
	ctx := &AppContext{ProfilePath: writeProfile(t, profile)}

	cmd := CreateApplyCommand()
	if err := cmd.Init([]string{"-dry-run"}, ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatalf("Run must fail when no ifconfig directive is pushed")
	}
}
