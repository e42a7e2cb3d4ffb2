package netcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderResolvConf(t *testing.T) {
	got := RenderResolvConf([]string{"172.16.0.23", "fd00::53"}, []string{"corp.example.com", "example.com"})

	want := "# Generated by tunprop - do not edit\n" +
		"nameserver 172.16.0.23\n" +
		"nameserver fd00::53\n" +
		"search corp.example.com example.com\n"
	if got != want {
		t.Errorf("RenderResolvConf =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderResolvConf_NoSearchDomains(t *testing.T) {
	got := RenderResolvConf([]string{"8.8.8.8"}, nil)
	if strings.Contains(got, "search") {
		t.Errorf("Unexpected search line:\n%s", got)
	}
}

func TestWriteRestoreResolvConf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolv.conf")
	original := "nameserver 192.168.1.1\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := WriteResolvConf(path, []string{"172.16.0.23"}, nil); err != nil {
		t.Fatalf("WriteResolvConf: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(content), "nameserver 172.16.0.23") {
		t.Errorf("Pushed server missing:\n%s", content)
	}

	// A second write must not overwrite the original backup.
	if err := WriteResolvConf(path, []string{"172.16.0.24"}, nil); err != nil {
		t.Fatalf("WriteResolvConf (second): %v", err)
	}

	if err := RestoreResolvConf(path); err != nil {
		t.Fatalf("RestoreResolvConf: %v", err)
	}
	content, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile after restore: %v", err)
	}
	if string(content) != original {
		t.Errorf("Restore = %q, want %q", content, original)
	}
	if _, err := os.Stat(path + resolvConfBackupSuffix); !os.IsNotExist(err) {
		t.Errorf("Backup file must be removed after restore")
	}
}

func TestRestoreResolvConf_NoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolv.conf")
	if err := RestoreResolvConf(path); err != nil {
		t.Errorf("RestoreResolvConf without backup must be a no-op, got %v", err)
	}
}
