package netcfg

import (
	"fmt"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/ovpnclient/tunprop/internal/log"
)

const resolvConfTemplate = `# Generated by tunprop - do not edit
{{servers}}{{search}}`

const resolvConfBackupSuffix = ".tunprop-orig"

// RenderResolvConf produces resolver configuration for the pushed DNS
// servers and search domains.
func RenderResolvConf(servers, searchDomains []string) string {
	var serverLines strings.Builder
	for _, s := range servers {
		serverLines.WriteString(fmt.Sprintf("nameserver %s\n", s))
	}

	search := ""
	if len(searchDomains) > 0 {
		search = fmt.Sprintf("search %s\n", strings.Join(searchDomains, " "))
	}

	t := fasttemplate.New(resolvConfTemplate, "{{", "}}")
	return t.ExecuteString(map[string]interface{}{
		"servers": serverLines.String(),
		"search":  search,
	})
}

// WriteResolvConf backs up the current resolver configuration and replaces
// it. The backup is only taken once so repeated passes do not clobber the
// original.
func WriteResolvConf(path string, servers, searchDomains []string) error {
	backup := path + resolvConfBackupSuffix
	if _, err := os.Stat(backup); os.IsNotExist(err) {
		if original, err := os.ReadFile(path); err == nil {
			if err := os.WriteFile(backup, original, 0644); err != nil {
				return fmt.Errorf("failed to back up %s: %w", path, err)
			}
		}
	}

	content := RenderResolvConf(servers, searchDomains)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Debugf("Wrote %d DNS server(s) to %s", len(servers), path)
	return nil
}

// RestoreResolvConf puts the backed-up resolver configuration back. Missing
// backup means nothing was ever written.
func RestoreResolvConf(path string) error {
	backup := path + resolvConfBackupSuffix
	original, err := os.ReadFile(backup)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", backup, err)
	}
	if err := os.WriteFile(path, original, 0644); err != nil {
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}
	return os.Remove(backup)
}
