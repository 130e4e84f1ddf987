// pkg/toolkit/toolkit.go - locating the PSADT installation and checking its version.

package toolkit

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	version "github.com/hashicorp/go-version"

	"github.com/windowsadmins/deploywrap/pkg/config"
	"github.com/windowsadmins/deploywrap/pkg/logging"
)

// moduleVersionPattern matches the ModuleVersion entry of a PowerShell
// module manifest, e.g. ModuleVersion = '4.0.5'
var moduleVersionPattern = regexp.MustCompile(`(?m)^\s*ModuleVersion\s*=\s*'([^']+)'`)

// Locate verifies the toolkit executable configured for this machine exists.
func Locate(cfg *config.Configuration) error {
	if _, err := os.Stat(cfg.ToolkitPath); err != nil {
		return fmt.Errorf("toolkit executable not found at %s: %w", cfg.ToolkitPath, err)
	}
	return nil
}

// InstalledVersion reads the PSADT module manifest next to the toolkit
// executable and returns its ModuleVersion.
func InstalledVersion(toolkitPath string) (string, error) {
	manifestPath := filepath.Join(filepath.Dir(toolkitPath), "PSAppDeployToolkit", "PSAppDeployToolkit.psd1")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("reading toolkit manifest %s: %w", manifestPath, err)
	}
	return ParseModuleVersion(data)
}

// ParseModuleVersion extracts the ModuleVersion value from manifest content.
func ParseModuleVersion(data []byte) (string, error) {
	m := moduleVersionPattern.FindSubmatch(data)
	if m == nil {
		return "", fmt.Errorf("no ModuleVersion entry in toolkit manifest")
	}
	return string(m[1]), nil
}

// MeetsMinimum reports whether the installed version satisfies the minimum.
func MeetsMinimum(installed, minimum string) (bool, error) {
	have, err := version.NewVersion(installed)
	if err != nil {
		return false, fmt.Errorf("parsing installed toolkit version %q: %w", installed, err)
	}
	want, err := version.NewVersion(minimum)
	if err != nil {
		return false, fmt.Errorf("parsing minimum toolkit version %q: %w", minimum, err)
	}
	return have.GreaterThanOrEqual(want), nil
}

// CheckVersion logs a warning when the installed toolkit is older than the
// configured minimum. Never fatal: an old toolkit still gets invoked, the
// warning is for the admin reading the log.
func CheckVersion(cfg *config.Configuration) {
	if cfg.MinToolkitVersion == "" {
		return
	}

	installed, err := InstalledVersion(cfg.ToolkitPath)
	if err != nil {
		logging.Debug("Could not determine toolkit version", "error", err)
		return
	}

	ok, err := MeetsMinimum(installed, cfg.MinToolkitVersion)
	if err != nil {
		logging.Debug("Could not compare toolkit versions", "error", err)
		return
	}
	if !ok {
		logging.Warn("Installed toolkit is older than the supported minimum",
			"installed", installed, "minimum", cfg.MinToolkitVersion)
		return
	}
	logging.Debug("Toolkit version check passed", "installed", installed)
}
