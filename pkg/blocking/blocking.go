// pkg/blocking/blocking.go - target process detection, matching rules similar to Munki's blocking applications

package blocking

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/windowsadmins/deploywrap/pkg/logging"
)

// Inspector answers whether a named process is currently running. A blank
// name and any lookup failure both report "not running" - the caller never
// distinguishes the two.
type Inspector interface {
	IsRunning(name string) bool
}

// ProcessInspector inspects the live process table via gopsutil.
type ProcessInspector struct{}

// NewProcessInspector returns an Inspector backed by the OS process table.
func NewProcessInspector() *ProcessInspector {
	return &ProcessInspector{}
}

// IsRunning checks if a process with the given name is currently running.
// The name may be a bare process name, an image name with .exe, or a full
// executable path.
func (ProcessInspector) IsRunning(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}

	logging.Debug("Checking if target process is running", "process", name)

	processes, err := process.Processes()
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return false
	}

	for _, proc := range processes {
		procName, err := proc.Name()
		if err != nil {
			continue
		}

		if isExactPath(name) {
			exe, err := proc.Exe()
			if err != nil {
				continue
			}
			if strings.EqualFold(exe, name) {
				logging.Debug("Found running process by exact path", "process", name, "exe", exe)
				return true
			}
			continue
		}

		if nameMatches(name, procName) {
			logging.Debug("Found running process by name", "process", name, "matched", procName)
			return true
		}
	}

	logging.Debug("Target process not found running", "process", name)
	return false
}

// isExactPath reports whether the target looks like a full executable path
// rather than an image name.
func isExactPath(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "/") || strings.Contains(lower, ":\\")
}

// nameMatches compares a target name against a process image name.
// Matching patterns follow Munki:
//   - "teams.exe" matches the image name exactly (case-insensitive)
//   - "teams" matches either "teams" or "teams.exe"
func nameMatches(target, procName string) bool {
	target = strings.ToLower(target)
	procName = strings.ToLower(procName)

	if strings.HasSuffix(target, ".exe") {
		return procName == target
	}
	return procName == target || procName == target+".exe"
}
