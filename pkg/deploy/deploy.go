// pkg/deploy/deploy.go - deployment type and mode resolution for PSADT runs.

package deploy

import "fmt"

// DeploymentType selects the toolkit action.
type DeploymentType string

const (
	TypeInstall   DeploymentType = "Install"
	TypeUninstall DeploymentType = "Uninstall"
)

// DeployMode selects how visible the toolkit run is to the user.
type DeployMode string

const (
	ModeInteractive DeployMode = "Interactive"
	ModeSilent      DeployMode = "Silent"
)

// Exit codes reported to the orchestrator. ExitDeferred is the PSADT
// deferral sentinel Intune treats as "retry later", not a failure.
const (
	ExitConflictingFlags = 1
	ExitDeferred         = 60012
)

// Request carries the flag-driven inputs for a single run.
type Request struct {
	TargetProcess    string
	Install          bool
	Uninstall        bool
	DoNotDisturb     bool
	ForceInteractive bool
}

// Decision is the resolved deployment type and mode. Computed once per run.
type Decision struct {
	DeploymentType DeploymentType
	DeployMode     DeployMode
}

// ConflictError reports that both install and uninstall were requested.
type ConflictError struct{}

func (ConflictError) Error() string {
	return "conflicting flags: install and uninstall are mutually exclusive"
}

// ExitCode returns the process exit code for conflicting flags.
func (ConflictError) ExitCode() int { return ExitConflictingFlags }

// DeferredError reports that the target process is in use and the run must
// not disturb the user. The orchestrator is expected to retry later.
type DeferredError struct {
	TargetProcess string
}

func (e DeferredError) Error() string {
	return fmt.Sprintf("deployment deferred: %s is running and do-not-disturb is set", e.TargetProcess)
}

// ExitCode returns the deferral sentinel exit code.
func (DeferredError) ExitCode() int { return ExitDeferred }

// Resolve applies the decision rules in order and returns the deployment
// type and mode for the run. It is side-effect free: the same request and
// process state always yield the same decision.
//
// Rules:
//  1. install and uninstall together are a fatal input error
//  2. a running target process plus do-not-disturb defers the run
//  3. the type is Uninstall only when the uninstall flag is set
//  4. the mode is Interactive when the process is running or interactivity
//     is forced, otherwise Silent
//
// Rule 4 is uniform across install and uninstall. During uninstalls the
// target process is usually gone, so forced interactivity is rarely visible
// there, but that is a consequence of rule 4, not a separate rule.
func Resolve(req Request, processRunning bool) (Decision, error) {
	if req.Install && req.Uninstall {
		return Decision{}, ConflictError{}
	}

	if processRunning && req.DoNotDisturb {
		return Decision{}, DeferredError{TargetProcess: req.TargetProcess}
	}

	decision := Decision{
		DeploymentType: TypeInstall,
		DeployMode:     ModeSilent,
	}
	if req.Uninstall {
		decision.DeploymentType = TypeUninstall
	}
	if processRunning || req.ForceInteractive {
		decision.DeployMode = ModeInteractive
	}

	return decision, nil
}

// ProcessInspector answers whether a named process is running. Satisfied by
// blocking.ProcessInspector.
type ProcessInspector interface {
	IsRunning(name string) bool
}

// ResolveWith validates the request before touching the process table: a
// conflicting request fails without a lookup. Otherwise it performs a single
// fresh lookup and delegates to Resolve.
func ResolveWith(req Request, inspector ProcessInspector) (Decision, error) {
	if req.Install && req.Uninstall {
		return Decision{}, ConflictError{}
	}
	return Resolve(req, inspector.IsRunning(req.TargetProcess))
}

// ExitCode maps a resolution error to its process exit code. Errors that do
// not carry a code map to ExitConflictingFlags as a generic input error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		return coder.ExitCode()
	}
	return ExitConflictingFlags
}
