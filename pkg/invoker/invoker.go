// pkg/invoker/invoker.go - launching the PSADT executable with the resolved type and mode.

package invoker

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/windowsadmins/deploywrap/pkg/config"
	"github.com/windowsadmins/deploywrap/pkg/deploy"
	"github.com/windowsadmins/deploywrap/pkg/logging"
	"github.com/windowsadmins/deploywrap/pkg/session"
)

// Result is the outcome of a toolkit invocation. When the command could not
// be started at all, LaunchError carries the failure message and ExitCode is
// zero (indeterminate) - the invoker never propagates launch failures as
// faults.
type Result struct {
	ExitCode    int
	Output      string
	LaunchError string
}

// Invoker runs the deployment toolkit with a resolved type and mode.
type Invoker interface {
	Invoke(deploymentType deploy.DeploymentType, deployMode deploy.DeployMode) Result
}

// runnerFunc executes a command and returns its combined output, exit code,
// and a launch error when the process could not be started.
type runnerFunc func(command string, args []string) (string, int, error)

// PSADT invokes Invoke-AppDeployToolkit.exe, wrapped in ServiceUI when the
// run is interactive and a console user is logged on.
type PSADT struct {
	cfg        *config.Configuration
	hasSession func() bool
	run        runnerFunc
}

// NewPSADT returns an Invoker for the configured toolkit paths.
func NewPSADT(cfg *config.Configuration) *PSADT {
	return &PSADT{
		cfg:        cfg,
		hasSession: session.HasActiveUser,
		run:        runCMD,
	}
}

// Invoke runs the toolkit and waits for it to exit. No timeout is imposed;
// the toolkit owns its own execution time.
func (p *PSADT) Invoke(deploymentType deploy.DeploymentType, deployMode deploy.DeployMode) Result {
	command, args := p.commandLine(deploymentType, deployMode)
	logging.Info("Invoking deployment toolkit", "command", command, "args", args)

	output, exitCode, err := p.run(command, args)
	if err != nil {
		// Fail closed: capture the launch failure, report it, and let the
		// run terminate with whatever code is available.
		logging.Error("Failed to launch deployment toolkit", "command", command, "error", err)
		return Result{ExitCode: exitCode, Output: output, LaunchError: err.Error()}
	}

	logging.Info("Deployment toolkit completed", "exit_code", exitCode)
	return Result{ExitCode: exitCode, Output: output}
}

// commandLine assembles the command and arguments for the run. Interactive
// runs with a logged-on console user go through ServiceUI so the toolkit UI
// reaches the active session; everything else calls the toolkit directly.
func (p *PSADT) commandLine(deploymentType deploy.DeploymentType, deployMode deploy.DeployMode) (string, []string) {
	toolkitArgs := []string{
		"-DeploymentType", string(deploymentType),
		"-DeployMode", string(deployMode),
	}

	if deployMode == deploy.ModeInteractive && p.hasSession() {
		args := append([]string{"-process:explorer.exe", p.cfg.ToolkitPath}, toolkitArgs...)
		return p.cfg.ServiceUIPath, args
	}
	return p.cfg.ToolkitPath, toolkitArgs
}

// runCMD executes a command and its arguments, hiding the child window.
func runCMD(command string, arguments []string) (string, int, error) {
	cmd := exec.Command(command, arguments...)

	// Hide window on Windows
	if runtime.GOOS == "windows" {
		cmd.SysProcAttr = &syscall.SysProcAttr{
			HideWindow: true,
		}
	}

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			// The toolkit ran and reported a code; that is a delegated
			// outcome, not a launch failure.
			return out.String(), exitErr.ExitCode(), nil
		}
		return out.String(), 0, fmt.Errorf("command execution failed: %w | stderr: %s", err, stderr.String())
	}
	return out.String(), 0, nil
}
