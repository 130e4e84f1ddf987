// cmd/deploywrap/main.go

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/deploywrap/pkg/blocking"
	"github.com/windowsadmins/deploywrap/pkg/config"
	"github.com/windowsadmins/deploywrap/pkg/deploy"
	"github.com/windowsadmins/deploywrap/pkg/invoker"
	"github.com/windowsadmins/deploywrap/pkg/logging"
	"github.com/windowsadmins/deploywrap/pkg/session"
	"github.com/windowsadmins/deploywrap/pkg/toolkit"
	"github.com/windowsadmins/deploywrap/pkg/utils"
	"github.com/windowsadmins/deploywrap/pkg/version"
)

var logger *logging.Logger

// exitWith flushes the log file before terminating with the given code.
func exitWith(code int) {
	logging.CloseLogger()
	os.Exit(code)
}

func main() {
	utils.PatchWindowsArgs()

	// Define command-line flags.
	install := pflag.Bool("install", false, "Perform an installation.")
	uninstall := pflag.Bool("uninstall", false, "Perform an uninstallation (mutually exclusive with --install).")
	targetProcess := pflag.String("targetprocess", "", "Process name to check before deploying (extension optional).")
	doNotDisturb := pflag.Bool("donotdisturb", false, "Defer the deployment if the target process is running.")
	forceInteractive := pflag.Bool("forceinteractive", false, "Run interactively even if the target process is not running.")
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	// Count the number of -v flags.
	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv)")
	pflag.Parse()

	// Load configuration (only once)
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Raise the log level based on the number of -v flags.
	if verbosity > 0 {
		cfg.Verbose = true
		cfg.LogLevel = "INFO"
	}
	if verbosity >= 2 {
		cfg.Debug = true
	}

	// Initialize logger.
	logger = logging.New(verbosity > 0)
	if err := logging.Init(cfg); err != nil {
		logger.Fatal("Error initializing logger: %v", err)
	}
	defer logging.CloseLogger()

	// Handle --version flag.
	if *versionFlag {
		version.Print()
		exitWith(0)
	}

	// Show configuration if requested.
	if *showConfig {
		if cfgYaml, err := yaml.Marshal(cfg); err == nil {
			logger.Printf("Current configuration:\n%s", string(cfgYaml))
		}
		exitWith(0)
	}

	req := deploy.Request{
		TargetProcess:    *targetProcess,
		Install:          *install,
		Uninstall:        *uninstall,
		DoNotDisturb:     *doNotDisturb,
		ForceInteractive: *forceInteractive,
	}

	decision, err := deploy.ResolveWith(req, blocking.NewProcessInspector())
	if err != nil {
		var conflict deploy.ConflictError
		var deferred deploy.DeferredError
		switch {
		case errors.As(err, &conflict):
			logger.Error("Conflicting flags: --install and --uninstall are mutually exclusive")
			pflag.Usage()
		case errors.As(err, &deferred):
			// Expected outcome, not a fault: the orchestrator retries later.
			logging.Warn("Deployment deferred",
				"process", deferred.TargetProcess,
				"user_idle", session.IdleTime().Round(time.Second).String())
		default:
			logging.Error("Failed to resolve deployment mode", "error", err)
		}
		exitWith(deploy.ExitCode(err))
	}

	// Warn early when the toolkit is missing or outdated; the invocation
	// itself still runs and fails closed.
	if err := toolkit.Locate(cfg); err != nil {
		logging.Warn("Toolkit check failed", "error", err)
	} else {
		toolkit.CheckVersion(cfg)
	}

	fmt.Printf("DeploymentType: %s, DeployMode: %s, TargetProcess: %s\n",
		decision.DeploymentType, decision.DeployMode, req.TargetProcess)
	logging.Info("Resolved deployment decision",
		"deployment_type", decision.DeploymentType,
		"deploy_mode", decision.DeployMode,
		"target_process", req.TargetProcess)

	result := invoker.NewPSADT(cfg).Invoke(decision.DeploymentType, decision.DeployMode)

	fmt.Printf("Toolkit exit code: %d\n", result.ExitCode)
	exitWith(result.ExitCode)
}
