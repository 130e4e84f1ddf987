package deploy

import (
	"errors"
	"testing"
)

func TestResolve_ConflictingFlagsAlwaysFail(t *testing.T) {
	// Conflict wins regardless of every other input.
	for _, running := range []bool{false, true} {
		for _, dnd := range []bool{false, true} {
			for _, force := range []bool{false, true} {
				req := Request{
					TargetProcess:    "outlook",
					Install:          true,
					Uninstall:        true,
					DoNotDisturb:     dnd,
					ForceInteractive: force,
				}
				_, err := Resolve(req, running)
				var conflict ConflictError
				if !errors.As(err, &conflict) {
					t.Errorf("Resolve(%+v, running=%t) err = %v, want ConflictError", req, running, err)
				}
				if ExitCode(err) != ExitConflictingFlags {
					t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitConflictingFlags)
				}
			}
		}
	}
}

func TestResolve_DoNotDisturbDefersWhenRunning(t *testing.T) {
	// Deferral wins regardless of install/uninstall/forceInteractive.
	cases := []Request{
		{TargetProcess: "outlook", Install: true, DoNotDisturb: true},
		{TargetProcess: "outlook", Uninstall: true, DoNotDisturb: true},
		{TargetProcess: "outlook", Install: true, DoNotDisturb: true, ForceInteractive: true},
		{TargetProcess: "outlook", DoNotDisturb: true},
	}
	for _, req := range cases {
		_, err := Resolve(req, true)
		var deferred DeferredError
		if !errors.As(err, &deferred) {
			t.Errorf("Resolve(%+v, running) err = %v, want DeferredError", req, err)
			continue
		}
		if deferred.TargetProcess != "outlook" {
			t.Errorf("DeferredError.TargetProcess = %q, want %q", deferred.TargetProcess, "outlook")
		}
		if ExitCode(err) != ExitDeferred {
			t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitDeferred)
		}
	}
}

func TestResolve_DoNotDisturbProceedsWhenNotRunning(t *testing.T) {
	req := Request{TargetProcess: "outlook", Install: true, DoNotDisturb: true}
	decision, err := Resolve(req, false)
	if err != nil {
		t.Fatalf("Resolve returned %v, want success", err)
	}
	if decision.DeploymentType != TypeInstall || decision.DeployMode != ModeSilent {
		t.Errorf("decision = %+v, want {Install Silent}", decision)
	}
}

func TestResolve_TypeFollowsUninstallFlagOnly(t *testing.T) {
	for _, running := range []bool{false, true} {
		for _, force := range []bool{false, true} {
			decision, err := Resolve(Request{Uninstall: true, ForceInteractive: force}, running)
			if err != nil {
				t.Fatalf("Resolve returned %v", err)
			}
			if decision.DeploymentType != TypeUninstall {
				t.Errorf("DeploymentType = %s, want Uninstall", decision.DeploymentType)
			}

			decision, err = Resolve(Request{Install: true, ForceInteractive: force}, running)
			if err != nil {
				t.Fatalf("Resolve returned %v", err)
			}
			if decision.DeploymentType != TypeInstall {
				t.Errorf("DeploymentType = %s, want Install", decision.DeploymentType)
			}

			// Neither flag set defaults to Install.
			decision, err = Resolve(Request{ForceInteractive: force}, running)
			if err != nil {
				t.Fatalf("Resolve returned %v", err)
			}
			if decision.DeploymentType != TypeInstall {
				t.Errorf("DeploymentType = %s, want Install default", decision.DeploymentType)
			}
		}
	}
}

func TestResolve_ModeIsInteractiveIffRunningOrForced(t *testing.T) {
	cases := []struct {
		running bool
		force   bool
		want    DeployMode
	}{
		{false, false, ModeSilent},
		{true, false, ModeInteractive},
		{false, true, ModeInteractive},
		{true, true, ModeInteractive},
	}
	for _, tc := range cases {
		for _, uninstall := range []bool{false, true} {
			req := Request{Uninstall: uninstall, ForceInteractive: tc.force}
			decision, err := Resolve(req, tc.running)
			if err != nil {
				t.Fatalf("Resolve returned %v", err)
			}
			if decision.DeployMode != tc.want {
				t.Errorf("running=%t force=%t uninstall=%t: DeployMode = %s, want %s",
					tc.running, tc.force, uninstall, decision.DeployMode, tc.want)
			}
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	req := Request{TargetProcess: "teams", Install: true, ForceInteractive: true}
	first, err1 := Resolve(req, true)
	second, err2 := Resolve(req, true)
	if err1 != nil || err2 != nil {
		t.Fatalf("Resolve returned errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Errorf("repeated Resolve differs: %+v vs %+v", first, second)
	}
}

func TestResolve_Scenarios(t *testing.T) {
	cases := []struct {
		name    string
		req     Request
		running bool
		want    Decision
	}{
		{
			name:    "silent install when process not running",
			req:     Request{TargetProcess: "outlook", Install: true},
			running: false,
			want:    Decision{TypeInstall, ModeSilent},
		},
		{
			name:    "interactive install when process running",
			req:     Request{TargetProcess: "outlook", Install: true},
			running: true,
			want:    Decision{TypeInstall, ModeInteractive},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := Resolve(tc.req, tc.running)
			if err != nil {
				t.Fatalf("Resolve returned %v", err)
			}
			if decision != tc.want {
				t.Errorf("decision = %+v, want %+v", decision, tc.want)
			}
		})
	}
}

// countingInspector records lookups so tests can assert none happened.
type countingInspector struct {
	running bool
	calls   int
}

func (c *countingInspector) IsRunning(string) bool {
	c.calls++
	return c.running
}

func TestResolveWith_ConflictSkipsProcessLookup(t *testing.T) {
	inspector := &countingInspector{running: true}
	_, err := ResolveWith(Request{Install: true, Uninstall: true, TargetProcess: "outlook"}, inspector)
	var conflict ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if inspector.calls != 0 {
		t.Errorf("process lookup ran %d times, want 0", inspector.calls)
	}
}

func TestResolveWith_UninstallDeferredWhenBusy(t *testing.T) {
	inspector := &countingInspector{running: true}
	_, err := ResolveWith(Request{Uninstall: true, TargetProcess: "outlook", DoNotDisturb: true}, inspector)
	var deferred DeferredError
	if !errors.As(err, &deferred) {
		t.Fatalf("err = %v, want DeferredError", err)
	}
	if inspector.calls != 1 {
		t.Errorf("process lookup ran %d times, want 1", inspector.calls)
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", got)
	}
	if got := ExitCode(ConflictError{}); got != 1 {
		t.Errorf("ExitCode(ConflictError) = %d, want 1", got)
	}
	if got := ExitCode(DeferredError{TargetProcess: "x"}); got != 60012 {
		t.Errorf("ExitCode(DeferredError) = %d, want 60012", got)
	}
	if got := ExitCode(errors.New("other")); got != 1 {
		t.Errorf("ExitCode(generic) = %d, want 1", got)
	}
}
