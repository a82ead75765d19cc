// Package preflight provides startup validation checks.
package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"time"

	psprocess "github.com/shirou/gopsutil/v3/process"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// Failed returns the first failed check, or nil.
func (r *Result) Failed() *Check {
	for i := range r.Checks {
		if !r.Checks[i].Passed {
			return &r.Checks[i]
		}
	}
	return nil
}

// env abstracts environment lookups for tests.
type env struct {
	getenv      func(string) string
	currentUser func() (*user.User, error)
	listPids    func(ctx context.Context) ([]int32, error)
}

func systemEnv() env {
	return env{
		getenv:      os.Getenv,
		currentUser: user.Current,
		listPids:    psprocess.PidsWithContext,
	}
}

// RunAll executes all preflight checks for the given daemon binary.
func RunAll(daemonPath string) *Result {
	return runAll(daemonPath, systemEnv())
}

func runAll(daemonPath string, e env) *Result {
	checks := []Check{
		checkDaemon(daemonPath),
		checkDisplay(e.getenv),
		checkUser(e.currentUser),
		checkProcessTable(e.listPids),
	}

	result := &Result{Checks: checks, Passed: true}
	for _, c := range checks {
		if !c.Passed {
			result.Passed = false
		}
	}
	return result
}

// checkDaemon verifies the daemon executable is on PATH.
func checkDaemon(path string) Check {
	found, err := exec.LookPath(path)
	if err != nil {
		return Check{
			Name:    "daemon",
			Passed:  false,
			Message: fmt.Sprintf("%s not found: %v", path, err),
		}
	}
	return Check{
		Name:    "daemon",
		Passed:  true,
		Message: fmt.Sprintf("found at %s", found),
	}
}

// checkDisplay warns when no graphical session is visible. The daemon would
// start but cannot change any screen.
func checkDisplay(getenv func(string) string) Check {
	if d := getenv("DISPLAY"); d != "" {
		return Check{Name: "display", Passed: true, Message: "DISPLAY=" + d}
	}
	if w := getenv("WAYLAND_DISPLAY"); w != "" {
		return Check{
			Name:    "display",
			Passed:  true,
			Warning: true,
			Message: "WAYLAND_DISPLAY=" + w + " (gamma control depends on the compositor)",
		}
	}
	return Check{
		Name:    "display",
		Passed:  true,
		Warning: true,
		Message: "no DISPLAY or WAYLAND_DISPLAY set",
	}
}

// checkUser verifies the current user can be resolved; stray cleanup only
// kills processes owned by this user.
func checkUser(current func() (*user.User, error)) Check {
	u, err := current()
	if err != nil {
		return Check{
			Name:    "current_user",
			Passed:  false,
			Message: fmt.Sprintf("cannot resolve: %v", err),
		}
	}
	return Check{Name: "current_user", Passed: true, Message: u.Username}
}

// checkProcessTable verifies the process table can be read for stray cleanup.
func checkProcessTable(list func(ctx context.Context) ([]int32, error)) Check {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pids, err := list(ctx)
	if err != nil {
		return Check{
			Name:    "process_table",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("unreadable, stray instances will not be cleaned up: %v", err),
		}
	}
	return Check{
		Name:    "process_table",
		Passed:  true,
		Message: fmt.Sprintf("%d processes visible", len(pids)),
	}
}

// PrintResults prints the preflight check results to w.
func PrintResults(w io.Writer, result *Result) {
	fmt.Fprintln(w, "Preflight checks:")
	for _, check := range result.Checks {
		fmt.Fprintln(w, check.String())
		if !check.Passed || check.Warning {
			fmt.Fprintf(w, "    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Fprintln(w)
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "daemon":
		return "install redshift (apt install redshift) or xflux, or pass -daemon-path"
	case "display":
		return "run from a graphical session or export DISPLAY"
	case "current_user":
		return "check /etc/passwd or NSS configuration for the current uid"
	case "process_table":
		return "make /proc readable (hidepid mount option)"
	default:
		return "see documentation"
	}
}
