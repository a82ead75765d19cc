package preflight

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"os/user"
	"strings"
	"testing"
)

func TestCheck_String(t *testing.T) {
	tests := []struct {
		name   string
		check  Check
		symbol string
	}{
		{"passed", Check{Name: "daemon", Passed: true, Message: "found"}, "✓"},
		{"failed", Check{Name: "daemon", Passed: false, Message: "missing"}, "✗"},
		{"warning", Check{Name: "display", Passed: true, Warning: true, Message: "none"}, "⚠"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.check.String()
			if !strings.Contains(s, tt.symbol) {
				t.Errorf("String() = %q, want %s", s, tt.symbol)
			}
			if !strings.Contains(s, tt.check.Message) {
				t.Errorf("String() = %q, should contain message", s)
			}
		})
	}
}

// fakeEnv returns an env with every check passing.
func fakeEnv(vars map[string]string) env {
	return env{
		getenv:      func(k string) string { return vars[k] },
		currentUser: func() (*user.User, error) { return &user.User{Username: "alice"}, nil },
		listPids:    func(context.Context) ([]int32, error) { return []int32{1, 2, 3}, nil },
	}
}

func findCheck(t *testing.T, r *Result, name string) Check {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}

func TestRunAll_DaemonPresent(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	result := runAll(sh, fakeEnv(map[string]string{"DISPLAY": ":0"}))
	if !result.Passed {
		t.Errorf("Passed = false: %+v", result.Checks)
	}
	if result.Failed() != nil {
		t.Errorf("Failed() = %+v, want nil", result.Failed())
	}
	if c := findCheck(t, result, "display"); c.Warning {
		t.Error("display with DISPLAY set should not warn")
	}
	if c := findCheck(t, result, "process_table"); !strings.Contains(c.Message, "3 processes") {
		t.Errorf("process_table message = %q", c.Message)
	}
}

func TestRunAll_DaemonMissing(t *testing.T) {
	result := runAll("/nonexistent/redshift", fakeEnv(map[string]string{"DISPLAY": ":0"}))

	if result.Passed {
		t.Error("Passed = true with missing daemon")
	}
	failed := result.Failed()
	if failed == nil || failed.Name != "daemon" {
		t.Fatalf("Failed() = %+v, want daemon", failed)
	}
}

func TestCheckDisplay(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		warning bool
	}{
		{"x11", map[string]string{"DISPLAY": ":0"}, false},
		{"wayland", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, true},
		{"none", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := checkDisplay(func(k string) string { return tt.vars[k] })
			if !c.Passed {
				t.Error("display check must never be fatal")
			}
			if c.Warning != tt.warning {
				t.Errorf("Warning = %v, want %v", c.Warning, tt.warning)
			}
		})
	}
}

func TestCheckUser(t *testing.T) {
	c := checkUser(func() (*user.User, error) { return nil, errors.New("unknown userid 4242") })
	if c.Passed {
		t.Error("unresolvable user should fail")
	}

	c = checkUser(func() (*user.User, error) { return &user.User{Username: "bob"}, nil })
	if !c.Passed || c.Message != "bob" {
		t.Errorf("checkUser() = %+v", c)
	}
}

func TestCheckProcessTable_Error(t *testing.T) {
	c := checkProcessTable(func(context.Context) ([]int32, error) { return nil, errors.New("permission denied") })
	if !c.Passed || !c.Warning {
		t.Errorf("unreadable process table should warn, got %+v", c)
	}
}

func TestRunAll_System(t *testing.T) {
	// Real environment: only checks that nothing panics
	result := RunAll("sh")
	if len(result.Checks) != 4 {
		t.Errorf("len(Checks) = %d, want 4", len(result.Checks))
	}
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	PrintResults(&buf, &Result{Checks: []Check{
		{Name: "daemon", Passed: false, Message: "redshift not found"},
		{Name: "current_user", Passed: true, Message: "alice"},
	}})

	out := buf.String()
	if !strings.Contains(out, "Preflight checks:") {
		t.Error("missing header")
	}
	if !strings.Contains(out, "Fix: install redshift") {
		t.Errorf("missing fix suggestion:\n%s", out)
	}
	if strings.Count(out, "Fix:") != 1 {
		t.Errorf("only failed or warning checks get a fix:\n%s", out)
	}
}

func TestSuggestFix(t *testing.T) {
	for _, name := range []string{"daemon", "display", "current_user", "process_table"} {
		if suggestFix(name) == "see documentation" {
			t.Errorf("suggestFix(%q) has no specific advice", name)
		}
	}
	if suggestFix("unknown") != "see documentation" {
		t.Error("unknown check should get the generic advice")
	}
}
