package harness

import (
	"strings"
	"testing"
)

// Assertions checks CLI results.
type Assertions struct {
	t *testing.T
}

// NewAssertions creates an assertions helper.
func NewAssertions(t *testing.T) *Assertions {
	return &Assertions{t: t}
}

// OutputContains asserts the output contains all given strings.
func (a *Assertions) OutputContains(output string, expected ...string) {
	a.t.Helper()
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			a.t.Errorf("expected output to contain %q, got:\n%s", exp, truncate(output, 500))
		}
	}
}

// OutputNotContains asserts the output contains none of the given strings.
func (a *Assertions) OutputNotContains(output string, unexpected ...string) {
	a.t.Helper()
	for _, unexp := range unexpected {
		if strings.Contains(output, unexp) {
			a.t.Errorf("expected output NOT to contain %q, got:\n%s", unexp, truncate(output, 500))
		}
	}
}

// NoError asserts the output carries no error or warning lines.
func (a *Assertions) NoError(output string) {
	a.t.Helper()
	for _, ind := range []string{"Error:", "panic:", "level=error", "level=warning", "! "} {
		if strings.Contains(output, ind) {
			a.t.Errorf("unexpected error in output: found %q in:\n%s", ind, truncate(output, 500))
			return
		}
	}
}

// Succeeded asserts the command exited cleanly.
func (a *Assertions) Succeeded(result *CLIResult) {
	a.t.Helper()
	if result.ExitCode != 0 {
		a.t.Errorf("expected command to succeed, got exit code %d:\n%s", result.ExitCode, truncate(result.Stderr, 500))
	}
}

// Failed asserts the command failed with a message containing expected.
func (a *Assertions) Failed(result *CLIResult, expected string) {
	a.t.Helper()
	if result.ExitCode == 0 {
		a.t.Errorf("expected command to fail, got output:\n%s", truncate(result.Stdout, 500))
		return
	}
	if !strings.Contains(result.Stderr, expected) {
		a.t.Errorf("expected error to contain %q, got:\n%s", expected, truncate(result.Stderr, 500))
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
