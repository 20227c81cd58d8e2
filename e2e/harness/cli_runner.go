package harness

import (
	"bytes"
	"context"
	"time"

	"github.com/artpar/feedsync/internal/cli"
)

// CLIResult holds CLI execution results.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CLIRunner executes CLI commands against the harness config and database.
type CLIRunner struct {
	harness *E2EHarness
}

// Run executes a CLI command with the given arguments.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.harness.timeout)
	defer cancel()

	start := time.Now()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := cli.NewRootCommand("test")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{
		"--config", r.harness.ConfigPath(),
		"--database", r.harness.DatabasePath(),
	}, args...))

	err := cmd.ExecuteContext(ctx)

	result := &CLIResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		result.ExitCode = 1
		result.Stderr += err.Error()
	}

	return result, err
}

// Sync runs a synchronization.
func (r *CLIRunner) Sync(opts ...string) (*CLIResult, error) {
	return r.Run(append([]string{"sync"}, opts...)...)
}

// JSON runs a command with JSON output.
func (r *CLIRunner) JSON(args ...string) (*CLIResult, error) {
	return r.Run(append([]string{"--json"}, args...)...)
}
