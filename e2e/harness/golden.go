package harness

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

var normalizers = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(:\d{2})?(\.\d+)?(Z|[+-]\d{2}:\d{2})?`), "YYYY-MM-DD HH:MM"},
	{regexp.MustCompile(`\b\d+(\.\d+)?(ns|µs|ms|s)\b`), "XXs"},
	{regexp.MustCompile(`(localhost|127\.0\.0\.1):\d+`), "$1:XXXX"},
	{regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`), "XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX"},
}

// GoldenManager compares command output with files under a base directory.
// Run with UPDATE_GOLDEN=1 to rewrite them.
type GoldenManager struct {
	baseDir string
	update  bool
}

// NewGoldenManager creates a golden file manager.
func NewGoldenManager(baseDir string) *GoldenManager {
	return &GoldenManager{
		baseDir: baseDir,
		update:  os.Getenv("UPDATE_GOLDEN") == "1",
	}
}

// Normalize replaces timestamps, durations, server ports and attempt IDs.
func (g *GoldenManager) Normalize(output string) string {
	for _, n := range normalizers {
		output = n.pattern.ReplaceAllString(output, n.repl)
	}
	return output
}

// Compare compares output against the golden file name.golden.
func (g *GoldenManager) Compare(t *testing.T, name string, actual string) {
	t.Helper()

	if g.baseDir == "" {
		t.Skip("golden directory not configured")
		return
	}

	goldenPath := filepath.Join(g.baseDir, name+".golden")
	normalized := g.Normalize(actual)

	if g.update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(normalized), 0644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nActual output:\n%s", goldenPath, err, normalized)
	}

	if string(expected) != normalized {
		t.Errorf("output mismatch for %s\n\nExpected:\n%s\n\nActual:\n%s",
			name, string(expected), normalized)
	}
}

// IsUpdateMode returns true if golden files should be updated.
func (g *GoldenManager) IsUpdateMode() bool {
	return g.update
}
