// ABOUTME: Tests for the version command
// ABOUTME: Verifies output format and SetVersion wiring
package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3", "abc1234", "2026-01-01")
	defer SetVersion("dev", "none", "unknown")

	cmd := NewVersionCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "StepMatch 1.2.3") {
		t.Errorf("output missing version: %q", output)
	}
	if !strings.Contains(output, "abc1234") {
		t.Errorf("output missing commit: %q", output)
	}
	if !strings.Contains(output, "2026-01-01") {
		t.Errorf("output missing date: %q", output)
	}
}
