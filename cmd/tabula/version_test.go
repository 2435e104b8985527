package main

import (
	"strings"
	"testing"
)

// TestVersionCommandExists tests that the version command is registered.
func TestVersionCommandExists(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Short == "" {
		t.Error("versionCmd.Short should not be empty")
	}
	if versionCmd.Run == nil {
		t.Error("versionCmd.Run should not be nil")
	}
}

// TestVersionCommand tests the printed build information.
func TestVersionCommand(t *testing.T) {
	origCommit := GitCommit
	GitCommit = "abc123"
	defer func() { GitCommit = origCommit }()

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"tabula " + Version, "Git Commit: abc123", "Go Version: go"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
