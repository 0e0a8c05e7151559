package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDryRunLineText(t *testing.T) {
	argv := []string{"ssh", "-p", "29418", "u@h", "gerrit", "query", "change:1"}
	got := dryRunLine(argv, false)
	want := "[DRY-RUN] Would execute: ssh -p 29418 u@h gerrit query change:1"
	if got != want {
		t.Errorf("dryRunLine = %q, want %q", got, want)
	}
}

func TestDryRunLineJSON(t *testing.T) {
	argv := []string{"ssh", "-p", "29418", "u@h", "gerrit", "query", "change:1"}
	out := dryRunLine(argv, true)

	var decoded struct {
		DryRun  bool   `json:"dry_run"`
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("dry-run JSON output does not parse: %v", err)
	}
	if !decoded.DryRun {
		t.Errorf("dry_run = false, want true")
	}
	if !strings.Contains(decoded.Command, "gerrit query") {
		t.Errorf("command = %q, want the ssh invocation", decoded.Command)
	}
}

func TestFileContextSkipsAbsolutePaths(t *testing.T) {
	verbose := func(string, ...any) {}
	lookup := fileContext(verbose)
	if got := lookup("/etc/passwd", 1); got != nil {
		t.Errorf("absolute paths must not be read, got %v", got)
	}
}
