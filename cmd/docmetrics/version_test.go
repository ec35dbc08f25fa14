package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestReadVersionInfo(t *testing.T) {
	t.Parallel()

	info := readVersionInfo()
	if info.Version == "" || info.Commit == "" || info.Date == "" {
		t.Errorf("expected all fields to be set, got %+v", info)
	}
	if !strings.HasPrefix(info.GoVersion, "go") && !strings.HasPrefix(info.GoVersion, "devel") {
		t.Errorf("unexpected Go version %q", info.GoVersion)
	}
	if getVersion() != info.Version {
		t.Errorf("getVersion() = %q, want %q", getVersion(), info.Version)
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("command has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd := NewVersionCmd(); cmd.Use != "version" {
			t.Errorf("expected Use to be 'version', got %q", cmd.Use)
		}
	})

	t.Run("command outputs version info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"docmetrics version", "commit:", "built:", "go:"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got %q", want, output)
			}
		}
	})

	t.Run("command outputs JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--json"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var info versionInfo
		if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}
		if info.Version == "" {
			t.Error("expected version in JSON output")
		}
	})
}
