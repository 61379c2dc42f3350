// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mkelvis-cli/internal/config"
)

func TestResolveOutputPath(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		name      string
		flagValue string
		outputDir config.OutputDirPath
		want      string
	}{
		{"explicit flag wins", "/tmp/custom", "/elvi", "/tmp/custom"},
		{"stdout passes through", "-", "/elvi", "-"},
		{"config output dir", "", "/elvi", filepath.Join("/elvi", "ddg")},
		{"bare name in cwd", "", "", "ddg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.OutputDir = tt.outputDir
			if got := resolveOutputPath(tt.flagValue, "ddg", cfg); got != tt.want {
				t.Errorf("resolveOutputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example")
	script := []byte("#!/bin/sh\n")

	if err := writeArtifact(path, script); err != nil {
		t.Fatalf("writeArtifact: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(script) {
		t.Errorf("content = %q, want %q", data, script)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}

	// The rename publishes the file; no temp may survive a success.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries after success, want just the elvis", len(entries))
	}

	// Overwriting an existing elvis is a plain regeneration.
	if err := writeArtifact(path, []byte("#!/bin/sh\n# regenerated\n")); err != nil {
		t.Fatalf("writeArtifact overwrite: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == string(script) {
		t.Error("overwrite did not replace content")
	}
}

func TestWriteArtifactFailureExitsOSErr(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-dir", "example")

	err := writeArtifact(missing, []byte("#!/bin/sh\n"))
	var exitError *ExitError
	if !errors.As(err, &exitError) {
		t.Fatalf("got %v, want ExitError", err)
	}
	if exitError.Code != ExitOSErr {
		t.Errorf("Code = %d, want %d", exitError.Code, ExitOSErr)
	}
}
