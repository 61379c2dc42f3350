// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"mkelvis-cli/internal/config"
	"mkelvis-cli/internal/issue"
)

// resolveOutputPath picks where the artifact goes: the explicit --output
// value wins, then the configured output_dir, then the current directory.
// The elvis name doubles as the filename, as surfraw expects.
func resolveOutputPath(flagValue, elvisName string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.OutputDir != "" {
		return filepath.Join(string(cfg.OutputDir), elvisName)
	}
	return elvisName
}

// writeArtifact writes the generated script to path with the executable bit
// set. The write goes through a temp file in the target directory and is
// published with a rename, so a crash never leaves a half-written elvis under
// the final name. A failed attempt leaves the temp file behind for
// inspection. "-" streams to stdout instead.
func writeArtifact(path string, script []byte) error {
	if path == "-" {
		if _, err := os.Stdout.Write(script); err != nil {
			return exitErr(ExitOSErr, fmt.Errorf("write elvis to stdout: %w", err))
		}
		return nil
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return writeFailed(path, fmt.Errorf("create temp file: %w", err))
	}

	if _, err := tmp.Write(script); err != nil {
		tmp.Close()
		return writeFailed(path, fmt.Errorf("write %s: %w", tmp.Name(), err))
	}
	// Elvi are executed directly by surfraw.
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		return writeFailed(path, fmt.Errorf("chmod %s: %w", tmp.Name(), err))
	}
	if err := tmp.Close(); err != nil {
		return writeFailed(path, fmt.Errorf("close %s: %w", tmp.Name(), err))
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return writeFailed(path, fmt.Errorf("rename into place: %w", err))
	}
	return nil
}

func writeFailed(path string, err error) error {
	renderIssue(issue.OutputWriteFailedId)
	return exitErr(ExitOSErr, issue.NewErrorContext().
		WithOperation("write elvis").
		WithResource(path).
		WithSuggestion("Check that the output directory exists and is writable").
		WithSuggestion("Pass an explicit location with --output").
		WithSuggestion("Stream to stdout with --output -").
		Wrap(err).
		BuildError())
}
