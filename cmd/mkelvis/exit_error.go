// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// Exit codes follow <sysexits.h> conventions so scripted callers can
// distinguish failure classes.
const (
	// ExitOK is a successful run.
	ExitOK = 0
	// ExitUsage covers bad invocations and everything that makes the elvis
	// uncompilable: malformed directives, conflicting options, bad URLs.
	ExitUsage = 64
	// ExitData covers unusable input documents, such as an OpenSearch
	// description that cannot be turned into an elvis.
	ExitData = 65
	// ExitUnavailable covers network failures while fetching remote documents.
	ExitUnavailable = 69
	// ExitOSErr covers operating system failures, such as being unable to
	// write the output file.
	ExitOSErr = 71
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitErr wraps err with an exit code, passing nil through.
func exitErr(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}
