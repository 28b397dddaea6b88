// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// Exit statuses shared by every veloxio command.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already reported the
// outcome itself, as "veloxio get" does for a path that is not found.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// UsageError reports an invocation that could not be parsed: an
// unknown command or flag, or missing operands. Unlike [ExitError] its
// message is printed.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ExitCode returns [ExitUsage].
func (e *UsageError) ExitCode() int {
	return ExitUsage
}

// Usagef returns a [*UsageError] with a formatted message.
func Usagef(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitCodeOf maps an error returned by [Command.Execute] to a process
// exit status.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitFailure
}

// Silent reports whether err has already been reported to the user
// and main should exit without printing it.
func Silent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
