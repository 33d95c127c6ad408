// Package errors defines the error categories the controllers signal and
// the CLI-facing formatting helpers. Callers classify with errors.As /
// errors.Is against the exported types and sentinels.
package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/avoronkov/tasktracker/internal/logger"
)

// Sentinels for conditions that carry no extra context.
var (
	ErrNotAuthenticated = errors.New("user was not authenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")

	// ErrPlanEditViaTask guards tasks that back edited plan occurrences:
	// they are managed through the plan operations, never edited directly.
	ErrPlanEditViaTask = errors.New("task belongs to a plan; edit the repeat through the plan instead")
)

// InvalidTimeError reports a task whose window fields are mutually
// inconsistent, e.g. start after end. Never auto-corrected.
type InvalidTimeError struct {
	Start, End int64
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time range: start %d is after end %d", e.Start, e.End)
}

// InvalidParentError reports a broken parent/child relation: missing
// parent, planned parent, or a violated priority/status/containment
// constraint.
type InvalidParentError struct {
	ParentTID int64
	Reason    string
}

func (e *InvalidParentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid parent task %d", e.ParentTID)
	}
	return fmt.Sprintf("invalid parent task %d: %s", e.ParentTID, e.Reason)
}

// InvalidStatusError reports a status that contradicts the task's window,
// e.g. pending on a task entirely in the past.
type InvalidStatusError struct {
	Status fmt.Stringer
	Reason string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %v: %s", e.Status, e.Reason)
}

// InvalidProjectError reports a reference to a project the caller cannot
// see or that does not exist.
type InvalidProjectError struct {
	PID int64
}

func (e *InvalidProjectError) Error() string {
	return fmt.Sprintf("invalid project %d", e.PID)
}

// UserExistsError reports a duplicate login on user creation or rename.
type UserExistsError struct {
	Login string
}

func (e *UserExistsError) Error() string {
	return fmt.Sprintf("user with name %s already exists", e.Login)
}

// AuthenticationError reports a failed login attempt.
type AuthenticationError struct {
	Login string
	UID   int64
}

func (e *AuthenticationError) Error() string {
	if e.Login != "" {
		return fmt.Sprintf("authentication failed for login %s", e.Login)
	}
	return fmt.Sprintf("authentication failed for id %d", e.UID)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
