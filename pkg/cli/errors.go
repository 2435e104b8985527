package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the tabula command.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitConfig  = 2
	ExitFailure = 3
)

// ConfigError represents an error loading or validating configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error in %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// FailedError reports an operation that completed with success=false.
// The result has already been printed.
type FailedError struct {
	Kind    string
	Message string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{
		Path: path,
		Err:  err,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// NewFailedError creates a new FailedError.
func NewFailedError(kind, message string) *FailedError {
	return &FailedError{
		Kind:    kind,
		Message: message,
	}
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	var (
		configErr *ConfigError
		failedErr *FailedError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &configErr):
		return ExitConfig
	case errors.As(err, &failedErr):
		return ExitFailure
	default:
		return ExitError
	}
}
