package plasticcli

import (
	"errors"
	"fmt"
	"strings"
)

const (
	launchFailedTemplateConstant               = "Failed to %s: %v"
	launchFailedWithoutCauseTemplateConstant   = "Failed to %s"
	notFoundTemplateConstant                   = "File not found: %s"
	executionFailedMessageConstant             = "cm.exe found but failed to execute 'cm version'"
	subcommandFailedTemplateConstant           = "%s failed: %s"
	subcommandFailedWithOutputTemplateConstant = "%s (stderr: %s, stdout: %s)"
	serverNotDetectedMessageConstant           = "Could not detect Plastic Cloud server. Please ensure you're logged in."
	noRepositoriesFoundTemplateConstant        = "No repositories found on server '%s'. Raw output: %s"
	invalidInputErrorTemplateConstant          = "%s: %s"
	executorNotConfiguredMessageConstant       = "plastic cli executor not configured"
	fileSystemNotConfiguredMessageConstant     = "plastic cli file system not configured"
	requiredValueMessageConstant               = "value required"
)

// ErrorKind classifies failures reported by the Plastic SCM integration.
type ErrorKind string

// Supported error kinds.
const (
	ErrorKindLaunchFailed        ErrorKind = ErrorKind("launch_failed")
	ErrorKindNotFound            ErrorKind = ErrorKind("not_found")
	ErrorKindExecutionFailed     ErrorKind = ErrorKind("execution_failed")
	ErrorKindSubcommandFailed    ErrorKind = ErrorKind("subcommand_failed")
	ErrorKindServerNotDetected   ErrorKind = ErrorKind("server_not_detected")
	ErrorKindNoRepositoriesFound ErrorKind = ErrorKind("no_repositories_found")
	ErrorKindInvalidInput        ErrorKind = ErrorKind("invalid_input")
)

var (
	// ErrExecutorNotConfigured indicates a client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrFileSystemNotConfigured indicates a path validator was constructed without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
)

// LaunchFailedError reports that cm could not be started.
type LaunchFailedError struct {
	Action string
	Cause  error
}

// Error describes the launch failure.
func (launchError LaunchFailedError) Error() string {
	if launchError.Cause == nil {
		return fmt.Sprintf(launchFailedWithoutCauseTemplateConstant, launchError.Action)
	}
	return fmt.Sprintf(launchFailedTemplateConstant, launchError.Action, launchError.Cause)
}

// Unwrap exposes the underlying launch failure.
func (launchError LaunchFailedError) Unwrap() error {
	return launchError.Cause
}

// Kind implements the error classification.
func (LaunchFailedError) Kind() ErrorKind {
	return ErrorKindLaunchFailed
}

// NotFoundError reports a resolved executable path that does not exist.
type NotFoundError struct {
	Path string
}

// Error describes the missing path.
func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(notFoundTemplateConstant, notFoundError.Path)
}

// Kind implements the error classification.
func (NotFoundError) Kind() ErrorKind {
	return ErrorKindNotFound
}

// ExecutionFailedError reports an executable that ran but failed its version query.
type ExecutionFailedError struct {
	Path     string
	ExitCode int
}

// Error describes the failed version query.
func (ExecutionFailedError) Error() string {
	return executionFailedMessageConstant
}

// Kind implements the error classification.
func (ExecutionFailedError) Kind() ErrorKind {
	return ErrorKindExecutionFailed
}

// SubcommandFailedError reports a required cm subcommand that exited with a non-zero status.
type SubcommandFailedError struct {
	Description    string
	ExitCode       int
	StandardError  string
	StandardOutput string
	IncludeOutput  bool
}

// Error describes the failed subcommand with its captured diagnostics.
func (subcommandError SubcommandFailedError) Error() string {
	if subcommandError.IncludeOutput {
		return fmt.Sprintf(subcommandFailedWithOutputTemplateConstant, subcommandError.Description, strings.TrimSpace(subcommandError.StandardError), strings.TrimSpace(subcommandError.StandardOutput))
	}
	return fmt.Sprintf(subcommandFailedTemplateConstant, subcommandError.Description, subcommandError.StandardError)
}

// Kind implements the error classification.
func (SubcommandFailedError) Kind() ErrorKind {
	return ErrorKindSubcommandFailed
}

// ServerNotDetectedError reports that neither lrep nor listservers revealed a cloud server.
type ServerNotDetectedError struct{}

// Error describes the detection failure.
func (ServerNotDetectedError) Error() string {
	return serverNotDetectedMessageConstant
}

// Kind implements the error classification.
func (ServerNotDetectedError) Kind() ErrorKind {
	return ErrorKindServerNotDetected
}

// NoRepositoriesFoundError reports a server whose repository listing yielded no usable names.
type NoRepositoriesFoundError struct {
	Server    string
	RawOutput string
}

// Error names the server and echoes the raw listing.
func (noRepositoriesError NoRepositoriesFoundError) Error() string {
	return fmt.Sprintf(noRepositoriesFoundTemplateConstant, noRepositoriesError.Server, strings.TrimSpace(noRepositoriesError.RawOutput))
}

// Kind implements the error classification.
func (NoRepositoriesFoundError) Kind() ErrorKind {
	return ErrorKindNoRepositoriesFound
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// Kind implements the error classification.
func (InvalidInputError) Kind() ErrorKind {
	return ErrorKindInvalidInput
}

// KindOf extracts the ErrorKind from an error chain, reporting false for unclassified errors.
func KindOf(err error) (ErrorKind, bool) {
	var classifiedError interface{ Kind() ErrorKind }
	if errors.As(err, &classifiedError) {
		return classifiedError.Kind(), true
	}
	return "", false
}
