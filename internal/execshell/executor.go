package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	plasticCommandNameConstant                = "cm"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	runnerNotConfiguredMessageConstant        = "shell executor runner not configured"
	commandExecutionErrorTemplateConstant     = "%s could not be started: %v"
	commandExecutionUnknownTemplateConstant   = "%s could not be started"
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "stderr"
	successfulExitCodeConstant                = 0
	commandLabelArgumentsSeparatorConstant    = " "
	commandLabelWithArgumentsTemplateConstant = "%s %s"
)

// CommandName identifies the executable invoked by the shell executor.
type CommandName string

// CommandPlastic is the default Plastic SCM command-line executable resolved through PATH.
const CommandPlastic CommandName = CommandName(plasticCommandNameConstant)

// CommandDetails describes the arguments and working directory of a command.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
}

// ShellCommand couples an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// Succeeded reports whether the process exited with status zero.
func (result ExecutionResult) Succeeded() bool {
	return result.ExitCode == successfulExitCodeConstant
}

// CommandRunner runs a shell command. A non-zero exit status is reported through
// ExecutionResult; an error means the process never ran to completion.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
)

// CommandExecutionError reports a process that could not be launched.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the launch failure including the operating system message.
func (executionError CommandExecutionError) Error() string {
	commandLabel := describeCommandLabel(executionError.Command)
	if executionError.Cause == nil {
		return fmt.Sprintf(commandExecutionUnknownTemplateConstant, commandLabel)
	}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, commandLabel, executionError.Cause)
}

// Unwrap exposes the underlying launch failure.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs commands through a CommandRunner, logging and reporting lifecycle events.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor. Observers receive lifecycle events in registration order.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  newCompositeCommandEventObserver(observers),
		formatter: CommandMessageFormatter{},
	}, nil
}

// Execute runs the command. Non-zero exit codes are returned as data; only launch failures produce an error.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(string(command.Name))) == 0 {
		command.Name = CommandPlastic
	}

	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
	}
	if len(command.Details.WorkingDirectory) > 0 {
		commandFields = append(commandFields, zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory))
	}

	executor.logger.Debug(executor.formatter.BuildStartedMessage(command), commandFields...)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Warn(executor.formatter.BuildExecutionFailureMessage(command, runError), append(commandFields, zap.Error(runError))...)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)
	if executionResult.Succeeded() {
		executor.logger.Debug(executor.formatter.BuildSuccessMessage(command), commandFields...)
		return executionResult, nil
	}

	executor.logger.Debug(
		executor.formatter.BuildFailureMessage(command, executionResult),
		append(commandFields,
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
		)...,
	)
	return executionResult, nil
}

// ExecutePlastic runs the Plastic SCM CLI using the supplied executable; an empty name selects CommandPlastic.
func (executor *ShellExecutor) ExecutePlastic(executionContext context.Context, executable CommandName, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: executable, Details: details})
}

func describeCommandLabel(command ShellCommand) string {
	if len(command.Details.Arguments) == 0 {
		return string(command.Name)
	}
	return fmt.Sprintf(commandLabelWithArgumentsTemplateConstant, command.Name, strings.Join(command.Details.Arguments, commandLabelArgumentsSeparatorConstant))
}
