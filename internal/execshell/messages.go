package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	plasticVersionSubcommandNameConstant     = "version"
	plasticListReposSubcommandNameConstant   = "lrep"
	plasticListServersSubcommandNameConstant = "listservers"
	plasticFindSubcommandNameConstant        = "find"
	plasticReposObjectNameConstant           = "repos"
	plasticChangesetsObjectNameConstant      = "changesets"
	plasticResultLimitFlagConstant           = "-n"
	plasticFindObjectArgumentIndexConstant   = 1
	plasticFindTargetArgumentIndexConstant   = 4
	plasticQuoteCharactersConstant           = "'\""
)

const (
	plasticVersionStartTemplateConstant                   = "Checking Plastic SCM CLI %s"
	plasticVersionSuccessTemplateConstant                 = "Plastic SCM CLI %s is available"
	plasticVersionFailureTemplateConstant                 = "Plastic SCM CLI %s reported an error (exit code %d%s)"
	plasticVersionExecutionFailureTemplateConstant        = "Unable to run Plastic SCM CLI %s: %s"
	plasticListReposStartTemplateConstant                 = "Listing configured repositories with %s"
	plasticListReposSuccessTemplateConstant               = "Listed configured repositories with %s"
	plasticListReposFailureTemplateConstant               = "Failed to list configured repositories with %s (exit code %d%s)"
	plasticListReposExecutionFailureTemplateConstant      = "Unable to list configured repositories with %s: %s"
	plasticListServersStartTemplateConstant               = "Listing known servers with %s"
	plasticListServersSuccessTemplateConstant             = "Listed known servers with %s"
	plasticListServersFailureTemplateConstant             = "Failed to list known servers with %s (exit code %d%s)"
	plasticListServersExecutionFailureTemplateConstant    = "Unable to list known servers with %s: %s"
	plasticFindReposStartTemplateConstant                 = "Listing repositories on %s"
	plasticFindReposSuccessTemplateConstant               = "Listed repositories on %s"
	plasticFindReposFailureTemplateConstant               = "Failed to list repositories on %s (exit code %d%s)"
	plasticFindReposExecutionFailureTemplateConstant      = "Unable to list repositories on %s: %s"
	plasticFindChangesetsStartTemplateConstant            = "Retrieving up to %s changesets from %s"
	plasticFindChangesetsSuccessTemplateConstant          = "Retrieved changesets from %s"
	plasticFindChangesetsFailureTemplateConstant          = "Failed to retrieve changesets from %s (exit code %d%s)"
	plasticFindChangesetsExecutionFailureTemplateConstant = "Unable to retrieve changesets from %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a process that could not be launched.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[0]) {
	case plasticVersionSubcommandNameConstant:
		return formatter.describeStage(command, result, failure, stage, string(command.Name), stageTemplates{
			start:            plasticVersionStartTemplateConstant,
			success:          plasticVersionSuccessTemplateConstant,
			failure:          plasticVersionFailureTemplateConstant,
			executionFailure: plasticVersionExecutionFailureTemplateConstant,
		})
	case plasticListReposSubcommandNameConstant:
		return formatter.describeStage(command, result, failure, stage, string(command.Name), stageTemplates{
			start:            plasticListReposStartTemplateConstant,
			success:          plasticListReposSuccessTemplateConstant,
			failure:          plasticListReposFailureTemplateConstant,
			executionFailure: plasticListReposExecutionFailureTemplateConstant,
		})
	case plasticListServersSubcommandNameConstant:
		return formatter.describeStage(command, result, failure, stage, string(command.Name), stageTemplates{
			start:            plasticListServersStartTemplateConstant,
			success:          plasticListServersSuccessTemplateConstant,
			failure:          plasticListServersFailureTemplateConstant,
			executionFailure: plasticListServersExecutionFailureTemplateConstant,
		})
	case plasticFindSubcommandNameConstant:
		return formatter.describeFindMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

func (formatter CommandMessageFormatter) describeStage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, subject string, templates stageTemplates) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, subject, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeFindMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	findTarget := formatter.ensureValue(strings.Trim(formatter.argumentAtIndex(arguments, plasticFindTargetArgumentIndexConstant), plasticQuoteCharactersConstant))

	switch formatter.argumentAtIndex(arguments, plasticFindObjectArgumentIndexConstant) {
	case plasticReposObjectNameConstant:
		return formatter.describeStage(command, result, failure, stage, findTarget, stageTemplates{
			start:            plasticFindReposStartTemplateConstant,
			success:          plasticFindReposSuccessTemplateConstant,
			failure:          plasticFindReposFailureTemplateConstant,
			executionFailure: plasticFindReposExecutionFailureTemplateConstant,
		})
	case plasticChangesetsObjectNameConstant:
		if stage == messageStageStart {
			resultLimit := formatter.ensureValue(findFlagValue(arguments, plasticResultLimitFlagConstant))
			return fmt.Sprintf(plasticFindChangesetsStartTemplateConstant, resultLimit, findTarget)
		}
		return formatter.describeStage(command, result, failure, stage, findTarget, stageTemplates{
			start:            plasticFindChangesetsStartTemplateConstant,
			success:          plasticFindChangesetsSuccessTemplateConstant,
			failure:          plasticFindChangesetsFailureTemplateConstant,
			executionFailure: plasticFindChangesetsExecutionFailureTemplateConstant,
		})
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag {
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return emptyStringConstant
}
