package plasticcli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/plastic-deck/internal/execshell"
)

const (
	versionSubcommandConstant                  = "version"
	listRepositoriesSubcommandConstant         = "lrep"
	listServersSubcommandConstant              = "listservers"
	findSubcommandConstant                     = "find"
	repositoriesObjectConstant                 = "repos"
	changesetsObjectConstant                   = "changesets"
	onKeywordConstant                          = "on"
	repositoryServerKeywordConstant            = "repserver"
	repositoryKeywordConstant                  = "repository"
	changesetFormatFlagConstant                = "--format={changesetid}|{owner}|{date}|{comment}|{branch}"
	noTotalFlagConstant                        = "--nototal"
	resultLimitFlagConstant                    = "-n"
	quotedServerTemplateConstant               = "'%s'"
	qualifiedRepositoryTemplateConstant        = "%s@%s"
	listRepositoriesActionConstant             = "run cm lrep"
	listServersActionConstant                  = "run cm listservers"
	findRepositoriesActionConstant             = "run cm find repos"
	findChangesetsActionConstant               = "run cm find changesets"
	findRepositoriesDescriptionConstant        = "cm find repos"
	findChangesetsDescriptionConstant          = "cm find changesets"
	listRepositoriesFailureDescriptionConstant = "Failed to list repos"
	serverFieldNameConstant                    = "server"
	repositoryFieldNameConstant                = "repository"
	limitFieldNameConstant                     = "limit"
	positiveValueMessageConstant               = "must be positive"
)

// DefaultRepositoryChangesetLimit is the number of changesets requested from each repository.
const DefaultRepositoryChangesetLimit = 20

// PlasticCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type PlasticCommandExecutor interface {
	ExecutePlastic(executionContext context.Context, executable execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ChangesetQuery identifies the repository whose recent changesets are requested.
type ChangesetQuery struct {
	Repository  string
	Server      string
	ResultLimit int
}

// Client runs cm subcommands and parses their output.
type Client struct {
	executor PlasticCommandExecutor
}

// NewClient constructs a Plastic SCM CLI client.
func NewClient(executor PlasticCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// CheckInstalled reports whether cm version launches and exits zero. A launch failure counts as not installed.
func (client *Client) CheckInstalled(executionContext context.Context, selection ExecutableSelection) bool {
	executionResult, executionError := client.run(executionContext, selection, versionSubcommandConstant)
	if executionError != nil {
		return false
	}
	return executionResult.Succeeded()
}

// DetectServer finds the Plastic Cloud server from configured repositories, falling back to the known server list.
func (client *Client) DetectServer(executionContext context.Context, selection ExecutableSelection) (string, error) {
	repositoriesResult, repositoriesError := client.run(executionContext, selection, listRepositoriesSubcommandConstant)
	if repositoriesError != nil {
		return "", LaunchFailedError{Action: listRepositoriesActionConstant, Cause: launchCause(repositoriesError)}
	}

	if repositoriesResult.Succeeded() {
		if server, found := DetectServerInRepositoryListing(repositoriesResult.StandardOutput); found {
			return server, nil
		}
	}

	serversResult, serversError := client.run(executionContext, selection, listServersSubcommandConstant)
	if serversError != nil {
		return "", LaunchFailedError{Action: listServersActionConstant, Cause: launchCause(serversError)}
	}

	if serversResult.Succeeded() {
		if server, found := DetectServerInServerListing(serversResult.StandardOutput); found {
			return server, nil
		}
	}

	return "", ServerNotDetectedError{}
}

// ListRepositories lists repositories on server. The server is passed to cm in single quotes.
func (client *Client) ListRepositories(executionContext context.Context, server string, selection ExecutableSelection) ([]RepositoryRef, error) {
	if len(strings.TrimSpace(server)) == 0 {
		return nil, InvalidInputError{FieldName: serverFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.run(
		executionContext,
		selection,
		findSubcommandConstant,
		repositoriesObjectConstant,
		onKeywordConstant,
		repositoryServerKeywordConstant,
		fmt.Sprintf(quotedServerTemplateConstant, server),
	)
	if executionError != nil {
		return nil, LaunchFailedError{Action: findRepositoriesActionConstant, Cause: launchCause(executionError)}
	}

	if !executionResult.Succeeded() {
		return nil, SubcommandFailedError{
			Description:    findRepositoriesDescriptionConstant,
			ExitCode:       executionResult.ExitCode,
			StandardError:  executionResult.StandardError,
			StandardOutput: executionResult.StandardOutput,
		}
	}

	return ParseRepositoryRefs(executionResult.StandardOutput, server), nil
}

// ListRepositoryNames lists repository names on server for history aggregation.
// Lines starting with "Repository" or "Name" are headers; an empty result is a NoRepositoriesFoundError.
func (client *Client) ListRepositoryNames(executionContext context.Context, server string, selection ExecutableSelection) ([]string, error) {
	if len(strings.TrimSpace(server)) == 0 {
		return nil, InvalidInputError{FieldName: serverFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.run(
		executionContext,
		selection,
		findSubcommandConstant,
		repositoriesObjectConstant,
		onKeywordConstant,
		repositoryServerKeywordConstant,
		server,
	)
	if executionError != nil {
		return nil, LaunchFailedError{Action: findRepositoriesActionConstant, Cause: launchCause(executionError)}
	}

	if !executionResult.Succeeded() {
		return nil, SubcommandFailedError{
			Description:    listRepositoriesFailureDescriptionConstant,
			ExitCode:       executionResult.ExitCode,
			StandardError:  executionResult.StandardError,
			StandardOutput: executionResult.StandardOutput,
			IncludeOutput:  true,
		}
	}

	repositoryNames := ParseRepositoryNames(executionResult.StandardOutput)
	if len(repositoryNames) == 0 {
		return nil, NoRepositoriesFoundError{Server: server, RawOutput: executionResult.StandardOutput}
	}

	return repositoryNames, nil
}

// FindChangesets retrieves the most recent changesets of one repository, tagged with its short name.
func (client *Client) FindChangesets(executionContext context.Context, query ChangesetQuery, selection ExecutableSelection) ([]ChangesetRecord, error) {
	if len(strings.TrimSpace(query.Repository)) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(query.Server)) == 0 {
		return nil, InvalidInputError{FieldName: serverFieldNameConstant, Message: requiredValueMessageConstant}
	}

	resultLimit := query.ResultLimit
	if resultLimit == 0 {
		resultLimit = DefaultRepositoryChangesetLimit
	}
	if resultLimit < 0 {
		return nil, InvalidInputError{FieldName: limitFieldNameConstant, Message: positiveValueMessageConstant}
	}

	executionResult, executionError := client.run(
		executionContext,
		selection,
		findSubcommandConstant,
		changesetsObjectConstant,
		onKeywordConstant,
		repositoryKeywordConstant,
		fmt.Sprintf(qualifiedRepositoryTemplateConstant, query.Repository, query.Server),
		changesetFormatFlagConstant,
		noTotalFlagConstant,
		resultLimitFlagConstant,
		strconv.Itoa(resultLimit),
	)
	if executionError != nil {
		return nil, LaunchFailedError{Action: findChangesetsActionConstant, Cause: launchCause(executionError)}
	}

	if !executionResult.Succeeded() {
		return nil, SubcommandFailedError{
			Description:    findChangesetsDescriptionConstant,
			ExitCode:       executionResult.ExitCode,
			StandardError:  executionResult.StandardError,
			StandardOutput: executionResult.StandardOutput,
		}
	}

	return ParseChangesets(executionResult.StandardOutput, query.Repository), nil
}

func (client *Client) run(executionContext context.Context, selection ExecutableSelection, arguments ...string) (execshell.ExecutionResult, error) {
	return client.executor.ExecutePlastic(executionContext, resolveCommandName(selection), execshell.CommandDetails{Arguments: arguments})
}

// launchCause strips the executor wrapper so messages carry the operating system error text.
func launchCause(executionError error) error {
	var commandExecutionError execshell.CommandExecutionError
	if errors.As(executionError, &commandExecutionError) && commandExecutionError.Cause != nil {
		return commandExecutionError.Cause
	}
	return executionError
}
