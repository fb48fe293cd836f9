package plasticcli

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/temirov/plastic-deck/internal/execshell"
)

const validateExecutableActionPrefixConstant = "execute "

// PathValidator checks user-supplied cm locations before they are persisted as configuration.
type PathValidator struct {
	fileSystem afero.Fs
	executor   PlasticCommandExecutor
}

// NewPathValidator constructs a validator over the supplied file system.
func NewPathValidator(fileSystem afero.Fs, executor PlasticCommandExecutor) (*PathValidator, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &PathValidator{fileSystem: fileSystem, executor: executor}, nil
}

// ValidatePath resolves candidatePath to a cm executable and confirms that cm version succeeds.
// A directory is joined with PlatformExecutableFileName. The resolved path is returned on success.
func (validator *PathValidator) ValidatePath(executionContext context.Context, candidatePath string) (string, error) {
	resolvedPath := candidatePath
	if isDirectory, directoryError := afero.IsDir(validator.fileSystem, candidatePath); directoryError == nil && isDirectory {
		resolvedPath = filepath.Join(candidatePath, PlatformExecutableFileName())
	}

	pathExists, existenceError := afero.Exists(validator.fileSystem, resolvedPath)
	if existenceError != nil || !pathExists {
		return "", NotFoundError{Path: resolvedPath}
	}

	executionResult, executionError := validator.executor.ExecutePlastic(
		executionContext,
		execshell.CommandName(resolvedPath),
		execshell.CommandDetails{Arguments: []string{versionSubcommandConstant}},
	)
	if executionError != nil {
		return "", LaunchFailedError{Action: validateExecutableActionPrefixConstant + PlatformExecutableFileName(), Cause: launchCause(executionError)}
	}

	if !executionResult.Succeeded() {
		return "", ExecutionFailedError{Path: resolvedPath, ExitCode: executionResult.ExitCode}
	}

	return resolvedPath, nil
}
