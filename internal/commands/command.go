package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/plastic-deck/internal/execshell"
	"github.com/temirov/plastic-deck/internal/history"
	"github.com/temirov/plastic-deck/internal/plasticcli"
	"github.com/temirov/plastic-deck/internal/ui"
	"github.com/temirov/plastic-deck/internal/utils"
	flagutils "github.com/temirov/plastic-deck/internal/utils/flags"
)

const (
	checkInstalledCommandUseConstant    = "check-installed"
	checkInstalledCommandShortConstant  = "Report whether the Plastic SCM CLI runs"
	checkInstalledCommandLongConstant   = "check-installed runs cm version and prints true when it launches and exits successfully."
	validatePathCommandUseConstant      = "validate-path <path>"
	validatePathCommandShortConstant    = "Verify a cm executable or installation directory"
	validatePathCommandLongConstant     = "validate-path joins a directory with the platform cm file name, confirms the file exists, runs cm version, and prints the verified executable path."
	detectServerCommandUseConstant      = "detect-server"
	detectServerCommandShortConstant    = "Detect the Plastic Cloud server of the current login"
	detectServerCommandLongConstant     = "detect-server inspects cm lrep and then cm listservers for a cloud server identifier such as org@cloud."
	reposCommandUseConstant             = "repos"
	reposCommandShortConstant           = "List repositories on a server"
	reposCommandLongConstant            = "repos lists the repositories hosted on the server given by --server, the configured server, or the detected one."
	changesetsCommandUseConstant        = "changesets"
	changesetsCommandShortConstant      = "List the newest changesets across all repositories of a server"
	changesetsCommandLongConstant       = "changesets queries the recent changesets of every repository on a server, skips repositories that fail, and prints the newest ones first."
	invokeCommandUseConstant            = "invoke <operation>"
	invokeCommandShortConstant          = "Run an operation with JSON arguments"
	invokeCommandLongTemplateConstant   = "invoke dispatches an operation by name with JSON arguments and prints the result or error text.\nOperations: %s"
	cmPathFlagNameConstant              = "cm-path"
	cmPathFlagUsageConstant             = "Path to the cm executable (defaults to the configured path or cm on PATH)"
	serverFlagNameConstant              = "server"
	serverFlagUsageConstant             = "Plastic SCM server, for example org@cloud (defaults to the configured or detected server)"
	limitFlagNameConstant               = "limit"
	limitFlagUsageConstant              = "Maximum number of changesets to print (defaults to the configured result limit)"
	concurrencyFlagNameConstant         = "concurrency"
	concurrencyFlagUsageConstant        = "Number of repositories queried at once (defaults to the configured concurrency)"
	argumentsFlagNameConstant           = "arguments"
	argumentsFlagUsageConstant          = "JSON object with the operation arguments"
	outputFormatFlagDescriptionConstant = "Output format."
	operationNamesSeparatorConstant     = ", "
	serverDetectedMessageConstant       = "server detected"
	serverFieldConstant                 = "server"
	configurationFileFieldConstant      = "config_file"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the Plastic SCM configuration.
type ConfigurationProvider func() Configuration

// HumanReadableLoggingProvider reports whether console lifecycle messages should be emitted.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Plastic SCM cobra commands with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	CommandRunner                execshell.CommandRunner
	FileSystem                   afero.Fs
	IdentifierGenerator          InvocationIdentifierGenerator
}

// OutputFlagUsage describes the persistent output flag registered by the application.
func OutputFlagUsage() string {
	return flagutils.FormatChoiceUsage(OutputFormatJSON, SupportedOutputFormats(), outputFormatFlagDescriptionConstant)
}

// Build constructs the check-installed, validate-path, detect-server, repos, changesets, and invoke commands.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	checkInstalledCommand := &cobra.Command{
		Use:   checkInstalledCommandUseConstant,
		Short: checkInstalledCommandShortConstant,
		Long:  checkInstalledCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runCheckInstalled,
	}
	checkInstalledCommand.Flags().String(cmPathFlagNameConstant, "", cmPathFlagUsageConstant)

	validatePathCommand := &cobra.Command{
		Use:   validatePathCommandUseConstant,
		Short: validatePathCommandShortConstant,
		Long:  validatePathCommandLongConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runValidatePath,
	}

	detectServerCommand := &cobra.Command{
		Use:   detectServerCommandUseConstant,
		Short: detectServerCommandShortConstant,
		Long:  detectServerCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runDetectServer,
	}
	detectServerCommand.Flags().String(cmPathFlagNameConstant, "", cmPathFlagUsageConstant)

	reposCommand := &cobra.Command{
		Use:   reposCommandUseConstant,
		Short: reposCommandShortConstant,
		Long:  reposCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runRepositories,
	}
	reposCommand.Flags().String(cmPathFlagNameConstant, "", cmPathFlagUsageConstant)
	reposCommand.Flags().String(serverFlagNameConstant, "", serverFlagUsageConstant)

	changesetsCommand := &cobra.Command{
		Use:   changesetsCommandUseConstant,
		Short: changesetsCommandShortConstant,
		Long:  changesetsCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runChangesets,
	}
	changesetsCommand.Flags().String(cmPathFlagNameConstant, "", cmPathFlagUsageConstant)
	changesetsCommand.Flags().String(serverFlagNameConstant, "", serverFlagUsageConstant)
	changesetsCommand.Flags().Int(limitFlagNameConstant, 0, limitFlagUsageConstant)
	changesetsCommand.Flags().Int(concurrencyFlagNameConstant, 0, concurrencyFlagUsageConstant)

	invokeCommand := &cobra.Command{
		Use:   invokeCommandUseConstant,
		Short: invokeCommandShortConstant,
		Long:  fmt.Sprintf(invokeCommandLongTemplateConstant, describeOperationNames()),
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runInvoke,
	}
	invokeCommand.Flags().String(argumentsFlagNameConstant, emptyArgumentsObjectConstant, argumentsFlagUsageConstant)

	return []*cobra.Command{
		checkInstalledCommand,
		validatePathCommand,
		detectServerCommand,
		reposCommand,
		changesetsCommand,
		invokeCommand,
	}, nil
}

func (builder *CommandBuilder) runCheckInstalled(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	surface, surfaceError := builder.buildSurface(configuration)
	if surfaceError != nil {
		return surfaceError
	}

	installed, checkError := surface.CheckInstalled(command.Context(), CheckInstalledRequest{ExecutablePath: stringFlagValue(command, cmPathFlagNameConstant)})
	if checkError != nil {
		return checkError
	}
	return builder.render(command, configuration, installed)
}

func (builder *CommandBuilder) runValidatePath(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	surface, surfaceError := builder.buildSurface(configuration)
	if surfaceError != nil {
		return surfaceError
	}

	validatedPath, validationError := surface.ValidatePath(command.Context(), ValidatePathRequest{ExecutablePath: arguments[0]})
	if validationError != nil {
		return validationError
	}
	return builder.render(command, configuration, validatedPath)
}

func (builder *CommandBuilder) runDetectServer(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	surface, surfaceError := builder.buildSurface(configuration)
	if surfaceError != nil {
		return surfaceError
	}

	server, detectionError := surface.DetectServer(command.Context(), DetectServerRequest{ExecutablePath: stringFlagValue(command, cmPathFlagNameConstant)})
	if detectionError != nil {
		return detectionError
	}
	return builder.render(command, configuration, server)
}

func (builder *CommandBuilder) runRepositories(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	surface, surfaceError := builder.buildSurface(configuration)
	if surfaceError != nil {
		return surfaceError
	}

	executablePath := stringFlagValue(command, cmPathFlagNameConstant)
	server, serverError := builder.resolveServer(command, surface, configuration, executablePath)
	if serverError != nil {
		return serverError
	}

	repositories, listError := surface.ListRepositories(command.Context(), ListRepositoriesRequest{Server: server, ExecutablePath: executablePath})
	if listError != nil {
		return listError
	}
	return builder.render(command, configuration, repositories)
}

func (builder *CommandBuilder) runChangesets(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(concurrencyFlagNameConstant) {
		concurrency, _ := command.Flags().GetInt(concurrencyFlagNameConstant)
		configuration.Concurrency = concurrency
		if validationError := configuration.Validate(concurrencyFlagNameConstant); validationError != nil {
			return validationError
		}
	}

	surface, surfaceError := builder.buildSurface(configuration)
	if surfaceError != nil {
		return surfaceError
	}

	executablePath := stringFlagValue(command, cmPathFlagNameConstant)
	server, serverError := builder.resolveServer(command, surface, configuration, executablePath)
	if serverError != nil {
		return serverError
	}

	request := ListAllChangesetsRequest{Server: server, ExecutablePath: executablePath}
	if command.Flags().Changed(limitFlagNameConstant) {
		limit, _ := command.Flags().GetInt(limitFlagNameConstant)
		request.Limit = &limit
	}

	changesets, listError := surface.ListAllChangesets(command.Context(), request)
	if listError != nil {
		return listError
	}
	return builder.render(command, configuration, changesets)
}

func (builder *CommandBuilder) runInvoke(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	surface, surfaceError := builder.buildSurface(configuration)
	if surfaceError != nil {
		return surfaceError
	}

	rawArguments := stringFlagValue(command, argumentsFlagNameConstant)
	response := surface.Invoke(command.Context(), arguments[0], []byte(rawArguments))
	if renderError := builder.render(command, configuration, response); renderError != nil {
		return renderError
	}
	if !response.Succeeded() {
		return errors.New(response.Error)
	}
	return nil
}

func (builder *CommandBuilder) resolveServer(command *cobra.Command, surface *Surface, configuration Configuration, executablePath string) (string, error) {
	if server := stringFlagValue(command, serverFlagNameConstant); len(server) > 0 {
		return server, nil
	}
	if len(configuration.Server) > 0 {
		return configuration.Server, nil
	}

	detectedServer, detectionError := surface.DetectServer(command.Context(), DetectServerRequest{ExecutablePath: executablePath})
	if detectionError != nil {
		return "", detectionError
	}
	detectionFields := []zap.Field{zap.String(serverFieldConstant, detectedServer)}
	if configurationFilePath, available := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context()); available {
		detectionFields = append(detectionFields, zap.String(configurationFileFieldConstant, configurationFilePath))
	}
	builder.resolveLogger().Info(serverDetectedMessageConstant, detectionFields...)
	return detectedServer, nil
}

func (builder *CommandBuilder) buildSurface(configuration Configuration) (*Surface, error) {
	logger := builder.resolveLogger()

	commandRunner := builder.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}

	var observers []execshell.CommandEventObserver
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, observers...)
	if executorError != nil {
		return nil, executorError
	}

	client, clientError := plasticcli.NewClient(shellExecutor)
	if clientError != nil {
		return nil, clientError
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	pathValidator, validatorError := plasticcli.NewPathValidator(fileSystem, shellExecutor)
	if validatorError != nil {
		return nil, validatorError
	}

	aggregator, aggregatorError := history.NewAggregator(client, logger, configuration.HistorySettings())
	if aggregatorError != nil {
		return nil, aggregatorError
	}

	return NewSurface(SurfaceDependencies{
		Client:                client,
		PathValidator:         pathValidator,
		Collector:             aggregator,
		Logger:                logger,
		DefaultExecutablePath: configuration.ExecutablePath,
		OperationTimeout:      configuration.OperationTimeout,
		IdentifierGenerator:   builder.IdentifierGenerator,
	})
}

func (builder *CommandBuilder) render(command *cobra.Command, configuration Configuration, value any) error {
	outputFormat, formatError := ParseOutputFormat(configuration.Output)
	if formatError != nil {
		return formatError
	}
	return NewResultRenderer(utils.NewFlushingWriter(command.OutOrStdout()), outputFormat).Render(value)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func stringFlagValue(command *cobra.Command, flagName string) string {
	flagValue, flagError := command.Flags().GetString(flagName)
	if flagError != nil {
		return ""
	}
	return strings.TrimSpace(flagValue)
}

func describeOperationNames() string {
	operationNames := OperationNames()
	names := make([]string, 0, len(operationNames))
	for _, operationName := range operationNames {
		names = append(names, string(operationName))
	}
	return strings.Join(names, operationNamesSeparatorConstant)
}
