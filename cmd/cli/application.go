package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/plastic-deck/internal/commands"
	"github.com/temirov/plastic-deck/internal/execshell"
	"github.com/temirov/plastic-deck/internal/utils"
	flagutils "github.com/temirov/plastic-deck/internal/utils/flags"
)

const (
	applicationNameConstant                    = "plastic-deck"
	applicationShortDescriptionConstant        = "Browse Plastic SCM repositories and changesets through the cm CLI"
	applicationLongDescriptionConstant         = "plastic-deck drives the Plastic SCM cm command-line tool to detect the cloud server, list repositories, and merge the recent changesets of every repository into one timeline."
	applicationVersionTemplateConstant         = "{{.Name}} version: {{.Version}}\n"
	developmentVersionConstant                 = "dev"
	configFileFlagNameConstant                 = "config"
	configFileFlagUsageConstant                = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                   = "log-level"
	logLevelFlagDescriptionConstant            = "Override the configured log level."
	logFormatFlagNameConstant                  = "log-format"
	logFormatFlagDescriptionConstant           = "Override the configured log format."
	outputFlagNameConstant                     = "output"
	commonConfigurationKeyConstant             = "common"
	commonLogLevelConfigKeyConstant            = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant           = commonConfigurationKeyConstant + ".log_format"
	plasticConfigurationKeyConstant            = "plastic"
	environmentPrefixConstant                  = "PLASTICDECK"
	configurationNameConstant                  = "config"
	configurationTypeConstant                  = "yaml"
	configurationFieldTagConstant              = "mapstructure"
	configurationInitializedMessageConstant    = "configuration initialized"
	configurationLogLevelFieldConstant         = "log_level"
	configurationLogFormatFieldConstant        = "log_format"
	configurationFileFieldConstant             = "config_file"
	configurationLoadErrorTemplateConstant     = "unable to load configuration: %w"
	invalidCommonConfigurationTemplateConstant = "invalid common configuration: %s %s"
	loggerCreationErrorTemplateConstant        = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant            = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant        = "logger not initialized"
	rootCommandDebugMessageConstant            = "plastic-deck root command invoked"
	logFieldArgumentsConstant                  = "arguments"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Plastic commands.Configuration         `mapstructure:"plastic"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=structured console"`
}

// applicationDependencies holds the collaborators tests replace; zero values select the operating system.
type applicationDependencies struct {
	commandRunner execshell.CommandRunner
	fileSystem    afero.Fs
	loggerFactory *utils.LoggerFactory
	searchPaths   []string
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	outputFlagValue        string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return newApplication(applicationDependencies{})
}

func newApplication(dependencies applicationDependencies) *Application {
	searchPaths := dependencies.searchPaths
	if searchPaths == nil {
		searchPaths = utils.DefaultConfigurationSearchPaths(applicationNameConstant)
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		searchPaths,
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	loggerFactory := dependencies.loggerFactory
	if loggerFactory == nil {
		loggerFactory = utils.NewLoggerFactory()
	}

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          loggerFactory,
		logger:                 zap.NewNop(),
		configuration:          ApplicationConfiguration{Plastic: commands.DefaultConfiguration()},
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(applicationVersionTemplateConstant)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), utils.SupportedLogLevels(), logLevelFlagDescriptionConstant),
	)
	cobraCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), utils.SupportedLogFormats(), logFormatFlagDescriptionConstant),
	)
	cobraCommand.PersistentFlags().StringVar(&application.outputFlagValue, outputFlagNameConstant, "", commands.OutputFlagUsage())

	plasticBuilder := commands.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() commands.Configuration {
			return application.configuration.Plastic
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		CommandRunner:                dependencies.commandRunner,
		FileSystem:                   dependencies.fileSystem,
	}
	plasticCommands, plasticBuildError := plasticBuilder.Build()
	if plasticBuildError == nil {
		cobraCommand.AddCommand(plasticCommands...)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteContext(context.Background())
}

// ExecuteContext runs the command hierarchy under executionContext; cancelling it terminates running cm processes.
func (application *Application) ExecuteContext(executionContext context.Context) error {
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// ExecuteContext builds a fresh application instance and executes it under executionContext.
func ExecuteContext(executionContext context.Context) error {
	return NewApplication().ExecuteContext(executionContext)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range commands.DefaultConfigurationValues(plasticConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, outputFlagNameConstant) {
		application.configuration.Plastic.Output = application.outputFlagValue
	}

	application.configuration.Common.LogLevel = strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))
	application.configuration.Common.LogFormat = strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))
	application.configuration.Plastic = application.configuration.Plastic.Sanitize()

	if validationError := validateCommonConfiguration(application.configuration.Common); validationError != nil {
		return validationError
	}
	if validationError := application.configuration.Plastic.Validate(plasticConfigurationKeyConstant); validationError != nil {
		return validationError
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func validateCommonConfiguration(commonConfiguration ApplicationCommonConfiguration) error {
	validationError := utils.NewStructValidator(configurationFieldTagConstant).Struct(commonConfiguration)
	if validationError == nil {
		return nil
	}
	violations := utils.FieldViolations(validationError)
	if len(violations) == 0 {
		return validationError
	}
	return fmt.Errorf(invalidCommonConfigurationTemplateConstant, violations[0].Field, violations[0].Describe())
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(rootCommandDebugMessageConstant, zap.Strings(logFieldArgumentsConstant, arguments))

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func resolveApplicationVersion() string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available || len(buildInformation.Main.Version) == 0 || buildInformation.Main.Version == "(devel)" {
		return developmentVersionConstant
	}
	return buildInformation.Main.Version
}
