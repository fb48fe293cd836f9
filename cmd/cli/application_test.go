package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/plastic-deck/internal/commands"
	"github.com/temirov/plastic-deck/internal/execshell"
	"github.com/temirov/plastic-deck/internal/utils"
)

const (
	testConfigurationFileNameConstant   = "config.yaml"
	testServerConstant                  = "acme@cloud"
	testRepositoriesCommandLineConstant = "cm find repos on repserver 'acme@cloud'"
	testServerEnvironmentVariable       = "PLASTICDECK_PLASTIC_SERVER"
)

type scriptedCommandRunner struct {
	outputs          map[string]string
	recordedCommands []string
}

func (runner *scriptedCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	commandLine := strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), " ")
	runner.recordedCommands = append(runner.recordedCommands, commandLine)

	standardOutput, known := runner.outputs[commandLine]
	if !known {
		return execshell.ExecutionResult{StandardError: "unexpected command", ExitCode: 1}, nil
	}
	return execshell.ExecutionResult{StandardOutput: standardOutput}, nil
}

type applicationFixture struct {
	application *Application
	runner      *scriptedCommandRunner
	output      *bytes.Buffer
	diagnostics *bytes.Buffer
	directory   string
}

func newApplicationFixture(testInstance *testing.T, configurationContent string) applicationFixture {
	testInstance.Helper()

	configurationDirectory := testInstance.TempDir()
	if len(configurationContent) > 0 {
		configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
		require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))
	}

	fixture := applicationFixture{
		runner: &scriptedCommandRunner{outputs: map[string]string{
			"cm lrep":                           "1 game@acme@cloud\n",
			testRepositoriesCommandLineConstant: "game\nengine\n",
		}},
		output:      &bytes.Buffer{},
		diagnostics: &bytes.Buffer{},
		directory:   configurationDirectory,
	}
	fixture.application = newApplication(applicationDependencies{
		commandRunner: fixture.runner,
		fileSystem:    afero.NewMemMapFs(),
		loggerFactory: utils.NewLoggerFactoryWithWriter(fixture.diagnostics),
		searchPaths:   []string{configurationDirectory},
	})
	fixture.application.rootCommand.SetOut(fixture.output)
	fixture.application.rootCommand.SetErr(&bytes.Buffer{})
	return fixture
}

func (fixture applicationFixture) run(arguments ...string) error {
	fixture.application.rootCommand.SetArgs(arguments)
	return fixture.application.ExecuteContext(context.Background())
}

func TestApplicationRegistersPlasticCommands(testInstance *testing.T) {
	application := NewApplication()

	commandNames := make([]string, 0)
	for _, subcommand := range application.rootCommand.Commands() {
		commandNames = append(commandNames, subcommand.Name())
	}
	for _, expectedName := range []string{"changesets", "check-installed", "detect-server", "invoke", "repos", "validate-path"} {
		require.Contains(testInstance, commandNames, expectedName)
	}

	for _, flagName := range []string{configFileFlagNameConstant, logLevelFlagNameConstant, logFormatFlagNameConstant, outputFlagNameConstant} {
		require.NotNil(testInstance, application.rootCommand.PersistentFlags().Lookup(flagName))
	}
}

func TestApplicationVersionFlag(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance, "")
	require.NoError(testInstance, fixture.run("--version"))
	require.Equal(testInstance, "plastic-deck version: "+resolveApplicationVersion()+"\n", fixture.output.String())
	require.Empty(testInstance, fixture.runner.recordedCommands)
}

func TestApplicationConfigurationSources(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		configurationContent string
		environmentServer    string
		arguments            []string
		expectedOutput       string
		expectedCommands     []string
	}{
		{
			name:             "detected_server_without_configuration",
			arguments:        []string{"repos"},
			expectedOutput:   "[\n  {\n    \"name\": \"game\",\n    \"server\": \"acme@cloud\"\n  },\n  {\n    \"name\": \"engine\",\n    \"server\": \"acme@cloud\"\n  }\n]\n",
			expectedCommands: []string{"cm lrep", testRepositoriesCommandLineConstant},
		},
		{
			name:                 "configuration_file_server_and_output",
			configurationContent: "plastic:\n  server: acme@cloud\n  output: yaml\n",
			arguments:            []string{"repos"},
			expectedOutput:       "- name: game\n  server: acme@cloud\n- name: engine\n  server: acme@cloud\n",
			expectedCommands:     []string{testRepositoriesCommandLineConstant},
		},
		{
			name:              "environment_server",
			environmentServer: testServerConstant,
			arguments:         []string{"repos", "--output", "yaml"},
			expectedOutput:    "- name: game\n  server: acme@cloud\n- name: engine\n  server: acme@cloud\n",
			expectedCommands:  []string{testRepositoriesCommandLineConstant},
		},
		{
			name:                 "output_flag_overrides_configuration",
			configurationContent: "plastic:\n  output: yaml\n",
			arguments:            []string{"detect-server", "--output", "json"},
			expectedOutput:       "\"acme@cloud\"\n",
			expectedCommands:     []string{"cm lrep"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			if len(testCase.environmentServer) > 0 {
				testInstance.Setenv(testServerEnvironmentVariable, testCase.environmentServer)
			}

			fixture := newApplicationFixture(testInstance, testCase.configurationContent)
			require.NoError(testInstance, fixture.run(testCase.arguments...))
			require.Equal(testInstance, testCase.expectedOutput, fixture.output.String())
			require.Equal(testInstance, testCase.expectedCommands, fixture.runner.recordedCommands)
		})
	}
}

func TestApplicationRejectsInvalidConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		configurationContent string
		arguments            []string
		expectedError        string
	}{
		{
			name:          "log_level_flag",
			arguments:     []string{"detect-server", "--log-level", "verbose"},
			expectedError: "invalid common configuration: log_level must be one of: debug info warn error",
		},
		{
			name:                 "log_format",
			configurationContent: "common:\n  log_format: pretty\n",
			arguments:            []string{"detect-server"},
			expectedError:        "invalid common configuration: log_format must be one of: structured console",
		},
		{
			name:                 "concurrency",
			configurationContent: "plastic:\n  concurrency: 0\n",
			arguments:            []string{"detect-server"},
			expectedError:        "invalid plastic configuration: concurrency must be at least 1",
		},
		{
			name:          "output_flag",
			arguments:     []string{"detect-server", "--output", "xml"},
			expectedError: "invalid plastic configuration: output must be one of: json yaml",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newApplicationFixture(testInstance, testCase.configurationContent)
			require.EqualError(testInstance, fixture.run(testCase.arguments...), testCase.expectedError)
			require.Empty(testInstance, fixture.runner.recordedCommands)
		})
	}
}

func TestApplicationExplicitConfigurationFile(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance, "")
	explicitPath := filepath.Join(testInstance.TempDir(), "team.yaml")
	require.NoError(testInstance, os.WriteFile(explicitPath, []byte("plastic:\n  server: acme@cloud\n"), 0o600))

	require.NoError(testInstance, fixture.run("repos", "--config", explicitPath))
	require.Equal(testInstance, []string{testRepositoriesCommandLineConstant}, fixture.runner.recordedCommands)

	configurationFilePath, available := fixture.application.commandContextAccessor.ConfigurationFilePath(fixture.application.rootCommand.Context())
	require.True(testInstance, available)
	require.Equal(testInstance, explicitPath, configurationFilePath)

	missingFixture := newApplicationFixture(testInstance, "")
	missingError := missingFixture.run("repos", "--config", filepath.Join(testInstance.TempDir(), "missing.yaml"))
	require.ErrorContains(testInstance, missingError, "unable to load configuration")
}

func TestApplicationConsoleFormatLogsCommandLifecycle(testInstance *testing.T) {
	fixture := newApplicationFixture(testInstance, "plastic:\n  server: acme@cloud\n")
	require.NoError(testInstance, fixture.run("repos", "--log-format", "console"))
	require.Contains(testInstance, fixture.diagnostics.String(), "Listing repositories on acme@cloud")
	require.True(testInstance, fixture.application.humanReadableLoggingEnabled())
}

func TestEmbeddedDefaultConfigurationMatchesDefaults(testInstance *testing.T) {
	configurationData, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(configurationData)))

	require.Equal(testInstance, string(utils.LogLevelInfo), viperInstance.GetString(commonLogLevelConfigKeyConstant))
	require.Equal(testInstance, string(utils.LogFormatStructured), viperInstance.GetString(commonLogFormatConfigKeyConstant))

	var plasticConfiguration commands.Configuration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &plasticConfiguration,
	})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(viperInstance.GetStringMap(plasticConfigurationKeyConstant)))
	require.Equal(testInstance, commands.DefaultConfiguration(), plasticConfiguration)

	mutatedData, _ := EmbeddedDefaultConfiguration()
	mutatedData[0] = '#'
	freshData, _ := EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, mutatedData[0], freshData[0])
}
