package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/temirov/plastic-deck/internal/history"
	"github.com/temirov/plastic-deck/internal/plasticcli"
	"github.com/temirov/plastic-deck/internal/utils"
	pathutils "github.com/temirov/plastic-deck/internal/utils/path"
)

var executablePathHomeDirectoryExpander = pathutils.NewHomeExpander()

const (
	configurationKeyTemplateConstant                 = "%s.%s"
	cmPathConfigurationKeyConstant                   = "cm_path"
	serverConfigurationKeyConstant                   = "server"
	resultLimitConfigurationKeyConstant              = "result_limit"
	repositoryChangesetLimitConfigurationKeyConstant = "repository_changeset_limit"
	concurrencyConfigurationKeyConstant              = "concurrency"
	operationTimeoutConfigurationKeyConstant         = "operation_timeout"
	outputConfigurationKeyConstant                   = "output"
	configurationFieldTagConstant                    = "mapstructure"
	invalidConfigurationTemplateConstant             = "invalid %s configuration: %s %s"
)

// Configuration stores the persisted Plastic SCM settings.
type Configuration struct {
	ExecutablePath           string        `mapstructure:"cm_path"`
	Server                   string        `mapstructure:"server"`
	ResultLimit              int           `mapstructure:"result_limit" validate:"gte=1"`
	RepositoryChangesetLimit int           `mapstructure:"repository_changeset_limit" validate:"gte=1"`
	Concurrency              int           `mapstructure:"concurrency" validate:"gte=1,lte=32"`
	OperationTimeout         time.Duration `mapstructure:"operation_timeout" validate:"gte=0s"`
	Output                   string        `mapstructure:"output" validate:"oneof=json yaml"`
}

// DefaultConfiguration returns the baseline Plastic SCM settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		ExecutablePath:           "",
		Server:                   "",
		ResultLimit:              history.DefaultResultLimit,
		RepositoryChangesetLimit: plasticcli.DefaultRepositoryChangesetLimit,
		Concurrency:              history.DefaultConcurrency,
		OperationTimeout:         0,
		Output:                   string(OutputFormatJSON),
	}
}

// DefaultConfigurationValues returns viper defaults for the settings rooted at configurationKey.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		qualifiedConfigurationKey(configurationKey, cmPathConfigurationKeyConstant):                   defaults.ExecutablePath,
		qualifiedConfigurationKey(configurationKey, serverConfigurationKeyConstant):                   defaults.Server,
		qualifiedConfigurationKey(configurationKey, resultLimitConfigurationKeyConstant):              defaults.ResultLimit,
		qualifiedConfigurationKey(configurationKey, repositoryChangesetLimitConfigurationKeyConstant): defaults.RepositoryChangesetLimit,
		qualifiedConfigurationKey(configurationKey, concurrencyConfigurationKeyConstant):              defaults.Concurrency,
		qualifiedConfigurationKey(configurationKey, operationTimeoutConfigurationKeyConstant):         defaults.OperationTimeout.String(),
		qualifiedConfigurationKey(configurationKey, outputConfigurationKeyConstant):                   defaults.Output,
	}
}

func qualifiedConfigurationKey(configurationKey string, settingKey string) string {
	if len(configurationKey) == 0 {
		return settingKey
	}
	return fmt.Sprintf(configurationKeyTemplateConstant, configurationKey, settingKey)
}

// Sanitize trims textual values, expands a leading "~" in the executable path, and lowercases the output format.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.ExecutablePath = executablePathHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.ExecutablePath))
	sanitized.Server = strings.TrimSpace(configuration.Server)
	sanitized.Output = strings.ToLower(strings.TrimSpace(configuration.Output))
	return sanitized
}

// Validate checks numeric bounds and the output format.
func (configuration Configuration) Validate(sectionName string) error {
	validationError := utils.NewStructValidator(configurationFieldTagConstant).Struct(configuration)
	if validationError == nil {
		return nil
	}
	violations := utils.FieldViolations(validationError)
	if len(violations) == 0 {
		return validationError
	}
	return fmt.Errorf(invalidConfigurationTemplateConstant, sectionName, violations[0].Field, violations[0].Describe())
}

// HistorySettings converts the configuration into aggregator settings.
func (configuration Configuration) HistorySettings() history.Settings {
	settings := history.DefaultSettings()
	settings.Concurrency = configuration.Concurrency
	settings.RepositoryChangesetLimit = configuration.RepositoryChangesetLimit
	settings.DefaultResultLimit = configuration.ResultLimit
	return settings
}
