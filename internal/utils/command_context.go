package utils

import "context"

type commandContextKey[Value any] struct {
	name string
}

func (key commandContextKey[Value]) attach(parentContext context.Context, value Value) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func (key commandContextKey[Value]) lookup(executionContext context.Context) (Value, bool) {
	var zeroValue Value
	if executionContext == nil {
		return zeroValue, false
	}
	value, available := executionContext.Value(key).(Value)
	if !available {
		return zeroValue, false
	}
	return value, true
}

var configurationFilePathContextKey = commandContextKey[string]{name: "configuration_file_path"}

// CommandContextAccessor manages values the application attaches to command contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file that was loaded. An empty path means none was found.
func (CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return configurationFilePathContextKey.attach(parentContext, configurationFilePath)
}

// ConfigurationFilePath returns the recorded configuration file path.
func (CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return configurationFilePathContextKey.lookup(executionContext)
}
