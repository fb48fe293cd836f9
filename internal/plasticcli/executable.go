package plasticcli

import (
	"runtime"

	"github.com/temirov/plastic-deck/internal/execshell"
)

const (
	windowsOperatingSystemConstant    = "windows"
	windowsExecutableFileNameConstant = "cm.exe"
	defaultExecutableFileNameConstant = "cm"
)

// ExecutableSelection chooses the cm executable for one invocation.
// The only implementations are DefaultExecutable and ExplicitExecutable.
type ExecutableSelection interface {
	// CommandName returns the executable handed to the process runner.
	CommandName() execshell.CommandName
	sealedExecutableSelection()
}

// DefaultExecutable selects cm by bare name, resolved through the PATH lookup of the operating system.
type DefaultExecutable struct{}

// CommandName implements ExecutableSelection.
func (DefaultExecutable) CommandName() execshell.CommandName {
	return execshell.CommandPlastic
}

func (DefaultExecutable) sealedExecutableSelection() {}

// ExplicitExecutable selects a configured executable path, used verbatim.
type ExplicitExecutable struct {
	Path string
}

// CommandName implements ExecutableSelection.
func (explicitExecutable ExplicitExecutable) CommandName() execshell.CommandName {
	return execshell.CommandName(explicitExecutable.Path)
}

func (ExplicitExecutable) sealedExecutableSelection() {}

// NewExecutableSelection maps an optional configured path to a selection. An empty path selects DefaultExecutable.
func NewExecutableSelection(optionalPath string) ExecutableSelection {
	if len(optionalPath) == 0 {
		return DefaultExecutable{}
	}
	return ExplicitExecutable{Path: optionalPath}
}

// PlatformExecutableFileName returns the cm file name expected inside an installation directory.
func PlatformExecutableFileName() string {
	return executableFileNameFor(runtime.GOOS)
}

func executableFileNameFor(operatingSystem string) string {
	if operatingSystem == windowsOperatingSystemConstant {
		return windowsExecutableFileNameConstant
	}
	return defaultExecutableFileNameConstant
}

func resolveCommandName(selection ExecutableSelection) execshell.CommandName {
	if selection == nil {
		return DefaultExecutable{}.CommandName()
	}
	return selection.CommandName()
}
