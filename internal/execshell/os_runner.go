package execshell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const replacementCharacterConstant = "�"

// OSCommandRunner starts cm processes through os/exec and captures both output streams.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run starts the process and waits for it. A non-zero exit is reported through ExecutionResult.
// Output is decoded leniently, so text decoding never fails a command.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), slices.Clone(command.Details.Arguments)...)
	process.Dir = command.Details.WorkingDirectory

	var capturedOutput, capturedError bytes.Buffer
	process.Stdout = &capturedOutput
	process.Stderr = &capturedError

	exitCode := successfulExitCodeConstant
	if runError := process.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		exitCode = exitError.ExitCode()
	}

	return ExecutionResult{
		StandardOutput: DecodeOutput(capturedOutput.Bytes()),
		StandardError:  DecodeOutput(capturedError.Bytes()),
		ExitCode:       exitCode,
	}, nil
}

// DecodeOutput converts captured process output into text, replacing invalid UTF-8 with U+FFFD.
func DecodeOutput(output []byte) string {
	if len(output) == 0 {
		return ""
	}
	decodedOutput, decodeError := unicode.UTF8.NewDecoder().Bytes(output)
	if decodeError != nil {
		return strings.ToValidUTF8(string(output), replacementCharacterConstant)
	}
	return string(decodedOutput)
}
