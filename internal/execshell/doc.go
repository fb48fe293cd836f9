// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions used to run the
// Plastic SCM cm CLI in a testable manner. A non-zero exit status is reported
// as data in ExecutionResult; only processes that cannot be launched produce a
// CommandExecutionError.
package execshell
