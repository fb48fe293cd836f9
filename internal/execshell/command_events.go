package execshell

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports processes that could not be launched.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// compositeCommandEventObserver fans events out to every registered observer.
type compositeCommandEventObserver struct {
	observers []CommandEventObserver
}

func newCompositeCommandEventObserver(observers []CommandEventObserver) compositeCommandEventObserver {
	registeredObservers := make([]CommandEventObserver, 0, len(observers))
	for _, observer := range observers {
		if observer == nil {
			continue
		}
		registeredObservers = append(registeredObservers, observer)
	}
	return compositeCommandEventObserver{observers: registeredObservers}
}

// CommandStarted implements CommandEventObserver.
func (composite compositeCommandEventObserver) CommandStarted(command ShellCommand) {
	for _, observer := range composite.observers {
		observer.CommandStarted(command)
	}
}

// CommandCompleted implements CommandEventObserver.
func (composite compositeCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range composite.observers {
		observer.CommandCompleted(command, result)
	}
}

// CommandExecutionFailed implements CommandEventObserver.
func (composite compositeCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range composite.observers {
		observer.CommandExecutionFailed(command, failure)
	}
}
