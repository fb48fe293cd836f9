package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/temirov/plastic-deck/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the plastic-deck command-line application.
func main() {
	executionContext, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	executionError := cli.ExecuteContext(executionContext)
	stop()
	if executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
