package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/ginit/cmd/cli"
	"github.com/temirov/ginit/internal/ui"
)

const (
	exitErrorTemplateConstant = "%v\n"
	failureExitCodeConstant   = 1
)

// main executes the ginit command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}
	var reportedError ui.ReportedError
	if !errors.As(executionError, &reportedError) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(failureExitCodeConstant)
}
