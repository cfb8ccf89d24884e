package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"modcompat/internal/errors"
)

func main() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		var exit *exitError
		if stderrors.As(err, &exit) {
			if exit.msg != "" {
				fmt.Fprintln(os.Stderr, exit.msg)
			}
			os.Exit(exit.code)
		}
		printError(os.Stderr, err)
		os.Exit(2)
	}
}

// printError writes err and the suggested fixes of its error code.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var ce *errors.CompatError
	if !stderrors.As(err, &ce) {
		return
	}
	for _, fix := range ce.SuggestedFixes {
		switch {
		case fix.Command != "":
			fmt.Fprintf(w, "  hint: %s\n        %s\n", fix.Description, fix.Command)
		case fix.Path != "":
			fmt.Fprintf(w, "  hint: %s (%s)\n", fix.Description, fix.Path)
		default:
			fmt.Fprintf(w, "  hint: %s\n", fix.Description)
		}
	}
}

// exitError ends the process with code after the command has printed its
// output. Used for policy failures, which are not errors of the tool.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("exit status %d", e.code)
}
