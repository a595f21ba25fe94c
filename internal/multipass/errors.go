package multipass

import (
	"fmt"
	"strings"
)

// CommandError describes a multipass invocation that did not succeed.
type CommandError struct {
	// Args are the arguments passed to the binary.
	Args []string

	// ExitCode is the process exit status, or -1 if it never exited normally.
	ExitCode int

	// Stderr is the trimmed standard error output.
	Stderr string

	// Err is the underlying error from the runner or context.
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "multipass %s", strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, " exited with status %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, " failed: %v", e.Err)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, ": %s", e.Stderr)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned by Info when the instance does not exist.
type NotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("instance %q does not exist", e.Name)
}
