package convert

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Command describes one invocation of an external converter.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output returns stderr when present, stdout otherwise.
func (r Result) Output() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Runner executes external commands.
// A non-zero exit is reported through Result.ExitCode, not as an error;
// the error return is reserved for commands that could not be started.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands as local subprocesses.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run starts the command and waits for it to exit.
// When cmd.Timeout is set the process is killed once it elapses.
func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if c.ProcessState != nil {
		res.ExitCode = c.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
		return res, nil
	}
	return res, err
}
