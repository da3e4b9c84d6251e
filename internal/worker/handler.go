package worker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/joshu-sajeev/queuectl/common"
)

// maxOutput is how much of a command's combined output is kept.
const maxOutput = 4 << 10

// Result describes one execution of a command.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner executes a job's command. A non-nil error means the attempt
// failed, whether the process exited non-zero or never started.
type Runner interface {
	Run(ctx context.Context, command string) (Result, error)
}

// ShellRunner runs commands through `<Shell> -c`.
type ShellRunner struct {
	Shell string
}

func NewShellRunner() *ShellRunner {
	return &ShellRunner{Shell: "sh"}
}

func (r *ShellRunner) Run(ctx context.Context, command string) (Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, r.Shell, "-c", command)
	out, err := cmd.CombinedOutput()

	res := Result{
		Output:   tail(out, maxOutput),
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, fmt.Errorf("%w: exit status %d", common.ErrCommandFailed, res.ExitCode)
	}

	res.ExitCode = -1
	return res, fmt.Errorf("%w: %w", common.ErrCommandFailed, err)
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
