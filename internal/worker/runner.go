package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Runner runs an external program to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs programs as child processes with their output sent to Output.
type ExecRunner struct {
	Output io.Writer
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	out := r.Output
	if out == nil {
		out = os.Stderr
	}
	zerolog.Ctx(ctx).Debug().Str("cmd", name).Str("args", strings.Join(args, " ")).Msg("run")
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
