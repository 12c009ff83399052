package transcoder

import (
	"context"
	"os/exec"
)

// commandRunner executes an external program and returns its combined
// stdout and stderr.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
