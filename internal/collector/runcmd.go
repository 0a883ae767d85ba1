package collector

import (
	"context"
	"os/exec"
	"time"

	"github.com/k3y5tr0k3/sysmonify/internal/errors"
)

// commandTimeout bounds the external tools collectors shell out to
// (lsblk, lspci, nvidia-smi). A tool that hangs must never stall a
// sampling pass past its deadline.
const commandTimeout = 2 * time.Second

// runCommand executes an external tool and returns its stdout.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(cctx, name, args...).Output()
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return nil, errors.WrapWithCode(cctx.Err(), errors.ErrCollect,
				name+" timed out", "")
		}
		return nil, errors.Wrap(err, name+" failed")
	}
	return out, nil
}
