//go:build !darwin && !(linux && arm64)

package camera

import (
	"context"
	"os/exec"
)

func captureCommand(ctx context.Context, cfg Config) (*exec.Cmd, error) {
	return nil, ErrNoCamera
}
