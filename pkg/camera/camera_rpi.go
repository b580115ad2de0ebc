//go:build linux && arm64

package camera

import (
	"context"
	"fmt"
	"os/exec"
)

// captureCommand builds an rpicam-apps command streaming MJPEG to stdout.
// libcamera-vid is the name on older OS releases.
func captureCommand(ctx context.Context, cfg Config) (*exec.Cmd, error) {
	path, err := lookPath("rpicam-vid", "libcamera-vid")
	if err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx,
		path,
		"--width", fmt.Sprintf("%d", cfg.Width),
		"--height", fmt.Sprintf("%d", cfg.Height),
		"--timeout", "0",
		"--nopreview",
		"--codec", "mjpeg",
		"--output", "-",
		"--framerate", fmt.Sprintf("%d", cfg.FPS),
		// Camera Module 3
		"--awb", "auto",
		"--metering", "average",
	), nil
}
