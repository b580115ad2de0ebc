//go:build darwin

package camera

import (
	"context"
	"fmt"
	"os/exec"
)

// macFrameRate is forced because most Mac cameras reject other rates.
const macFrameRate = 30

// captureCommand builds an ffmpeg command reading the default AVFoundation
// camera and writing MJPEG to stdout.
func captureCommand(ctx context.Context, cfg Config) (*exec.Cmd, error) {
	path, err := lookPath("ffmpeg")
	if err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx,
		path,
		"-f", "avfoundation",
		"-framerate", fmt.Sprintf("%d", macFrameRate),
		"-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-i", "0",
		"-f", "mjpeg",
		"-q:v", "5",
		"-hide_banner",
		"-loglevel", "error",
		"-",
	), nil
}
