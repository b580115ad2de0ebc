package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
)

// lockedBuffer collects stderr of the capture process.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// startProcess launches the platform capture command in MJPEG streaming
// mode and pumps its frames into the track until it exits or is stopped.
func (t *Track) startProcess(cfg Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	cmd, err := captureCommand(ctx, cfg)
	if err != nil {
		cancel()
		return err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w, stderr: %s", cmd.Path, err, stderr.String())
	}
	t.cancel = cancel
	logger.Info("Started camera streaming process", "command", cmd.Path, "width", cfg.Width, "height", cfg.Height, "fps", cfg.FPS)

	pumped := make(chan error, 1)
	go func() { pumped <- t.pump(stdout) }()

	go func() {
		pumpErr := <-pumped
		err := cmd.Wait()
		select {
		case <-t.done:
			logger.Info("Camera streaming process stopped")
			t.end(ErrTrackEnded)
			return
		default:
		}
		if err == nil {
			err = pumpErr
		}
		logger.Warn("Camera streaming process exited", "error", err, "stderr", stderr.String())
		t.end(err)
	}()
	return nil
}

// pump reads frames until the pipe closes.
func (t *Track) pump(r io.Reader) error {
	scanner := NewFrameScanner(r)
	for {
		frame, err := scanner.Next()
		switch {
		case err == nil:
			t.deliver(frame)
		case errors.Is(err, ErrFrameOverflow):
			slog.Warn("Frame buffer overflow, resetting")
		case errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}
	}
}

// lookPath returns the first of names found in PATH.
func lookPath(names ...string) (string, error) {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %v found", ErrNoCamera, names)
}
