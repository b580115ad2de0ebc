// Package camera is a MediaDevices backend for a single local camera driven
// by an external MJPEG capture process: rpicam-vid on a Raspberry Pi and
// ffmpeg on macOS. Each acquired stream runs its own process.
package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

// DeviceID identifies the one camera this backend drives.
const DeviceID = "camera0"

// staleAfter is how long a read waits before the stream counts as stalled.
const staleAfter = 5 * time.Second

var (
	ErrTrackEnded = errors.New("camera track ended")
	ErrStale      = errors.New("no frame within 5s")
	// ErrNoCamera is returned when no capture process can be started here.
	ErrNoCamera = errors.New("camera capture not available on this platform")
	// ErrUnsupportedConstraint is returned for any advanced constraint.
	ErrUnsupportedConstraint = errors.New("constraint not supported by the capture process")
)

// Config holds camera configuration
type Config struct {
	Width  int
	Height int
	FPS    int
	// Placeholder serves generated frames when the capture process is
	// unavailable, for development without a camera.
	Placeholder bool
}

func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = 640
	}
	if c.Height == 0 {
		c.Height = 480
	}
	if c.FPS == 0 {
		c.FPS = 30
	}
	return c
}

// Devices opens the local camera. It does not enumerate sources.
type Devices struct {
	cfg    Config
	logger *slog.Logger

	mu             sync.Mutex
	loggedFallback bool
}

var _ preview.MediaDevices = (*Devices)(nil)

// NewDevices creates a camera backend with the given configuration.
func NewDevices(cfg Config, logger *slog.Logger) *Devices {
	if logger == nil {
		logger = slog.Default()
	}
	return &Devices{cfg: cfg.withDefaults(), logger: logger}
}

// GetUserMedia starts a capture process. Facing mode is a preference the
// single camera always satisfies; an exact device id must be DeviceID.
func (d *Devices) GetUserMedia(ctx context.Context, c preview.Constraints) (preview.Stream, error) {
	if c.DeviceID != "" && c.DeviceID != DeviceID {
		return nil, fmt.Errorf("unknown camera device %q", c.DeviceID)
	}
	cfg := d.cfg
	if c.IdealWidth > 0 && c.IdealHeight > 0 {
		cfg.Width, cfg.Height = c.IdealWidth, c.IdealHeight
	}

	t := newTrack(cfg)
	err := t.startProcess(cfg, d.logger)
	if err != nil {
		if !cfg.Placeholder {
			return nil, err
		}
		d.mu.Lock()
		if !d.loggedFallback {
			d.logger.Warn("Camera capture failed, using placeholder frames", "error", err)
			d.loggedFallback = true
		}
		d.mu.Unlock()
		t.startPlaceholder(cfg)
	}
	return &Stream{track: t}, nil
}

// Stream carries the one video track of a capture process.
type Stream struct {
	track *Track
}

func (s *Stream) VideoTracks() []preview.Track { return []preview.Track{s.track} }

// Track delivers decoded frames from a capture process.
type Track struct {
	width  int
	height int

	frames chan []byte
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc

	ended  chan struct{}
	endErr error
}

func newTrack(cfg Config) *Track {
	return &Track{
		width:  cfg.Width,
		height: cfg.Height,
		frames: make(chan []byte, 1),
		done:   make(chan struct{}),
		ended:  make(chan struct{}),
	}
}

var _ preview.Track = (*Track)(nil)

func (t *Track) Settings() preview.TrackSettings {
	return preview.TrackSettings{
		DeviceID:   DeviceID,
		Width:      t.width,
		Height:     t.height,
		FacingMode: preview.FacingEnvironment,
	}
}

// Capabilities reports the fixed capture size; nothing else is adjustable.
func (t *Track) Capabilities() preview.Capabilities {
	w, h := float64(t.width), float64(t.height)
	return preview.Capabilities{
		Width:  &preview.Range{Min: w, Max: w, Step: 1},
		Height: &preview.Range{Min: h, Max: h, Step: 1},
	}
}

func (t *Track) ApplyConstraints(ctx context.Context, c preview.AdvancedConstraints) error {
	if c.Zoom != nil || c.FocusMode != "" || c.FocusDistance != nil || c.Torch != nil {
		return ErrUnsupportedConstraint
	}
	return nil
}

// ReadFrame blocks for the next frame and decodes it.
func (t *Track) ReadFrame(ctx context.Context) (image.Image, error) {
	timer := time.NewTimer(staleAfter)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, ErrTrackEnded
	case data := <-t.frames:
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode frame: %w", err)
		}
		return img, nil
	case <-t.ended:
		return nil, fmt.Errorf("%w: %v", ErrTrackEnded, t.endErr)
	case <-timer.C:
		return nil, ErrStale
	}
}

// Stop terminates the capture process.
func (t *Track) Stop() {
	t.once.Do(func() {
		close(t.done)
		if t.cancel != nil {
			t.cancel()
		}
	})
}

// deliver keeps only the most recent frame; there is a single producer.
func (t *Track) deliver(frame []byte) {
	select {
	case t.frames <- frame:
	default:
		select {
		case <-t.frames:
		default:
		}
		t.frames <- frame
	}
}

func (t *Track) end(err error) {
	t.endErr = err
	close(t.ended)
}

// startPlaceholder generates frames at the configured rate until stopped.
func (t *Track) startPlaceholder(cfg Config) {
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				frame, err := placeholderJPEG(cfg.Width, cfg.Height)
				if err != nil {
					t.end(err)
					return
				}
				t.deliver(frame)
			}
		}
	}()
}

// placeholderJPEG creates a simple colored frame whose red channel changes
// every second.
func placeholderJPEG(width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	color := byte(time.Now().Unix() % 256)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := y*img.Stride + x*4
			img.Pix[offset] = color
			img.Pix[offset+1] = byte((x * 255) / width)
			img.Pix[offset+2] = byte((y * 255) / height)
			img.Pix[offset+3] = 255
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
