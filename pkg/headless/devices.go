package headless

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

var (
	// ErrTrackEnded is returned when reading from a stopped track.
	ErrTrackEnded = errors.New("track ended")
	// ErrOverconstrained is returned when no device satisfies a request.
	ErrOverconstrained = errors.New("overconstrained: no matching device")
)

// DeviceSpec describes a synthetic camera.
type DeviceSpec struct {
	ID           string
	Label        string
	Facing       preview.FacingMode
	Width        int
	Height       int
	FPS          int
	Capabilities preview.Capabilities
}

// DefaultDeviceSpecs is a phone-like camera set: two rear lenses with zoom
// and torch, and a front camera without either.
func DefaultDeviceSpecs() []DeviceSpec {
	return []DeviceSpec{
		{
			ID: "rear-wide", Label: "Back Camera", Facing: preview.FacingEnvironment,
			Width: 640, Height: 480,
			Capabilities: preview.Capabilities{
				Zoom:       &preview.Range{Min: 1, Max: 8, Step: 0.1},
				FocusModes: []string{"continuous", "manual"},
				Torch:      true,
				Width:      &preview.Range{Min: 320, Max: 1920, Step: 1},
				Height:     &preview.Range{Min: 240, Max: 1080, Step: 1},
			},
		},
		{
			ID: "rear-ultra", Label: "Back Ultra Wide Camera", Facing: preview.FacingEnvironment,
			Width: 640, Height: 480,
			Capabilities: preview.Capabilities{
				Zoom: &preview.Range{Min: 1, Max: 2, Step: 0.1},
			},
		},
		{
			ID: "front", Label: "Front Camera", Facing: preview.FacingUser,
			Width: 640, Height: 480,
		},
	}
}

// Devices is a synthetic MediaDevices producing generated test frames.
type Devices struct {
	mu      sync.Mutex
	specs   []DeviceSpec
	failure error
	streams []*Stream
}

// NewDevices returns synthetic devices; DefaultDeviceSpecs when none given.
func NewDevices(specs ...DeviceSpec) *Devices {
	if len(specs) == 0 {
		specs = DefaultDeviceSpecs()
	}
	return &Devices{specs: specs}
}

var (
	_ preview.MediaDevices     = (*Devices)(nil)
	_ preview.DeviceEnumerator = (*Devices)(nil)
)

// FailWith makes subsequent GetUserMedia calls fail with err; nil clears.
func (d *Devices) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failure = err
}

// Streams returns every stream handed out so far.
func (d *Devices) Streams() []*Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Stream(nil), d.streams...)
}

func (d *Devices) EnumerateDevices(ctx context.Context) ([]preview.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	infos := make([]preview.DeviceInfo, 0, len(d.specs))
	for _, s := range d.specs {
		infos = append(infos, preview.DeviceInfo{DeviceID: s.ID, Label: s.Label, Kind: preview.KindVideoInput})
	}
	return infos, nil
}

func (d *Devices) GetUserMedia(ctx context.Context, c preview.Constraints) (preview.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failure != nil {
		return nil, d.failure
	}
	spec, ok := d.match(c)
	if !ok {
		return nil, fmt.Errorf("%w: %+v", ErrOverconstrained, c)
	}
	w, h := spec.Width, spec.Height
	if c.IdealWidth > 0 && c.IdealHeight > 0 {
		w, h = c.IdealWidth, c.IdealHeight
	}
	if w == 0 || h == 0 {
		w, h = 640, 480
	}
	s := &Stream{tracks: []*Track{newTrack(spec, w, h)}}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *Devices) match(c preview.Constraints) (DeviceSpec, bool) {
	if c.DeviceID != "" {
		for _, s := range d.specs {
			if s.ID == c.DeviceID {
				return s, true
			}
		}
		return DeviceSpec{}, false
	}
	if len(d.specs) == 0 {
		return DeviceSpec{}, false
	}
	if c.FacingMode != "" {
		for _, s := range d.specs {
			if s.Facing == c.FacingMode {
				return s, true
			}
		}
	}
	// Facing mode is not an exact constraint.
	return d.specs[0], true
}

// Stream is a synthetic capture stream.
type Stream struct {
	tracks []*Track
}

func (s *Stream) VideoTracks() []preview.Track {
	out := make([]preview.Track, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t
	}
	return out
}

// Tracks returns the concrete tracks.
func (s *Stream) Tracks() []*Track { return s.tracks }

// Track generates a moving test pattern at the device frame rate.
type Track struct {
	spec   DeviceSpec
	width  int
	height int

	mu        sync.Mutex
	zoom      float64
	torch     bool
	focusMode string
	applyErr  error
	stopped   bool
	done      chan struct{}
	seq       int
}

func newTrack(spec DeviceSpec, w, h int) *Track {
	return &Track{spec: spec, width: w, height: h, zoom: 1, done: make(chan struct{})}
}

var _ preview.Track = (*Track)(nil)

func (t *Track) Settings() preview.TrackSettings {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := preview.TrackSettings{
		DeviceID:   t.spec.ID,
		Width:      t.width,
		Height:     t.height,
		FacingMode: t.spec.Facing,
		Torch:      t.torch,
	}
	if t.spec.Capabilities.HasZoom() {
		z := t.zoom
		s.Zoom = &z
	}
	return s
}

func (t *Track) Capabilities() preview.Capabilities { return t.spec.Capabilities }

// FailApplyWith makes ApplyConstraints fail with err; nil clears.
func (t *Track) FailApplyWith(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applyErr = err
}

func (t *Track) ApplyConstraints(ctx context.Context, c preview.AdvancedConstraints) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return ErrTrackEnded
	}
	if t.applyErr != nil {
		return t.applyErr
	}
	caps := t.spec.Capabilities
	if c.Zoom != nil {
		if !caps.HasZoom() {
			return fmt.Errorf("%w: zoom", ErrOverconstrained)
		}
		t.zoom = caps.Zoom.Clamp(*c.Zoom)
	}
	if c.Torch != nil {
		if !caps.Torch {
			return fmt.Errorf("%w: torch", ErrOverconstrained)
		}
		t.torch = *c.Torch
	}
	if c.FocusMode != "" {
		if !caps.HasFocus() {
			return fmt.Errorf("%w: focusMode", ErrOverconstrained)
		}
		t.focusMode = c.FocusMode
	}
	return nil
}

// FocusMode returns the last applied focus mode.
func (t *Track) FocusMode() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.focusMode
}

func (t *Track) ReadFrame(ctx context.Context) (image.Image, error) {
	fps := t.spec.FPS
	if fps <= 0 {
		fps = 30
	}
	timer := time.NewTimer(time.Second / time.Duration(fps))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, ErrTrackEnded
	case <-timer.C:
	}

	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.mu.Unlock()
	return placeholderFrame(t.width, t.height, seq), nil
}

func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.done)
}

// Stopped reports whether Stop was called.
func (t *Track) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// placeholderFrame draws a gradient whose red channel cycles with seq. The
// left edge is dark and the right edge bright in the green channel, so
// mirroring is visible.
func placeholderFrame(width, height, seq int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	red := byte(seq % 256)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := y*img.Stride + x*4
			img.Pix[offset] = red
			img.Pix[offset+1] = byte((x * 255) / width)
			img.Pix[offset+2] = byte((y * 255) / height)
			img.Pix[offset+3] = 255
		}
	}
	return img
}
