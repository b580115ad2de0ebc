// Package mediadev adapts github.com/pion/mediadevices to the preview
// platform interfaces, giving the adapter real enumerable cameras (V4L2 on
// Linux, AVFoundation on macOS).
package mediadev

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/prop"
	xdraw "golang.org/x/image/draw"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

var (
	ErrNoCamera = errors.New("no video input device found")
	// ErrUnsupportedConstraint is returned for any advanced constraint; the
	// drivers expose no zoom, focus or torch controls.
	ErrUnsupportedConstraint = errors.New("constraint not supported by the media driver")
)

// Devices is a preview.MediaDevices and preview.DeviceEnumerator backed by
// the registered pion drivers.
type Devices struct {
	// enumerate and open are swapped in tests.
	enumerate func() []mediadevices.MediaDeviceInfo
	open      func(mediadevices.MediaStreamConstraints) (mediadevices.MediaStream, error)
}

var (
	_ preview.MediaDevices     = (*Devices)(nil)
	_ preview.DeviceEnumerator = (*Devices)(nil)
)

func New() *Devices {
	return &Devices{
		enumerate: mediadevices.EnumerateDevices,
		open:      mediadevices.GetUserMedia,
	}
}

func (d *Devices) EnumerateDevices(ctx context.Context) ([]preview.DeviceInfo, error) {
	var infos []preview.DeviceInfo
	for _, info := range d.enumerate() {
		kind := preview.KindAudioInput
		if info.Kind == mediadevices.VideoInput {
			kind = preview.KindVideoInput
		}
		infos = append(infos, preview.DeviceInfo{DeviceID: info.DeviceID, Label: info.Label, Kind: kind})
	}
	return infos, nil
}

// selectDevice resolves constraints to a concrete device id. The drivers do
// not report facing, so it is inferred from labels like the adapter does.
func (d *Devices) selectDevice(ctx context.Context, c preview.Constraints) (preview.DeviceInfo, error) {
	infos, err := d.EnumerateDevices(ctx)
	if err != nil {
		return preview.DeviceInfo{}, err
	}
	var video []preview.DeviceInfo
	for _, info := range infos {
		if info.Kind == preview.KindVideoInput {
			video = append(video, info)
		}
	}
	if c.DeviceID != "" {
		for _, info := range video {
			if info.DeviceID == c.DeviceID {
				return info, nil
			}
		}
		return preview.DeviceInfo{}, fmt.Errorf("%w: %q", ErrNoCamera, c.DeviceID)
	}
	if len(video) == 0 {
		return preview.DeviceInfo{}, ErrNoCamera
	}
	wantRear := c.FacingMode == preview.FacingEnvironment
	for _, info := range video {
		if c.FacingMode != "" && preview.IsRearLabel(info.Label) == wantRear {
			return info, nil
		}
	}
	return video[0], nil
}

func (d *Devices) GetUserMedia(ctx context.Context, c preview.Constraints) (preview.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := d.selectDevice(ctx, c)
	if err != nil {
		return nil, err
	}
	width, height := c.IdealWidth, c.IdealHeight
	if width == 0 || height == 0 {
		width, height = 640, 480
	}

	ms, err := d.open(mediadevices.MediaStreamConstraints{
		Video: func(mc *mediadevices.MediaTrackConstraints) {
			mc.DeviceID = prop.StringExact(info.DeviceID)
			mc.Width = prop.Int(width)
			mc.Height = prop.Int(height)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", info.DeviceID, err)
	}

	s := &Stream{}
	for _, t := range ms.GetVideoTracks() {
		vt, ok := t.(*mediadevices.VideoTrack)
		if !ok {
			continue
		}
		s.tracks = append(s.tracks, newTrack(vt, info, width, height))
	}
	if len(s.tracks) == 0 {
		for _, t := range ms.GetTracks() {
			_ = t.Close()
		}
		return nil, fmt.Errorf("%w: stream of %s has no video track", ErrNoCamera, info.DeviceID)
	}
	return s, nil
}

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

// frameReader is the part of pion's video.Reader used here.
type frameReader interface {
	Read() (image.Image, func(), error)
}

// Track wraps a pion video track. Frames are copied out of the driver
// buffer before it is released.
type Track struct {
	track  *mediadevices.VideoTrack
	reader frameReader
	info   preview.DeviceInfo

	mu     sync.Mutex
	width  int
	height int
	closed bool
}

func newTrack(vt *mediadevices.VideoTrack, info preview.DeviceInfo, width, height int) *Track {
	return &Track{
		track:  vt,
		reader: vt.NewReader(false),
		info:   info,
		width:  width,
		height: height,
	}
}

var _ preview.Track = (*Track)(nil)

func (t *Track) Settings() preview.TrackSettings {
	t.mu.Lock()
	defer t.mu.Unlock()
	facing := preview.FacingUser
	if preview.IsRearLabel(t.info.Label) {
		facing = preview.FacingEnvironment
	}
	return preview.TrackSettings{
		DeviceID:   t.info.DeviceID,
		Width:      t.width,
		Height:     t.height,
		FacingMode: facing,
	}
}

func (t *Track) Capabilities() preview.Capabilities { return preview.Capabilities{} }

func (t *Track) ApplyConstraints(ctx context.Context, c preview.AdvancedConstraints) error {
	if c.Zoom != nil || c.FocusMode != "" || c.FocusDistance != nil || c.Torch != nil {
		return ErrUnsupportedConstraint
	}
	return nil
}

// ReadFrame blocks until the driver delivers a frame; ctx is only checked
// before the read.
func (t *Track) ReadFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, release, err := t.reader.Read()
	if err != nil {
		return nil, err
	}
	defer release()

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)

	t.mu.Lock()
	t.width, t.height = b.Dx(), b.Dy()
	t.mu.Unlock()
	return dst, nil
}

func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.track != nil {
		_ = t.track.Close()
	}
}
