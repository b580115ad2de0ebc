// Package preview implements the camera session adapter: one stateful object
// that owns at most one capture session bound to a display surface and maps
// the camera-preview contract onto a MediaDevices-style platform.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wachiwi/camera-preview/pkg/orientation"
)

// Torch is an external light used when the track has no torch capability.
type Torch interface {
	SetTorch(on bool) error
}

// Shutter plays the capture sound.
type Shutter interface {
	Play(ctx context.Context) error
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithObserver sets the degradation observer; a LogObserver otherwise.
func WithObserver(o Observer) Option {
	return func(a *Adapter) { a.observer = o }
}

// WithOrientation sets the orientation monitor used by GetOrientation.
func WithOrientation(m *orientation.Monitor) Option {
	return func(a *Adapter) { a.orientation = m }
}

// WithTorch sets the light used for flash when the track has no torch.
func WithTorch(t Torch) Option {
	return func(a *Adapter) { a.torch = t }
}

// WithShutter plays s after every successful capture.
func WithShutter(s Shutter) Option {
	return func(a *Adapter) { a.shutter = s }
}

// Adapter is the camera session adapter. Callers serialise session-mutating
// calls (Start, Stop, Flip, SetDeviceID); the adapter neither queues nor
// rejects concurrent ones.
type Adapter struct {
	media       MediaDevices
	host        Host
	logger      *slog.Logger
	observer    Observer
	orientation *orientation.Monitor
	torch       Torch
	shutter     Shutter

	mu           sync.Mutex
	started      bool
	surface      Surface
	container    Container
	overlay      Overlay
	overlayMount Container
	stream       Stream
	facing       Position
	deviceID     string
	flash        FlashMode
	placement    placement
}

// placement remembers how the surface is positioned inside its container.
type placement struct {
	x, y   *float64
	alignY VerticalAlign
}

// New returns an adapter acquiring streams from media and mounting surfaces
// into host.
func New(media MediaDevices, host Host, opts ...Option) *Adapter {
	a := &Adapter{
		media:  media,
		host:   host,
		logger: slog.Default(),
		facing: PositionRear,
		flash:  FlashOff,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.observer == nil {
		a.observer = LogObserver{Logger: a.logger}
	}
	return a
}

// IsRunning reports whether a session is started.
func (a *Adapter) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// Start opens the camera, mounts the preview and returns its rendered
// bounds. The returned geometry is read from layout and may differ from the
// requested values.
func (a *Adapter) Start(ctx context.Context, opts Options) (Bounds, error) {
	if a.IsRunning() {
		return Bounds{}, ErrAlreadyStarted
	}
	sizeGiven := opts.Width > 0 || opts.Height > 0
	if opts.AspectRatio != "" && sizeGiven {
		return Bounds{}, ErrConflictingSizeSpec
	}
	var ratioW, ratioH float64
	if opts.AspectRatio != "" {
		var err error
		if ratioW, ratioH, err = parseRatio(opts.AspectRatio); err != nil {
			return Bounds{}, wrapError(err, CodeInvalidArgument, "invalid aspectRatio")
		}
	}

	facing := PositionRear
	if opts.Position == PositionFront {
		facing = PositionFront
	}

	container := a.host.Body()
	if opts.Parent != "" {
		c, ok := a.host.ElementByID(opts.Parent)
		if !ok {
			return Bounds{}, newError(CodeContainerNotFound, fmt.Sprintf("parent container %q not found", opts.Parent))
		}
		container = c
	}

	surface := a.host.NewSurface()
	if opts.ClassName != "" {
		surface.SetClass(opts.ClassName)
	}
	if opts.ToBack {
		surface.SetZIndex(-1)
	}
	container.Append(surface)

	effectiveRatio := opts.AspectRatio
	if effectiveRatio == "" && !sizeGiven {
		effectiveRatio = "4:3"
	}
	if sizeGiven {
		surface.SetSize(opts.Width, opts.Height)
	}
	place := placement{x: opts.X, y: opts.Y, alignY: opts.PositioningY}

	var overlay Overlay
	var overlayMount Container
	if opts.GridMode != "" && opts.GridMode != GridNone {
		overlay = a.host.NewOverlay()
		overlay.SetLines(GridLines(opts.GridMode))
		overlayMount = container.Parent()
		if overlayMount == nil {
			overlayMount = container
		}
		overlayMount.Append(overlay)
	}

	unmount := func() {
		container.Remove(surface)
		if overlay != nil {
			overlayMount.Remove(overlay)
		}
	}

	a.logger.DebugContext(ctx, "acquiring camera stream", "position", facing, "aspectRatio", effectiveRatio)
	stream, err := a.media.GetUserMedia(ctx, Constraints{FacingMode: facingMode(facing)})
	if err == nil && stream == nil {
		err = errors.New("no stream returned")
	}
	if err != nil {
		unmount()
		return Bounds{}, wrapError(err, CodeStreamAcquisitionFailed, "failed to acquire camera stream")
	}

	track := firstTrack(stream)
	camW, camH := 640, 480
	if track != nil {
		if s := track.Settings(); s.Width > 0 && s.Height > 0 {
			camW, camH = s.Width, s.Height
		}
	}
	camRatio := float64(camW) / float64(camH)

	switch {
	case !sizeGiven && opts.AspectRatio == "":
		size := fitRatio(a.layoutBox(container), camRatio)
		surface.SetSize(size.Width, size.Height)
	case opts.AspectRatio != "":
		size := fitRatio(a.host.Viewport(), ratioW/ratioH)
		surface.SetSize(size.Width, size.Height)
	}
	a.applyPlacement(surface, container, place)

	surface.Attach(stream)
	surface.SetMirrored(facing == PositionFront)

	if opts.InitialZoomLevel != nil && *opts.InitialZoomLevel != 1.0 {
		out, err := a.initialZoom(ctx, track, *opts.InitialZoomLevel)
		if err != nil {
			surface.Attach(nil)
			stopTracks(stream)
			unmount()
			return Bounds{}, err
		}
		a.report(ctx, "initialZoom", out)
	}

	a.mu.Lock()
	a.started = true
	a.surface = surface
	a.container = container
	a.overlay = overlay
	a.overlayMount = overlayMount
	a.stream = stream
	a.facing = facing
	a.placement = place
	if track != nil {
		a.deviceID = track.Settings().DeviceID
	}
	a.mu.Unlock()

	// abort undoes the committed session when no frame arrives.
	abort := func(cause error) (Bounds, error) {
		a.mu.Lock()
		if a.surface == surface {
			a.surface, a.container, a.overlay, a.overlayMount, a.stream = nil, nil, nil, nil, nil
			a.started = false
			a.deviceID = ""
		}
		a.mu.Unlock()
		surface.Pause()
		surface.Attach(nil)
		stopTracks(stream)
		unmount()
		return Bounds{}, wrapError(cause, CodeStreamAcquisitionFailed, "camera did not deliver a frame")
	}

	if err := surface.Play(ctx); err != nil {
		a.logger.WarnContext(ctx, "preview playback did not start", "error", err)
	}
	select {
	case <-surface.FirstFrame():
	case <-ctx.Done():
		return abort(ctx.Err())
	}
	if err := a.host.NextFrame(ctx); err != nil {
		return abort(err)
	}
	a.applyPlacement(surface, container, place)

	b := roundBounds(surface.BoundingRect())
	a.logger.InfoContext(ctx, "camera started", "position", facing, "width", b.Width, "height", b.Height, "x", b.X, "y", b.Y)
	return b, nil
}

// initialZoom validates and applies the start-time zoom. Only an
// out-of-range level is an error; everything else degrades.
func (a *Adapter) initialZoom(ctx context.Context, track Track, level float64) (Outcome, error) {
	if track == nil {
		return degraded(ErrNoTrackFound), nil
	}
	caps := track.Capabilities()
	if !caps.HasZoom() {
		return degraded(ErrZoomUnsupported), nil
	}
	if !caps.Zoom.Contains(level) {
		return Outcome{}, newError(CodeUnsupportedZoomLevel, "initial zoom level is outside the supported range")
	}
	if err := track.ApplyConstraints(ctx, AdvancedConstraints{Zoom: &level}); err != nil {
		return degraded(err), nil
	}
	return applied(), nil
}

// Stop releases the session. It is a no-op when nothing is running.
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	surface, container := a.surface, a.container
	overlay, overlayMount := a.overlay, a.overlayMount
	stream := a.stream
	a.surface, a.container, a.overlay, a.overlayMount, a.stream = nil, nil, nil, nil, nil
	a.started = false
	a.deviceID = ""
	a.flash = FlashOff
	a.mu.Unlock()

	if surface != nil {
		surface.Pause()
		bound := surface.Stream()
		stopTracks(bound)
		if stream != nil && stream != bound {
			stopTracks(stream)
		}
		surface.Attach(nil)
		container.Remove(surface)
		a.logger.InfoContext(ctx, "camera stopped")
	}
	if overlay != nil {
		overlayMount.Remove(overlay)
	}
	return nil
}

func (a *Adapter) layoutBox(container Container) Size {
	box := container.ContentBox()
	if box.Width == 0 || box.Height == 0 {
		return a.host.Viewport()
	}
	return Size{Width: box.Width, Height: box.Height}
}

// applyPlacement pins the surface, auto-centering the axes without an
// explicit offset.
func (a *Adapter) applyPlacement(surface Surface, container Container, p placement) {
	r := surface.BoundingRect()
	box := a.layoutBox(container)
	var x, y float64
	if p.x != nil {
		x = *p.x
	} else {
		x = centerOffset(box.Width, r.Width)
	}
	if p.y != nil {
		y = *p.y
	} else {
		y = verticalOffset(p.alignY, box.Height, r.Height)
	}
	surface.SetPosition(x, y)
}

// GetOrientation reports the current device orientation.
func (a *Adapter) GetOrientation(ctx context.Context) orientation.Orientation {
	return a.orientation.Current()
}

func facingMode(p Position) FacingMode {
	if p == PositionFront {
		return FacingUser
	}
	return FacingEnvironment
}

func firstTrack(s Stream) Track {
	if s == nil {
		return nil
	}
	tracks := s.VideoTracks()
	if len(tracks) == 0 {
		return nil
	}
	return tracks[0]
}

func stopTracks(s Stream) {
	if s == nil {
		return
	}
	for _, t := range s.VideoTracks() {
		t.Stop()
	}
}
