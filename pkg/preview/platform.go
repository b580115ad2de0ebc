package preview

import (
	"context"
	"image"
)

// FacingMode is the capture constraint selecting a front or rear camera.
type FacingMode string

const (
	FacingUser        FacingMode = "user"
	FacingEnvironment FacingMode = "environment"
)

// Constraints describes a stream request. Zero values mean "no constraint".
// DeviceID is an exact constraint, the dimensions are ideal hints only.
type Constraints struct {
	FacingMode  FacingMode
	DeviceID    string
	IdealWidth  int
	IdealHeight int
}

// MediaDevices acquires capture streams.
type MediaDevices interface {
	GetUserMedia(ctx context.Context, c Constraints) (Stream, error)
}

// DeviceEnumerator is implemented by platforms that can list their sources.
type DeviceEnumerator interface {
	EnumerateDevices(ctx context.Context) ([]DeviceInfo, error)
}

// DeviceKind classifies an enumerated source.
type DeviceKind string

const (
	KindVideoInput DeviceKind = "videoinput"
	KindAudioInput DeviceKind = "audioinput"
)

// DeviceInfo is one entry of a device enumeration.
type DeviceInfo struct {
	DeviceID string
	Label    string
	Kind     DeviceKind
}

// Stream is a live capture stream.
type Stream interface {
	VideoTracks() []Track
}

// Track is a single live capture track.
type Track interface {
	Settings() TrackSettings
	Capabilities() Capabilities
	ApplyConstraints(ctx context.Context, c AdvancedConstraints) error
	// ReadFrame blocks until the next decoded frame is available.
	ReadFrame(ctx context.Context) (image.Image, error)
	Stop()
}

// TrackSettings are the values a track is currently running with.
type TrackSettings struct {
	DeviceID   string
	Width      int
	Height     int
	FacingMode FacingMode
	// Zoom is nil when the platform does not report it.
	Zoom  *float64
	Torch bool
}

// Range is a numeric capability range.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies within the inclusive range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Capabilities lists what a track can be asked to do. Absent capabilities
// are nil or empty.
type Capabilities struct {
	Zoom          *Range
	FocusModes    []string
	FocusDistance *Range
	Torch         bool
	Width         *Range
	Height        *Range
}

func (c Capabilities) HasZoom() bool  { return c.Zoom != nil }
func (c Capabilities) HasFocus() bool { return len(c.FocusModes) > 0 }

// AdvancedConstraints are best-effort parameters applied to a live track.
type AdvancedConstraints struct {
	Zoom          *float64
	FocusMode     string
	FocusDistance *float64
	Torch         *bool
}

// Size is a width/height pair in CSS pixels.
type Size struct {
	Width  float64
	Height float64
}

// Rect is a layout box in CSS pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Host is the display environment surfaces are mounted into.
type Host interface {
	Body() Container
	ElementByID(id string) (Container, bool)
	Viewport() Size
	NewSurface() Surface
	NewOverlay() Overlay
	// NextFrame returns after the next rendering frame.
	NextFrame(ctx context.Context) error
}

// Element is anything that can be mounted into a Container.
type Element interface {
	BoundingRect() Rect
}

// Container is a mount point.
type Container interface {
	Element
	// ContentBox is the container's inner box; zero size when unknown.
	ContentBox() Rect
	// Parent returns nil for the root container.
	Parent() Container
	Append(el Element)
	Remove(el Element)
}

// Surface is the on-screen element showing a capture stream.
type Surface interface {
	Element
	SetClass(class string)
	SetZIndex(z int)
	SetOpacity(opacity float64)
	// SetSize sets the box; a zero dimension is left to the natural size.
	SetSize(width, height float64)
	// SetPosition pins the box absolutely inside its container.
	SetPosition(x, y float64)
	SetMirrored(mirrored bool)
	Mirrored() bool

	Attach(s Stream)
	Stream() Stream
	Play(ctx context.Context) error
	Pause()
	// FirstFrame is closed once the attached stream decoded its first frame.
	FirstFrame() <-chan struct{}
	// VideoSize is the decoded size of the current frame, zero if none.
	VideoSize() (width, height int)
	Frame() image.Image
}

// Line is an overlay line in percent of the overlay box.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Overlay is a non-interactive vector layer drawn above the surface.
type Overlay interface {
	Element
	SetLines(lines []Line)
	Lines() []Line
}
