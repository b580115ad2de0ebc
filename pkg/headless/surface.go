package headless

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

// Natural size of a surface without a frame, as for an empty video element.
const (
	defaultSurfaceWidth  = 300
	defaultSurfaceHeight = 150
)

// Surface is an in-memory video element. While playing it pumps frames
// from the first track of the attached stream and keeps the latest one.
type Surface struct {
	mu       sync.RWMutex
	parent   *Container
	class    string
	zIndex   int
	opacity  float64
	width    float64
	height   float64
	left     float64
	top      float64
	mirrored bool

	stream      preview.Stream
	latestFrame image.Image
	firstFrame  chan struct{}
	firstOnce   *sync.Once
	cancelPump  context.CancelFunc
}

func newSurface() *Surface {
	return &Surface{
		opacity:    1,
		firstFrame: make(chan struct{}),
		firstOnce:  &sync.Once{},
	}
}

var _ preview.Surface = (*Surface)(nil)

func (s *Surface) setParent(c *Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parent = c
}

// Mounted reports whether the surface is in a container.
func (s *Surface) Mounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parent != nil
}

func (s *Surface) SetClass(class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.class = class
}

func (s *Surface) Class() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.class
}

func (s *Surface) SetZIndex(z int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zIndex = z
}

func (s *Surface) ZIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zIndex
}

func (s *Surface) SetOpacity(opacity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opacity = opacity
}

func (s *Surface) Opacity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opacity
}

func (s *Surface) SetSize(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

func (s *Surface) SetPosition(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.left, s.top = x, y
}

func (s *Surface) SetMirrored(mirrored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirrored = mirrored
}

func (s *Surface) Mirrored() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirrored
}

// BoundingRect lays the surface out in viewport coordinates. Missing
// dimensions follow the natural video size.
func (s *Surface) BoundingRect() preview.Rect {
	s.mu.RLock()
	w, h := s.width, s.height
	left, top, parent := s.left, s.top, s.parent
	natW, natH := s.naturalSizeLocked()
	s.mu.RUnlock()

	switch {
	case w == 0 && h == 0:
		w, h = natW, natH
	case w == 0:
		w = h * natW / natH
	case h == 0:
		h = w * natH / natW
	}
	var origin preview.Rect
	if parent != nil {
		origin = parent.ContentBox()
	}
	return preview.Rect{X: origin.X + left, Y: origin.Y + top, Width: w, Height: h}
}

func (s *Surface) naturalSizeLocked() (float64, float64) {
	if s.latestFrame != nil {
		b := s.latestFrame.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			return float64(b.Dx()), float64(b.Dy())
		}
	}
	if t := firstTrack(s.stream); t != nil {
		if st := t.Settings(); st.Width > 0 && st.Height > 0 {
			return float64(st.Width), float64(st.Height)
		}
	}
	return defaultSurfaceWidth, defaultSurfaceHeight
}

// Attach binds a stream, replacing and pausing the previous one. A nil
// stream detaches.
func (s *Surface) Attach(stream preview.Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelPump != nil {
		s.cancelPump()
		s.cancelPump = nil
	}
	s.stream = stream
	s.latestFrame = nil
	s.firstFrame = make(chan struct{})
	s.firstOnce = &sync.Once{}
}

func (s *Surface) Stream() preview.Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stream
}

// Play starts pumping frames from the attached stream.
func (s *Surface) Play(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelPump != nil {
		return nil
	}
	track := firstTrack(s.stream)
	if track == nil {
		return nil
	}
	pumpCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelPump = cancel
	go s.pump(pumpCtx, track, s.firstFrame, s.firstOnce)
	return nil
}

func (s *Surface) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelPump != nil {
		s.cancelPump()
		s.cancelPump = nil
	}
}

func (s *Surface) FirstFrame() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firstFrame
}

func (s *Surface) VideoSize() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latestFrame == nil {
		return 0, 0
	}
	b := s.latestFrame.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Surface) Frame() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestFrame
}

func (s *Surface) pump(ctx context.Context, track preview.Track, first chan struct{}, once *sync.Once) {
	for {
		img, err := track.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("surface frame pump stopped", "error", err)
			}
			return
		}

		s.mu.Lock()
		if s.firstFrame != first {
			// A newer stream was attached meanwhile.
			s.mu.Unlock()
			return
		}
		s.latestFrame = img
		s.mu.Unlock()
		once.Do(func() { close(first) })
	}
}

func firstTrack(s preview.Stream) preview.Track {
	if s == nil {
		return nil
	}
	tracks := s.VideoTracks()
	if len(tracks) == 0 {
		return nil
	}
	return tracks[0]
}
