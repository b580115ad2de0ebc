// Package headless provides an in-memory display host and a synthetic
// camera for running the preview adapter without a browser or hardware.
package headless

import (
	"context"
	"sync"
	"time"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

// frameInterval is the rendering frame period of NextFrame.
const frameInterval = 16 * time.Millisecond

// Host is a virtual viewport with id-addressable containers. Surfaces are
// laid out absolutely inside their container's content box.
type Host struct {
	mu          sync.Mutex
	viewport    preview.Size
	body        *Container
	byID        map[string]*Container
	orientType  string
	angle       *int
	subscribers map[int]func()
	nextSub     int
}

// NewHost returns a host with a body filling a viewport of the given size.
func NewHost(width, height float64) *Host {
	h := &Host{
		viewport:    preview.Size{Width: width, Height: height},
		byID:        make(map[string]*Container),
		subscribers: make(map[int]func()),
	}
	h.body = &Container{host: h, id: "body"}
	return h
}

var _ preview.Host = (*Host)(nil)

func (h *Host) Body() preview.Container { return h.body }

func (h *Host) ElementByID(id string) (preview.Container, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.byID[id]
	if !ok {
		return nil, false
	}
	return c, true
}

func (h *Host) Viewport() preview.Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewport
}

func (h *Host) NewSurface() preview.Surface { return newSurface() }

func (h *Host) NewOverlay() preview.Overlay { return &Overlay{} }

func (h *Host) NextFrame(ctx context.Context) error {
	t := time.NewTimer(frameInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AddContainer creates a container with a fixed content box, mounted in
// the container parentID ("" for the body).
func (h *Host) AddContainer(id, parentID string, box preview.Rect) *Container {
	h.mu.Lock()
	defer h.mu.Unlock()
	parent := h.body
	if p, ok := h.byID[parentID]; ok {
		parent = p
	}
	c := &Container{host: h, id: id, parent: parent, box: box}
	h.byID[id] = c
	parent.children = append(parent.children, c)
	return c
}

// SetViewport resizes the viewport and signals subscribers.
func (h *Host) SetViewport(width, height float64) {
	h.mu.Lock()
	h.viewport = preview.Size{Width: width, Height: height}
	h.mu.Unlock()
	h.notify()
}

// SetOrientation sets the structured orientation type and legacy angle;
// empty type or nil angle make that signal unavailable.
func (h *Host) SetOrientation(orientationType string, angle *int) {
	h.mu.Lock()
	h.orientType = orientationType
	h.angle = angle
	h.mu.Unlock()
	h.notify()
}

func (h *Host) OrientationType() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.orientType, h.orientType != ""
}

func (h *Host) Angle() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.angle == nil {
		return 0, false
	}
	return *h.angle, true
}

func (h *Host) MatchesPortrait() (bool, bool) {
	vp := h.Viewport()
	if vp.Width == 0 && vp.Height == 0 {
		return false, false
	}
	return vp.Height >= vp.Width, true
}

func (h *Host) Subscribe(fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.subscribers[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers, id)
	}
}

func (h *Host) notify() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Container is a mount point with a content box in viewport coordinates.
// The body's box always equals the viewport.
type Container struct {
	host     *Host
	id       string
	parent   *Container
	box      preview.Rect
	children []preview.Element
}

func (c *Container) ID() string { return c.id }

func (c *Container) BoundingRect() preview.Rect { return c.ContentBox() }

func (c *Container) ContentBox() preview.Rect {
	if c.parent == nil {
		vp := c.host.Viewport()
		return preview.Rect{Width: vp.Width, Height: vp.Height}
	}
	c.host.mu.Lock()
	defer c.host.mu.Unlock()
	return c.box
}

// SetContentBox resizes a non-body container.
func (c *Container) SetContentBox(box preview.Rect) {
	c.host.mu.Lock()
	c.box = box
	c.host.mu.Unlock()
	c.host.notify()
}

func (c *Container) Parent() preview.Container {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *Container) Append(el preview.Element) {
	c.host.mu.Lock()
	c.children = append(c.children, el)
	c.host.mu.Unlock()
	switch e := el.(type) {
	case *Surface:
		e.setParent(c)
	case *Overlay:
		e.setParent(c)
	}
}

func (c *Container) Remove(el preview.Element) {
	c.host.mu.Lock()
	for i, child := range c.children {
		if child == el {
			c.children = append(c.children[:i], c.children[i+1:]...)
			break
		}
	}
	c.host.mu.Unlock()
	switch e := el.(type) {
	case *Surface:
		e.setParent(nil)
	case *Overlay:
		e.setParent(nil)
	}
}

// Children returns the mounted elements.
func (c *Container) Children() []preview.Element {
	c.host.mu.Lock()
	defer c.host.mu.Unlock()
	out := make([]preview.Element, len(c.children))
	copy(out, c.children)
	return out
}

// Overlay is a vector line layer covering its container.
type Overlay struct {
	mu     sync.Mutex
	parent *Container
	lines  []preview.Line
}

func (o *Overlay) setParent(c *Container) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.parent = c
}

// Mounted reports whether the overlay is in a container.
func (o *Overlay) Mounted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.parent != nil
}

func (o *Overlay) BoundingRect() preview.Rect {
	o.mu.Lock()
	p := o.parent
	o.mu.Unlock()
	if p == nil {
		return preview.Rect{}
	}
	return p.ContentBox()
}

func (o *Overlay) SetLines(lines []preview.Line) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append([]preview.Line(nil), lines...)
}

func (o *Overlay) Lines() []preview.Line {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]preview.Line(nil), o.lines...)
}
