// Package orientation derives a canonical device orientation from the
// signals a display environment exposes and pushes changes to listeners.
package orientation

import (
	"strings"
	"sync"
)

// Orientation is a canonical screen orientation.
type Orientation string

const (
	Portrait           Orientation = "portrait"
	LandscapeLeft      Orientation = "landscape-left"
	LandscapeRight     Orientation = "landscape-right"
	PortraitUpsideDown Orientation = "portrait-upside-down"
	Unknown            Orientation = "unknown"
)

// Source exposes the raw orientation signals of an environment. Each query
// reports ok=false when that signal is unavailable.
type Source interface {
	// OrientationType is the structured type string, e.g. "landscape-primary".
	OrientationType() (string, bool)
	// Angle is the legacy rotation angle in degrees.
	Angle() (int, bool)
	// MatchesPortrait evaluates the portrait media query.
	MatchesPortrait() (portrait bool, ok bool)
	// Subscribe calls fn on every resize or orientation-change signal.
	Subscribe(fn func()) (cancel func())
}

// Resolve derives the orientation from src, preferring the structured type,
// then the legacy angle, then the media query.
func Resolve(src Source) Orientation {
	if src == nil {
		return Unknown
	}
	if t, ok := src.OrientationType(); ok {
		if o, ok := fromType(t); ok {
			return o
		}
	}
	if angle, ok := src.Angle(); ok {
		if o, ok := fromAngle(angle); ok {
			return o
		}
	}
	if portrait, ok := src.MatchesPortrait(); ok {
		if portrait {
			return Portrait
		}
		// Primary and secondary cannot be told apart here.
		return LandscapeRight
	}
	return Unknown
}

func fromType(t string) (Orientation, bool) {
	t = strings.ToLower(t)
	switch {
	case strings.Contains(t, "portrait-primary"):
		return Portrait, true
	case strings.Contains(t, "portrait-secondary"):
		return PortraitUpsideDown, true
	case strings.Contains(t, "landscape-primary"):
		return LandscapeLeft, true
	case strings.Contains(t, "landscape-secondary"):
		return LandscapeRight, true
	case strings.Contains(t, "portrait"):
		return Portrait, true
	case strings.Contains(t, "landscape"):
		return LandscapeRight, true
	}
	return "", false
}

func fromAngle(angle int) (Orientation, bool) {
	switch angle {
	case 0:
		return Portrait, true
	case 90:
		return LandscapeLeft, true
	case 180, -180:
		return PortraitUpsideDown, true
	case 270, -90:
		return LandscapeRight, true
	}
	return "", false
}

// Listener receives orientation changes.
type Listener func(Orientation)

// Monitor pushes orientation changes of a Source to listeners.
type Monitor struct {
	src Source

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	last      Orientation
	cancel    func()
}

// NewMonitor returns a monitor over src. The native subscription is made on
// the first AddListener call.
func NewMonitor(src Source) *Monitor {
	return &Monitor{src: src, listeners: make(map[int]Listener)}
}

// Current resolves the orientation now.
func (m *Monitor) Current() Orientation {
	if m == nil {
		return Unknown
	}
	return Resolve(m.src)
}

// AddListener registers fn and returns a function removing it again.
func (m *Monitor) AddListener(fn Listener) (remove func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	if m.cancel == nil && m.src != nil {
		m.last = Resolve(m.src)
		m.cancel = m.src.Subscribe(m.changed)
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Close drops the native subscription and all listeners.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.listeners = make(map[int]Listener)
}

func (m *Monitor) changed() {
	o := Resolve(m.src)

	m.mu.Lock()
	if o == m.last {
		m.mu.Unlock()
		return
	}
	m.last = o
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(o)
	}
}
