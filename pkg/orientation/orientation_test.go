package orientation

import (
	"sync"
	"testing"
)

type fakeSource struct {
	mu       sync.Mutex
	typ      string
	angle    *int
	portrait *bool
	subs     []func()
	cancels  int
}

func (f *fakeSource) OrientationType() (string, bool) { return f.typ, f.typ != "" }

func (f *fakeSource) Angle() (int, bool) {
	if f.angle == nil {
		return 0, false
	}
	return *f.angle, true
}

func (f *fakeSource) MatchesPortrait() (bool, bool) {
	if f.portrait == nil {
		return false, false
	}
	return *f.portrait, true
}

func (f *fakeSource) Subscribe(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cancels++
	}
}

func (f *fakeSource) fire() {
	f.mu.Lock()
	subs := append([]func(){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
		want Orientation
	}{
		{"portrait-primary", &fakeSource{typ: "portrait-primary"}, Portrait},
		{"portrait-secondary", &fakeSource{typ: "portrait-secondary"}, PortraitUpsideDown},
		{"landscape-primary", &fakeSource{typ: "landscape-primary"}, LandscapeLeft},
		{"landscape-secondary", &fakeSource{typ: "landscape-secondary"}, LandscapeRight},
		{"generic landscape", &fakeSource{typ: "landscape"}, LandscapeRight},
		{"type wins over angle", &fakeSource{typ: "portrait-primary", angle: intPtr(90)}, Portrait},
		{"unknown type falls back to angle", &fakeSource{typ: "sideways", angle: intPtr(90)}, LandscapeLeft},
		{"angle 0", &fakeSource{angle: intPtr(0)}, Portrait},
		{"angle 180", &fakeSource{angle: intPtr(180)}, PortraitUpsideDown},
		{"angle -180", &fakeSource{angle: intPtr(-180)}, PortraitUpsideDown},
		{"angle 270", &fakeSource{angle: intPtr(270)}, LandscapeRight},
		{"angle -90", &fakeSource{angle: intPtr(-90)}, LandscapeRight},
		{"odd angle falls back to media query", &fakeSource{angle: intPtr(45), portrait: boolPtr(true)}, Portrait},
		{"media query landscape", &fakeSource{portrait: boolPtr(false)}, LandscapeRight},
		{"no signal", &fakeSource{}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.src); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := Resolve(nil); got != Unknown {
		t.Errorf("Resolve(nil) = %q", got)
	}
}

func TestMonitorNotifiesOnChangeOnly(t *testing.T) {
	src := &fakeSource{typ: "portrait-primary"}
	m := NewMonitor(src)

	var got []Orientation
	remove := m.AddListener(func(o Orientation) { got = append(got, o) })
	m.AddListener(func(Orientation) {})

	if len(src.subs) != 1 {
		t.Fatalf("expected a single native subscription, got %d", len(src.subs))
	}

	src.fire()
	if len(got) != 0 {
		t.Fatalf("unchanged orientation must not notify, got %v", got)
	}

	src.typ = "landscape-primary"
	src.fire()
	if len(got) != 1 || got[0] != LandscapeLeft {
		t.Fatalf("expected [landscape-left], got %v", got)
	}

	remove()
	src.typ = "portrait-primary"
	src.fire()
	if len(got) != 1 {
		t.Errorf("removed listener was called: %v", got)
	}

	m.Close()
	if src.cancels != 1 {
		t.Errorf("expected subscription to be cancelled once, got %d", src.cancels)
	}
	if m.Current() != Portrait {
		t.Errorf("Current() = %q", m.Current())
	}
}

func TestNilMonitorIsUnknown(t *testing.T) {
	var m *Monitor
	if m.Current() != Unknown {
		t.Errorf("nil monitor should report unknown")
	}
}
