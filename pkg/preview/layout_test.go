package preview

import (
	"errors"
	"testing"
)

func TestParseRatio(t *testing.T) {
	tests := []struct {
		in      string
		w, h    float64
		wantErr bool
	}{
		{"4:3", 4, 3, false},
		{"16:9", 16, 9, false},
		{" 1 : 1 ", 1, 1, false},
		{"4/3", 0, 0, true},
		{"4:0", 0, 0, true},
		{"a:b", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := parseRatio(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRatio(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if w != tt.w || h != tt.h {
			t.Errorf("parseRatio(%q) = %v:%v, want %v:%v", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestFitRatio(t *testing.T) {
	got := fitRatio(Size{Width: 400, Height: 800}, 4.0/3.0)
	if got.Width != 400 || got.Height != 300 {
		t.Errorf("fit to width: got %+v", got)
	}
	got = fitRatio(Size{Width: 800, Height: 300}, 4.0/3.0)
	if got.Width != 400 || got.Height != 300 {
		t.Errorf("fit to height: got %+v", got)
	}
}

func TestShrinkToRatio(t *testing.T) {
	got := shrinkToRatio(Size{Width: 400, Height: 300}, 0.75)
	if got.Width != 225 || got.Height != 300 {
		t.Errorf("wide box: got %+v", got)
	}
	got = shrinkToRatio(Size{Width: 300, Height: 800}, 0.75)
	if got.Width != 300 || got.Height != 400 {
		t.Errorf("tall box: got %+v", got)
	}
}

func TestVerticalOffset(t *testing.T) {
	cases := map[VerticalAlign]float64{
		AlignTop:    0,
		AlignCenter: 250,
		AlignBottom: 500,
		"":          250,
	}
	for align, want := range cases {
		if got := verticalOffset(align, 800, 300); got != want {
			t.Errorf("verticalOffset(%q) = %v, want %v", align, got, want)
		}
	}
}

func TestInsetBounds(t *testing.T) {
	got := insetBounds(Rect{X: 0, Y: 0, Width: 400, Height: 300})
	want := Bounds{Width: 400, Height: 300, X: 50, Y: 38}
	if got != want {
		t.Errorf("insetBounds = %+v, want %+v", got, want)
	}
}

func TestRatioOfBox(t *testing.T) {
	tests := []struct {
		w, h float64
		want string
	}{
		{300, 400, "4:3"},
		{225, 400, "16:9"},
		{226, 400, "16:9"},
		{400, 300, "4:3"},
		{0, 0, "4:3"},
	}
	for _, tt := range tests {
		if got := ratioOfBox(Rect{Width: tt.w, Height: tt.h}); got != tt.want {
			t.Errorf("ratioOfBox(%vx%v) = %q, want %q", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestCaptureSize(t *testing.T) {
	tests := []struct {
		reqW, reqH int
		w, h       int
	}{
		{0, 0, 640, 480},
		{320, 0, 320, 240},
		{0, 240, 320, 240},
		{320, 320, 320, 240},
		{1000, 300, 400, 300},
	}
	for _, tt := range tests {
		w, h := captureSize(640, 480, tt.reqW, tt.reqH)
		if w != tt.w || h != tt.h {
			t.Errorf("captureSize(%d, %d) = %dx%d, want %dx%d", tt.reqW, tt.reqH, w, h, tt.w, tt.h)
		}
	}
}

func TestGridLines(t *testing.T) {
	if lines := GridLines(GridNone); len(lines) != 0 {
		t.Errorf("none: expected no lines, got %d", len(lines))
	}
	lines := GridLines(Grid4x4)
	if len(lines) != 6 {
		t.Fatalf("4x4: expected 6 lines, got %d", len(lines))
	}
	if lines[0].X1 != 25 || lines[0].X2 != 25 || lines[0].Y2 != 100 {
		t.Errorf("first vertical line = %+v", lines[0])
	}
	if lines[5].Y1 != 75 || lines[5].X2 != 100 {
		t.Errorf("last horizontal line = %+v", lines[5])
	}
}

func TestClassifyLens(t *testing.T) {
	tests := []struct {
		label string
		typ   LensType
		base  float64
	}{
		{"Back Ultra Wide Camera", LensUltraWide, 0.5},
		{"camera2 0.5x", LensUltraWide, 0.5},
		{"Back Telephoto Camera", LensTelephoto, 2.0},
		{"Rear 3x", LensTelephoto, 2.0},
		{"Front TrueDepth Camera", LensTrueDepth, 1.0},
		{"Back Camera", LensWideAngle, 1.0},
		{"", LensWideAngle, 1.0},
	}
	for _, tt := range tests {
		lens := ClassifyLens(tt.label)
		if lens.DeviceType != tt.typ || lens.BaseZoomRatio != tt.base {
			t.Errorf("ClassifyLens(%q) = %s/%v, want %s/%v", tt.label, lens.DeviceType, lens.BaseZoomRatio, tt.typ, tt.base)
		}
		if lens.FocalLength != placeholderFocalLength {
			t.Errorf("ClassifyLens(%q) focal length = %v", tt.label, lens.FocalLength)
		}
	}
}

func TestGroupDevicesSkipsAudioAndEmptyGroups(t *testing.T) {
	got := GroupDevices([]DeviceInfo{
		{DeviceID: "mic", Label: "Back Microphone", Kind: KindAudioInput},
		{DeviceID: "f", Label: "FaceTime HD Camera", Kind: KindVideoInput},
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 device, got %d", len(got))
	}
	if got[0].Position != PositionFront || got[0].Label != "Front Camera" {
		t.Errorf("unexpected device %+v", got[0])
	}
}

func TestErrorMatching(t *testing.T) {
	err := wrapError(errors.New("boom"), CodeFlipFailed, "failed to flip camera")
	if CodeOf(err) != CodeFlipFailed {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if CodeFlipFailed.Category() != CategoryDevice {
		t.Errorf("flip failure should be a device error")
	}
	if !errors.Is(unsupported("x"), ErrUnsupported) {
		t.Errorf("unsupported() should match ErrUnsupported")
	}
	if errors.Is(err, ErrNotRunning) {
		t.Errorf("codes must not cross-match")
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Errorf("foreign errors have no code")
	}
}
