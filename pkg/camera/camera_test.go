package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"testing"
	"testing/iotest"
	"time"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

func encodeTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestFrameScannerSplitsStream(t *testing.T) {
	a := encodeTestJPEG(t, 16, 8)
	b := encodeTestJPEG(t, 8, 16)

	var stream []byte
	stream = append(stream, []byte("garbage before first frame")...)
	stream = append(stream, a...)
	stream = append(stream, b...)
	stream = append(stream, 0xFF, 0xD8, 0x00) // truncated trailing frame

	// One byte per read exercises markers split across chunks.
	s := NewFrameScanner(iotest.OneByteReader(bytes.NewReader(stream)))

	for i, want := range [][]byte{a, b} {
		got, err := s.Next()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d: got %d bytes, want %d", i, len(got), len(want))
		}
	}
	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestFrameScannerReturnsBufferedFramesBeforeError(t *testing.T) {
	a := encodeTestJPEG(t, 4, 4)
	r := iotest.TimeoutReader(bytes.NewReader(append(append([]byte{}, a...), a...)))
	s := NewFrameScanner(r)

	// TimeoutReader delivers the whole buffer in the first read.
	if _, err := s.Next(); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if _, err := s.Next(); !errors.Is(err, iotest.ErrTimeout) {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestPlaceholderTrack(t *testing.T) {
	cfg := Config{Width: 32, Height: 24, FPS: 50, Placeholder: true}.withDefaults()
	tr := newTrack(cfg)
	tr.startPlaceholder(cfg)
	defer tr.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	img, err := tr.ReadFrame(ctx)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Errorf("unexpected frame size %v", img.Bounds())
	}

	tr.Stop()
	if _, err := tr.ReadFrame(ctx); !errors.Is(err, ErrTrackEnded) {
		t.Errorf("expected ErrTrackEnded after Stop, got %v", err)
	}
}

func TestTrackDeliverKeepsLatest(t *testing.T) {
	tr := newTrack(Config{Width: 4, Height: 4})
	tr.deliver([]byte("old"))
	tr.deliver([]byte("new"))
	if got := <-tr.frames; string(got) != "new" {
		t.Errorf("expected latest frame, got %q", got)
	}
}

func TestTrackCapabilities(t *testing.T) {
	tr := newTrack(Config{Width: 1280, Height: 720})
	caps := tr.Capabilities()
	if caps.HasZoom() || caps.HasFocus() || caps.Torch {
		t.Errorf("process camera must not report adjustable controls: %+v", caps)
	}
	if caps.Width.Max != 1280 || caps.Height.Max != 720 {
		t.Errorf("unexpected size range %+v x %+v", caps.Width, caps.Height)
	}

	zoom := 2.0
	if err := tr.ApplyConstraints(context.Background(), preview.AdvancedConstraints{Zoom: &zoom}); !errors.Is(err, ErrUnsupportedConstraint) {
		t.Errorf("expected ErrUnsupportedConstraint, got %v", err)
	}
}

func TestGetUserMediaRejectsForeignDevice(t *testing.T) {
	d := NewDevices(Config{Placeholder: true}, nil)
	if _, err := d.GetUserMedia(context.Background(), preview.Constraints{DeviceID: "other"}); err == nil {
		t.Error("expected an error for an unknown device id")
	}
}
