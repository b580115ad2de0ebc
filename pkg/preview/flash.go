package preview

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var errNoTorch = errors.New("no torch available")

func (a *Adapter) hasTorch(t Track) bool {
	return a.torch != nil || (t != nil && t.Capabilities().Torch)
}

// GetSupportedFlashModes lists the flash modes usable with the active
// camera; Unsupported when there is no torch at all.
func (a *Adapter) GetSupportedFlashModes(ctx context.Context) ([]FlashMode, error) {
	t, err := a.activeTrack()
	if err != nil {
		return nil, err
	}
	if !a.hasTorch(t) {
		return nil, unsupported("getSupportedFlashModes")
	}
	return []FlashMode{FlashOff, FlashOn, FlashTorch}, nil
}

// GetFlashMode returns the last mode set on the session.
func (a *Adapter) GetFlashMode(ctx context.Context) FlashMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flash
}

// SetFlashMode records the mode and switches the torch for FlashTorch.
// Torch failures degrade without error.
func (a *Adapter) SetFlashMode(ctx context.Context, mode FlashMode) error {
	switch mode {
	case FlashOff, FlashOn, FlashAuto, FlashTorch:
	default:
		return newError(CodeInvalidArgument, fmt.Sprintf("unknown flash mode %q", mode))
	}
	t, err := a.activeTrack()
	if err != nil {
		return err
	}
	a.mu.Lock()
	prev := a.flash
	a.flash = mode
	a.mu.Unlock()

	if mode == FlashTorch || prev == FlashTorch {
		a.report(ctx, "flash", a.setTorch(ctx, t, mode == FlashTorch))
	}
	return nil
}

// setTorch prefers the track's own torch and falls back to the external one.
func (a *Adapter) setTorch(ctx context.Context, t Track, on bool) Outcome {
	if t != nil && t.Capabilities().Torch {
		if err := t.ApplyConstraints(ctx, AdvancedConstraints{Torch: &on}); err != nil {
			return degraded(err)
		}
		return applied()
	}
	if a.torch == nil {
		return degraded(errNoTorch)
	}
	if err := a.torch.SetTorch(on); err != nil {
		return degraded(err)
	}
	return applied()
}

// GetSupportedPictureSizes derives capture sizes from the track's
// resolution capability.
func (a *Adapter) GetSupportedPictureSizes(ctx context.Context) ([]PictureSize, error) {
	t, err := a.activeTrack()
	if err != nil {
		return nil, err
	}
	caps := t.Capabilities()
	if caps.Width == nil || caps.Height == nil {
		return nil, unsupported("getSupportedPictureSizes")
	}
	common := []PictureSize{
		{3840, 2160}, {2560, 1440}, {1920, 1080}, {1280, 960},
		{1280, 720}, {1024, 768}, {800, 600}, {640, 480}, {320, 240},
	}
	var sizes []PictureSize
	for _, s := range common {
		if caps.Width.Contains(float64(s.Width)) && caps.Height.Contains(float64(s.Height)) {
			sizes = append(sizes, s)
		}
	}
	maxSize := PictureSize{Width: int(math.Round(caps.Width.Max)), Height: int(math.Round(caps.Height.Max))}
	if len(sizes) == 0 || sizes[0] != maxSize {
		sizes = append([]PictureSize{maxSize}, sizes...)
	}
	return sizes, nil
}

// Video recording and field-of-view queries are not available here.

func (a *Adapter) StartRecordVideo(ctx context.Context) error {
	return unsupported("startRecordVideo")
}

func (a *Adapter) StopRecordVideo(ctx context.Context) (string, error) {
	return "", unsupported("stopRecordVideo")
}

func (a *Adapter) GetHorizontalFov(ctx context.Context) (float64, error) {
	return 0, unsupported("getHorizontalFov")
}
