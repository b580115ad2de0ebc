package preview

import (
	"context"
	"math"
)

// fallbackFocusDistance is used for manual focus; point focus is not
// available through track constraints.
const fallbackFocusDistance = 0.1

// activeTrack returns the first track of the running stream.
func (a *Adapter) activeTrack() (Track, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.surface == nil || a.stream == nil {
		return nil, ErrNotRunning
	}
	t := firstTrack(a.stream)
	if t == nil {
		return nil, ErrNoTrackFound
	}
	return t, nil
}

func (a *Adapter) zoomTrack() (Track, Range, error) {
	t, err := a.activeTrack()
	if err != nil {
		return nil, Range{}, err
	}
	caps := t.Capabilities()
	if !caps.HasZoom() {
		return nil, Range{}, ErrZoomUnsupported
	}
	return t, *caps.Zoom, nil
}

// GetZoom reports the zoom range and the active lens.
func (a *Adapter) GetZoom(ctx context.Context) (ZoomState, error) {
	t, r, err := a.zoomTrack()
	if err != nil {
		return ZoomState{}, err
	}
	current := 1.0
	if z := t.Settings().Zoom; z != nil {
		current = *z
	}
	lens := ClassifyLens(a.labelOf(ctx, a.GetDeviceID(ctx)))
	return ZoomState{
		Min:     r.Min,
		Max:     r.Max,
		Current: current,
		Lens: LensInfo{
			FocalLength:   lens.FocalLength,
			DeviceType:    lens.DeviceType,
			BaseZoomRatio: lens.BaseZoomRatio,
			DigitalZoom:   current / lens.BaseZoomRatio,
		},
	}, nil
}

// SetZoom clamps the level into the supported range and applies it.
func (a *Adapter) SetZoom(ctx context.Context, opts ZoomOptions) error {
	t, r, err := a.zoomTrack()
	if err != nil {
		return err
	}
	level := r.Clamp(opts.Level)
	if err := t.ApplyConstraints(ctx, AdvancedConstraints{Zoom: &level}); err != nil {
		return wrapError(err, CodeZoomApplyFailed, "failed to apply zoom")
	}
	return nil
}

// SetFocus requests focus at a normalized preview point. Only a manual
// focus mode can be applied; failures degrade without error.
func (a *Adapter) SetFocus(ctx context.Context, x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || x > 1 || y < 0 || y > 1 {
		return ErrInvalidFocusCoordinates
	}
	t, err := a.activeTrack()
	if err != nil {
		return err
	}
	if !t.Capabilities().HasFocus() {
		return nil
	}
	distance := fallbackFocusDistance
	out := applied()
	if err := t.ApplyConstraints(ctx, AdvancedConstraints{FocusMode: "manual", FocusDistance: &distance}); err != nil {
		out = degraded(err)
	}
	a.report(ctx, "focus", out)
	return nil
}

// The exposure family is not exposed by the capture capability surface.

func (a *Adapter) GetExposureModes(ctx context.Context) ([]ExposureMode, error) {
	return nil, unsupported("getExposureModes")
}

func (a *Adapter) GetExposureMode(ctx context.Context) (ExposureMode, error) {
	return "", unsupported("getExposureMode")
}

func (a *Adapter) SetExposureMode(ctx context.Context, mode ExposureMode) error {
	return unsupported("setExposureMode")
}

func (a *Adapter) GetExposureCompensationRange(ctx context.Context) (Range, error) {
	return Range{}, unsupported("getExposureCompensationRange")
}

func (a *Adapter) GetExposureCompensation(ctx context.Context) (float64, error) {
	return 0, unsupported("getExposureCompensation")
}

func (a *Adapter) SetExposureCompensation(ctx context.Context, value float64) error {
	return unsupported("setExposureCompensation")
}
