package preview

import "context"

func (a *Adapter) mounted() (Surface, Container, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.surface == nil {
		return nil, nil, ErrNotRunning
	}
	return a.surface, a.container, nil
}

// GetAspectRatio infers the ratio from the rendered preview box.
func (a *Adapter) GetAspectRatio(ctx context.Context) (string, error) {
	s, _, err := a.mounted()
	if err != nil {
		return "", err
	}
	return ratioOfBox(s.BoundingRect()), nil
}

// SetAspectRatio reshapes the preview to the portrait form of the ratio
// inside its current box and positions it in the viewport. The reported
// origin is inset by one eighth of the box size.
func (a *Adapter) SetAspectRatio(ctx context.Context, opts AspectRatioOptions) (Bounds, error) {
	s, c, err := a.mounted()
	if err != nil {
		return Bounds{}, err
	}
	rw, rh, err := parseRatio(opts.AspectRatio)
	if err != nil {
		return Bounds{}, wrapError(err, CodeInvalidArgument, "invalid aspectRatio")
	}
	cur := s.BoundingRect()
	size := shrinkToRatio(Size{Width: cur.Width, Height: cur.Height}, rh/rw)
	s.SetSize(size.Width, size.Height)

	vp := a.host.Viewport()
	x := centerOffset(vp.Width, size.Width)
	y := centerOffset(vp.Height, size.Height)
	if opts.X != nil {
		x = clamp(*opts.X, 0, vp.Width-size.Width)
	}
	if opts.Y != nil {
		y = clamp(*opts.Y, 0, vp.Height-size.Height)
	}
	// Surface positions are relative to the container's content box.
	box := c.ContentBox()
	px, py := x-box.X, y-box.Y
	s.SetPosition(px, py)

	a.mu.Lock()
	a.placement = placement{x: &px, y: &py}
	a.mu.Unlock()

	return insetBounds(s.BoundingRect()), nil
}

// SetOpacity applies opacity to the preview. Zero is treated like "not
// provided" and ignored, as is a call without a mounted preview.
func (a *Adapter) SetOpacity(ctx context.Context, opacity *float64) error {
	a.mu.Lock()
	s := a.surface
	a.mu.Unlock()
	if s != nil && opacity != nil && *opacity != 0 {
		s.SetOpacity(*opacity)
	}
	return nil
}

// GetPreviewSize returns the preview box with the one-eighth inset applied
// to its origin.
func (a *Adapter) GetPreviewSize(ctx context.Context) (Bounds, error) {
	s, _, err := a.mounted()
	if err != nil {
		return Bounds{}, err
	}
	return insetBounds(s.BoundingRect()), nil
}

// SetPreviewSize writes the preview box directly.
func (a *Adapter) SetPreviewSize(ctx context.Context, size PreviewSize) (Bounds, error) {
	s, _, err := a.mounted()
	if err != nil {
		return Bounds{}, err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return Bounds{}, newError(CodeInvalidArgument, "width and height must be positive")
	}
	s.SetSize(size.Width, size.Height)
	s.SetPosition(size.X, size.Y)

	a.mu.Lock()
	x, y := size.X, size.Y
	a.placement = placement{x: &x, y: &y}
	a.mu.Unlock()

	return insetBounds(s.BoundingRect()), nil
}

// Relayout re-applies the preview placement, e.g. after the container or
// viewport changed size. Auto-centered axes are recomputed.
func (a *Adapter) Relayout(ctx context.Context) error {
	a.mu.Lock()
	s, c, p := a.surface, a.container, a.placement
	a.mu.Unlock()
	if s == nil {
		return ErrNotRunning
	}
	a.applyPlacement(s, c, p)
	return nil
}
