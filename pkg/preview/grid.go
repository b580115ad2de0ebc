package preview

import "context"

// GridLines returns the evenly spaced lines of a composition grid, in percent
// of the overlay box. GridNone and unknown modes yield no lines.
func GridLines(mode GridMode) []Line {
	var cells int
	switch mode {
	case Grid3x3:
		cells = 3
	case Grid4x4:
		cells = 4
	default:
		return nil
	}
	lines := make([]Line, 0, 2*(cells-1))
	for i := 1; i < cells; i++ {
		p := 100 * float64(i) / float64(cells)
		lines = append(lines,
			Line{X1: p, Y1: 0, X2: p, Y2: 100},
			Line{X1: 0, Y1: p, X2: 100, Y2: p},
		)
	}
	return lines
}

// SetGridMode is accepted after start but does not change the overlay.
func (a *Adapter) SetGridMode(ctx context.Context, mode GridMode) error {
	a.logger.WarnContext(ctx, "grid mode can only be chosen at start", "gridMode", mode)
	return nil
}

// GetGridMode always reports GridNone; the grid state is not tracked after
// start.
func (a *Adapter) GetGridMode(ctx context.Context) GridMode {
	return GridNone
}
