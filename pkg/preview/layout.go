package preview

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// aspectTolerance is the error accepted when matching a box to a ratio.
const aspectTolerance = 0.01

// parseRatio parses "w:h" into its two terms.
func parseRatio(s string) (w, h float64, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid aspect ratio %q", s)
	}
	w, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
	}
	h, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid aspect ratio %q", s)
	}
	return w, h, nil
}

// fitRatio returns the largest box of the given width/height ratio inside
// bounds, fitting to width first and falling back to height on overflow.
func fitRatio(bounds Size, ratio float64) Size {
	w := bounds.Width
	h := w / ratio
	if h > bounds.Height {
		h = bounds.Height
		w = h * ratio
	}
	return Size{Width: w, Height: h}
}

// shrinkToRatio reshapes cur to ratio by shrinking one side.
func shrinkToRatio(cur Size, ratio float64) Size {
	if cur.Height == 0 || cur.Width/cur.Height > ratio {
		return Size{Width: cur.Height * ratio, Height: cur.Height}
	}
	return Size{Width: cur.Width, Height: cur.Width / ratio}
}

// centerOffset places a box of length inner inside outer.
func centerOffset(outer, inner float64) float64 {
	return (outer - inner) / 2
}

// verticalOffset applies the vertical alignment policy.
func verticalOffset(align VerticalAlign, outer, inner float64) float64 {
	switch align {
	case AlignTop:
		return 0
	case AlignBottom:
		return outer - inner
	default:
		return centerOffset(outer, inner)
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}

func roundBounds(r Rect) Bounds {
	return Bounds{
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
	}
}

// insetBounds reports a box with its origin moved inward by one eighth of
// its size, the convention of the preview-geometry calls.
func insetBounds(r Rect) Bounds {
	return Bounds{
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
		X:      int(math.Round(r.X + r.Width/8)),
		Y:      int(math.Round(r.Y + r.Height/8)),
	}
}

// ratioOfBox maps a rendered box back to the ratio name it was built from.
func ratioOfBox(r Rect) string {
	if r.Width <= 0 || r.Height <= 0 {
		return "4:3"
	}
	got := r.Width / r.Height
	if math.Abs(got-3.0/4.0) < aspectTolerance {
		return "4:3"
	}
	if math.Abs(got-9.0/16.0) < aspectTolerance {
		return "16:9"
	}
	return "4:3"
}

// captureSize computes the raster size for a capture request.
func captureSize(nativeW, nativeH, reqW, reqH int) (int, int) {
	if reqW <= 0 && reqH <= 0 {
		return nativeW, nativeH
	}
	native := float64(nativeW) / float64(nativeH)
	var w, h float64
	switch {
	case reqW > 0 && reqH > 0:
		if native > float64(reqW)/float64(reqH) {
			w = float64(reqW)
			h = w / native
		} else {
			h = float64(reqH)
			w = h * native
		}
	case reqW > 0:
		w = float64(reqW)
		h = w / native
	default:
		h = float64(reqH)
		w = h * native
	}
	return int(math.Max(1, math.Round(w))), int(math.Max(1, math.Round(h)))
}
