package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

const defaultQuality = 85

// Capture renders the current preview frame into a base64 encoded image.
// An empty value means no frame has been decoded yet. Exif is always empty.
func (a *Adapter) Capture(ctx context.Context, opts CaptureOptions) (CaptureResult, error) {
	a.mu.Lock()
	surface, stream, facing, flash := a.surface, a.stream, a.facing, a.flash
	running := a.started
	a.mu.Unlock()
	if !running || surface == nil || stream == nil {
		return CaptureResult{}, ErrNotRunning
	}
	if opts.Format != "" && opts.Format != FormatJPEG && opts.Format != FormatPNG {
		return CaptureResult{}, newError(CodeInvalidArgument, fmt.Sprintf("unknown image format %q", opts.Format))
	}

	if flash == FlashOn {
		track := firstTrack(stream)
		a.report(ctx, "flash", a.setTorch(ctx, track, true))
		defer func() { a.report(ctx, "flash", a.setTorch(ctx, track, false)) }()
	}

	result := CaptureResult{Exif: map[string]any{}}
	vw, vh := surface.VideoSize()
	frame := surface.Frame()
	if vw == 0 || vh == 0 || frame == nil {
		return result, nil
	}

	w, h := captureSize(vw, vh, opts.Width, opts.Height)
	raster := render(frame, w, h, facing == PositionFront)

	data, err := encode(raster, opts)
	if err != nil {
		return CaptureResult{}, err
	}
	result.Value = base64.StdEncoding.EncodeToString(data)

	if a.shutter != nil {
		go func(ctx context.Context) {
			out := applied()
			if err := a.shutter.Play(ctx); err != nil {
				out = degraded(err)
			}
			a.report(ctx, "shutter", out)
		}(context.WithoutCancel(ctx))
	}
	return result, nil
}

// CaptureSample has the same contract as Capture.
func (a *Adapter) CaptureSample(ctx context.Context, opts CaptureOptions) (CaptureResult, error) {
	return a.Capture(ctx, opts)
}

// PreviewJPEG encodes the frame currently shown by the preview.
func (a *Adapter) PreviewJPEG(quality int) ([]byte, error) {
	a.mu.Lock()
	surface := a.surface
	a.mu.Unlock()
	if surface == nil {
		return nil, ErrNotRunning
	}
	frame := surface.Frame()
	if frame == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview frame: %w", err)
	}
	return buf.Bytes(), nil
}

// render scales src into a w×h raster, mirrored horizontally when asked.
func render(src image.Image, w, h int, mirror bool) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	if mirror {
		mirrorRGBA(dst)
	}
	return dst
}

func mirrorRGBA(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for l, r := 0, b.Dx()-1; l < r; l, r = l+1, r-1 {
			lo, ro := l*4, r*4
			for i := 0; i < 4; i++ {
				row[lo+i], row[ro+i] = row[ro+i], row[lo+i]
			}
		}
	}
}

func encode(img image.Image, opts CaptureOptions) ([]byte, error) {
	var buf bytes.Buffer
	if opts.Format == FormatPNG {
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		return buf.Bytes(), nil
	}
	quality := defaultQuality
	if opts.Quality != nil {
		quality = int(clamp(float64(*opts.Quality), 1, 100))
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
