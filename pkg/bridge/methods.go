package bridge

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wachiwi/camera-preview/pkg/preview"
	"github.com/wachiwi/camera-preview/pkg/telemetry"
)

// method runs one adapter operation. A nil result is sent as {}.
type method func(ctx context.Context, c *gin.Context) (any, error)

// decode binds the JSON body into T. An empty body yields the zero value.
func decode[T any](c *gin.Context) (T, error) {
	var in T
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return in, nil
	}
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, invalidArgument("invalid request body", err)
	}
	return in, nil
}

type deviceIDRequest struct {
	DeviceID string `json:"deviceId"`
}

type focusRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type gridRequest struct {
	GridMode preview.GridMode `json:"gridMode"`
}

type opacityRequest struct {
	Opacity *float64 `json:"opacity"`
}

type flashRequest struct {
	FlashMode preview.FlashMode `json:"flashMode"`
}

type exposureModeRequest struct {
	Mode preview.ExposureMode `json:"mode"`
}

type exposureCompensationRequest struct {
	Value float64 `json:"value"`
}

func (s *Server) methodTable() map[string]method {
	a := s.adapter
	return map[string]method{
		"start": func(ctx context.Context, c *gin.Context) (any, error) {
			opts, err := decode[preview.Options](c)
			if err != nil {
				return nil, err
			}
			return a.Start(ctx, opts)
		},
		"stop": func(ctx context.Context, c *gin.Context) (any, error) {
			return nil, a.Stop(ctx)
		},
		"isRunning": func(ctx context.Context, c *gin.Context) (any, error) {
			return gin.H{"isRunning": a.IsRunning()}, nil
		},
		"flip": func(ctx context.Context, c *gin.Context) (any, error) {
			return nil, a.Flip(ctx)
		},
		"setDeviceId": func(ctx context.Context, c *gin.Context) (any, error) {
			req, err := decode[deviceIDRequest](c)
			if err != nil {
				return nil, err
			}
			return nil, a.SetDeviceID(ctx, req.DeviceID)
		},
		"getDeviceId": func(ctx context.Context, c *gin.Context) (any, error) {
			return gin.H{"deviceId": a.GetDeviceID(ctx)}, nil
		},
		"capture":       s.capture(a.Capture),
		"captureSample": s.capture(a.CaptureSample),
		"getAvailableDevices": func(ctx context.Context, c *gin.Context) (any, error) {
			devices, err := a.GetAvailableDevices(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"devices": devices}, nil
		},
		"getZoom": func(ctx context.Context, c *gin.Context) (any, error) {
			return a.GetZoom(ctx)
		},
		"setZoom": func(ctx context.Context, c *gin.Context) (any, error) {
			opts, err := decode[preview.ZoomOptions](c)
			if err != nil {
				return nil, err
			}
			return nil, a.SetZoom(ctx, opts)
		},
		"setFocus": func(ctx context.Context, c *gin.Context) (any, error) {
			req, err := decode[focusRequest](c)
			if err != nil {
				return nil, err
			}
			if req.X == nil || req.Y == nil {
				return nil, preview.ErrInvalidFocusCoordinates
			}
			return nil, a.SetFocus(ctx, *req.X, *req.Y)
		},
		"getAspectRatio": func(ctx context.Context, c *gin.Context) (any, error) {
			ratio, err := a.GetAspectRatio(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"aspectRatio": ratio}, nil
		},
		"setAspectRatio": func(ctx context.Context, c *gin.Context) (any, error) {
			opts, err := decode[preview.AspectRatioOptions](c)
			if err != nil {
				return nil, err
			}
			return a.SetAspectRatio(ctx, opts)
		},
		"setGridMode": func(ctx context.Context, c *gin.Context) (any, error) {
			req, err := decode[gridRequest](c)
			if err != nil {
				return nil, err
			}
			return nil, a.SetGridMode(ctx, req.GridMode)
		},
		"getGridMode": func(ctx context.Context, c *gin.Context) (any, error) {
			return gin.H{"gridMode": a.GetGridMode(ctx)}, nil
		},
		"setOpacity": func(ctx context.Context, c *gin.Context) (any, error) {
			req, err := decode[opacityRequest](c)
			if err != nil {
				return nil, err
			}
			return nil, a.SetOpacity(ctx, req.Opacity)
		},
		"getPreviewSize": func(ctx context.Context, c *gin.Context) (any, error) {
			return a.GetPreviewSize(ctx)
		},
		"setPreviewSize": func(ctx context.Context, c *gin.Context) (any, error) {
			size, err := decode[preview.PreviewSize](c)
			if err != nil {
				return nil, err
			}
			return a.SetPreviewSize(ctx, size)
		},
		"getOrientation": func(ctx context.Context, c *gin.Context) (any, error) {
			return gin.H{"orientation": a.GetOrientation(ctx)}, nil
		},
		"getSupportedFlashModes": func(ctx context.Context, c *gin.Context) (any, error) {
			modes, err := a.GetSupportedFlashModes(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"result": modes}, nil
		},
		"getFlashMode": func(ctx context.Context, c *gin.Context) (any, error) {
			return gin.H{"flashMode": a.GetFlashMode(ctx)}, nil
		},
		"setFlashMode": func(ctx context.Context, c *gin.Context) (any, error) {
			req, err := decode[flashRequest](c)
			if err != nil {
				return nil, err
			}
			return nil, a.SetFlashMode(ctx, req.FlashMode)
		},
		"getSupportedPictureSizes": func(ctx context.Context, c *gin.Context) (any, error) {
			sizes, err := a.GetSupportedPictureSizes(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"supportedPictureSizes": sizes}, nil
		},
		"startRecordVideo": func(ctx context.Context, c *gin.Context) (any, error) {
			return nil, a.StartRecordVideo(ctx)
		},
		"stopRecordVideo": func(ctx context.Context, c *gin.Context) (any, error) {
			path, err := a.StopRecordVideo(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"videoFilePath": path}, nil
		},
		"getHorizontalFov": func(ctx context.Context, c *gin.Context) (any, error) {
			fov, err := a.GetHorizontalFov(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"result": fov}, nil
		},
		"getExposureModes": func(ctx context.Context, c *gin.Context) (any, error) {
			modes, err := a.GetExposureModes(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"modes": modes}, nil
		},
		"getExposureMode": func(ctx context.Context, c *gin.Context) (any, error) {
			mode, err := a.GetExposureMode(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"mode": mode}, nil
		},
		"setExposureMode": func(ctx context.Context, c *gin.Context) (any, error) {
			req, err := decode[exposureModeRequest](c)
			if err != nil {
				return nil, err
			}
			return nil, a.SetExposureMode(ctx, req.Mode)
		},
		"getExposureCompensationRange": func(ctx context.Context, c *gin.Context) (any, error) {
			r, err := a.GetExposureCompensationRange(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"min": r.Min, "max": r.Max, "step": r.Step}, nil
		},
		"getExposureCompensation": func(ctx context.Context, c *gin.Context) (any, error) {
			v, err := a.GetExposureCompensation(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"value": v}, nil
		},
		"setExposureCompensation": func(ctx context.Context, c *gin.Context) (any, error) {
			req, err := decode[exposureCompensationRequest](c)
			if err != nil {
				return nil, err
			}
			return nil, a.SetExposureCompensation(ctx, req.Value)
		},
	}
}

func (s *Server) capture(fn func(context.Context, preview.CaptureOptions) (preview.CaptureResult, error)) method {
	return func(ctx context.Context, c *gin.Context) (any, error) {
		opts, err := decode[preview.CaptureOptions](c)
		if err != nil {
			return nil, err
		}
		return fn(ctx, opts)
	}
}

// call dispatches POST /api/camera/:method.
func (s *Server) call(c *gin.Context) {
	name := c.Param("method")
	m, ok := s.methods[name]
	if !ok {
		c.JSON(http.StatusNotFound, errorBody{Code: "UNKNOWN_METHOD", Message: "unknown method " + name})
		return
	}

	ctx, span := telemetry.Tracer().Start(c.Request.Context(), "camera."+name,
		trace.WithAttributes(attribute.String("camera.method", name)))
	defer span.End()

	out, err := m(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		status := writeError(c, err)
		code := string(preview.CodeOf(err))
		if code == "" {
			code = "INTERNAL"
		}
		s.calls.WithLabelValues(name, code).Inc()
		s.logger.WarnContext(ctx, "Camera call failed", "method", name, "status", status, "error", err)
		return
	}
	s.calls.WithLabelValues(name, "ok").Inc()
	if out == nil {
		out = gin.H{}
	}
	c.JSON(http.StatusOK, out)
}
