package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wachiwi/camera-preview/pkg/bridge"
	"github.com/wachiwi/camera-preview/pkg/camera"
	"github.com/wachiwi/camera-preview/pkg/config"
	"github.com/wachiwi/camera-preview/pkg/headless"
	"github.com/wachiwi/camera-preview/pkg/mediadev"
	"github.com/wachiwi/camera-preview/pkg/orientation"
	"github.com/wachiwi/camera-preview/pkg/preview"
	"github.com/wachiwi/camera-preview/pkg/shutter"
	"github.com/wachiwi/camera-preview/pkg/telemetry"
	"github.com/wachiwi/camera-preview/pkg/torch"
)

// runtime is one wired adapter with everything it owns.
type runtime struct {
	media    preview.MediaDevices
	host     *headless.Host
	monitor  *orientation.Monitor
	adapter  *preview.Adapter
	registry *prometheus.Registry
	closers  []func(context.Context) error
}

func newMedia(cfg config.CameraConfig, logger *slog.Logger) (preview.MediaDevices, error) {
	switch cfg.Backend {
	case config.BackendHeadless:
		return headless.NewDevices(), nil
	case config.BackendProcess:
		return camera.NewDevices(camera.Config{
			Width:       cfg.Width,
			Height:      cfg.Height,
			FPS:         cfg.FPS,
			Placeholder: cfg.Placeholder,
		}, logger), nil
	case config.BackendMediadev:
		return mediadev.New(), nil
	default:
		return nil, fmt.Errorf("unknown camera backend %q", cfg.Backend)
	}
}

// newRuntime builds the adapter. withExtras adds torch, shutter sound and
// telemetry, which one-shot commands skip.
func newRuntime(ctx context.Context, cfg config.Config, withExtras bool) (*runtime, error) {
	logger := slog.Default()
	media, err := newMedia(cfg.Camera, logger)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		media:    media,
		host:     headless.NewHost(cfg.Viewport.Width, cfg.Viewport.Height),
		registry: prometheus.NewRegistry(),
	}
	rt.monitor = orientation.NewMonitor(rt.host)

	observers := preview.MultiObserver{
		preview.LogObserver{Logger: logger},
		bridge.NewDegradationMetrics(rt.registry),
	}
	opts := []preview.Option{
		preview.WithLogger(logger),
		preview.WithOrientation(rt.monitor),
	}

	if withExtras {
		if cfg.Telemetry.Enabled {
			shutdown, err := telemetry.Setup(ctx, telemetry.Config{
				ServiceName: cfg.Telemetry.ServiceName,
				Endpoint:    cfg.Telemetry.Endpoint,
			})
			if err != nil {
				return nil, err
			}
			rt.closers = append(rt.closers, shutdown)
			counter, err := telemetry.NewDegradationCounter(nil)
			if err != nil {
				rt.Close(ctx)
				return nil, err
			}
			observers = append(observers, counter)
		}
		if cfg.Torch.Enabled {
			t, err := torch.Open(cfg.Torch.Chip, cfg.Torch.Pin)
			if err != nil {
				rt.Close(ctx)
				return nil, fmt.Errorf("failed to open torch: %w", err)
			}
			rt.closers = append(rt.closers, func(context.Context) error { return t.Close() })
			opts = append(opts, preview.WithTorch(t))
		}
		if cfg.Shutter.Enabled {
			player, err := shutter.Load(cfg.Shutter.Sound, logger)
			if err != nil {
				rt.Close(ctx)
				return nil, fmt.Errorf("failed to load shutter sound: %w", err)
			}
			opts = append(opts, preview.WithShutter(player))
		}
	}

	opts = append(opts, preview.WithObserver(observers))
	rt.adapter = preview.New(media, rt.host, opts...)
	return rt, nil
}

// Close stops the session and releases everything in reverse order.
func (rt *runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.adapter != nil {
		errs = append(errs, rt.adapter.Stop(ctx))
	}
	rt.monitor.Close()
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i](ctx))
	}
	rt.closers = nil
	return errors.Join(errs...)
}
