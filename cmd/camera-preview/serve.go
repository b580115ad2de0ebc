package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/wachiwi/camera-preview/pkg/bridge"
	"github.com/wachiwi/camera-preview/pkg/preview"
	"github.com/wachiwi/camera-preview/pkg/watch"
)

var serveAutostart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveAutostart, "autostart", false, "start the rear camera right away")
}

func serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	rt, err := newRuntime(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Close(shutdownCtx); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	if enum, ok := rt.media.(preview.DeviceEnumerator); ok && cfg.Watch.Enabled {
		loc, err := time.LoadLocation(cfg.Watch.Timezone)
		if err != nil {
			return err
		}
		w := watch.New(enum, rt.registry, slog.Default())
		if err := w.Start(cfg.Watch.Schedule, loc); err != nil {
			return err
		}
		defer w.Stop()
	}

	if serveAutostart {
		startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		bounds, err := rt.adapter.Start(startCtx, preview.Options{})
		cancel()
		if err != nil {
			slog.Warn("Autostart failed", "error", err)
		} else {
			slog.Info("Camera started", "bounds", bounds)
		}
	}

	b := bridge.New(rt.adapter,
		bridge.WithLogger(slog.Default()),
		bridge.WithHostControl(rt.host),
		bridge.WithOrientation(rt.monitor),
		bridge.WithRegistry(rt.registry),
		bridge.WithCredentials(bridge.Credentials{
			Username:      cfg.Server.Username,
			Password:      cfg.Server.Password,
			SessionSecret: cfg.Server.SessionSecret,
		}),
	)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server is running", "addr", cfg.Server.Addr, "backend", cfg.Camera.Backend)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
