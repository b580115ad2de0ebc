package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

var (
	snapshotOut      string
	snapshotPosition string
	snapshotWidth    int
	snapshotQuality  int
	snapshotDelay    time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Start the camera, capture one picture and write it to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		rt, err := newRuntime(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer rt.Close(context.Background())

		if _, err := rt.adapter.Start(ctx, preview.Options{Position: preview.Position(snapshotPosition)}); err != nil {
			return err
		}
		if snapshotDelay > 0 {
			select {
			case <-time.After(snapshotDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		format := preview.FormatJPEG
		if strings.EqualFold(filepath.Ext(snapshotOut), ".png") {
			format = preview.FormatPNG
		}
		res, err := rt.adapter.Capture(ctx, preview.CaptureOptions{
			Width:   snapshotWidth,
			Quality: &snapshotQuality,
			Format:  format,
		})
		if err != nil {
			return err
		}
		if res.Value == "" {
			return errors.New("no frame decoded yet, try a longer --delay")
		}
		data, err := base64.StdEncoding.DecodeString(res.Value)
		if err != nil {
			return fmt.Errorf("failed to decode capture: %w", err)
		}
		if err := os.WriteFile(snapshotOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		slog.Info("Snapshot written", "file", snapshotOut, "bytes", len(data))
		return nil
	},
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVarP(&snapshotOut, "out", "o", "snapshot.jpg", "output file, .jpg or .png")
	f.StringVar(&snapshotPosition, "position", string(preview.PositionRear), "rear or front")
	f.IntVar(&snapshotWidth, "width", 0, "scale to this width, keeping the aspect ratio")
	f.IntVar(&snapshotQuality, "quality", 85, "JPEG quality 0-100")
	f.DurationVar(&snapshotDelay, "delay", 500*time.Millisecond, "wait before capturing so exposure settles")
}
