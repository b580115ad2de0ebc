package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wachiwi/camera-preview/pkg/config"
	"github.com/wachiwi/camera-preview/pkg/logger"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "camera-preview",
	Short: "Live camera preview with capture, zoom and device discovery",
	Long: `camera-preview runs a camera session adapter behind an HTTP bridge.
The preview is laid out on a virtual page and streamed as MJPEG; capture,
zoom, flash and device listing are exposed as JSON methods.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		return logger.Setup(cfg.Log.Level, cfg.Log.Format)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.camera-preview.yaml)")
	rootCmd.AddCommand(serveCmd, devicesCmd, snapshotCmd)
}
