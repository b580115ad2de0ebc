package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var devicesJSON bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List cameras grouped by position with their lenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)

		devices, err := rt.adapter.GetAvailableDevices(ctx)
		if err != nil {
			return err
		}
		if devicesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"devices": devices})
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DEVICE ID\tPOSITION\tLABEL\tLENSES\tZOOM")
		for _, d := range devices {
			lenses := ""
			for i, l := range d.Lenses {
				if i > 0 {
					lenses += ","
				}
				lenses += string(l.DeviceType)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f-%.1f\n", d.DeviceID, d.Position, d.Label, lenses, d.MinZoom, d.MaxZoom)
		}
		return w.Flush()
	},
}

func init() {
	devicesCmd.Flags().BoolVar(&devicesJSON, "json", false, "print JSON")
}
