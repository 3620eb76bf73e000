package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/telemetry-engine/internal/thrustmap"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

var thrustmapCmd = &cobra.Command{
	Use:   "thrustmap",
	Short: "Convert a bench-test log into thrust map CSVs",
	Long: `Thrustmap reads a raw bench-test log and writes throttle-vs-thrust and
rpm-vs-thrust tables, plus a combined clean file. When the log carries both
voltage and current columns a computed power_W column is appended.

Thrust columns in gram-force or kilogram-force are converted to Newtons.`,
	RunE: runThrustmap,
}

func runThrustmap(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	name, _ := cmd.Flags().GetString("name")
	outDir := outDirFromFlags(cmd)

	res, err := thrustmap.Extract(input, name, outDir, os.Stderr)
	if err != nil {
		return err
	}

	return finishRun(cmd, outDir, types.RunRecord{
		Tool:        "thrustmap",
		Name:        name,
		Input:       input,
		Outputs:     res.Outputs,
		RowsRead:    res.RowsRead,
		RowsSkipped: res.RowsSkipped,
	})
}

func init() {
	thrustmapCmd.Flags().String("input", "", "path to the raw bench-test CSV")
	thrustmapCmd.Flags().String("name", "", "label used to build output filenames (e.g. motorA)")
	thrustmapCmd.Flags().String("outdir", "data", "output directory")
	thrustmapCmd.MarkFlagRequired("input")
	thrustmapCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(thrustmapCmd)
}
