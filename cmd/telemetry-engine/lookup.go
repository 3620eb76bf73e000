package main

import (
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/telemetry-engine/internal/lookup"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Flatten a thrust lookup grid into tidy CSVs",
	Long: `Lookup reads a thrust lookup grid (meta row followed by an NxN table of
command values, voltage rows by force columns) and writes two files: a
long-form melt of the whole grid for contour plots, and a 1D thrust-vs-
throttle curve sliced at one voltage.

The slice defaults to the middle of the voltage axis; throttle percent is
normalized over the observed command span unless --min-cmd/--max-cmd
override it.`,
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	name, _ := cmd.Flags().GetString("name")

	cfg := types.LookupConfig{
		ProcessConfig: types.ProcessConfig{OutDir: outDirFromFlags(cmd)},
		Voltage:       optionalFloat(cmd, "voltage"),
		MinCmd:        optionalFloat(cmd, "min-cmd"),
		MaxCmd:        optionalFloat(cmd, "max-cmd"),
	}

	res, err := lookup.Convert(input, name, cfg, os.Stderr)
	if err != nil {
		return err
	}

	return finishRun(cmd, cfg.OutDir, types.RunRecord{
		Tool:     "lookup",
		Name:     name,
		Input:    input,
		Outputs:  []string{res.LongOutput, res.CurveOutput},
		RowsRead: res.GridSize * res.GridSize,
	})
}

// optionalFloat returns the flag value, or NaN when the flag was not given.
func optionalFloat(cmd *cobra.Command, flag string) float64 {
	if !cmd.Flags().Changed(flag) {
		return math.NaN()
	}
	v, _ := cmd.Flags().GetFloat64(flag)
	return v
}

func init() {
	lookupCmd.Flags().String("input", "", "path to the lookup grid CSV")
	lookupCmd.Flags().String("name", "", "label used to build output filenames")
	lookupCmd.Flags().String("outdir", "data", "output directory")
	lookupCmd.Flags().Float64("voltage", 0, "voltage slice for the 1D curve (default: middle voltage)")
	lookupCmd.Flags().Float64("min-cmd", 0, "minimum command for throttle normalization (default: observed)")
	lookupCmd.Flags().Float64("max-cmd", 0, "maximum command for throttle normalization (default: observed)")
	lookupCmd.MarkFlagRequired("input")
	lookupCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(lookupCmd)
}
