package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/telemetry-engine/internal/efficiency"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

var efficiencyCmd = &cobra.Command{
	Use:   "efficiency",
	Short: "Aggregate a flight log into a speed-bucketed efficiency CSV",
	Long: `Efficiency reads a raw flight log and writes one row per speed bucket:
mean speed, mean electrical power, and energy per distance (Wh/km)
integrated from the bucket's samples.

Buckets are fixed-width speed bins spanning the 5th to 95th speed
percentile. Pass --bins 0 to group by exact speed value instead.`,
	RunE: runEfficiency,
}

func runEfficiency(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	name, _ := cmd.Flags().GetString("name")

	cfg := types.EfficiencyConfig{
		ProcessConfig: types.ProcessConfig{OutDir: outDirFromFlags(cmd)},
		Bins:          binsFromFlags(cmd),
	}

	res, err := efficiency.Aggregate(input, name, cfg, os.Stderr)
	if err != nil {
		return err
	}

	return finishRun(cmd, cfg.OutDir, types.RunRecord{
		Tool:        "efficiency",
		Name:        name,
		Input:       input,
		Outputs:     []string{res.Output},
		RowsRead:    res.RowsRead,
		RowsSkipped: res.RowsSkipped,
	})
}

func binsFromFlags(cmd *cobra.Command) int {
	if !cmd.Flags().Changed("bins") && viper.IsSet("bins") {
		return viper.GetInt("bins")
	}
	v, _ := cmd.Flags().GetInt("bins")
	return v
}

func init() {
	efficiencyCmd.Flags().String("input", "", "path to the raw flight-log CSV")
	efficiencyCmd.Flags().String("name", "", "label used to build output filenames (e.g. xwing_indi)")
	efficiencyCmd.Flags().String("outdir", "data", "output directory")
	efficiencyCmd.Flags().Int("bins", 12, "number of speed bins; 0 groups by exact speed value")
	efficiencyCmd.MarkFlagRequired("input")
	efficiencyCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(efficiencyCmd)
}
