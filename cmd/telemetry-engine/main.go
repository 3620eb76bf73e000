// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the telemetry-engine CLI.
// Implements: prd001-thrust-map, prd002-efficiency, prd003-lookup,
//             prd004-run-catalog (CLI surface).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/telemetry-engine/internal/catalog"
	"github.com/pdiddy/telemetry-engine/internal/report"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the telemetry-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "telemetry-engine",
	Short: "Convert raw bench and flight telemetry into plot-ready CSVs",
	Long: `telemetry-engine turns raw propulsion-bench and flight-log CSVs into the
tidy tables the thesis plots consume: thrust maps (throttle and rpm vs
thrust), speed-bucketed efficiency curves, and flattened thrust lookup grids.

Each converter is a subcommand reading one input file per invocation. Every
run is recorded in a YAML report next to its outputs and, unless disabled,
in a SQLite catalog under <outdir>/index/.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./telemetry-engine.yaml or ~/.config/telemetry-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("no-catalog", false, "do not record this run in the SQLite catalog")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("telemetry-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "telemetry-engine"))
		}
	}

	viper.SetEnvPrefix("TELEMETRY_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// outDirFromFlags resolves --outdir, letting the config file or environment
// supply the value when the flag was not given explicitly.
func outDirFromFlags(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("outdir") && viper.IsSet("outdir") {
		return viper.GetString("outdir")
	}
	v, _ := cmd.Flags().GetString("outdir")
	return v
}

// catalogEnabled reports whether the run catalog should be written.
func catalogEnabled(cmd *cobra.Command) bool {
	if off, _ := cmd.Flags().GetBool("no-catalog"); off {
		return false
	}
	if viper.IsSet("catalog") {
		return viper.GetBool("catalog")
	}
	return true
}

// finishRun writes the YAML run report and records the run in the catalog.
func finishRun(cmd *cobra.Command, outDir string, rec types.RunRecord) error {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	path, err := report.Write(outDir, rec)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)

	if !catalogEnabled(cmd) {
		return nil
	}
	store, err := catalog.Open(outDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(context.Background(), rec)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
