// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/telemetry-engine/internal/catalog"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded converter runs",
	Long: `Runs prints the run catalog, newest first: which input produced which
output files, when, and how many rows were read or rejected.`,
	RunE: runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	outDir := outDirFromFlags(cmd)
	tool, _ := cmd.Flags().GetString("tool")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := catalog.Open(outDir)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background(), catalog.ListOptions{Tool: tool, Limit: limit})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRuns(records, jsonOutput)
}

func formatRuns(records []types.RunRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-10s  %-12s  %-30s  %5s  %7s\n",
		"When", "Tool", "Name", "Input", "Rows", "Skipped")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 94))

	for _, r := range records {
		input := r.Input
		if len(input) > 30 {
			input = "..." + input[len(input)-27:]
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-10s  %-12s  %-30s  %5d  %7d\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Tool, r.Name, input,
			r.RowsRead, r.RowsSkipped)
	}
	return nil
}

func init() {
	runsCmd.Flags().String("outdir", "data", "output directory holding the catalog")
	runsCmd.Flags().String("tool", "", "filter by converter: thrustmap, efficiency, or lookup")
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(runsCmd)
}
