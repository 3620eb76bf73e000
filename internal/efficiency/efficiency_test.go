// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package efficiency

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/telemetry-engine/internal/telemcsv"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flight.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func cfg(outDir string, bins int) types.EfficiencyConfig {
	return types.EfficiencyConfig{
		ProcessConfig: types.ProcessConfig{OutDir: outDir},
		Bins:          bins,
	}
}

func TestAggregateConstantCruise(t *testing.T) {
	// 10 m/s for 10 seconds at 12 V * 5 A: one bucket, 60 W, and
	// energy per km of 60/10 * 1000/3600 = 5/3 Wh/km.
	var b strings.Builder
	b.WriteString("time_s,speed_mps,voltage_V,current_A\n")
	for i := 0; i <= 10; i++ {
		fmt.Fprintf(&b, "%d,10,12,5\n", i)
	}
	input := writeInput(t, b.String())
	outDir := t.TempDir()

	var log bytes.Buffer
	res, err := Aggregate(input, "cruise", cfg(outDir, 12), &log)
	require.NoError(t, err)

	require.Len(t, res.Points, 1)
	p := res.Points[0]
	assert.InDelta(t, 10, p.SpeedMps, 1e-9)
	assert.InDelta(t, 60, p.PowerW, 1e-9)
	assert.InDelta(t, 5.0/3.0, p.EnergyWhPerKm, 1e-9)
	assert.Equal(t, 11, p.Samples)

	data, err := os.ReadFile(filepath.Join(outDir, "efficiency_cruise.csv"))
	require.NoError(t, err)
	assert.Equal(t, "speed_mps,power_W,energy_Wh_per_km\n10,60,1.6666666666666667\n", string(data))
}

func TestAggregatePerUniqueValueGrouping(t *testing.T) {
	input := writeInput(t, "time_s,speed_mps,voltage_V,current_A\n0,10,12,5\n1,5,12,2\n2,5,12,2\n3,5,12,2\n")
	outDir := t.TempDir()

	var log bytes.Buffer
	res, err := Aggregate(input, "f", cfg(outDir, 0), &log)
	require.NoError(t, err)

	// Output sorted ascending by speed even though 10 m/s came first.
	require.Len(t, res.Points, 2)
	assert.InDelta(t, 5, res.Points[0].SpeedMps, 1e-9)
	assert.InDelta(t, 10, res.Points[1].SpeedMps, 1e-9)
	assert.InDelta(t, 24, res.Points[0].PowerW, 1e-9)
	assert.InDelta(t, 60, res.Points[1].PowerW, 1e-9)
}

func TestAggregateFixedWidthBins(t *testing.T) {
	var b strings.Builder
	b.WriteString("time_s,speed_mps,voltage_V,current_A\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "%d,%d,12,5\n", i, i+1)
	}
	input := writeInput(t, b.String())

	var log bytes.Buffer
	res, err := Aggregate(input, "f", cfg(t.TempDir(), 2), &log)
	require.NoError(t, err)

	// Quantile trimming drops speeds 1 and 12; 2..6 and 7..11 split in two.
	require.Len(t, res.Points, 2)
	assert.InDelta(t, 4, res.Points[0].SpeedMps, 1e-9)
	assert.InDelta(t, 9, res.Points[1].SpeedMps, 1e-9)
	assert.Equal(t, 5, res.Points[0].Samples)
	assert.Equal(t, 5, res.Points[1].Samples)
}

func TestAggregatePrecomputedPowerColumn(t *testing.T) {
	input := writeInput(t, "time_s,speed_mps,power_W\n0,10,60\n1,10,60\n")

	var log bytes.Buffer
	res, err := Aggregate(input, "f", cfg(t.TempDir(), 0), &log)
	require.NoError(t, err)

	require.Len(t, res.Points, 1)
	assert.InDelta(t, 60, res.Points[0].PowerW, 1e-9)
}

func TestAggregateThrustSumColumn(t *testing.T) {
	input := writeInput(t, "time_s,speed_mps,voltage_V,current_A,thrust_sum_N\n0,10,12,5,4\n1,10,12,5,6\n")
	outDir := t.TempDir()

	var log bytes.Buffer
	res, err := Aggregate(input, "f", cfg(outDir, 0), &log)
	require.NoError(t, err)

	require.Len(t, res.Points, 1)
	assert.InDelta(t, 5, res.Points[0].ThrustSumN, 1e-9)

	data, err := os.ReadFile(filepath.Join(outDir, "efficiency_f.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "speed_mps,power_W,energy_Wh_per_km,thrust_sum_N\n"))
}

func TestAggregateDegenerateBucketSkipped(t *testing.T) {
	// The trailing 10 m/s sample has no forward time delta, so its bucket
	// integrates zero distance and is skipped with a warning.
	input := writeInput(t, "time_s,speed_mps,voltage_V,current_A\n0,5,12,2\n1,5,12,2\n2,10,12,5\n")

	var log bytes.Buffer
	res, err := Aggregate(input, "f", cfg(t.TempDir(), 0), &log)
	require.NoError(t, err)

	require.Len(t, res.Points, 1)
	assert.InDelta(t, 5, res.Points[0].SpeedMps, 1e-9)
	assert.Equal(t, 1, res.BucketsSkipped)
	assert.Contains(t, log.String(), "near-zero distance")
}

func TestAggregateSkipsInvalidRows(t *testing.T) {
	input := writeInput(t, "time_s,speed_mps,voltage_V,current_A\n0,10,12,5\n1,,12,5\n2,10,12,5\n")

	var log bytes.Buffer
	res, err := Aggregate(input, "f", cfg(t.TempDir(), 0), &log)
	require.NoError(t, err)

	assert.Equal(t, 3, res.RowsRead)
	assert.Equal(t, 1, res.RowsSkipped)
	assert.Contains(t, log.String(), "skipped 1 of 3")
}

func TestAggregateErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		errIs error
	}{
		{
			name:  "missing speed column",
			input: "time_s,voltage_V,current_A\n0,12,5\n",
			errIs: telemcsv.ErrMalformedInput,
		},
		{
			name:  "missing time column",
			input: "speed_mps,voltage_V,current_A\n10,12,5\n",
			errIs: telemcsv.ErrMalformedInput,
		},
		{
			name:  "no power source",
			input: "time_s,speed_mps,voltage_V\n0,10,12\n",
			errIs: telemcsv.ErrMalformedInput,
		},
		{
			name:  "header only",
			input: "time_s,speed_mps,voltage_V,current_A\n",
			errIs: telemcsv.ErrNoValidRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeInput(t, tt.input)
			var log bytes.Buffer
			_, err := Aggregate(input, "f", cfg(t.TempDir(), 12), &log)
			require.ErrorIs(t, err, tt.errIs)
		})
	}
}
