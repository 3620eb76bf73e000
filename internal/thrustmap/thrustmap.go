// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package thrustmap converts raw bench-test logs into thrust map tables:
// throttle-vs-thrust and rpm-vs-thrust, plus a combined clean file for
// tables and ad hoc plots.
// Implements: prd001-thrust-map (R1-R4).
package thrustmap

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pdiddy/telemetry-engine/internal/telemcsv"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

// Result holds the outcome of one extraction run.
type Result struct {
	// Outputs lists the written files in write order.
	Outputs []string

	// RowsRead is the number of data rows in the source file.
	RowsRead int

	// RowsSkipped is the number of rows that contributed to neither
	// map table (missing or non-numeric thrust or independent variable).
	RowsSkipped int
}

// Extract reads the bench log at inputPath and writes the thrust map tables
// into outDir, using name as the filename suffix. Per-file status lines go
// to w. The power_W column is emitted only when the source header carries
// both voltage and current columns; a row whose electrical cells are blank
// gets an empty power cell.
//
// A header without a thrust column, or without at least one of throttle and
// rpm, is malformed. A file where no row feeds either table yields
// telemcsv.ErrNoValidRows.
func Extract(inputPath, name, outDir string, w io.Writer) (Result, error) {
	var res Result

	tbl, err := telemcsv.ReadFile(inputPath)
	if err != nil {
		return res, err
	}
	res.RowsRead = len(tbl.Rows)

	thrust, haveThrust := tbl.ThrustField()
	if !haveThrust {
		return res, fmt.Errorf("%w: no thrust column (expected one of thrust_N, thrust, force_N, thrust_g, thrust_kgf)", telemcsv.ErrMalformedInput)
	}

	throttle, haveThrottle := tbl.Field(telemcsv.ThrottleAliases...)
	rpm, haveRpm := tbl.Field(telemcsv.RpmAliases...)
	if !haveThrottle && !haveRpm {
		return res, fmt.Errorf("%w: no throttle or rpm column", telemcsv.ErrMalformedInput)
	}
	if !haveThrottle {
		fmt.Fprintln(w, "warning: no throttle column, skipping throttle map")
	}
	if !haveRpm {
		fmt.Fprintln(w, "warning: no rpm column, skipping rpm map")
	}

	voltage, haveVoltage := tbl.Field(telemcsv.VoltageAliases...)
	current, haveCurrent := tbl.Field(telemcsv.CurrentAliases...)
	havePower := haveVoltage && haveCurrent

	// Build both map tables in source order. A row is judged per table, so
	// a row missing rpm still contributes to the throttle map.
	var throttlePoints []types.ThrottlePoint
	var rpmPoints []types.RpmPoint
	for i := range tbl.Rows {
		thrustN := tbl.Value(thrust, i)
		powerW := math.NaN()
		if havePower {
			powerW = tbl.Value(voltage, i) * tbl.Value(current, i)
		}

		used := false
		if haveThrottle {
			if x := tbl.Value(throttle, i); !math.IsNaN(x) && !math.IsNaN(thrustN) {
				throttlePoints = append(throttlePoints, types.ThrottlePoint{ThrottlePct: x, ThrustN: thrustN, PowerW: powerW})
				used = true
			}
		}
		if haveRpm {
			if x := tbl.Value(rpm, i); !math.IsNaN(x) && !math.IsNaN(thrustN) {
				rpmPoints = append(rpmPoints, types.RpmPoint{Rpm: x, ThrustN: thrustN, PowerW: powerW})
				used = true
			}
		}
		if !used {
			res.RowsSkipped++
		}
	}

	if len(throttlePoints) == 0 && len(rpmPoints) == 0 {
		return res, fmt.Errorf("%w: %d row(s) read, none usable", telemcsv.ErrNoValidRows, res.RowsRead)
	}
	if res.RowsSkipped > 0 {
		fmt.Fprintf(w, "skipped %d of %d row(s) failing validation\n", res.RowsSkipped, res.RowsRead)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("creating output directory: %w", err)
	}

	if len(throttlePoints) > 0 {
		rows := make([][]string, len(throttlePoints))
		for i, p := range throttlePoints {
			rows[i] = mapRow(p.ThrottlePct, p.ThrustN, p.PowerW, havePower)
		}
		path := filepath.Join(outDir, fmt.Sprintf("thrustmap_throttle_%s.csv", name))
		if err := telemcsv.WriteFile(path, mapHeader("throttle_pct", havePower), rows); err != nil {
			return res, err
		}
		fmt.Fprintf(w, "wrote %s (%d rows)\n", path, len(rows))
		res.Outputs = append(res.Outputs, path)
	} else if haveThrottle {
		fmt.Fprintln(w, "warning: no valid throttle rows, throttle map not written")
	}

	if len(rpmPoints) > 0 {
		rows := make([][]string, len(rpmPoints))
		for i, p := range rpmPoints {
			rows[i] = mapRow(p.Rpm, p.ThrustN, p.PowerW, havePower)
		}
		path := filepath.Join(outDir, fmt.Sprintf("thrustmap_rpm_%s.csv", name))
		if err := telemcsv.WriteFile(path, mapHeader("rpm", havePower), rows); err != nil {
			return res, err
		}
		fmt.Fprintf(w, "wrote %s (%d rows)\n", path, len(rows))
		res.Outputs = append(res.Outputs, path)
	} else if haveRpm {
		fmt.Fprintln(w, "warning: no valid rpm rows, rpm map not written")
	}

	cleanPath, err := writeClean(tbl, name, outDir, cleanFields{
		thrust: thrust, throttle: throttle, rpm: rpm, voltage: voltage, current: current,
		haveThrottle: haveThrottle, haveRpm: haveRpm, havePower: havePower,
	})
	if err != nil {
		return res, err
	}
	fmt.Fprintf(w, "wrote %s (%d rows)\n", cleanPath, len(tbl.Rows))
	res.Outputs = append(res.Outputs, cleanPath)

	return res, nil
}

func mapHeader(independent string, havePower bool) []string {
	h := []string{independent, "thrust_N"}
	if havePower {
		h = append(h, "power_W")
	}
	return h
}

func mapRow(x, thrustN, powerW float64, havePower bool) []string {
	row := []string{telemcsv.FormatFloat(x), telemcsv.FormatFloat(thrustN)}
	if havePower {
		row = append(row, telemcsv.FormatFloat(powerW))
	}
	return row
}

type cleanFields struct {
	thrust, throttle, rpm, voltage, current telemcsv.Field
	haveThrottle, haveRpm, havePower        bool
}

// writeClean emits a combined file with canonical SI column names, keeping
// every source row. Blank cells stay blank.
func writeClean(tbl *telemcsv.Table, name, outDir string, f cleanFields) (string, error) {
	type col struct {
		header string
		value  func(row int) float64
	}
	var cols []col

	if t, ok := tbl.Field(telemcsv.TimeAliases...); ok {
		cols = append(cols, col{"time_s", func(i int) float64 { return tbl.Value(t, i) }})
	}
	if f.haveThrottle {
		cols = append(cols, col{"throttle_pct", func(i int) float64 { return tbl.Value(f.throttle, i) }})
	}
	if f.haveRpm {
		cols = append(cols, col{"rpm", func(i int) float64 { return tbl.Value(f.rpm, i) }})
	}
	cols = append(cols, col{"thrust_N", func(i int) float64 { return tbl.Value(f.thrust, i) }})
	if f.havePower {
		cols = append(cols,
			col{"voltage_V", func(i int) float64 { return tbl.Value(f.voltage, i) }},
			col{"current_A", func(i int) float64 { return tbl.Value(f.current, i) }},
			col{"power_W", func(i int) float64 { return tbl.Value(f.voltage, i) * tbl.Value(f.current, i) }},
		)
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	rows := make([][]string, len(tbl.Rows))
	for i := range tbl.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = telemcsv.FormatFloat(c.value(i))
		}
		rows[i] = row
	}

	path := filepath.Join(outDir, fmt.Sprintf("thrustmap_clean_%s.csv", name))
	if err := telemcsv.WriteFile(path, header, rows); err != nil {
		return "", err
	}
	return path, nil
}
