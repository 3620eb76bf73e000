// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telemcsv reads raw telemetry logs into an in-memory numeric table
// and writes derived tables back out as plot-ready CSV. Input columns are
// located through alias lists (bench logs disagree on naming) and scaled to
// SI units at lookup time. All parsing and formatting uses the C locale:
// "." decimal separator, no grouping.
// Implements: prd001-thrust-map R1, prd002-efficiency R1.
package telemcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedInput reports a source file whose header lacks a required column.
var ErrMalformedInput = errors.New("malformed input")

// ErrNoValidRows reports a source file where every data row was rejected.
var ErrNoValidRows = errors.New("no valid rows")

// Alias lists for locating input columns. First match wins, so the SI name
// takes precedence when a log carries several candidates.
var (
	TimeAliases      = []string{"time_s"}
	ThrottleAliases  = []string{"throttle_pct", "throttle_percent", "throttle"}
	RpmAliases       = []string{"rpm", "motor_rpm"}
	VoltageAliases   = []string{"voltage_V", "voltage", "V", "battery_V"}
	CurrentAliases   = []string{"current_A", "current", "I"}
	SpeedAliases     = []string{"speed_mps"}
	ThrustSumAliases = []string{"thrust_sum_N"}
)

// Thrust alias groups, in preference order, with the factor converting the
// column's unit to Newtons.
var thrustAliases = []struct {
	names []string
	scale float64
}{
	{[]string{"thrust_N", "thrust", "force_N"}, 1},
	{[]string{"thrust_g", "force_g"}, 9.80665e-3},
	{[]string{"thrust_kgf", "force_kgf"}, 9.80665},
}

// Table is one telemetry log held in memory: a header and numeric rows.
// Blank or non-numeric cells are NaN.
type Table struct {
	Header []string
	Rows   [][]float64
}

// Field is a resolved input column together with the factor that converts
// its values to SI units.
type Field struct {
	Index int
	Scale float64
}

// ReadFile loads the CSV at path into a Table.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// Read parses CSV from r. The first record is the header; every later record
// becomes a numeric row, padded or truncated to the header width. Cells that
// do not parse as floats become NaN rather than failing the read, so row
// validation stays a per-converter decision.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file, no header row", ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing row %d: %w", len(t.Rows)+2, err)
		}
		row := make([]float64, len(header))
		for i := range row {
			row[i] = math.NaN()
			if i < len(rec) {
				if v, perr := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); perr == nil {
					row[i] = v
				}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Lookup returns the index of the first alias present in the header, or -1.
func (t *Table) Lookup(aliases ...string) int {
	for _, a := range aliases {
		for i, h := range t.Header {
			if h == a {
				return i
			}
		}
	}
	return -1
}

// Field resolves an alias list to a unit-neutral Field (scale 1).
func (t *Table) Field(aliases ...string) (Field, bool) {
	idx := t.Lookup(aliases...)
	if idx < 0 {
		return Field{}, false
	}
	return Field{Index: idx, Scale: 1}, true
}

// ThrustField resolves the thrust column, trying Newtons first and falling
// back to gram-force and kilogram-force columns with the matching conversion.
func (t *Table) ThrustField() (Field, bool) {
	for _, group := range thrustAliases {
		if idx := t.Lookup(group.names...); idx >= 0 {
			return Field{Index: idx, Scale: group.scale}, true
		}
	}
	return Field{}, false
}

// Value returns the SI-scaled cell for f in the given row. NaN passes through.
func (t *Table) Value(f Field, row int) float64 {
	return t.Rows[row][f.Index] * f.Scale
}

// FormatFloat renders v for CSV output. NaN becomes the empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFile writes header and rows to path as CSV.
func WriteFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing rows to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
