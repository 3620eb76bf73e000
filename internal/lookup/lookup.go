// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup converts thrust lookup grids into tidy CSVs. The input is
// a headerless CSV: a meta row [N, minForce, maxForce, minVoltage,
// maxVoltage, 0...] followed by an NxN grid of command values, rows indexed
// by voltage and columns by force. Output is a long-form melt of the grid
// plus a 1D thrust-vs-throttle curve sliced at one voltage.
// Implements: prd003-lookup (R1-R3).
package lookup

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/telemetry-engine/internal/telemcsv"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

// throttleSpanFloor keeps the throttle normalization finite when the
// command span collapses.
const throttleSpanFloor = 1e-9

// Grid is a parsed thrust lookup table.
type Grid struct {
	Voltages []float64   // voltage axis, length N
	Forces   []float64   // force axis, length N
	Cmd      [][]float64 // Cmd[vi][fi], N x N
}

// Result holds the outcome of one conversion run.
type Result struct {
	LongOutput   string
	CurveOutput  string
	SliceVoltage float64
	GridSize     int
}

// Convert reads the lookup grid at inputPath and writes
// thrust_lookup_long_<name>.csv and thrustmap_throttle_from_lookup_<name>.csv
// into cfg.OutDir. Status lines go to w.
func Convert(inputPath, name string, cfg types.LookupConfig, w io.Writer) (Result, error) {
	var res Result

	f, err := os.Open(inputPath)
	if err != nil {
		return res, fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer f.Close()

	grid, err := ReadGrid(f)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", inputPath, err)
	}
	res.GridSize = len(grid.Voltages)

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return res, fmt.Errorf("creating output directory: %w", err)
	}

	longPath := filepath.Join(cfg.OutDir, fmt.Sprintf("thrust_lookup_long_%s.csv", name))
	if err := writeLong(longPath, grid); err != nil {
		return res, err
	}
	fmt.Fprintf(w, "wrote %s (%d rows)\n", longPath, res.GridSize*res.GridSize)
	res.LongOutput = longPath

	curve, vSel := grid.Slice(cfg.Voltage)
	curve = normalizeThrottle(curve, cfg.MinCmd, cfg.MaxCmd)
	res.SliceVoltage = vSel

	curvePath := filepath.Join(cfg.OutDir, fmt.Sprintf("thrustmap_throttle_from_lookup_%s.csv", name))
	if err := writeCurve(curvePath, curve); err != nil {
		return res, err
	}
	fmt.Fprintf(w, "wrote %s (slice at %.2f V)\n", curvePath, vSel)
	res.CurveOutput = curvePath

	return res, nil
}

// ReadGrid parses a lookup grid from r. The meta row may be padded with
// zeros beyond the five meaningful entries, and grid rows may carry padding
// columns past N; both are tolerated and trimmed.
func ReadGrid(r io.Reader) (*Grid, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing grid: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need a meta row and at least one grid row", telemcsv.ErrMalformedInput)
	}

	meta, err := parseRow(records[0], 1)
	if err != nil {
		return nil, err
	}
	if len(meta) < 5 {
		return nil, fmt.Errorf("%w: meta row needs 5 entries (N, minForce, maxForce, minVoltage, maxVoltage)", telemcsv.ErrMalformedInput)
	}

	n := int(math.Round(meta[0]))
	if n < 2 {
		return nil, fmt.Errorf("%w: grid size %d too small", telemcsv.ErrMalformedInput, n)
	}
	if len(records)-1 < n {
		return nil, fmt.Errorf("%w: meta row promises %d grid rows, file has %d", telemcsv.ErrMalformedInput, n, len(records)-1)
	}

	g := &Grid{
		Forces:   linspace(meta[1], meta[2], n),
		Voltages: linspace(meta[3], meta[4], n),
		Cmd:      make([][]float64, n),
	}
	for vi := 0; vi < n; vi++ {
		row, err := parseRow(records[vi+1], vi+2)
		if err != nil {
			return nil, err
		}
		if len(row) < n {
			return nil, fmt.Errorf("%w: grid row %d has %d columns, need %d", telemcsv.ErrMalformedInput, vi+2, len(row), n)
		}
		g.Cmd[vi] = row[:n]
	}
	return g, nil
}

// Melt flattens the grid to long (tidy) form, voltage-major, for contour
// and surface plots.
func (g *Grid) Melt() []types.LookupPoint {
	points := make([]types.LookupPoint, 0, len(g.Voltages)*len(g.Forces))
	for vi, v := range g.Voltages {
		for fi, f := range g.Forces {
			points = append(points, types.LookupPoint{VoltageV: v, ForceN: f, Cmd: g.Cmd[vi][fi]})
		}
	}
	return points
}

// Slice picks the grid row whose voltage is nearest to target (or the middle
// row when target is NaN) and returns the raw curve points plus the selected
// voltage. Duplicate command values are merged by averaging their forces,
// and the result is sorted ascending by command.
func (g *Grid) Slice(target float64) ([]types.CurvePoint, float64) {
	idx := len(g.Voltages) / 2
	if !math.IsNaN(target) {
		best := math.Inf(1)
		for i, v := range g.Voltages {
			if d := math.Abs(v - target); d < best {
				best, idx = d, i
			}
		}
	}
	vSel := g.Voltages[idx]

	// Average forces of duplicate commands, then sort by command.
	sums := map[float64]struct {
		force float64
		n     int
	}{}
	for fi, cmd := range g.Cmd[idx] {
		s := sums[cmd]
		s.force += g.Forces[fi]
		s.n++
		sums[cmd] = s
	}

	points := make([]types.CurvePoint, 0, len(sums))
	for cmd, s := range sums {
		points = append(points, types.CurvePoint{
			Cmd:      cmd,
			ThrustN:  s.force / float64(s.n),
			VoltageV: vSel,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Cmd < points[j].Cmd })
	return points, vSel
}

// normalizeThrottle fills ThrottlePct from the command span. minCmd and
// maxCmd override the observed span when not NaN.
func normalizeThrottle(points []types.CurvePoint, minCmd, maxCmd float64) []types.CurvePoint {
	if len(points) == 0 {
		return points
	}
	lo, hi := points[0].Cmd, points[len(points)-1].Cmd
	if !math.IsNaN(minCmd) {
		lo = minCmd
	}
	if !math.IsNaN(maxCmd) {
		hi = maxCmd
	}
	span := math.Max(hi-lo, throttleSpanFloor)
	for i := range points {
		points[i].ThrottlePct = (points[i].Cmd - lo) / span * 100
	}
	return points
}

func writeLong(path string, g *Grid) error {
	points := g.Melt()
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			telemcsv.FormatFloat(p.VoltageV),
			telemcsv.FormatFloat(p.ForceN),
			telemcsv.FormatFloat(p.Cmd),
		}
	}
	return telemcsv.WriteFile(path, []string{"voltage_V", "force_N", "cmd"}, rows)
}

func writeCurve(path string, points []types.CurvePoint) error {
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			telemcsv.FormatFloat(p.Cmd),
			telemcsv.FormatFloat(p.ThrottlePct),
			telemcsv.FormatFloat(p.ThrustN),
			telemcsv.FormatFloat(p.VoltageV),
		}
	}
	return telemcsv.WriteFile(path, []string{"cmd", "throttle_pct", "thrust_N", "voltage_V"}, rows)
}

// parseRow converts one CSV record to floats. line is 1-based for messages.
func parseRow(rec []string, line int) ([]float64, error) {
	out := make([]float64, len(rec))
	for i, cell := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d column %d is not numeric: %q", telemcsv.ErrMalformedInput, line, i+1, cell)
		}
		out[i] = v
	}
	return out, nil
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
