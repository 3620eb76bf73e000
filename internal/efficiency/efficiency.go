// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package efficiency aggregates flight logs into speed-bucketed efficiency
// tables: mean electrical power and energy per distance for each speed bin.
// Implements: prd002-efficiency (R1-R5).
package efficiency

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/telemetry-engine/internal/telemcsv"
	"github.com/pdiddy/telemetry-engine/pkg/types"
)

// minDistanceKm guards the energy-per-distance division. Buckets whose
// integrated distance falls below this are skipped, not divided.
const minDistanceKm = 1e-9

// Quantile span used for binning, matching the trimming the plots expect:
// the outer 5% tails are transients (takeoff, landing) and would stretch
// the bins.
const (
	spanLowQuantile  = 0.05
	spanHighQuantile = 0.95
)

// Result holds the outcome of one aggregation run.
type Result struct {
	Output         string
	Points         []types.EfficiencyPoint
	RowsRead       int
	RowsSkipped    int
	BucketsSkipped int
}

// sample is one validated flight-log row.
type sample struct {
	timeS    float64
	speedMps float64
	powerW   float64
	thrustN  float64 // NaN when the log has no thrust_sum_N column
	dt       float64 // forward time delta to the next sample, seconds
}

// Aggregate reads the flight log at inputPath, buckets rows by speed, and
// writes efficiency_<name>.csv into cfg.OutDir sorted ascending by speed.
//
// cfg.Bins > 0 selects fixed-width bins spanning the 5th to 95th speed
// percentile; cfg.Bins == 0 groups by exact speed value. Power comes from a
// power_W column when present, otherwise voltage_V * current_A. Per bucket,
// energy_Wh_per_km is integrated from per-sample time deltas:
// sum(power*dt)/3600 over sum(speed*dt)/1000.
func Aggregate(inputPath, name string, cfg types.EfficiencyConfig, w io.Writer) (Result, error) {
	var res Result

	tbl, err := telemcsv.ReadFile(inputPath)
	if err != nil {
		return res, err
	}
	res.RowsRead = len(tbl.Rows)

	timeF, haveTime := tbl.Field(telemcsv.TimeAliases...)
	if !haveTime {
		return res, fmt.Errorf("%w: no time_s column", telemcsv.ErrMalformedInput)
	}
	speedF, haveSpeed := tbl.Field(telemcsv.SpeedAliases...)
	if !haveSpeed {
		return res, fmt.Errorf("%w: no speed_mps column", telemcsv.ErrMalformedInput)
	}

	powerF, havePowerCol := tbl.Field("power_W")
	voltageF, haveVoltage := tbl.Field(telemcsv.VoltageAliases...)
	currentF, haveCurrent := tbl.Field(telemcsv.CurrentAliases...)
	if !havePowerCol && !(haveVoltage && haveCurrent) {
		return res, fmt.Errorf("%w: need a power_W column or both voltage_V and current_A", telemcsv.ErrMalformedInput)
	}

	thrustF, haveThrust := tbl.Field(telemcsv.ThrustSumAliases...)

	var samples []sample
	for i := range tbl.Rows {
		s := sample{
			timeS:    tbl.Value(timeF, i),
			speedMps: tbl.Value(speedF, i),
			thrustN:  math.NaN(),
		}
		if havePowerCol {
			s.powerW = tbl.Value(powerF, i)
		} else {
			s.powerW = tbl.Value(voltageF, i) * tbl.Value(currentF, i)
		}
		if haveThrust {
			s.thrustN = tbl.Value(thrustF, i)
		}
		if math.IsNaN(s.timeS) || math.IsNaN(s.speedMps) || math.IsNaN(s.powerW) {
			res.RowsSkipped++
			continue
		}
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return res, fmt.Errorf("%w: %d row(s) read, none usable", telemcsv.ErrNoValidRows, res.RowsRead)
	}
	if res.RowsSkipped > 0 {
		fmt.Fprintf(w, "skipped %d of %d row(s) failing validation\n", res.RowsSkipped, res.RowsRead)
	}

	// Forward time deltas. The last sample closes with dt 0; non-monotonic
	// timestamps contribute nothing rather than negative energy.
	for i := 0; i < len(samples)-1; i++ {
		if dt := samples[i+1].timeS - samples[i].timeS; dt > 0 {
			samples[i].dt = dt
		}
	}

	buckets := bucketize(samples, cfg.Bins)

	for _, b := range buckets {
		p, ok := reduceBucket(b)
		if !ok {
			res.BucketsSkipped++
			fmt.Fprintf(w, "warning: bucket at %s m/s has near-zero distance, skipped\n",
				telemcsv.FormatFloat(p.SpeedMps))
			continue
		}
		res.Points = append(res.Points, p)
	}
	if len(res.Points) == 0 {
		return res, fmt.Errorf("%w: every speed bucket was degenerate", telemcsv.ErrNoValidRows)
	}

	sort.Slice(res.Points, func(i, j int) bool {
		return res.Points[i].SpeedMps < res.Points[j].SpeedMps
	})

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return res, fmt.Errorf("creating output directory: %w", err)
	}

	header := []string{"speed_mps", "power_W", "energy_Wh_per_km"}
	if haveThrust {
		header = append(header, "thrust_sum_N")
	}
	rows := make([][]string, len(res.Points))
	for i, p := range res.Points {
		row := []string{
			telemcsv.FormatFloat(p.SpeedMps),
			telemcsv.FormatFloat(p.PowerW),
			telemcsv.FormatFloat(p.EnergyWhPerKm),
		}
		if haveThrust {
			row = append(row, telemcsv.FormatFloat(p.ThrustSumN))
		}
		rows[i] = row
	}

	path := filepath.Join(cfg.OutDir, fmt.Sprintf("efficiency_%s.csv", name))
	if err := telemcsv.WriteFile(path, header, rows); err != nil {
		return res, err
	}
	fmt.Fprintf(w, "wrote %s (%d buckets)\n", path, len(rows))
	res.Output = path

	return res, nil
}

// bucketize groups samples by speed. bins == 0 groups by exact value;
// otherwise samples are dropped into bins of equal width spanning the
// 5th to 95th speed percentile, and samples outside the span are dropped.
func bucketize(samples []sample, bins int) [][]sample {
	if bins <= 0 {
		byValue := map[float64][]sample{}
		for _, s := range samples {
			byValue[s.speedMps] = append(byValue[s.speedMps], s)
		}
		out := make([][]sample, 0, len(byValue))
		for _, b := range byValue {
			out = append(out, b)
		}
		return out
	}

	speeds := make([]float64, len(samples))
	for i, s := range samples {
		speeds[i] = s.speedMps
	}
	sort.Float64s(speeds)
	lo := quantile(speeds, spanLowQuantile)
	hi := quantile(speeds, spanHighQuantile)
	width := (hi - lo) / float64(bins)

	if width <= 0 {
		// Constant speed: everything lands in one bucket.
		return [][]sample{samples}
	}

	grouped := make([][]sample, bins)
	for _, s := range samples {
		if s.speedMps < lo || s.speedMps > hi {
			continue
		}
		idx := int((s.speedMps - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		grouped[idx] = append(grouped[idx], s)
	}

	out := make([][]sample, 0, bins)
	for _, b := range grouped {
		if len(b) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// reduceBucket aggregates one bucket into an output point. ok is false when
// the integrated distance is too small to divide by; the partially filled
// point is still returned so the caller can name the bucket in its warning.
func reduceBucket(b []sample) (types.EfficiencyPoint, bool) {
	var p types.EfficiencyPoint
	p.Samples = len(b)

	var sumSpeed, sumPower, energyWh, distanceKm float64
	var sumThrust float64
	thrustCount := 0
	for _, s := range b {
		sumSpeed += s.speedMps
		sumPower += s.powerW
		energyWh += s.powerW * s.dt / 3600
		distanceKm += s.speedMps * s.dt / 1000
		if !math.IsNaN(s.thrustN) {
			sumThrust += s.thrustN
			thrustCount++
		}
	}

	p.SpeedMps = sumSpeed / float64(len(b))
	p.PowerW = sumPower / float64(len(b))
	p.ThrustSumN = math.NaN()
	if thrustCount > 0 {
		p.ThrustSumN = sumThrust / float64(thrustCount)
	}

	if distanceKm < minDistanceKm {
		return p, false
	}
	p.EnergyWhPerKm = energyWh / distanceKm
	return p, true
}

// quantile returns the q-th quantile of sorted values, interpolating
// linearly between neighbors.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
