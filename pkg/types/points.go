// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ThrottlePoint pairs a throttle setting with the thrust it produced.
// Power is NaN when the source log carries no voltage/current columns
// or the row's electrical cells were blank.
type ThrottlePoint struct {
	ThrottlePct float64
	ThrustN     float64
	PowerW      float64
}

// RpmPoint pairs a motor speed with the thrust it produced.
type RpmPoint struct {
	Rpm     float64
	ThrustN float64
	PowerW  float64
}

// EfficiencyPoint is one speed bucket of an aggregated flight log.
type EfficiencyPoint struct {
	SpeedMps      float64
	PowerW        float64
	EnergyWhPerKm float64

	// ThrustSumN is the mean summed thrust over the bucket, NaN when the
	// source log has no thrust_sum_N column.
	ThrustSumN float64

	// Samples is the number of log rows aggregated into this bucket.
	Samples int
}

// LookupPoint is one cell of a thrust lookup grid in long (tidy) form.
type LookupPoint struct {
	VoltageV float64
	ForceN   float64
	Cmd      float64
}

// CurvePoint is one sample of the 1D thrust-vs-throttle curve sliced
// from a lookup grid at a fixed voltage.
type CurvePoint struct {
	Cmd         float64
	ThrottlePct float64
	ThrustN     float64
	VoltageV    float64
}
