// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the telemetry-engine
// converters: stage configuration, output points, and run records.
package types

// ProcessConfig holds settings shared by all converters.
type ProcessConfig struct {
	// OutDir is the directory derived CSVs are written to (default "data").
	OutDir string `json:"outdir" yaml:"outdir"`

	// Catalog controls whether runs are recorded in the SQLite run catalog.
	Catalog bool `json:"catalog" yaml:"catalog"`
}

// EfficiencyConfig holds settings for the efficiency aggregation stage.
type EfficiencyConfig struct {
	ProcessConfig `yaml:",inline"`

	// Bins is the number of fixed-width speed bins (default 12).
	// Zero selects per-unique-speed-value grouping instead.
	Bins int `json:"bins" yaml:"bins"`
}

// LookupConfig holds settings for the thrust-lookup grid conversion stage.
type LookupConfig struct {
	ProcessConfig `yaml:",inline"`

	// Voltage selects the voltage slice for the 1D throttle curve.
	// NaN (unset) picks the middle of the voltage axis.
	Voltage float64 `json:"voltage" yaml:"voltage"`

	// MinCmd and MaxCmd override the command span used for throttle
	// normalization. NaN (unset) uses the observed span.
	MinCmd float64 `json:"min_cmd" yaml:"min_cmd"`
	MaxCmd float64 `json:"max_cmd" yaml:"max_cmd"`
}
