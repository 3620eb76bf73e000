// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunRecord describes one completed converter invocation. Records are
// persisted in the run catalog and echoed into the per-run YAML report.
type RunRecord struct {
	// ID is a random UUID assigned when the run completes.
	ID string `json:"id" yaml:"id"`

	// Tool is the converter that ran: "thrustmap", "efficiency", or "lookup".
	Tool string `json:"tool" yaml:"tool"`

	// Name is the label used to build output filenames.
	Name string `json:"name" yaml:"name"`

	// Input is the path of the source CSV.
	Input string `json:"input" yaml:"input"`

	// Outputs lists the files the run wrote, in write order.
	Outputs []string `json:"outputs" yaml:"outputs"`

	// RowsRead is the number of data rows in the source file.
	RowsRead int `json:"rows_read" yaml:"rows_read"`

	// RowsSkipped is the number of rows rejected by validation.
	RowsSkipped int `json:"rows_skipped" yaml:"rows_skipped"`

	// CreatedAt is when the run finished, UTC.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
