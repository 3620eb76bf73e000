// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/telemetry-engine/pkg/types"
)

func TestWriteAndRead(t *testing.T) {
	outDir := t.TempDir()
	rec := types.RunRecord{
		ID:          uuid.NewString(),
		Tool:        "thrustmap",
		Name:        "motorA",
		Input:       "logs/bench.csv",
		Outputs:     []string{"data/thrustmap_throttle_motorA.csv", "data/thrustmap_rpm_motorA.csv"},
		RowsRead:    42,
		RowsSkipped: 3,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	path, err := Write(outDir, rec)
	require.NoError(t, err)
	assert.Equal(t, Path(outDir, rec), path)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.Run.ID)
	assert.Equal(t, rec.Outputs, got.Run.Outputs)
	assert.True(t, rec.CreatedAt.Equal(got.Run.CreatedAt))
}

func TestWriteOverwritesPreviousRun(t *testing.T) {
	outDir := t.TempDir()
	rec := types.RunRecord{ID: uuid.NewString(), Tool: "efficiency", Name: "xwing"}

	_, err := Write(outDir, rec)
	require.NoError(t, err)

	rec.ID = uuid.NewString()
	path, err := Write(outDir, rec)
	require.NoError(t, err)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.Run.ID)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read("does-not-exist.yaml")
	require.ErrorIs(t, err, os.ErrNotExist)
}
