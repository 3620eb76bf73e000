// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telemcsv

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   int
		errIs      error
	}{
		{
			name:       "simple numeric table",
			input:      "time_s,thrust_N\n0,1.2\n1,1.5\n",
			wantHeader: []string{"time_s", "thrust_N"},
			wantRows:   2,
		},
		{
			name:       "header only",
			input:      "time_s,thrust_N\n",
			wantHeader: []string{"time_s", "thrust_N"},
			wantRows:   0,
		},
		{
			name:  "empty file",
			input: "",
			errIs: ErrMalformedInput,
		},
		{
			name:       "short row padded with NaN",
			input:      "a,b,c\n1,2\n",
			wantHeader: []string{"a", "b", "c"},
			wantRows:   1,
		},
		{
			name:       "header whitespace trimmed",
			input:      "time_s, thrust_N\n0,1\n",
			wantHeader: []string{"time_s", "thrust_N"},
			wantRows:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Read(strings.NewReader(tt.input))
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, tbl.Header)
			assert.Len(t, tbl.Rows, tt.wantRows)
		})
	}
}

func TestReadCellParsing(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b,c\n1.5,,bogus\n"))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	assert.Equal(t, 1.5, tbl.Rows[0][0])
	assert.True(t, math.IsNaN(tbl.Rows[0][1]), "blank cell should be NaN")
	assert.True(t, math.IsNaN(tbl.Rows[0][2]), "non-numeric cell should be NaN")
}

func TestFieldAliases(t *testing.T) {
	tbl, err := Read(strings.NewReader("time_s,throttle,motor_rpm,battery_V,I\n0,50,3000,12,2\n"))
	require.NoError(t, err)

	throttle, ok := tbl.Field(ThrottleAliases...)
	require.True(t, ok)
	assert.Equal(t, 1, throttle.Index)

	rpm, ok := tbl.Field(RpmAliases...)
	require.True(t, ok)
	assert.Equal(t, 2, rpm.Index)

	voltage, ok := tbl.Field(VoltageAliases...)
	require.True(t, ok)
	assert.Equal(t, 3, voltage.Index)

	current, ok := tbl.Field(CurrentAliases...)
	require.True(t, ok)
	assert.Equal(t, 4, current.Index)

	_, ok = tbl.Field(SpeedAliases...)
	assert.False(t, ok, "speed column should be absent")
}

func TestThrustField(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		cell      string
		wantNewton float64
	}{
		{"newtons passthrough", "thrust_N", "1.2", 1.2},
		{"legacy thrust name", "thrust", "2", 2},
		{"gram-force converted", "thrust_g", "1000", 9.80665},
		{"kilogram-force converted", "force_kgf", "2", 19.6133},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Read(strings.NewReader(tt.header + "\n" + tt.cell + "\n"))
			require.NoError(t, err)

			f, ok := tbl.ThrustField()
			require.True(t, ok)
			assert.InDelta(t, tt.wantNewton, tbl.Value(f, 0), 1e-9)
		})
	}
}

func TestThrustFieldMissing(t *testing.T) {
	tbl, err := Read(strings.NewReader("time_s,rpm\n0,100\n"))
	require.NoError(t, err)

	_, ok := tbl.ThrustField()
	assert.False(t, ok)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.2", FormatFloat(1.2))
	assert.Equal(t, "50", FormatFloat(50))
	assert.Equal(t, "", FormatFloat(math.NaN()))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	err := WriteFile(path, []string{"throttle_pct", "thrust_N"}, [][]string{
		{"50", "1.2"},
		{"60", "1.5"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "throttle_pct,thrust_N\n50,1.2\n60,1.5\n", string(data))
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
