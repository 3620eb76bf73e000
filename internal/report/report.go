// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes a YAML record of each converter run next to its
// outputs, so a plot in the thesis can always be traced back to the raw log
// that produced it.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/telemetry-engine/pkg/types"
)

// File is the on-disk representation of a run report.
type File struct {
	Run types.RunRecord `yaml:"run"`
}

// Path returns the report filename for a run inside outDir.
func Path(outDir string, rec types.RunRecord) string {
	return filepath.Join(outDir, fmt.Sprintf("run_%s_%s.yaml", rec.Tool, rec.Name))
}

// Write saves the run record as YAML into outDir and returns the path
// written. An existing report for the same tool and name is overwritten:
// the report always describes the latest run.
func Write(outDir string, rec types.RunRecord) (string, error) {
	data, err := yaml.Marshal(File{Run: rec})
	if err != nil {
		return "", fmt.Errorf("marshaling run report: %w", err)
	}

	path := Path(outDir, rec)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run report: %w", err)
	}
	return path, nil
}

// Read loads a run report from path.
func Read(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("reading run report: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing run report %s: %w", path, err)
	}
	return f, nil
}
