package catalog

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds a catalog from a YAML tables file. An empty path means the
// built-in defaults; sections missing from the file also fall back to the
// defaults, so a deployment can override just the crop list. A positive
// threshold overrides whatever the tables carry.
func Load(path string, threshold float64, logger *slog.Logger) (Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultTables()
	if path == "" {
		if threshold > 0 {
			def.Threshold = threshold
		}
		return New(def)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	if threshold > 0 {
		t.Threshold = threshold
	}
	if t.Threshold <= 0 {
		t.Threshold = def.Threshold
	}
	if len(t.Operations) == 0 {
		t.Operations = def.Operations
	}
	if len(t.Crops) == 0 {
		t.Crops = def.Crops
	}
	if len(t.Divisions) == 0 {
		t.Divisions = def.Divisions
		t.DeptRanges = def.DeptRanges
	}

	logger.Info("catalog.loaded",
		"path", path,
		"operations", len(t.Operations),
		"crops", len(t.Crops),
		"divisions", len(t.Divisions),
		"threshold", t.Threshold,
	)
	return New(t)
}
