package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/helix/config"
)

// OutputManager writes telemetry windows to CSV and snapshots the active
// configuration into the output directory.
type OutputManager struct {
	dir       string
	statsFile *os.File

	headerWritten bool
}

// NewOutputManager creates the output directory and telemetry file.
// Returns nil if dir is empty (output disabled); a nil manager is safe to
// call.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	return &OutputManager{dir: dir, statsFile: f}, nil
}

// WriteConfig saves the active configuration as YAML alongside the logs.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow appends one window stats record to telemetry.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}
	records := []WindowStats{stats}
	if !om.headerWritten {
		om.headerWritten = true
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing telemetry record: %w", err)
		}
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
		return fmt.Errorf("writing telemetry record: %w", err)
	}
	return nil
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return om.statsFile.Close()
}
