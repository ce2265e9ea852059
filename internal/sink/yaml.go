// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/chronam/internal/search"
	"github.com/pdiddy/chronam/pkg/types"
)

// RunFile is the on-disk record of a scan: what was asked, what came back,
// and how the scan ended. It can be replayed without querying the API.
type RunFile struct {
	Query   RunQuery       `yaml:"query"`
	Records []types.Record `yaml:"records"`
	Summary RunSummary     `yaml:"summary"`
}

// RunQuery stores the query parameters and filters of a scan.
type RunQuery struct {
	Phrase      string            `yaml:"phrase"`
	StartPage   int               `yaml:"start_page"`
	MaxPages    int               `yaml:"max_pages,omitempty"`
	MaxYear     int               `yaml:"max_year,omitempty"`
	MaxCount    int               `yaml:"max_count,omitempty"`
	CountPolicy types.CountPolicy `yaml:"count_policy,omitempty"`
}

// RunSummary stores scan statistics and a timestamp.
type RunSummary struct {
	search.Stats `yaml:",inline"`
	Timestamp    time.Time `yaml:"timestamp"`
}

// YAML buffers records and writes a RunFile on Close.
type YAML struct {
	path string
	run  RunFile
}

// NewYAML returns a sink that writes a RunFile to path.
func NewYAML(path string, q RunQuery) *YAML {
	return &YAML{path: path, run: RunFile{Query: q}}
}

// Emit buffers rec.
func (y *YAML) Emit(rec types.Record) error {
	y.run.Records = append(y.run.Records, rec)
	return nil
}

// Summarize attaches scan statistics to the run file.
func (y *YAML) Summarize(st search.Stats) {
	y.run.Summary = RunSummary{Stats: st, Timestamp: time.Now()}
}

// Close writes the run file.
func (y *YAML) Close() error {
	if y.run.Summary.Timestamp.IsZero() {
		y.run.Summary.Timestamp = time.Now()
	}
	return WriteRunFile(y.path, y.run)
}

// WriteRunFile saves run to path.
func WriteRunFile(path string, run RunFile) error {
	data, err := yaml.Marshal(&run)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run file from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var run RunFile
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &run, nil
}
