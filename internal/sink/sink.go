// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink writes search records to the console or to a JSON, CSV,
// YAML or SQLite file. Every sink satisfies search.Sink; the caller closes
// it to flush buffered output.
package sink

import (
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/chronam/pkg/types"
)

// Sink is a closable record consumer.
type Sink interface {
	Emit(rec types.Record) error
	Close() error
}

// Options carries what individual sinks need beyond the output path.
type Options struct {
	// Phrase is the search phrase, used for console permalinks.
	Phrase string

	// Host prefixes record IDs in console permalinks.
	Host string

	// Stdout receives console output; os.Stdout when nil.
	Stdout io.Writer

	// Query describes the run in YAML run files.
	Query RunQuery
}

// Open returns the sink selected by cfg. An empty Name selects the console.
func Open(cfg types.OutputConfig, opts Options) (Sink, error) {
	path := cfg.Path()
	if path == "" {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		return NewConsole(w, opts.Host, opts.Phrase), nil
	}

	switch cfg.Format {
	case types.OutputJSON, "":
		return CreateJSON(path)
	case types.OutputCSV:
		return CreateCSV(path)
	case types.OutputYAML:
		return NewYAML(path, opts.Query), nil
	case types.OutputSQLite:
		return OpenSQLite(path, opts.Phrase)
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Format)
	}
}

// padded returns year, month and day as the API writes them.
func padded(rec types.Record) (string, string, string) {
	return fmt.Sprintf("%04d", rec.Year), fmt.Sprintf("%02d", rec.Month), fmt.Sprintf("%02d", rec.Day)
}
