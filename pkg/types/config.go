package types

import "time"

// HTTPConfig holds shared HTTP settings used when talking to the search API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "chronam/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CountPolicy decides when a result-count ceiling ends a scan.
type CountPolicy string

const (
	// CountAtMost stops once exactly MaxCount records were emitted.
	CountAtMost CountPolicy = "at-most"

	// CountExceed stops once the emitted count exceeds MaxCount, so
	// MaxCount+1 records reach the sink.
	CountExceed CountPolicy = "exceed"
)

// SearchConfig holds settings for a page search scan.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the scheme and host of the API (default https://chroniclingamerica.loc.gov).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// StartPage is the first result page to fetch (default 1).
	StartPage int `json:"start_page" yaml:"start_page"`

	// MaxPages bounds the number of result pages; 0 means unbounded.
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// MaxYear drops records published after this year; 0 disables the ceiling.
	MaxYear int `json:"max_year,omitempty" yaml:"max_year,omitempty"`

	// MaxCount ends the scan after this many records; 0 disables the bound.
	MaxCount int `json:"max_count,omitempty" yaml:"max_count,omitempty"`

	// CountPolicy selects the MaxCount termination rule (default at-most).
	CountPolicy CountPolicy `json:"count_policy" yaml:"count_policy"`

	// BreakerThreshold is the number of consecutive network failures
	// that aborts the scan (default 3).
	BreakerThreshold int `json:"breaker_threshold" yaml:"breaker_threshold"`

	// ProgressEvery logs progress every N pages (default 1 on console, 100 when writing).
	ProgressEvery int `json:"progress_every" yaml:"progress_every"`
}

// OutputFormat selects the file sink.
type OutputFormat string

const (
	OutputConsole OutputFormat = "console"
	OutputJSON    OutputFormat = "json"
	OutputCSV     OutputFormat = "csv"
	OutputYAML    OutputFormat = "yaml"
	OutputSQLite  OutputFormat = "sqlite"
)

// Ext returns the file extension written for the format.
func (f OutputFormat) Ext() string {
	switch f {
	case OutputSQLite:
		return ".db"
	case OutputConsole:
		return ""
	default:
		return "." + string(f)
	}
}

// OutputConfig holds sink selection.
type OutputConfig struct {
	// Format selects the sink; console when Name is empty.
	Format OutputFormat `json:"format" yaml:"format"`

	// Name is the output file name without extension.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Path returns the output file path, or "" for console output.
func (c OutputConfig) Path() string {
	if c.Name == "" || c.Format == OutputConsole {
		return ""
	}
	return c.Name + c.Format.Ext()
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is text, json, or auto (text on a terminal, json otherwise).
	Format string `json:"format" yaml:"format"`
}
