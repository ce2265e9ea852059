// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"log/slog"

	"github.com/pdiddy/chronam/internal/logging"
	"github.com/pdiddy/chronam/pkg/types"
)

// Sink consumes the records a scan emits. The caller owns and flushes it.
type Sink interface {
	Emit(rec types.Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(rec types.Record) error

// Emit calls f(rec).
func (f SinkFunc) Emit(rec types.Record) error { return f(rec) }

// Filter applies the year and count ceilings to a Stream.
type Filter struct {
	// MaxYear drops records from later years; 0 disables it. Results are
	// not sorted by year, so a later record never ends the scan.
	MaxYear int

	// MaxCount ends the scan once enough records were emitted; 0 disables it.
	MaxCount int

	// CountPolicy picks the MaxCount rule; empty means types.CountAtMost.
	CountPolicy types.CountPolicy

	Logger   *slog.Logger
	Observer Observer

	// Sampler thins out warnings for repeated skips. Nil logs every skip.
	Sampler *logging.ErrorSampler
}

// Stats summarizes a scan. It is filled in however the scan ended.
type Stats struct {
	Emitted      int  `json:"emitted" yaml:"emitted"`
	SkippedParse int  `json:"skipped_parse" yaml:"skipped_parse"`
	SkippedYear  int  `json:"skipped_year" yaml:"skipped_year"`
	SkippedSink  int  `json:"skipped_sink" yaml:"skipped_sink"`
	TotalPages   int  `json:"total_pages" yaml:"total_pages"`
	PagesFetched int  `json:"pages_fetched" yaml:"pages_fetched"`
	PagesFailed  int  `json:"pages_failed" yaml:"pages_failed"`
	Cancelled    bool `json:"cancelled" yaml:"cancelled"`
	Limited      bool `json:"limited" yaml:"limited"`
}

// Run drains s into sink. Unparseable items and items the sink rejects are
// skipped. Cancelling ctx stops the scan between items without error. The
// returned error is the Stream's fatal error, if any.
func (f Filter) Run(ctx context.Context, s *Stream, sink Sink) (Stats, error) {
	var st Stats
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	obs := f.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	for s.Next(ctx) {
		item := s.Item()

		rec, err := Normalize(item)
		if err != nil {
			st.SkippedParse++
			obs.ItemSkipped(SkipParse)
			f.warn(logger, SkipParse, "skipping item", "id", item.ID, "error", err)
			continue
		}

		if f.MaxYear > 0 && rec.Year > f.MaxYear {
			st.SkippedYear++
			obs.ItemSkipped(SkipYear)
			continue
		}

		if err := sink.Emit(rec); err != nil {
			st.SkippedSink++
			obs.ItemSkipped(SkipSink)
			f.warn(logger, SkipSink, "sink rejected record", "id", rec.ID, "error", err)
			continue
		}
		st.Emitted++
		obs.RecordEmitted()

		if f.limitReached(st.Emitted) {
			st.Limited = true
			s.Stop()
			break
		}
	}

	sess := s.Session()
	st.TotalPages = sess.TotalPages
	st.PagesFetched = sess.PagesFetched
	st.PagesFailed = sess.PagesFailed
	st.Cancelled = s.Cancelled()
	if st.Cancelled {
		logger.Warn("scan interrupted", "emitted", st.Emitted, "page", sess.CurrentPage)
	}
	return st, s.Err()
}

func (f Filter) limitReached(emitted int) bool {
	if f.MaxCount <= 0 {
		return false
	}
	if f.CountPolicy == types.CountExceed {
		return emitted > f.MaxCount
	}
	return emitted >= f.MaxCount
}

func (f Filter) warn(logger *slog.Logger, key, msg string, args ...any) {
	if f.Sampler != nil {
		if !f.Sampler.ShouldLog(key) {
			return
		}
		args = append(args, "occurrences", f.Sampler.GetCount(key))
	}
	logger.Warn(msg, args...)
}
