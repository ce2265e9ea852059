// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search walks the Chronicling America page search API for an
// exact phrase and hands normalized records to a sink.
//
// A scan has four parts: a Query describes the request, a Client counts
// and fetches result pages, a Stream turns the pages into a lazy ordered
// sequence of items, and a Filter normalizes each item, applies the year
// and count ceilings, and emits what remains. Failures while counting
// pages are fatal; failures on a single page or item are logged and
// skipped.
package search

// Skip reasons reported to an Observer.
const (
	SkipParse = "parse"
	SkipYear  = "year"
	SkipSink  = "sink"
)

// Observer receives scan events for metrics. Implementations must be
// cheap; they run inline with the scan.
type Observer interface {
	PageFetched(page, items int)
	PageFailed(page int, err error)
	ItemSkipped(reason string)
	RecordEmitted()
}

type nopObserver struct{}

func (nopObserver) PageFetched(int, int)  {}
func (nopObserver) PageFailed(int, error) {}
func (nopObserver) ItemSkipped(string)    {}
func (nopObserver) RecordEmitted()        {}
