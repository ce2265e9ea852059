// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the chronam search tool.
// Record is the normalized form of a newspaper page hit; every sink consumes
// Records without knowing how they were fetched.
package types

import "fmt"

// Record is a newspaper page matching a phrase query, normalized from the
// API's raw item.
type Record struct {
	// ID is the API path of the page (e.g. "/lccn/sn84026749/1923-04-15/ed-1/seq-3/").
	ID string `json:"id" yaml:"id"`

	// Year, Month and Day are sliced from the API's YYYYMMDD date.
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`

	// Date is the ISO form of the issue date (YYYY-MM-DD).
	Date string `json:"date" yaml:"date"`

	// Title is the newspaper title.
	Title string `json:"title" yaml:"title"`

	// Place is the place of publication.
	Place string `json:"place" yaml:"place"`

	// Text is the OCR text of the page.
	Text string `json:"text" yaml:"text"`
}

// RawDate returns the date in the API's compact YYYYMMDD form.
func (r Record) RawDate() string {
	return fmt.Sprintf("%04d%02d%02d", r.Year, r.Month, r.Day)
}
