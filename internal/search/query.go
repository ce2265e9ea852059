// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the Chronicling America host.
const DefaultBaseURL = "https://chroniclingamerica.loc.gov"

const searchPath = "/search/pages/results/"

// Query is an immutable phrase search. Build one with NewQuery.
type Query struct {
	phrase    string
	startPage int
	maxPages  int
}

// QueryOption adjusts a Query under construction.
type QueryOption func(*Query)

// WithStartPage sets the first result page to fetch. Values below 1 are
// treated as 1.
func WithStartPage(n int) QueryOption {
	return func(q *Query) { q.startPage = n }
}

// WithMaxPages bounds the last result page fetched. 0 means unbounded.
func WithMaxPages(n int) QueryOption {
	return func(q *Query) { q.maxPages = n }
}

// NewQuery returns a Query for an exact-phrase search.
func NewQuery(phrase string, opts ...QueryOption) (Query, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return Query{}, ErrEmptyQuery
	}
	q := Query{phrase: phrase, startPage: 1}
	for _, opt := range opts {
		opt(&q)
	}
	if q.startPage < 1 {
		q.startPage = 1
	}
	if q.maxPages < 0 {
		q.maxPages = 0
	}
	return q, nil
}

// Phrase returns the search phrase.
func (q Query) Phrase() string { return q.phrase }

// StartPage returns the first page the scan fetches.
func (q Query) StartPage() int { return q.startPage }

// MaxPages returns the page bound, 0 when unbounded.
func (q Query) MaxPages() int { return q.maxPages }

// RequestFor returns the URL of result page n under base.
func (q Query) RequestFor(base string, page int) string {
	params := url.Values{
		"format":     {"json"},
		"phrasetext": {q.phrase},
		"page":       {strconv.Itoa(page)},
	}
	return strings.TrimRight(base, "/") + searchPath + "?" + params.Encode()
}

func (q Query) String() string {
	return fmt.Sprintf("%q (start page %d, max pages %d)", q.phrase, q.startPage, q.maxPages)
}
