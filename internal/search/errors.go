// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "errors"

// Sentinel errors returned by the search package. Callers match them with
// errors.Is; the wrapped chain carries the underlying cause.
var (
	// ErrEmptyQuery is returned when the search phrase is blank.
	ErrEmptyQuery = errors.New("search phrase is empty")

	// ErrNetwork is returned when the API cannot be reached or answers
	// with a server-side or rate-limit status.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse is returned when a response body is not JSON,
	// lacks the page metadata, or comes back with a client-error status.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrParse is returned when an item's date is not an 8-digit YYYYMMDD string.
	ErrParse = errors.New("parse error")
)
