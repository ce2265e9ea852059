// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pdiddy/chronam/internal/httputil"
	"github.com/pdiddy/chronam/pkg/types"
)

// Client talks to the Chronicling America page search API. It issues
// exactly one request per call and never retries.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Logger    *slog.Logger
}

// NewClient returns a Client configured from cfg.
func NewClient(cfg types.SearchConfig) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
	}
}

// PageMetadata is the result-count metadata carried by every result page.
type PageMetadata struct {
	TotalItems   int
	ItemsPerPage int
}

// TotalPages returns ceil(TotalItems/ItemsPerPage), clamped to maxPages
// when maxPages is positive.
func TotalPages(meta PageMetadata, maxPages int) int {
	if meta.ItemsPerPage <= 0 || meta.TotalItems <= 0 {
		return 0
	}
	pages := (meta.TotalItems + meta.ItemsPerPage - 1) / meta.ItemsPerPage
	if maxPages > 0 && maxPages < pages {
		return maxPages
	}
	return pages
}

// CountPages fetches page 1 and computes how many pages the scan covers.
func (c *Client) CountPages(ctx context.Context, q Query) (int, error) {
	pr, err := c.get(ctx, q, 1)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	if pr.TotalItems == nil || pr.ItemsPerPage == nil {
		return 0, fmt.Errorf("counting pages: %w: missing totalItems or itemsPerPage", ErrMalformedResponse)
	}
	meta := PageMetadata{TotalItems: *pr.TotalItems, ItemsPerPage: *pr.ItemsPerPage}
	if meta.ItemsPerPage <= 0 || meta.TotalItems < 0 {
		return 0, fmt.Errorf("counting pages: %w: totalItems=%d itemsPerPage=%d",
			ErrMalformedResponse, meta.TotalItems, meta.ItemsPerPage)
	}
	return TotalPages(meta, q.MaxPages()), nil
}

// FetchPage returns the items of one result page in API order. Items that
// do not decode are dropped and logged; the rest of the page is kept.
func (c *Client) FetchPage(ctx context.Context, q Query, page int) ([]RawItem, error) {
	pr, err := c.get(ctx, q, page)
	if err != nil {
		return nil, fmt.Errorf("fetching page %d: %w", page, err)
	}
	if pr.Items == nil && pr.TotalItems == nil {
		return nil, fmt.Errorf("fetching page %d: %w: not a result page", page, ErrMalformedResponse)
	}

	items := make([]RawItem, 0, len(pr.Items))
	for i, raw := range pr.Items {
		var it RawItem
		if err := json.Unmarshal(raw, &it); err != nil {
			c.logger().Warn("dropping undecodable item", "page", page, "index", i, "error", err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// pageResponse is the subset of the JSON result page the client reads.
// Metadata fields are pointers so that absence is detectable.
type pageResponse struct {
	TotalItems   *int              `json:"totalItems"`
	ItemsPerPage *int              `json:"itemsPerPage"`
	Items        []json.RawMessage `json:"items"`
}

func (c *Client) get(ctx context.Context, q Query, page int) (pageResponse, error) {
	body, err := httputil.Get(ctx, c.httpClient(), q.RequestFor(c.baseURL(), page), c.UserAgent)
	if err != nil {
		return pageResponse{}, classify(err)
	}
	var pr pageResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return pageResponse{}, fmt.Errorf("%w: page %d: %v", ErrMalformedResponse, page, err)
	}
	return pr, nil
}

// classify maps an httputil error onto the package taxonomy. Client-error
// statuses mean the body is not a result page; everything else is treated
// as a network failure.
func classify(err error) error {
	var se *httputil.StatusError
	if errors.As(err, &se) && !se.Temporary() {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
