// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker"
)

const defaultBreakerThreshold = 3

// Pager is the API surface a Stream walks. *Client implements it.
type Pager interface {
	CountPages(ctx context.Context, q Query) (int, error)
	FetchPage(ctx context.Context, q Query, page int) ([]RawItem, error)
}

// State is the lifecycle position of a Stream.
type State int

const (
	StateInit State = iota
	StateCounting
	StateFetching
	StateExhausted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCounting:
		return "counting"
	case StateFetching:
		return "fetching"
	case StateExhausted:
		return "exhausted"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the scan position of a Stream.
type Session struct {
	CurrentPage  int
	TotalPages   int
	ItemsEmitted int
	PagesFetched int
	PagesFailed  int
}

// Stream lazily walks every result page of a Query and yields its items in
// page order, then API order within a page. It is single-pass: once Next
// returns false the Stream stays finished. It is not safe for concurrent use.
//
//	s := search.NewStream(client, q)
//	for s.Next(ctx) {
//		item := s.Item()
//		...
//	}
//	if err := s.Err(); err != nil { ... }
type Stream struct {
	pager         Pager
	query         Query
	logger        *slog.Logger
	observer      Observer
	progressEvery int
	breaker       *gobreaker.CircuitBreaker
	threshold     int

	state     State
	session   Session
	buf       []RawItem
	cur       RawItem
	err       error
	cancelled bool
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithLogger sets the logger for progress and recoverable page errors.
func WithLogger(l *slog.Logger) StreamOption {
	return func(s *Stream) { s.logger = l }
}

// WithObserver sets the collaborator notified of page outcomes.
func WithObserver(o Observer) StreamOption {
	return func(s *Stream) { s.observer = o }
}

// WithProgressEvery logs progress every n pages; n <= 1 logs every page.
func WithProgressEvery(n int) StreamOption {
	return func(s *Stream) { s.progressEvery = n }
}

// WithBreaker sets how many consecutive network failures abort the scan.
func WithBreaker(threshold int) StreamOption {
	return func(s *Stream) { s.threshold = threshold }
}

// NewStream returns a Stream over q. No request is made until the first
// call to Next.
func NewStream(pager Pager, q Query, opts ...StreamOption) *Stream {
	s := &Stream{
		pager:     pager,
		query:     q,
		logger:    slog.Default(),
		observer:  nopObserver{},
		threshold: defaultBreakerThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.threshold <= 0 {
		s.threshold = defaultBreakerThreshold
	}
	threshold := uint32(s.threshold)
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "chronam-pages",
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			s.logger.Warn("circuit breaker state changed", "name", name, "from", from, "to", to)
		},
	})
	return s
}

// Next advances to the next item, fetching pages as needed. It returns
// false when the scan is exhausted, stopped, cancelled through ctx, or
// failed; Err distinguishes failure.
func (s *Stream) Next(ctx context.Context) bool {
	for {
		switch s.state {
		case StateExhausted, StateStopped:
			return false
		}
		if ctx.Err() != nil {
			s.cancel()
			return false
		}

		switch s.state {
		case StateInit:
			s.state = StateCounting
			total, err := s.pager.CountPages(ctx, s.query)
			if err != nil {
				if ctx.Err() != nil {
					s.cancel()
				} else {
					s.fail(err)
				}
				return false
			}
			s.session.TotalPages = total
			s.session.CurrentPage = s.query.StartPage() - 1
			s.state = StateFetching
			s.logger.Info("counted result pages", "query", s.query.Phrase(), "total_pages", total)

		case StateFetching:
			if len(s.buf) > 0 {
				s.cur, s.buf = s.buf[0], s.buf[1:]
				s.session.ItemsEmitted++
				return true
			}
			if s.session.CurrentPage >= s.session.TotalPages {
				s.state = StateExhausted
				return false
			}
			s.session.CurrentPage++
			items, err := s.fetchPage(ctx, s.session.CurrentPage)
			if err != nil {
				if ctx.Err() != nil {
					s.cancel()
				} else {
					s.fail(err)
				}
				return false
			}
			s.buf = items
		}
	}
}

// Item returns the item produced by the last successful call to Next.
func (s *Stream) Item() RawItem { return s.cur }

// Err returns the fatal error that ended the scan, if any. Exhaustion,
// Stop and cancellation are not errors.
func (s *Stream) Err() error { return s.err }

// Stop ends the scan early. Pages not yet fetched are never requested.
func (s *Stream) Stop() {
	switch s.state {
	case StateExhausted, StateStopped:
		return
	}
	s.state = StateStopped
	s.buf = nil
}

// State returns the current lifecycle state.
func (s *Stream) State() State { return s.state }

// Session returns a snapshot of the scan position.
func (s *Stream) Session() Session { return s.session }

// Cancelled reports whether the scan ended because its context was done.
func (s *Stream) Cancelled() bool { return s.cancelled }

func (s *Stream) cancel() {
	s.Stop()
	s.cancelled = true
}

func (s *Stream) fail(err error) {
	s.Stop()
	s.err = err
}

type pageResult struct {
	items     []RawItem
	malformed error
}

// fetchPage applies the per-page failure policy. A malformed page yields no
// items and the scan moves on. A network failure also yields no items
// unless it trips the breaker, which aborts the scan with ErrNetwork.
func (s *Stream) fetchPage(ctx context.Context, page int) ([]RawItem, error) {
	s.progress(page)

	res, err := s.breaker.Execute(func() (interface{}, error) {
		items, err := s.pager.FetchPage(ctx, s.query, page)
		if errors.Is(err, ErrMalformedResponse) {
			return pageResult{malformed: err}, nil
		}
		if err != nil {
			return nil, err
		}
		return pageResult{items: items}, nil
	})

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if s.breaker.State() == gobreaker.StateOpen {
			if !errors.Is(err, ErrNetwork) {
				err = fmt.Errorf("%w: %w", ErrNetwork, err)
			}
			return nil, fmt.Errorf("aborting scan at page %d after %d consecutive failures: %w",
				page, s.threshold, err)
		}
		s.pageFailed(page, err)
		return nil, nil
	}

	pr := res.(pageResult)
	if pr.malformed != nil {
		s.pageFailed(page, pr.malformed)
		return nil, nil
	}
	s.session.PagesFetched++
	s.observer.PageFetched(page, len(pr.items))
	return pr.items, nil
}

func (s *Stream) pageFailed(page int, err error) {
	s.session.PagesFailed++
	s.observer.PageFailed(page, err)
	s.logger.Error("skipping page", "page", page, "error", err)
}

func (s *Stream) progress(page int) {
	total := s.session.TotalPages
	if s.progressEvery > 1 && page%s.progressEvery != 0 {
		return
	}
	percent := 0.0
	if total > 0 {
		percent = 100.0 * float64(page) / float64(total)
	}
	s.logger.Info("fetching page", "page", page, "total_pages", total, "percent", fmt.Sprintf("%.1f", percent))
}
