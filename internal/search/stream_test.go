// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePager serves pages from memory and records every call.
type fakePager struct {
	total    int
	countErr error
	pages    map[int][]RawItem
	errs     map[int]error

	counts  int
	fetched []int
	onFetch func(page int)
}

func (p *fakePager) CountPages(context.Context, Query) (int, error) {
	p.counts++
	if p.countErr != nil {
		return 0, p.countErr
	}
	return p.total, nil
}

func (p *fakePager) FetchPage(ctx context.Context, _ Query, page int) ([]RawItem, error) {
	p.fetched = append(p.fetched, page)
	if p.onFetch != nil {
		p.onFetch(page)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if err, ok := p.errs[page]; ok {
		return nil, err
	}
	return p.pages[page], nil
}

func items(page int, n int) []RawItem {
	out := make([]RawItem, n)
	for i := range out {
		out[i] = RawItem{ID: fmt.Sprintf("/p%d/i%d/", page, i), Date: "19000101"}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func drain(t *testing.T, s *Stream) []string {
	t.Helper()
	var ids []string
	for s.Next(context.Background()) {
		ids = append(ids, s.Item().ID)
	}
	return ids
}

func TestStream_PageOrder(t *testing.T) {
	p := &fakePager{total: 3, pages: map[int][]RawItem{1: items(1, 2), 2: items(2, 1), 3: items(3, 2)}}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	assert.Equal(t, StateInit, s.State())
	ids := drain(t, s)

	assert.Equal(t, []string{"/p1/i0/", "/p1/i1/", "/p2/i0/", "/p3/i0/", "/p3/i1/"}, ids)
	assert.Equal(t, StateExhausted, s.State())
	assert.NoError(t, s.Err())
	assert.Equal(t, 1, p.counts)
	assert.Equal(t, []int{1, 2, 3}, p.fetched)

	sess := s.Session()
	assert.Equal(t, 3, sess.TotalPages)
	assert.Equal(t, 3, sess.CurrentPage)
	assert.Equal(t, 5, sess.ItemsEmitted)
	assert.Equal(t, 3, sess.PagesFetched)
}

func TestStream_Lazy(t *testing.T) {
	p := &fakePager{total: 2, pages: map[int][]RawItem{1: items(1, 1), 2: items(2, 1)}}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	assert.Equal(t, 0, p.counts, "no request before first Next")
	require.True(t, s.Next(context.Background()))
	assert.Equal(t, []int{1}, p.fetched, "page 2 not fetched until needed")
}

func TestStream_SinglePass(t *testing.T) {
	p := &fakePager{total: 1, pages: map[int][]RawItem{1: items(1, 2)}}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	assert.Len(t, drain(t, s), 2)
	assert.Empty(t, drain(t, s))
	assert.Equal(t, 1, p.counts)
	assert.Equal(t, []int{1}, p.fetched)
}

func TestStream_NoResults(t *testing.T) {
	p := &fakePager{total: 0}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	assert.Empty(t, drain(t, s))
	assert.Equal(t, StateExhausted, s.State())
	assert.NoError(t, s.Err())
	assert.Empty(t, p.fetched)
}

func TestStream_StartPage(t *testing.T) {
	p := &fakePager{total: 4, pages: map[int][]RawItem{3: items(3, 1), 4: items(4, 1)}}
	s := NewStream(p, mustQuery(t, "lincoln", WithStartPage(3)), WithLogger(quietLogger()))

	assert.Equal(t, []string{"/p3/i0/", "/p4/i0/"}, drain(t, s))
	assert.Equal(t, []int{3, 4}, p.fetched)
}

func TestStream_CountFailureIsFatal(t *testing.T) {
	p := &fakePager{countErr: fmt.Errorf("counting pages: %w: boom", ErrNetwork)}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	assert.False(t, s.Next(context.Background()))
	assert.ErrorIs(t, s.Err(), ErrNetwork)
	assert.Equal(t, StateStopped, s.State())
	assert.False(t, s.Cancelled())
	assert.Empty(t, p.fetched)

	assert.False(t, s.Next(context.Background()), "failed stream stays finished")
}

func TestStream_MalformedPageSkipped(t *testing.T) {
	p := &fakePager{
		total: 3,
		pages: map[int][]RawItem{1: items(1, 1), 3: items(3, 1)},
		errs:  map[int]error{2: fmt.Errorf("fetching page 2: %w: bad json", ErrMalformedResponse)},
	}
	obs := &countingObserver{}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()), WithObserver(obs))

	assert.Equal(t, []string{"/p1/i0/", "/p3/i0/"}, drain(t, s))
	assert.NoError(t, s.Err())
	assert.Equal(t, 2, s.Session().PagesFetched)
	assert.Equal(t, 1, s.Session().PagesFailed)
	assert.Equal(t, 2, obs.fetched)
	assert.Equal(t, 1, obs.failed)
}

func TestStream_MalformedPagesDoNotTripBreaker(t *testing.T) {
	malformed := fmt.Errorf("%w: bad json", ErrMalformedResponse)
	p := &fakePager{
		total: 5,
		pages: map[int][]RawItem{5: items(5, 1)},
		errs:  map[int]error{1: malformed, 2: malformed, 3: malformed, 4: malformed},
	}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()), WithBreaker(2))

	assert.Equal(t, []string{"/p5/i0/"}, drain(t, s))
	assert.NoError(t, s.Err())
}

func TestStream_NetworkFailureSkippedBelowThreshold(t *testing.T) {
	netErr := fmt.Errorf("%w: connection reset", ErrNetwork)
	p := &fakePager{
		total: 4,
		pages: map[int][]RawItem{1: items(1, 1), 3: items(3, 1), 4: items(4, 1)},
		errs:  map[int]error{2: netErr},
	}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()), WithBreaker(2))

	assert.Equal(t, []string{"/p1/i0/", "/p3/i0/", "/p4/i0/"}, drain(t, s))
	assert.NoError(t, s.Err())
	assert.Equal(t, 1, s.Session().PagesFailed)
}

func TestStream_BreakerAbortsScan(t *testing.T) {
	netErr := fmt.Errorf("%w: connection refused", ErrNetwork)
	p := &fakePager{
		total: 6,
		pages: map[int][]RawItem{1: items(1, 1), 6: items(6, 1)},
		errs:  map[int]error{2: netErr, 3: netErr, 4: netErr, 5: netErr},
	}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()), WithBreaker(3))

	assert.Equal(t, []string{"/p1/i0/"}, drain(t, s))
	assert.ErrorIs(t, s.Err(), ErrNetwork)
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, []int{1, 2, 3, 4}, p.fetched)
}

func TestStream_BreakerWrapsForeignErrors(t *testing.T) {
	p := &fakePager{total: 1, errs: map[int]error{1: errors.New("socket closed")}}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()), WithBreaker(1))

	assert.Empty(t, drain(t, s))
	assert.ErrorIs(t, s.Err(), ErrNetwork)
}

func TestStream_Stop(t *testing.T) {
	p := &fakePager{total: 3, pages: map[int][]RawItem{1: items(1, 2), 2: items(2, 2), 3: items(3, 2)}}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	require.True(t, s.Next(context.Background()))
	s.Stop()

	assert.False(t, s.Next(context.Background()))
	assert.Equal(t, StateStopped, s.State())
	assert.NoError(t, s.Err())
	assert.False(t, s.Cancelled())
	assert.Equal(t, []int{1}, p.fetched)
}

func TestStream_CancelBetweenItems(t *testing.T) {
	p := &fakePager{total: 3, pages: map[int][]RawItem{1: items(1, 2), 2: items(2, 2), 3: items(3, 2)}}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, s.Next(ctx))
	cancel()

	assert.False(t, s.Next(ctx))
	assert.True(t, s.Cancelled())
	assert.NoError(t, s.Err())
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, []int{1}, p.fetched)
}

func TestStream_CancelDuringFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakePager{total: 3, pages: map[int][]RawItem{1: items(1, 1), 3: items(3, 1)}}
	p.onFetch = func(page int) {
		if page == 2 {
			cancel()
		}
	}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	var ids []string
	for s.Next(ctx) {
		ids = append(ids, s.Item().ID)
	}
	assert.Equal(t, []string{"/p1/i0/"}, ids)
	assert.True(t, s.Cancelled())
	assert.NoError(t, s.Err())
	assert.Equal(t, []int{1, 2}, p.fetched)
}

func TestStream_CancelBeforeStart(t *testing.T) {
	p := &fakePager{total: 1, pages: map[int][]RawItem{1: items(1, 1)}}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, s.Next(ctx))
	assert.True(t, s.Cancelled())
	assert.Equal(t, 0, p.counts)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "counting", StateCounting.String())
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestStream_ProgressEvery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := &fakePager{total: 4, pages: map[int][]RawItem{}}
	s := NewStream(p, mustQuery(t, "lincoln"), WithLogger(logger), WithProgressEvery(2))

	drain(t, s)

	var pages []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "msg=\"fetching page\"") {
			pages = append(pages, line[strings.Index(line, " page="):][1:7])
		}
	}
	assert.Equal(t, []string{"page=2", "page=4"}, pages)
	assert.Contains(t, buf.String(), "percent=50.0")
}
