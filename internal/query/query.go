// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package query holds the observable state of a free-text place search: the latest
// results, an error message and a loading flag.
package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/http"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/logger"
)

// State is a snapshot of a Hook.
type State struct {
	// Results is only meaningful if HasResults is set. A completed query without matches
	// has HasResults set and an empty Results list.
	Results    []geocode.Result
	HasResults bool
	// Err is only meaningful if HasErr is set, it may be empty.
	Err     string
	HasErr  bool
	Loading bool
}

// Hook issues searches and tracks their outcome. All methods are safe for concurrent use.
type Hook struct {
	searcher geocode.Searcher
	token    *Token
	logger   *logger.Logger
	onChange func(State)

	mu       sync.Mutex
	state    State
	seq      uint64
	inflight int
	idle     *sync.Cond
}

// Option configures a Hook.
type Option func(*Hook)

// WithOnChange registers fn to be called with the new state after every applied update.
// fn is never called once the token is closed, and closing the token waits for a call in
// progress. fn must not close the token itself.
func WithOnChange(fn func(State)) Option {
	return func(h *Hook) {
		h.onChange = fn
	}
}

// WithLogger sets the logger used for failed searches.
func WithLogger(log *logger.Logger) Option {
	return func(h *Hook) {
		if log != nil {
			h.logger = log
		}
	}
}

// New returns a Hook that searches with searcher and stops updating once token is closed.
func New(searcher geocode.Searcher, token *Token, opts ...Option) *Hook {
	h := &Hook{
		searcher: searcher,
		token:    token,
		logger:   logger.NewLogger(slog.LevelError, io.Discard),
	}
	h.idle = sync.NewCond(&h.mu)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Query starts a search for text. An empty text does nothing. Otherwise the hook is
// put into loading state right away and the search runs in the background. Only the
// response of the latest query is applied, responses of superseded queries are dropped.
func (h *Hook) Query(ctx context.Context, text string) {
	if text == "" {
		return
	}

	// the search is counted before the listener runs, so Wait never misses it
	var seq uint64
	h.update(func(s *State) bool {
		h.seq++
		seq = h.seq
		h.inflight++
		s.Loading = true
		s.Err, s.HasErr = "", false
		s.Results, s.HasResults = nil, false
		return true
	})
	if seq == 0 {
		return
	}

	go func() {
		defer h.done()
		results, err := h.searcher.Search(ctx, text)
		if err != nil {
			h.logger.Debug("place search failed", slog.String("provider", h.searcher.Name()),
				slog.String("query", text), logger.Err(err))
		}
		h.update(func(s *State) bool {
			if seq != h.seq {
				return false
			}
			if err != nil {
				s.Err, s.HasErr = ErrorMessage(err), true
			} else {
				if results == nil {
					results = []geocode.Result{}
				}
				s.Results, s.HasResults = results, true
			}
			s.Loading = false
			return true
		})
	}()
}

// Clear empties the results. Loading and error state are left as they are.
func (h *Hook) Clear() {
	h.update(func(s *State) bool {
		s.Results, s.HasResults = []geocode.Result{}, true
		return true
	})
}

// Results returns the current results and whether there are any, which is false before
// the first query completed and while a query is loading.
func (h *Hook) Results() ([]geocode.Result, bool) {
	state := h.State()
	return state.Results, state.HasResults
}

// Error returns the message of the last failed query.
func (h *Hook) Error() (string, bool) {
	state := h.State()
	return state.Err, state.HasErr
}

func (h *Hook) Loading() bool {
	return h.State().Loading
}

// State returns a snapshot of the hook.
func (h *Hook) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot()
}

// Wait blocks until all searches issued so far have returned.
func (h *Hook) Wait() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for h.inflight > 0 {
		h.idle.Wait()
	}
}

func (h *Hook) done() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inflight--
	if h.inflight == 0 {
		h.idle.Broadcast()
	}
}

// ErrorMessage returns the text shown for a failed search. HTTP status errors are
// reported with the raw response body, everything else with the error message.
func ErrorMessage(err error) string {
	var statusErr *http.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Body
	}
	return err.Error()
}

// update applies fn to the state unless the token is closed, and notifies the listener
// if fn reports a change. The listener runs under the token, outside of the state lock.
func (h *Hook) update(fn func(*State) bool) {
	h.token.guard(func() {
		h.mu.Lock()
		applied := fn(&h.state)
		state := h.snapshot()
		h.mu.Unlock()
		if applied && h.onChange != nil {
			h.onChange(state)
		}
	})
}

func (h *Hook) snapshot() State {
	state := h.state
	state.Results = slices.Clone(state.Results)
	return state
}
