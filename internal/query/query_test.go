// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"golang.org/x/text/language"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
	nominatim "github.com/thevivek0408/couchsurfing-geosearch/internal/geocode/provider/osm-nominatim"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/http"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/logger"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/testhelper"
)

const parFile = "../../testdata/nominatim_par.json"

var (
	berlin = geocode.Result{ID: 1, Name: "Berlin, Germany", SimplifiedName: "Berlin, Germany"}
	bremen = geocode.Result{ID: 2, Name: "Bremen, Germany", SimplifiedName: "Bremen, Germany"}
)

func TestHook_Query(t *testing.T) {
	t.Run("an empty query is a no-op", func(t *testing.T) {
		searcher := &mockSearcher{}
		changes := 0
		hook := New(searcher, NewToken(), WithOnChange(func(State) { changes++ }))
		hook.Query(t.Context(), "")
		hook.Wait()

		if searcher.calls.Load() != 0 {
			t.Errorf("expected no search, got %d", searcher.calls.Load())
		}
		if changes != 0 {
			t.Errorf("expected no state change, got %d", changes)
		}
		if state := hook.State(); state.Loading || state.HasResults || state.HasErr {
			t.Errorf("expected initial state, got %+v", state)
		}
	})
	t.Run("a query sets loading right away", func(t *testing.T) {
		searcher := &mockSearcher{release: make(chan struct{}), results: []geocode.Result{berlin}}
		hook := New(searcher, NewToken())
		hook.Query(t.Context(), "berlin")

		if !hook.Loading() {
			t.Error("expected hook to be loading")
		}
		if _, ok := hook.Results(); ok {
			t.Error("expected results to be unset while loading")
		}
		close(searcher.release)
		hook.Wait()

		if hook.Loading() {
			t.Error("expected loading to be finished")
		}
		results, ok := hook.Results()
		if !ok || len(results) != 1 || results[0] != berlin {
			t.Errorf("expected berlin result, got %v (%t)", results, ok)
		}
		if _, ok = hook.Error(); ok {
			t.Error("expected no error")
		}
	})
	t.Run("zero matches are an empty list", func(t *testing.T) {
		hook := New(&mockSearcher{}, NewToken())
		hook.Query(t.Context(), "nowhere")
		hook.Wait()

		results, ok := hook.Results()
		if !ok {
			t.Fatal("expected results to be set")
		}
		if results == nil || len(results) != 0 {
			t.Errorf("expected empty non-nil results, got %#v", results)
		}
		if hook.Loading() {
			t.Error("expected loading to be finished")
		}
	})
	t.Run("a new query resets a previous error", func(t *testing.T) {
		searcher := &mockSearcher{err: errors.New("boom")}
		hook := New(searcher, NewToken())
		hook.Query(t.Context(), "berlin")
		hook.Wait()
		if _, ok := hook.Error(); !ok {
			t.Fatal("expected an error")
		}

		searcher.setErr(nil)
		searcher.release = make(chan struct{})
		hook.Query(t.Context(), "berlin")
		if _, ok := hook.Error(); ok {
			t.Error("expected error to be reset")
		}
		close(searcher.release)
		hook.Wait()
	})
	t.Run("a query after close changes nothing", func(t *testing.T) {
		searcher := &mockSearcher{}
		token := NewToken()
		hook := New(searcher, token)
		token.Close()
		hook.Query(t.Context(), "berlin")
		hook.Wait()

		if searcher.calls.Load() != 0 {
			t.Errorf("expected no search, got %d", searcher.calls.Load())
		}
		if hook.Loading() {
			t.Error("expected hook to not be loading")
		}
	})
}

func TestHook_errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "status errors use the response body",
			err:  fmt.Errorf("failed to search: %w", &http.StatusError{StatusCode: 429, Body: "Too many requests"}),
			want: "Too many requests",
		},
		{
			name: "status error bodies are kept as read",
			err:  &http.StatusError{StatusCode: 400, Body: "  Nothing to search for\n"},
			want: "  Nothing to search for\n",
		},
		{
			name: "status errors with an empty body give an empty message",
			err:  &http.StatusError{StatusCode: 502},
			want: "",
		},
		{
			name: "other errors use their message",
			err:  errors.New("dial tcp: connection refused"),
			want: "dial tcp: connection refused",
		},
		{
			name: "errors without message give an empty message",
			err:  errors.New(""),
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hook := New(&mockSearcher{err: tc.err}, NewToken())
			hook.Query(t.Context(), "berlin")
			hook.Wait()

			msg, ok := hook.Error()
			if !ok {
				t.Fatal("expected error to be set")
			}
			if msg != tc.want {
				t.Errorf("expected error message %q, got %q", tc.want, msg)
			}
			if hook.Loading() {
				t.Error("expected loading to be finished")
			}
			if _, ok = hook.Results(); ok {
				t.Error("expected results to stay unset")
			}
		})
	}
}

func TestHook_teardown(t *testing.T) {
	t.Run("responses after close are dropped", func(t *testing.T) {
		searcher := &mockSearcher{release: make(chan struct{}), results: []geocode.Result{berlin}}
		token := NewToken()
		var changes atomic.Int32
		hook := New(searcher, token, WithOnChange(func(State) { changes.Add(1) }))

		hook.Query(t.Context(), "berlin")
		token.Close()
		close(searcher.release)
		hook.Wait()

		if changes.Load() != 1 {
			t.Errorf("expected only the loading change, got %d", changes.Load())
		}
		if _, ok := hook.Results(); ok {
			t.Error("expected results to stay unset")
		}
		if !hook.Loading() {
			t.Error("expected state to be frozen in loading")
		}
	})
	t.Run("errors after close are dropped", func(t *testing.T) {
		searcher := &mockSearcher{release: make(chan struct{}), err: errors.New("boom")}
		token := NewToken()
		hook := New(searcher, token)

		hook.Query(t.Context(), "berlin")
		token.Close()
		close(searcher.release)
		hook.Wait()

		if _, ok := hook.Error(); ok {
			t.Error("expected error to stay unset")
		}
	})
	t.Run("clear after close is dropped", func(t *testing.T) {
		token := NewToken()
		hook := New(&mockSearcher{}, token)
		token.Close()
		hook.Clear()
		if _, ok := hook.Results(); ok {
			t.Error("expected results to stay unset")
		}
	})
	t.Run("close waits for a running listener", func(t *testing.T) {
		token := NewToken()
		entered := make(chan struct{})
		release := make(chan struct{})
		var changes atomic.Int32
		hook := New(&mockSearcher{results: []geocode.Result{berlin}}, token, WithOnChange(func(s State) {
			changes.Add(1)
			if !s.Loading {
				close(entered)
				<-release
			}
		}))
		hook.Query(t.Context(), "berlin")
		<-entered

		closed := make(chan struct{})
		go func() {
			token.Close()
			close(closed)
		}()
		time.Sleep(50 * time.Millisecond)
		select {
		case <-closed:
			t.Fatal("expected close to wait for the listener")
		default:
		}

		close(release)
		<-closed
		hook.Wait()
		hook.Clear()
		if changes.Load() != 2 {
			t.Errorf("expected no listener call after close, got %d calls", changes.Load())
		}
	})
	t.Run("closing twice is fine", func(t *testing.T) {
		token := NewToken()
		token.Close()
		token.Close()
		if token.Alive() {
			t.Error("expected token to be closed")
		}
	})
}

func TestHook_stale(t *testing.T) {
	t.Run("a slow older response does not overwrite a newer one", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			slow := make(chan struct{})
			searcher := &mockSearcher{byText: map[string]mockAnswer{
				"b":  {results: []geocode.Result{berlin}, release: slow},
				"br": {results: []geocode.Result{bremen}},
			}}
			hook := New(searcher, NewToken())

			hook.Query(t.Context(), "b")
			hook.Query(t.Context(), "br")
			synctest.Wait()

			results, ok := hook.Results()
			if !ok || len(results) != 1 || results[0] != bremen {
				t.Fatalf("expected bremen result, got %v", results)
			}

			close(slow)
			hook.Wait()
			results, _ = hook.Results()
			if len(results) != 1 || results[0] != bremen {
				t.Errorf("expected stale response to be dropped, got %v", results)
			}
		})
	})
	t.Run("loading stays set until the latest query returned", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			slow := make(chan struct{})
			searcher := &mockSearcher{byText: map[string]mockAnswer{
				"b":  {results: []geocode.Result{berlin}},
				"br": {results: []geocode.Result{bremen}, release: slow},
			}}
			hook := New(searcher, NewToken())

			hook.Query(t.Context(), "b")
			hook.Query(t.Context(), "br")
			synctest.Wait()

			if !hook.Loading() {
				t.Error("expected hook to still be loading")
			}
			if _, ok := hook.Results(); ok {
				t.Error("expected results of the superseded query to be dropped")
			}
			close(slow)
			hook.Wait()
			if hook.Loading() {
				t.Error("expected loading to be finished")
			}
		})
	})
}

func TestHook_Clear(t *testing.T) {
	t.Run("clear empties the results", func(t *testing.T) {
		hook := New(&mockSearcher{results: []geocode.Result{berlin}}, NewToken())
		hook.Query(t.Context(), "berlin")
		hook.Wait()
		hook.Clear()

		results, ok := hook.Results()
		if !ok || results == nil || len(results) != 0 {
			t.Errorf("expected empty results, got %#v", results)
		}
	})
	t.Run("clear keeps the loading state", func(t *testing.T) {
		searcher := &mockSearcher{release: make(chan struct{})}
		hook := New(searcher, NewToken())
		hook.Query(t.Context(), "bremen")
		hook.Clear()
		if !hook.Loading() {
			t.Error("expected loading to be kept")
		}
		close(searcher.release)
		hook.Wait()
	})
	t.Run("clear keeps the error", func(t *testing.T) {
		hook := New(&mockSearcher{err: errors.New("boom")}, NewToken())
		hook.Query(t.Context(), "berlin")
		hook.Wait()
		hook.Clear()
		if msg, ok := hook.Error(); !ok || msg != "boom" {
			t.Errorf("expected error to be kept, got %q (%t)", msg, ok)
		}
	})
	t.Run("results returned are a copy", func(t *testing.T) {
		hook := New(&mockSearcher{results: []geocode.Result{berlin}}, NewToken())
		hook.Query(t.Context(), "berlin")
		hook.Wait()
		results, _ := hook.Results()
		results[0].Name = "changed"
		again, _ := hook.Results()
		if again[0].Name != berlin.Name {
			t.Error("expected hook state to be unaffected")
		}
	})
}

func TestHook_onChange(t *testing.T) {
	t.Run("listener sees loading and then the results", func(t *testing.T) {
		var mu sync.Mutex
		var states []State
		hook := New(&mockSearcher{results: []geocode.Result{berlin}}, NewToken(),
			WithOnChange(func(s State) {
				mu.Lock()
				states = append(states, s)
				mu.Unlock()
			}))
		hook.Query(t.Context(), "berlin")
		hook.Wait()

		mu.Lock()
		defer mu.Unlock()
		if len(states) != 2 {
			t.Fatalf("expected 2 state changes, got %d", len(states))
		}
		if !states[0].Loading || states[0].HasResults {
			t.Errorf("expected loading state first, got %+v", states[0])
		}
		if states[1].Loading || !states[1].HasResults {
			t.Errorf("expected result state last, got %+v", states[1])
		}
	})
}

func TestHook_Wait(t *testing.T) {
	t.Run("wait covers a query whose listener is still running", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		hook := New(&mockSearcher{results: []geocode.Result{berlin}}, NewToken(), WithOnChange(func(s State) {
			if s.Loading {
				close(entered)
				<-release
			}
		}))
		go hook.Query(t.Context(), "berlin")
		<-entered

		waited := make(chan struct{})
		go func() {
			hook.Wait()
			close(waited)
		}()
		time.Sleep(50 * time.Millisecond)
		select {
		case <-waited:
			t.Fatal("expected wait to block until the search returned")
		default:
		}

		close(release)
		<-waited
		if hook.Loading() {
			t.Error("expected loading to be done after wait")
		}
		if _, ok := hook.Results(); !ok {
			t.Error("expected results after wait")
		}
	})
	t.Run("wait without queries returns right away", func(t *testing.T) {
		hook := New(&mockSearcher{}, NewToken())
		hook.Wait()
	})
}

func TestHook_endToEnd(t *testing.T) {
	t.Run("a partial city name resolves to a single normalized result", func(t *testing.T) {
		client := http.New(logger.New(slog.LevelDebug))
		client.Transport = testhelper.MockRoundTripper{Fn: testhelper.FileResponse(t, parFile, 200)}
		searcher := nominatim.New(client, language.English)
		hook := New(searcher, NewToken(), WithLogger(logger.New(slog.LevelDebug)))

		hook.Query(t.Context(), "par")
		hook.Wait()

		results, ok := hook.Results()
		if !ok || len(results) != 1 {
			t.Fatalf("expected 1 result, got %v", results)
		}
		if results[0].IsRegion {
			t.Error("expected result to not be a region")
		}
		if results[0].Location != (geocode.LngLat{2.35, 48.85}) {
			t.Errorf("expected location [2.35 48.85], got %v", results[0].Location)
		}
		if results[0].BBox != (geocode.BBox{2.3, 48.8, 2.4, 48.9}) {
			t.Errorf("expected bbox [2.3 48.8 2.4 48.9], got %v", results[0].BBox)
		}
		if hook.Loading() {
			t.Error("expected loading to be finished")
		}
	})
	t.Run("a provider error is shown with the response body", func(t *testing.T) {
		client := http.New(logger.New(slog.LevelDebug))
		client.Transport = testhelper.MockRoundTripper{Fn: testhelper.StringResponse("Internal Server Error", 500)}
		hook := New(nominatim.New(client, language.English), NewToken())

		hook.Query(t.Context(), "par")
		hook.Wait()
		if msg, _ := hook.Error(); msg != "Internal Server Error" {
			t.Errorf("expected response body as error, got %q", msg)
		}
	})
}

type mockAnswer struct {
	results []geocode.Result
	err     error
	release chan struct{}
}

type mockSearcher struct {
	mu      sync.Mutex
	results []geocode.Result
	err     error
	release chan struct{}
	byText  map[string]mockAnswer
	calls   atomic.Int32
}

func (m *mockSearcher) Name() string { return "mock" }

func (m *mockSearcher) Search(_ context.Context, text string) ([]geocode.Result, error) {
	m.calls.Add(1)
	m.mu.Lock()
	answer := mockAnswer{results: m.results, err: m.err, release: m.release}
	if byText, ok := m.byText[text]; ok {
		answer = byText
	}
	m.mu.Unlock()

	if answer.release != nil {
		<-answer.release
	}
	return answer.results, answer.err
}

func (m *mockSearcher) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}
