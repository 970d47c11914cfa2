// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"context"
	"sync"
	"time"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/debounce"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/logger"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/query"
)

// Candidate is an entry of the autocomplete list.
type Candidate struct {
	Label  string
	Result geocode.Result
}

// Autocomplete is a location field that searches as the user types.
type Autocomplete struct {
	ctx       context.Context
	token     *query.Token
	hook      *query.Hook
	debouncer *debounce.Debouncer[string]

	disableRegions bool
	fullNames      bool

	mu       sync.Mutex
	selected Value
}

type settings struct {
	debounce       time.Duration
	disableRegions bool
	fullNames      bool
	onChange       func(query.State)
	logger         *logger.Logger
}

// Option configures an Autocomplete.
type Option func(*settings)

// WithDebounce sets the quiet period after typing before a search starts.
func WithDebounce(window time.Duration) Option {
	return func(s *settings) {
		s.debounce = window
	}
}

// WithDisableRegions rejects regions on selection.
func WithDisableRegions(disable bool) Option {
	return func(s *settings) {
		s.disableRegions = disable
	}
}

// WithFullNames labels candidates with the full display name.
func WithFullNames(full bool) Option {
	return func(s *settings) {
		s.fullNames = full
	}
}

// WithOnChange is called whenever the search state changes.
func WithOnChange(fn func(query.State)) Option {
	return func(s *settings) {
		s.onChange = fn
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *settings) {
		s.logger = log
	}
}

// NewAutocomplete returns an Autocomplete searching with searcher. Searches use ctx and
// are not aborted by Close.
func NewAutocomplete(ctx context.Context, searcher geocode.Searcher, opts ...Option) *Autocomplete {
	s := &settings{debounce: debounce.DefaultWindow}
	for _, opt := range opts {
		opt(s)
	}

	a := &Autocomplete{
		ctx:            ctx,
		token:          query.NewToken(),
		disableRegions: s.disableRegions,
		fullNames:      s.fullNames,
	}
	hookOpts := []query.Option{query.WithLogger(s.logger)}
	if s.onChange != nil {
		hookOpts = append(hookOpts, query.WithOnChange(s.onChange))
	}
	a.hook = query.New(searcher, a.token, hookOpts...)
	a.debouncer = debounce.New(s.debounce, func(text string) {
		a.hook.Query(a.ctx, text)
	})
	return a
}

// Input handles a change of the typed text. The search starts once typing paused.
func (a *Autocomplete) Input(text string) {
	a.mu.Lock()
	a.selected = Typed(text)
	a.mu.Unlock()
	a.debouncer.Call(text)
}

// Submit searches text right away, dropping a pending debounced search. A debounced search
// that is just starting is let through first, so text stays the latest query.
func (a *Autocomplete) Submit(text string) {
	a.debouncer.Stop()
	a.debouncer.Wait()
	a.hook.Query(a.ctx, text)
}

// Select picks the candidate labeled text. Text that matches no candidate is kept as
// free text. The field value is stored in either case and the validation result returned.
func (a *Autocomplete) Select(text string) (Value, error) {
	value := Typed(text)
	for _, candidate := range a.Options() {
		if candidate.Label == text {
			value = Picked(candidate.Result)
			break
		}
	}

	a.mu.Lock()
	a.selected = value
	a.mu.Unlock()
	return value, Validate(value, a.disableRegions)
}

// Selected returns the current field value.
func (a *Autocomplete) Selected() Value {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// Validate checks the current field value.
func (a *Autocomplete) Validate() error {
	return Validate(a.Selected(), a.disableRegions)
}

// Options returns the labeled candidates of the latest search.
func (a *Autocomplete) Options() []Candidate {
	results, _ := a.hook.Results()
	candidates := make([]Candidate, 0, len(results))
	for _, result := range results {
		candidates = append(candidates, Candidate{Label: Label(result, a.fullNames), Result: result})
	}
	return candidates
}

// State returns the search state.
func (a *Autocomplete) State() query.State {
	return a.hook.State()
}

// Flush starts a pending debounced search right away.
func (a *Autocomplete) Flush() {
	a.debouncer.Flush()
}

// Wait blocks until all started searches returned, including a debounced search whose
// timer already fired.
func (a *Autocomplete) Wait() {
	a.debouncer.Wait()
	a.hook.Wait()
}

// Close detaches the field: pending searches are dropped and late responses ignored.
func (a *Autocomplete) Close() {
	a.debouncer.Stop()
	a.token.Close()
}
