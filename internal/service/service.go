// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/config"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/i18n"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/location"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/logger"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/presenter"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/query"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/template"
)

// selectPrefix marks an input line that picks a candidate by its number, e.g. ":2"
const selectPrefix = ":"

var ErrNoCandidate = errors.New("no such candidate")

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	t         *spreak.Localizer
	lang      language.Tag
	presenter *presenter.Presenter
	templates *template.Templates
	registry  *prometheus.Registry
	metrics   *geocode.Metrics
	searcher  *geocode.CachedSearcher

	transport stdhttp.RoundTripper
	input     io.Reader
	outLock   sync.Mutex
	output    io.Writer
}

// Option configures a Service.
type Option func(*Service)

// WithInput sets where input lines are read from, default is stdin.
func WithInput(r io.Reader) Option {
	return func(s *Service) {
		s.input = r
	}
}

// WithOutput sets where results are written to, default is stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		s.output = w
	}
}

// WithTransport replaces the HTTP transport used to reach the geocoding provider.
func WithTransport(rt stdhttp.RoundTripper) Option {
	return func(s *Service) {
		s.transport = rt
	}
}

func New(conf *config.Config, log *logger.Logger, t *spreak.Localizer, opts ...Option) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if t == nil {
		return nil, errors.New("localizer is required")
	}

	lang := i18n.Tag(conf.Locale)
	pres, err := presenter.New(t, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}
	tpls, err := template.New(conf, t)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := geocode.NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	service := &Service{
		config:    conf,
		logger:    log,
		t:         t,
		lang:      lang,
		presenter: pres,
		templates: tpls,
		registry:  registry,
		metrics:   metrics,
		input:     os.Stdin,
		output:    os.Stdout,
	}
	for _, opt := range opts {
		opt(service)
	}

	service.searcher, err = service.selectGeocodeProvider(conf, log, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode provider: %w", err)
	}
	return service, nil
}

// Run reads input lines until the input ends or the context is cancelled. Every line is the
// current content of the search field and is searched once typing paused. An empty line
// searches right away and ":<n>" selects the n-th candidate.
func (s *Service) Run(ctx context.Context) error {
	ac := s.newAutocomplete(ctx, s.printState)
	defer ac.Close()
	defer s.logStats()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var current string
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				ac.Flush()
				ac.Wait()
				if err := <-scanErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			s.handleLine(ac, line, &current)
		}
	}
}

// Once runs a single search for text and prints the candidates.
func (s *Service) Once(ctx context.Context, text string) error {
	defer s.logStats()
	ac := s.newAutocomplete(ctx, nil)
	defer ac.Close()

	ac.Submit(text)
	ac.Wait()
	state := ac.State()
	s.printState(state)
	if state.HasErr {
		return fmt.Errorf("location search failed: %s", state.Err)
	}
	return nil
}

func (s *Service) newAutocomplete(ctx context.Context, onChange func(query.State)) *location.Autocomplete {
	return location.NewAutocomplete(ctx, s.searcher,
		location.WithDebounce(s.config.Search.Debounce),
		location.WithDisableRegions(s.config.Search.DisableRegions),
		location.WithFullNames(s.config.Search.FullNames),
		location.WithOnChange(onChange),
		location.WithLogger(s.logger),
	)
}

func (s *Service) handleLine(ac *location.Autocomplete, line string, current *string) {
	switch {
	case line == "":
		if *current != "" {
			ac.Submit(*current)
		}
	case strings.HasPrefix(line, selectPrefix):
		if err := s.selectCandidate(ac, strings.TrimPrefix(line, selectPrefix)); err != nil {
			s.println(s.presenter.ValidationError(err))
		}
	default:
		*current = line
		ac.Input(line)
	}
}

func (s *Service) selectCandidate(ac *location.Autocomplete, index string) error {
	num, err := strconv.Atoi(strings.TrimSpace(index))
	options := ac.Options()
	if err != nil || num < 1 || num > len(options) {
		return fmt.Errorf("%w: %s", ErrNoCandidate, index)
	}

	value, err := ac.Select(options[num-1].Label)
	if err != nil {
		return err
	}
	s.logger.Debug("location selected", slog.Int64("id", value.Result.ID),
		slog.String("name", value.Result.Name))

	s.outLock.Lock()
	defer s.outLock.Unlock()
	return s.templates.RenderSelection(s.output, template.NewSelection(*value.Result, s.config.Search.FullNames))
}

// printState writes the status line and, once results are there, the candidate table.
func (s *Service) printState(state query.State) {
	s.outLock.Lock()
	defer s.outLock.Unlock()

	if _, err := fmt.Fprintln(s.output, s.presenter.Status(state)); err != nil {
		s.logger.Error("failed to write search status", logger.Err(err))
		return
	}
	if !state.HasResults {
		return
	}
	candidates := make([]location.Candidate, 0, len(state.Results))
	for _, result := range state.Results {
		candidates = append(candidates, location.Candidate{
			Label:  location.Label(result, s.config.Search.FullNames),
			Result: result,
		})
	}
	if err := s.presenter.Table(s.output, candidates); err != nil {
		s.logger.Error("failed to write candidates", logger.Err(err))
	}
}

func (s *Service) println(msg string) {
	s.outLock.Lock()
	defer s.outLock.Unlock()
	if _, err := fmt.Fprintln(s.output, msg); err != nil {
		s.logger.Error("failed to write output", logger.Err(err))
	}
}

// logStats logs the search counters collected during the run.
func (s *Service) logStats() {
	families, err := s.registry.Gather()
	if err != nil {
		s.logger.Error("failed to gather search metrics", logger.Err(err))
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			attrs := []any{slog.String("metric", family.GetName())}
			for _, label := range metric.GetLabel() {
				attrs = append(attrs, slog.String(label.GetName(), label.GetValue()))
			}
			switch {
			case metric.GetCounter() != nil:
				attrs = append(attrs, slog.Float64("value", metric.GetCounter().GetValue()))
			case metric.GetHistogram() != nil:
				attrs = append(attrs, slog.Uint64("count", metric.GetHistogram().GetSampleCount()),
					slog.Float64("sum", metric.GetHistogram().GetSampleSum()))
			}
			s.logger.Debug("search statistics", attrs...)
		}
	}
}
