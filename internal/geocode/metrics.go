// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "geosearch"

	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics holds the Prometheus collectors for geocoding searches.
type Metrics struct {
	searches  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	cacheHits *prometheus.CounterVec
}

// NewMetrics creates the search collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "searches_total",
			Help:      "Number of geocoding searches by provider and outcome.",
		}, []string{"provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of geocoding searches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_hits_total",
			Help:      "Number of geocoding searches answered from the cache.",
		}, []string{"provider"}),
	}
	for _, c := range []prometheus.Collector{m.searches, m.duration, m.cacheHits} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register geocode metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) cacheHit(provider string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(provider).Inc()
}

func (m *Metrics) observe(provider, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(provider, outcome).Inc()
	m.duration.WithLabelValues(provider).Observe(took.Seconds())
}

// InstrumentedSearcher records the outcome and duration of every search of the wrapped Searcher.
type InstrumentedSearcher struct {
	searcher Searcher
	metrics  *Metrics
}

func NewInstrumentedSearcher(searcher Searcher, metrics *Metrics) *InstrumentedSearcher {
	return &InstrumentedSearcher{searcher: searcher, metrics: metrics}
}

func (i *InstrumentedSearcher) Name() string {
	return i.searcher.Name()
}

func (i *InstrumentedSearcher) Search(ctx context.Context, text string) ([]Result, error) {
	start := time.Now()
	results, err := i.searcher.Search(ctx, text)

	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
	case len(results) == 0:
		outcome = OutcomeEmpty
	}
	i.metrics.observe(i.searcher.Name(), outcome, time.Since(start))

	return results, err
}
