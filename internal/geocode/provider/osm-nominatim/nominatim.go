// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/http"
)

const (
	DefaultEndpoint = "https://nominatim.openstreetmap.org/"
	APITimeout      = time.Second * 10
	name            = "osm-nominatim"
)

// Nominatim searches places through a Nominatim compatible API.
type Nominatim struct {
	http     *http.Client
	lang     language.Tag
	endpoint string
	timeout  time.Duration
	limit    int
	limiter  *rate.Limiter
}

// Option configures a Nominatim provider.
type Option func(*Nominatim)

// WithEndpoint sets the base URL of the API, the search path is appended to it.
func WithEndpoint(endpoint string) Option {
	return func(n *Nominatim) {
		if endpoint != "" {
			n.endpoint = endpoint
		}
	}
}

// WithTimeout sets the timeout of a single search request.
func WithTimeout(timeout time.Duration) Option {
	return func(n *Nominatim) {
		if timeout > 0 {
			n.timeout = timeout
		}
	}
}

// WithLimit sets the maximum number of places requested per search. Zero leaves the
// API default.
func WithLimit(limit int) Option {
	return func(n *Nominatim) {
		n.limit = limit
	}
}

// WithRateLimit limits outgoing searches to perSecond requests per second. The public
// Nominatim instance allows at most one request per second.
func WithRateLimit(perSecond float64) Option {
	return func(n *Nominatim) {
		if perSecond <= 0 {
			n.limiter = nil
			return
		}
		n.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func New(client *http.Client, lang language.Tag, opts ...Option) *Nominatim {
	n := &Nominatim{
		http:     client,
		lang:     lang,
		endpoint: DefaultEndpoint,
		timeout:  APITimeout,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Nominatim) Name() string {
	return name
}

// Search looks up places matching text. Places with the same simplified name are reduced
// to the first one, the remaining places are converted into geocode results in the order
// the API ranked them.
func (n *Nominatim) Search(ctx context.Context, text string) ([]geocode.Result, error) {
	places, err := n.SearchPlaces(ctx, text)
	if err != nil {
		return nil, err
	}

	places = FilterDuplicates(places)
	results := make([]geocode.Result, 0, len(places))
	for _, place := range places {
		result, err := place.Result()
		if err != nil {
			return nil, fmt.Errorf("failed to parse place from Nominatim API response: %w", err)
		}
		results = append(results, result)
	}

	return results, nil
}

// SearchPlaces returns the raw places the API found for text.
func (n *Nominatim) SearchPlaces(ctx context.Context, text string) ([]Place, error) {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for Nominatim rate limit: %w", err)
		}
	}

	searchURL, err := url.JoinPath(n.endpoint, "search")
	if err != nil {
		return nil, fmt.Errorf("failed to build Nominatim search URL: %w", err)
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("q", text)
	query.Set("addressdetails", "1")
	if n.limit > 0 {
		query.Set("limit", strconv.Itoa(n.limit))
	}
	if n.lang != language.Und {
		query.Set("accept-language", n.lang.String())
	}

	var places []Place
	if _, err = n.http.GetWithTimeout(ctx, searchURL, &places, query, nil, n.timeout); err != nil {
		return nil, fmt.Errorf("failed to search places via Nominatim API: %w", err)
	}

	return places, nil
}
