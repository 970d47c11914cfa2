// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
	nominatim "github.com/thevivek0408/couchsurfing-geosearch/internal/geocode/provider/osm-nominatim"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/http"
)

const (
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

var ErrMissingAPIKey = errors.New("OpenCage requires an API key")

type OpenCage struct {
	apikey   string
	http     *http.Client
	lang     language.Tag
	endpoint string
	timeout  time.Duration
	limit    int
}

type Response struct {
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

type Result struct {
	Bounds *Bounds `json:"bounds"`
	// Components are keyed like the Nominatim address details. Some values are lists,
	// only string values are kept.
	Components  map[string]any `json:"components"`
	DisplayName string         `json:"formatted"`
	Geometry    Geometry       `json:"geometry"`
}

type Bounds struct {
	Northeast Geometry `json:"northeast"`
	Southwest Geometry `json:"southwest"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// Option configures an OpenCage provider.
type Option func(*OpenCage)

// WithEndpoint overrides the forward geocoding URL.
func WithEndpoint(endpoint string) Option {
	return func(o *OpenCage) {
		if endpoint != "" {
			o.endpoint = endpoint
		}
	}
}

// WithTimeout sets the timeout of a single search request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *OpenCage) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithLimit sets the maximum number of results requested per search.
func WithLimit(limit int) Option {
	return func(o *OpenCage) {
		o.limit = limit
	}
}

func New(client *http.Client, lang language.Tag, apikey string, opts ...Option) *OpenCage {
	o := &OpenCage{
		apikey:   apikey,
		lang:     lang,
		http:     client,
		endpoint: APIEndpoint,
		timeout:  APITimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OpenCage) Name() string {
	return name
}

// Search forward geocodes text. Results are mapped onto Nominatim places so that the
// same simplification and duplicate filtering applies to both providers.
func (o *OpenCage) Search(ctx context.Context, text string) ([]geocode.Result, error) {
	if o.apikey == "" {
		return nil, ErrMissingAPIKey
	}

	var response Response
	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("q", text)
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	if o.limit > 0 {
		query.Set("limit", strconv.Itoa(o.limit))
	}
	if o.lang != language.Und {
		query.Set("language", o.lang.String())
	}

	if _, err := o.http.GetWithTimeout(ctx, o.endpoint, &response, query, nil, o.timeout); err != nil {
		return nil, fmt.Errorf("failed to search places via OpenCage API: %w", err)
	}

	places := make([]nominatim.Place, 0, len(response.Results))
	for i, result := range response.Results {
		places = append(places, result.Place(int64(i+1)))
	}
	places = nominatim.FilterDuplicates(places)

	results := make([]geocode.Result, 0, len(places))
	for _, place := range places {
		result, err := place.Result()
		if err != nil {
			return nil, fmt.Errorf("failed to parse place from OpenCage API response: %w", err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Place converts the result into a Nominatim place with the given ID. OpenCage has no
// stable place identifiers, so the caller passes the result's rank.
func (r Result) Place(id int64) nominatim.Place {
	address := make(map[string]string, len(r.Components))
	for key, val := range r.Components {
		if str, ok := val.(string); ok && !strings.HasPrefix(key, "_") {
			address[key] = str
		}
	}

	placeName, _, _ := strings.Cut(r.DisplayName, ",")
	place := nominatim.Place{
		PlaceID:     id,
		Lat:         nominatim.Float(r.Geometry.Lat),
		Lon:         nominatim.Float(r.Geometry.Lon),
		Name:        strings.TrimSpace(placeName),
		DisplayName: r.DisplayName,
		Address:     address,
	}
	// Point results come without bounds and get a zero sized box
	southwest, northeast := r.Geometry, r.Geometry
	if r.Bounds != nil {
		southwest, northeast = r.Bounds.Southwest, r.Bounds.Northeast
	}
	place.BoundingBox = []nominatim.Float{
		nominatim.Float(southwest.Lat),
		nominatim.Float(northeast.Lat),
		nominatim.Float(southwest.Lon),
		nominatim.Float(northeast.Lon),
	}
	return place
}
