// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import "context"

// LngLat is a [longitude, latitude] pair.
type LngLat [2]float64

// Lng returns the longitude.
func (l LngLat) Lng() float64 { return l[0] }

// Lat returns the latitude.
func (l LngLat) Lat() float64 { return l[1] }

// Result is a single geocoding candidate for a free-text query.
type Result struct {
	// ID is the provider's place identifier. It is unique within one result list only.
	ID int64
	// Name is the full display name as returned by the provider
	Name string
	// SimplifiedName is a short label such as "Paris, France"
	SimplifiedName string
	Location       LngLat
	BBox           BBox
	// IsRegion is true for administrative areas without a locality, e.g. a country or state
	IsRegion bool
}

// Searcher resolves free-text place queries into geocoding results.
type Searcher interface {
	Name() string
	Search(ctx context.Context, text string) ([]Result, error)
}
