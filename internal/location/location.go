// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package location turns geocode results into what the search UIs need: field validation,
// labels, event search areas and map camera moves.
package location

import (
	"errors"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
)

var (
	ErrNotSelected = errors.New("select a location from the list")
	ErrNotSpecific = errors.New("choose a more specific location")
)

// Value is the content of a location field. It is either a result picked from the
// candidate list or free text the user typed.
type Value struct {
	Text   string
	Result *geocode.Result
}

// Picked returns a Value holding result.
func Picked(result geocode.Result) Value {
	return Value{Result: &result}
}

// Typed returns a Value holding free text.
func Typed(text string) Value {
	return Value{Text: text}
}

func (v Value) IsEmpty() bool {
	return v.Result == nil && v.Text == ""
}

// Validate checks a location field. An empty field is valid. Free text fails with
// ErrNotSelected, a region fails with ErrNotSpecific if regions are disabled.
func Validate(value Value, disableRegions bool) error {
	if value.IsEmpty() {
		return nil
	}
	if value.Result == nil {
		return ErrNotSelected
	}
	if disableRegions && value.Result.IsRegion {
		return ErrNotSpecific
	}
	return nil
}

// Label returns the text shown for a result.
func Label(result geocode.Result, full bool) string {
	if full {
		return result.Name
	}
	return result.SimplifiedName
}

// Rect is a rectangle search area.
type Rect struct {
	LatMin float64
	LatMax float64
	LngMin float64
	LngMax float64
}

// Area is where to search for events. Exactly one of Query and Rect is set.
type Area struct {
	Query string
	Rect  *Rect
}

// AreaFor returns the event search area of a result. Regions like "France" are searched
// by name, everything else by its bounding box so that the surroundings of a small town
// are included.
func AreaFor(result geocode.Result) Area {
	if result.IsRegion {
		return Area{Query: result.Name}
	}
	return Area{Rect: &Rect{
		LatMin: result.BBox.MinLat(),
		LatMax: result.BBox.MaxLat(),
		LngMin: result.BBox.MinLng(),
		LngMax: result.BBox.MaxLng(),
	}}
}

// Camera is a map viewport change.
type Camera struct {
	Center geocode.LngLat
	Bounds geocode.BBox
}

// CameraFor returns the camera move that shows result on the map.
func CameraFor(result geocode.Result) Camera {
	return Camera{Center: result.Location, Bounds: result.BBox}
}
