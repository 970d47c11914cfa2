// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
)

var ErrInvalidBoundingBox = errors.New("bounding box must have exactly four values")

// Place is a single entry of a Nominatim jsonv2 search response.
// https://nominatim.org/release-docs/latest/api/Output/
type Place struct {
	PlaceID     int64   `json:"place_id"`
	Licence     string  `json:"licence"`
	OSMType     string  `json:"osm_type"`
	OSMID       int64   `json:"osm_id"`
	Lat         Float   `json:"lat"`
	Lon         Float   `json:"lon"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	PlaceRank   int     `json:"place_rank"`
	Importance  float64 `json:"importance"`
	Addresstype string  `json:"addresstype"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	// BoundingBox is in provider order: south, north, west, east
	BoundingBox []Float           `json:"boundingbox"`
	Address     map[string]string `json:"address"`
}

// Float is a float64 that decodes from both JSON numbers and numeric strings, since Nominatim
// returns coordinates as strings.
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	val, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate value %q: %w", data, err)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("invalid coordinate value %q", data)
	}
	*f = Float(val)
	return nil
}

// BBox reorders the provider's south, north, west, east bounding box into the
// [minLng, minLat, maxLng, maxLat] form.
func (p Place) BBox() (geocode.BBox, error) {
	if len(p.BoundingBox) != 4 {
		return geocode.BBox{}, fmt.Errorf("place %d: %w", p.PlaceID, ErrInvalidBoundingBox)
	}
	south, north := float64(p.BoundingBox[0]), float64(p.BoundingBox[1])
	west, east := float64(p.BoundingBox[2]), float64(p.BoundingBox[3])
	return geocode.NewBBox(south, north, west, east), nil
}

// Result converts the place into a geocode.Result.
func (p Place) Result() (geocode.Result, error) {
	bbox, err := p.BBox()
	if err != nil {
		return geocode.Result{}, err
	}
	name, isRegion := Simplify(p)
	return geocode.Result{
		ID:             p.PlaceID,
		Name:           p.DisplayName,
		SimplifiedName: name,
		Location:       geocode.LngLat{float64(p.Lon), float64(p.Lat)},
		BBox:           bbox,
		IsRegion:       isRegion,
	}, nil
}
