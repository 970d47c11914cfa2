// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

// BBox is a bounding box in [minLng, minLat, maxLng, maxLat] order.
type BBox [4]float64

// NewBBox returns a normalized BBox spanning the given edges.
func NewBBox(south, north, west, east float64) BBox {
	return BBox{west, south, east, north}.Normalize()
}

// Normalize swaps the edges of each axis where needed so that bbox[0] <= bbox[2] and
// bbox[1] <= bbox[3]. It does not check whether the box is geographically sensible.
func (b BBox) Normalize() BBox {
	if b[0] > b[2] {
		b[0], b[2] = b[2], b[0]
	}
	if b[1] > b[3] {
		b[1], b[3] = b[3], b[1]
	}
	return b
}

func (b BBox) MinLng() float64 { return b[0] }
func (b BBox) MinLat() float64 { return b[1] }
func (b BBox) MaxLng() float64 { return b[2] }
func (b BBox) MaxLat() float64 { return b[3] }

// Center returns the midpoint of the box.
func (b BBox) Center() LngLat {
	return LngLat{(b[0] + b[2]) / 2, (b[1] + b[3]) / 2}
}

// Contains reports whether the given point lies within the box, edges included.
func (b BBox) Contains(p LngLat) bool {
	return p.Lng() >= b[0] && p.Lng() <= b[2] && p.Lat() >= b[1] && p.Lat() <= b[3]
}
