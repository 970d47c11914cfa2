// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import "strings"

// Places having one of these address keys are specific localities, not regions.
// https://nominatim.org/release-docs/latest/api/Output/#addressdetails
var specificPlaceKeys = []string{
	"municipality",
	"city",
	"town",
	"village",
	"city_district",
	"district",
	"borough",
	"suburb",
	"subdivision",
}

// localityKeys are tried in order to find the locality part of a simplified name.
var localityKeys = []string{
	"city",
	"town",
	"village",
	"municipality",
	"borough",
	"suburb",
	"city_district",
	"district",
	"subdivision",
	"hamlet",
}

// regionKeys are used for the simplified name when the place has no locality.
var regionKeys = []string{
	"state",
	"province",
	"region",
	"state_district",
	"county",
}

const nameSeparator = ", "

// Simplify returns the short label of a place and whether it is a region.
func Simplify(place Place) (simplifiedName string, isRegion bool) {
	return SimplifiedName(place), IsRegion(place)
}

// IsRegion reports whether the place is an administrative region, i.e. its address has
// none of the specific place keys. Only the presence of a key counts.
func IsRegion(place Place) bool {
	for _, key := range specificPlaceKeys {
		if _, ok := place.Address[key]; ok {
			return false
		}
	}
	return true
}

// SimplifiedName builds a short label such as "Paris, France" from the address details,
// falling back to the display name.
func SimplifiedName(place Place) string {
	area := firstOf(place.Address, localityKeys)
	if area == "" {
		area = firstOf(place.Address, regionKeys)
	}
	country := strings.TrimSpace(place.Address["country"])

	if area == "" && country == "" {
		first, _, _ := strings.Cut(place.DisplayName, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
		return strings.TrimSpace(place.DisplayName)
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{strings.TrimSpace(place.Name), area, country} {
		if part == "" || containsFold(parts, part) {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, nameSeparator)
}

func firstOf(address map[string]string, keys []string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(address[key]); val != "" {
			return val
		}
	}
	return ""
}

func containsFold(list []string, val string) bool {
	for _, item := range list {
		if strings.EqualFold(item, val) {
			return true
		}
	}
	return false
}
