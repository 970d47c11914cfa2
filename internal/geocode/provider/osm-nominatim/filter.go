// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

// FilterDuplicates returns the places with distinct simplified names, keeping the first
// occurrence of each name in the provider's order. The input slice is left untouched.
func FilterDuplicates(places []Place) []Place {
	seen := make(map[string]struct{}, len(places))
	filtered := make([]Place, 0, len(places))
	for _, place := range places {
		name := SimplifiedName(place)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		filtered = append(filtered, place)
	}
	return filtered
}
