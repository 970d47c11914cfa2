// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
)

var (
	paris = geocode.Result{
		ID:             88066702,
		Name:           "Paris, Île-de-France, France métropolitaine, France",
		SimplifiedName: "Paris, France",
		Location:       geocode.LngLat{2.35, 48.85},
		BBox:           geocode.BBox{2.3, 48.8, 2.4, 48.9},
	}
	france = geocode.Result{
		ID:             1,
		Name:           "France",
		SimplifiedName: "France",
		Location:       geocode.LngLat{1.88, 46.6},
		BBox:           geocode.BBox{-178.38, -50.21, 172.30, 51.30},
		IsRegion:       true,
	}
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		value          Value
		disableRegions bool
		want           error
	}{
		{"empty value is valid", Value{}, true, nil},
		{"free text is not selected", Typed("Paris"), false, ErrNotSelected},
		{"picked place is valid", Picked(paris), true, nil},
		{"picked region is valid when regions are allowed", Picked(france), false, nil},
		{"picked region is not specific when regions are disabled", Picked(france), true, ErrNotSpecific},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.value, tc.disableRegions)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLabel(t *testing.T) {
	t.Run("simplified label by default", func(t *testing.T) {
		assert.Equal(t, "Paris, France", Label(paris, false))
	})
	t.Run("full label on request", func(t *testing.T) {
		assert.Equal(t, "Paris, Île-de-France, France métropolitaine, France", Label(paris, true))
	})
}

func TestAreaFor(t *testing.T) {
	t.Run("regions are searched by name", func(t *testing.T) {
		area := AreaFor(france)
		assert.Equal(t, "France", area.Query)
		assert.Nil(t, area.Rect)
	})
	t.Run("places are searched by rectangle", func(t *testing.T) {
		area := AreaFor(paris)
		assert.Empty(t, area.Query)
		require.NotNil(t, area.Rect)
		assert.Equal(t, Rect{LatMin: 48.8, LatMax: 48.9, LngMin: 2.3, LngMax: 2.4}, *area.Rect)
	})
}

func TestCameraFor(t *testing.T) {
	t.Run("camera centers on the location and fits the bbox", func(t *testing.T) {
		camera := CameraFor(paris)
		assert.Equal(t, geocode.LngLat{2.35, 48.85}, camera.Center)
		assert.Equal(t, geocode.BBox{2.3, 48.8, 2.4, 48.9}, camera.Bounds)
		assert.True(t, camera.Bounds.Contains(camera.Center))
	})
}

func TestPicked(t *testing.T) {
	t.Run("picked values hold a copy", func(t *testing.T) {
		result := paris
		value := Picked(result)
		result.Name = "changed"
		require.NotNil(t, value.Result)
		assert.Equal(t, paris.Name, value.Result.Name)
		assert.False(t, value.IsEmpty())
	})
}
