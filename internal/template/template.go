// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package template

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/spreak"
	"github.com/vorlif/spreak/localize"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/config"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/location"
)

// Selection is the data available to the selection template.
type Selection struct {
	Label          string
	Name           string
	SimplifiedName string
	Lat            float64
	Lng            float64
	IsRegion       bool
	BBox           geocode.BBox
	Area           location.Area
	Camera         location.Camera
}

// NewSelection collects the template data for a picked result.
func NewSelection(result geocode.Result, full bool) Selection {
	return Selection{
		Label:          location.Label(result, full),
		Name:           result.Name,
		SimplifiedName: result.SimplifiedName,
		Lat:            result.Location.Lat(),
		Lng:            result.Location.Lng(),
		IsRegion:       result.IsRegion,
		BBox:           result.BBox,
		Area:           location.AreaFor(result),
		Camera:         location.CameraFor(result),
	}
}

type Templates struct {
	Selection *template.Template
	localizer *spreak.Localizer
}

var i18nVars = map[string]localize.MsgID{
	"selected":    "Selected",
	"location":    "Location",
	"coordinates": "Coordinates",
	"searcharea":  "Search area",
	"region":      "region",
	"place":       "place",
}

func New(conf *config.Config, loc *spreak.Localizer) (*Templates, error) {
	tpls := new(Templates)
	tpls.localizer = loc

	tpl, err := template.New("selection").Funcs(tpls.templateFuncMap()).Parse(conf.Templates.Selection)
	if err != nil {
		return tpls, fmt.Errorf("failed to parse selection template: %w", err)
	}
	tpls.Selection = tpl

	return tpls, nil
}

// RenderSelection writes the selection template for data to w.
func (t *Templates) RenderSelection(w io.Writer, data Selection) error {
	if err := t.Selection.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render selection template: %w", err)
	}
	return nil
}

func (t *Templates) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"floatFormat": floatFormat,
		"loc":         t.loc,
		"pad":         pad,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

func (t *Templates) loc(val string) string {
	if raw, ok := i18nVars[strings.ToLower(val)]; ok {
		return t.localizer.Get(raw)
	}
	return val
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

// pad fills val with spaces to width terminal cells.
func pad(width int, val string) string {
	return runewidth.FillRight(val, width)
}
