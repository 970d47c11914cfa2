// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter renders search state and candidate lists for the terminal.
package presenter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"
	"github.com/vorlif/spreak/localize"
	"golang.org/x/text/language"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/location"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/query"
)

const (
	// DefaultMaxLabelWidth is the column width at which labels are truncated
	DefaultMaxLabelWidth = 60

	coordPrecision = 4
	columnGap      = "  "
	ellipsis       = "…"
)

var validationMessages = map[error]localize.MsgID{
	location.ErrNotSelected: "Select a location from the list",
	location.ErrNotSpecific: "Choose a more specific location",
}

type Presenter struct {
	localizer     *spreak.Localizer
	humanizer     *humanize.Humanizer
	maxLabelWidth int
	now           func() time.Time
}

func New(loc *spreak.Localizer, lang language.Tag) (*Presenter, error) {
	collection, err := humanize.New(humanize.WithLocale(de.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer: %w", err)
	}
	return &Presenter{
		localizer:     loc,
		humanizer:     collection.CreateHumanizer(lang),
		maxLabelWidth: DefaultMaxLabelWidth,
		now:           time.Now,
	}, nil
}

// Status returns a one line summary of the search state.
func (p *Presenter) Status(state query.State) string {
	switch {
	case state.Loading:
		return p.localizer.Get("Searching…")
	case state.HasErr:
		msg := strings.TrimSpace(state.Err)
		if msg == "" {
			return p.localizer.Get("Location search failed")
		}
		return p.localizer.Getf("Location search failed: %s", msg)
	case state.HasResults && len(state.Results) == 0:
		return p.localizer.Get("No locations found")
	case state.HasResults:
		return p.localizer.NGetf("%d location found at %s", "%d locations found at %s", len(state.Results),
			len(state.Results), p.humanizer.FormatTime(p.now(), humanize.TimeFormat))
	default:
		return p.localizer.Get("Type a place name to search")
	}
}

// ValidationError returns the localized message of a location validation error.
func (p *Presenter) ValidationError(err error) string {
	for target, msg := range validationMessages {
		if errors.Is(err, target) {
			return p.localizer.Get(msg)
		}
	}
	return err.Error()
}

// Table writes the candidates as an aligned table. Column widths are measured in
// terminal cells, so wide characters line up.
func (p *Presenter) Table(w io.Writer, candidates []location.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	header := []string{"#", p.localizer.Get("Location"), p.localizer.Get("Type"), p.localizer.Get("Coordinates")}
	rows := make([][]string, 0, len(candidates))
	for i, candidate := range candidates {
		kind := p.localizer.Get("place")
		if candidate.Result.IsRegion {
			kind = p.localizer.Get("region")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			runewidth.Truncate(candidate.Label, p.maxLabelWidth, ellipsis),
			kind,
			floatFormat(candidate.Result.Location.Lat(), coordPrecision) + ", " +
				floatFormat(candidate.Result.Location.Lng(), coordPrecision),
		})
	}

	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, row := range append([][]string{header}, rows...) {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, columnGap)); err != nil {
			return fmt.Errorf("failed to write candidate table: %w", err)
		}
	}
	return nil
}

// floatFormat cuts val to precision decimals without rounding.
func floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Trunc(val*pow)/pow)
}
