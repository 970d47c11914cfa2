// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/thevivek0408/couchsurfing-geosearch/internal/config"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/geocode/provider/opencage"
	nominatim "github.com/thevivek0408/couchsurfing-geosearch/internal/geocode/provider/osm-nominatim"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/http"
	"github.com/thevivek0408/couchsurfing-geosearch/internal/logger"
)

// selectGeocodeProvider builds the searcher chain for the configured provider: the provider
// itself, instrumented and wrapped by the result cache.
func (s *Service) selectGeocodeProvider(conf *config.Config, log *logger.Logger, lang language.Tag,
) (*geocode.CachedSearcher, error) {
	client := http.New(log, http.WithUserAgent(conf.Geocoder.UserAgent))
	if s.transport != nil {
		client.Transport = s.transport
	}
	var provider geocode.Searcher

	switch strings.ToLower(conf.Geocoder.Provider) {
	case config.ProviderNominatim:
		provider = nominatim.New(client, lang,
			nominatim.WithEndpoint(conf.Geocoder.Endpoint),
			nominatim.WithTimeout(conf.Geocoder.Timeout),
			nominatim.WithLimit(conf.Geocoder.Limit),
			nominatim.WithRateLimit(conf.Geocoder.RateLimit),
		)
	case config.ProviderOpenCage:
		if conf.Geocoder.APIKey == "" {
			return nil, opencage.ErrMissingAPIKey
		}
		provider = opencage.New(client, lang, conf.Geocoder.APIKey,
			opencage.WithTimeout(conf.Geocoder.Timeout),
			opencage.WithLimit(conf.Geocoder.Limit),
		)
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.Geocoder.Provider)
	}

	instrumented := geocode.NewInstrumentedSearcher(provider, s.metrics)
	return geocode.NewCachedSearcher(instrumented, conf.Cache.HitTTL, conf.Cache.MissTTL).WithMetrics(s.metrics), nil
}
