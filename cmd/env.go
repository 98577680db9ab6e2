package main

import (
	"io"
	"time"

	"github.com/sells-group/listing-map/internal/address"
	"github.com/sells-group/listing-map/internal/config"
	"github.com/sells-group/listing-map/internal/mapview"
	"github.com/sells-group/listing-map/internal/pipeline"
	"github.com/sells-group/listing-map/pkg/geocode"
)

// newGeocoder builds the configured geocoding client.
func newGeocoder(c *config.Config) geocode.Client {
	gc := c.Geocode
	return geocode.NewClient(
		geocode.WithProvider(gc.Provider),
		geocode.WithBaseURL(gc.BaseURL),
		geocode.WithUserAgent(gc.UserAgent),
		geocode.WithGoogleAPIKey(gc.GoogleKey),
		geocode.WithTimeout(time.Duration(gc.TimeoutSecs)*time.Second),
		geocode.WithRateLimit(gc.RateLimit),
	)
}

// mapSettings converts the map section of the config.
func mapSettings(c *config.Config) pipeline.MapSettings {
	s := pipeline.DefaultMapSettings()
	m := c.Map
	s.Center = mapview.Coordinate{Lat: m.CenterLat, Lon: m.CenterLon}
	s.Zoom = m.Zoom
	s.MarkerRadius = m.MarkerRadius
	s.FillOpacity = m.FillOpacity
	s.Colors = m.Colors
	s.TileURL = m.TileURL
	s.Attribution = m.Attribution
	s.LegendCaption = m.LegendCaption
	return s
}

// newPipeline wires the pipeline from config. Offline mode swaps the
// geocoder for a deterministic stub.
func newPipeline(c *config.Config, offline bool, console io.Writer) *pipeline.Pipeline {
	settings := mapSettings(c)

	var gc geocode.Client
	if offline {
		gc = pipeline.NewStubGeocoder(settings.Center)
	} else {
		gc = newGeocoder(c)
	}

	return pipeline.New(
		address.New(c.Normalize.City, c.Normalize.Aliases),
		gc,
		pipeline.WithConsole(console),
		pipeline.WithMapSettings(settings),
	)
}
