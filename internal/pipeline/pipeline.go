// Package pipeline turns a listing table into a price-colored map:
// clean → geocode → colorize → render. Each stage returns new slices and
// leaves its input untouched.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/listing-map/internal/address"
	"github.com/sells-group/listing-map/internal/colorscale"
	"github.com/sells-group/listing-map/internal/listing"
	"github.com/sells-group/listing-map/internal/mapview"
	"github.com/sells-group/listing-map/internal/resilience"
	"github.com/sells-group/listing-map/pkg/geocode"
)

// Listing is a row enriched by the pipeline stages.
type Listing struct {
	listing.Row
	CleanAddress string          `json:"clean_address"`
	Coord        *geocode.Result `json:"coord,omitempty"`
	GeocodeError string          `json:"geocode_error,omitempty"`
	Color        string          `json:"color,omitempty"`
}

// Located reports whether the listing has a coordinate pair.
func (l Listing) Located() bool {
	return l.Coord != nil && l.Coord.Matched
}

// PhaseResult records how long a stage took.
type PhaseResult struct {
	Name     string `json:"name"`
	Duration int64  `json:"duration_ms"`
}

// Stats counts listings by outcome.
type Stats struct {
	Total    int `json:"total"`
	Placed   int `json:"placed"`
	Missing  int `json:"missing"`
	Failures int `json:"failures"`
}

// Result is the output of Run.
type Result struct {
	RunID    string             `json:"run_id"`
	Listings []Listing          `json:"listings"`
	Phases   []PhaseResult      `json:"phases"`
	Stats    Stats              `json:"stats"`
	Scale    *colorscale.Linear `json:"-"`
	Map      *mapview.Map       `json:"-"`
}

// Save writes the rendered map to path.
func (r *Result) Save(path string) error {
	if r.Map == nil {
		return eris.New("pipeline: nothing rendered")
	}
	if err := r.Map.Save(path); err != nil {
		return eris.Wrap(err, "pipeline: save map")
	}
	return nil
}

// MapSettings controls the rendered map.
type MapSettings struct {
	Center        mapview.Coordinate
	Zoom          int
	MarkerRadius  float64
	FillOpacity   float64
	Colors        []string
	TileURL       string
	Attribution   string
	LegendCaption string
	Title         string
}

// DefaultMapSettings returns the Ottawa map layout.
func DefaultMapSettings() MapSettings {
	return MapSettings{
		Center:        mapview.DefaultCenter,
		Zoom:          mapview.DefaultZoom,
		MarkerRadius:  mapview.DefaultRadius,
		FillOpacity:   mapview.DefaultFillOpacity,
		Colors:        []string{colorscale.DefaultLow, colorscale.DefaultHigh},
		TileURL:       mapview.DefaultTileURL,
		Attribution:   mapview.DefaultAttribution,
		LegendCaption: "Sold Price",
		Title:         "Ottawa Real Estate",
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConsole sets where per-listing diagnostics are written. Defaults to stdout.
func WithConsole(w io.Writer) Option {
	return func(p *Pipeline) {
		p.console = w
	}
}

// WithMapSettings overrides the map layout.
func WithMapSettings(s MapSettings) Option {
	return func(p *Pipeline) {
		p.mapSettings = s
	}
}

// Pipeline runs the listing stages in order.
type Pipeline struct {
	normalizer  *address.Normalizer
	geocoder    geocode.Client
	console     io.Writer
	mapSettings MapSettings
}

// New creates a Pipeline.
func New(normalizer *address.Normalizer, geocoder geocode.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		normalizer:  normalizer,
		geocoder:    geocoder,
		console:     os.Stdout,
		mapSettings: DefaultMapSettings(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every stage over table. Rows are processed in input order,
// one geocoding request at a time.
func (p *Pipeline) Run(ctx context.Context, table *listing.Table) (*Result, error) {
	result := &Result{RunID: uuid.New().String()}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Info("pipeline: starting", zap.Int("rows", len(table.Rows)))

	track := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		duration := time.Since(start).Milliseconds()
		result.Phases = append(result.Phases, PhaseResult{Name: name, Duration: duration})
		if err != nil {
			log.Error("pipeline: phase failed", zap.String("phase", name), zap.Int64("duration_ms", duration), zap.Error(err))
			return err
		}
		log.Debug("pipeline: phase complete", zap.String("phase", name), zap.Int64("duration_ms", duration))
		return nil
	}

	var listings []Listing
	_ = track("clean", func() error {
		listings = p.Clean(table.Rows)
		return nil
	})

	if err := track("geocode", func() error {
		var err error
		listings, err = p.Geocode(ctx, listings)
		return err
	}); err != nil {
		return nil, err
	}

	if err := track("colorize", func() error {
		var err error
		listings, result.Scale, err = p.Colorize(listings)
		return err
	}); err != nil {
		return nil, err
	}

	if err := track("render", func() error {
		var err error
		result.Map, result.Stats, err = p.Render(listings, result.Scale)
		return err
	}); err != nil {
		return nil, err
	}

	result.Listings = listings
	log.Info("pipeline: complete",
		zap.Int("total", result.Stats.Total),
		zap.Int("placed", result.Stats.Placed),
		zap.Int("missing", result.Stats.Missing),
		zap.Int("failures", result.Stats.Failures),
	)
	return result, nil
}

// Clean normalizes every row's address.
func (p *Pipeline) Clean(rows []listing.Row) []Listing {
	out := make([]Listing, len(rows))
	for i, row := range rows {
		out[i] = Listing{
			Row:          row,
			CleanAddress: p.normalizer.Clean(row.Address),
		}
	}
	return out
}

// Geocode resolves each listing's clean address. Lookups that find nothing
// or fail leave the coordinate absent; only context cancellation aborts.
func (p *Pipeline) Geocode(ctx context.Context, in []Listing) ([]Listing, error) {
	out := make([]Listing, len(in))
	for i, l := range in {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: geocode")
		}

		res, err := p.geocoder.Geocode(ctx, l.CleanAddress)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, eris.Wrap(ctxErr, "pipeline: geocode")
			}
			zap.L().Warn("pipeline: geocode failed",
				zap.Int("line", l.Line),
				zap.String("address", l.CleanAddress),
				zap.String("kind", string(resilience.Classify(err))),
				zap.Error(err),
			)
			l.GeocodeError = err.Error()
			res = nil
		}
		if res != nil && !res.Matched {
			zap.L().Debug("pipeline: no geocode match", zap.Int("line", l.Line), zap.String("address", l.CleanAddress))
			res = nil
		}
		l.Coord = res
		out[i] = l
	}
	return out, nil
}

// Colorize assigns each listing a color from a scale spanning every listing's
// price, located or not. An empty input yields a nil scale.
func (p *Pipeline) Colorize(in []Listing) ([]Listing, *colorscale.Linear, error) {
	if len(in) == 0 {
		return []Listing{}, nil, nil
	}

	prices := make([]float64, len(in))
	for i, l := range in {
		prices[i] = l.SoldPrice
	}
	scale, err := colorscale.New(prices, p.mapSettings.Colors...)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: build color scale")
	}

	out := make([]Listing, len(in))
	for i, l := range in {
		l.Color = scale.Color(l.SoldPrice)
		out[i] = l
	}
	return out, scale, nil
}

// Render places one marker per located listing and writes one diagnostic line
// per listing without coordinates. The legend is attached last.
func (p *Pipeline) Render(listings []Listing, scale *colorscale.Linear) (*mapview.Map, Stats, error) {
	s := p.mapSettings
	m := mapview.New(s.Center, s.Zoom,
		mapview.WithTiles(s.TileURL, s.Attribution),
		mapview.WithTitle(s.Title),
	)

	stats := Stats{Total: len(listings)}
	for _, l := range listings {
		if l.GeocodeError != "" {
			stats.Failures++
		}
		if !l.Located() {
			stats.Missing++
			if _, err := fmt.Fprintf(p.console, "Missing coordinates for property: %s\n", l.CleanAddress); err != nil {
				return nil, stats, eris.Wrap(err, "pipeline: write diagnostic")
			}
			continue
		}

		m.AddCircleMarker(mapview.CircleMarker{
			Lat:         l.Coord.Latitude,
			Lon:         l.Coord.Longitude,
			Radius:      s.MarkerRadius,
			Color:       l.Color,
			FillColor:   l.Color,
			FillOpacity: s.FillOpacity,
			Popup:       PopupText(l),
		})
		stats.Placed++
	}

	if scale != nil {
		m.SetLegend(mapview.Legend{
			Caption: s.LegendCaption,
			Min:     scale.Min(),
			Max:     scale.Max(),
			Stops:   scale.Stops(),
		})
	}
	return m, stats, nil
}

// PopupText is the marker label: formatted price, newline, clean address.
func PopupText(l Listing) string {
	return fmt.Sprintf("Price: %s\n%s", mapview.FormatPrice(l.SoldPrice), l.CleanAddress)
}
