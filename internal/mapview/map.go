// Package mapview renders listings as a standalone Leaflet HTML map.
package mapview

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Defaults used when a Map or marker leaves a field unset.
const (
	DefaultZoom        = 12
	DefaultRadius      = 8
	DefaultFillOpacity = 0.6
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "&copy; OpenStreetMap contributors"
)

// DefaultCenter is downtown Ottawa.
var DefaultCenter = Coordinate{Lat: 45.4215, Lon: -75.6972}

//go:embed map.html.tmpl
var mapTemplateText string

var mapTemplate = template.Must(template.New("map").Parse(mapTemplateText))

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var printer = message.NewPrinter(language.English)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CircleMarker is a fixed-radius circle placed at a coordinate.
type CircleMarker struct {
	Lat         float64
	Lon         float64
	Radius      float64
	Color       string
	FillColor   string
	FillOpacity float64
	Popup       string
}

// Legend describes the color bar overlay.
type Legend struct {
	Caption string
	Min     float64
	Max     float64
	Stops   []string
}

// Option configures a Map.
type Option func(*Map)

// WithTiles sets the tile layer URL template and its attribution.
func WithTiles(url, attribution string) Option {
	return func(m *Map) {
		if url != "" {
			m.tileURL = url
			m.attribution = attribution
		}
	}
}

// WithTitle sets the HTML document title.
func WithTitle(title string) Option {
	return func(m *Map) {
		m.title = title
	}
}

// Map accumulates markers and a legend and renders them as HTML.
type Map struct {
	center      Coordinate
	zoom        int
	tileURL     string
	attribution string
	title       string
	markers     []CircleMarker
	legend      *Legend
}

// New creates an empty map centered on center.
func New(center Coordinate, zoom int, opts ...Option) *Map {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	m := &Map{
		center:      center,
		zoom:        zoom,
		tileURL:     DefaultTileURL,
		attribution: DefaultAttribution,
		title:       "Listings",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddCircleMarker adds a marker. Zero radius and opacity take the defaults;
// an empty fill color reuses the stroke color.
func (m *Map) AddCircleMarker(cm CircleMarker) {
	if cm.Radius <= 0 {
		cm.Radius = DefaultRadius
	}
	if cm.FillOpacity <= 0 {
		cm.FillOpacity = DefaultFillOpacity
	}
	if cm.FillColor == "" {
		cm.FillColor = cm.Color
	}
	m.markers = append(m.markers, cm)
}

// SetLegend attaches the color legend overlay.
func (m *Map) SetLegend(l Legend) {
	m.legend = &l
}

// Markers returns a copy of the markers added so far.
func (m *Map) Markers() []CircleMarker {
	out := make([]CircleMarker, len(m.markers))
	copy(out, m.markers)
	return out
}

// Legend returns the attached legend, or nil.
func (m *Map) Legend() *Legend {
	return m.legend
}

type legendView struct {
	Caption  string
	Gradient template.CSS
	Ticks    []string
}

type mapView struct {
	Title       string
	Center      Coordinate
	Zoom        int
	TileURL     string
	Attribution string
	Features    template.JS
	Legend      *legendView
}

// Render writes the map as a standalone HTML document.
func (m *Map) Render(w io.Writer) error {
	features, err := m.featureCollection()
	if err != nil {
		return err
	}

	view := mapView{
		Title:       m.title,
		Center:      m.center,
		Zoom:        m.zoom,
		TileURL:     m.tileURL,
		Attribution: m.attribution,
		// json.Marshal escapes <, > and &, so the payload cannot close the script tag.
		Features: template.JS(features),
	}
	if m.legend != nil {
		lv, err := newLegendView(*m.legend)
		if err != nil {
			return err
		}
		view.Legend = lv
	}

	if err := mapTemplate.Execute(w, view); err != nil {
		return eris.Wrap(err, "mapview: execute template")
	}
	return nil
}

// Save renders the map to path. The document is written to a temporary file
// next to path and renamed into place, so an existing file is replaced only
// by a complete document.
func (m *Map) Save(path string) error {
	var buf bytes.Buffer
	if err := m.Render(&buf); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrap(err, "mapview: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "mapview: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "mapview: close temp file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return eris.Wrap(err, "mapview: chmod temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrap(err, "mapview: rename into place")
	}
	return nil
}

// featureCollection encodes the markers as a GeoJSON FeatureCollection.
func (m *Map) featureCollection() ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(m.markers))}
	for _, cm := range m.markers {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{cm.Lon, cm.Lat}),
			Properties: map[string]interface{}{
				"radius":      cm.Radius,
				"color":       cm.Color,
				"fillColor":   cm.FillColor,
				"fillOpacity": cm.FillOpacity,
				"popup":       cm.Popup,
			},
		})
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "mapview: encode features")
	}
	return data, nil
}

func newLegendView(l Legend) (*legendView, error) {
	if len(l.Stops) < 2 {
		return nil, eris.Errorf("mapview: legend needs at least two stops, got %d", len(l.Stops))
	}
	for _, s := range l.Stops {
		if !hexColorRegexp.MatchString(s) {
			return nil, eris.Errorf("mapview: legend stop %q is not #rrggbb", s)
		}
	}

	const tickCount = 5
	ticks := make([]string, 0, tickCount)
	for i := 0; i < tickCount; i++ {
		v := l.Min + (l.Max-l.Min)*float64(i)/float64(tickCount-1)
		ticks = append(ticks, FormatTick(v))
		if l.Max == l.Min {
			break
		}
	}

	return &legendView{
		Caption:  l.Caption,
		Gradient: template.CSS("linear-gradient(to right, " + strings.Join(l.Stops, ", ") + ")"),
		Ticks:    ticks,
	}, nil
}

// FormatPrice renders v as dollars with thousands separators and cents,
// e.g. "$450,000.00".
func FormatPrice(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// FormatTick renders v as whole dollars with thousands separators.
func FormatTick(v float64) string {
	return printer.Sprintf("$%.0f", v)
}
