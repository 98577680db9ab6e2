// Package colorscale maps prices onto a linear color gradient.
package colorscale

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rotisserie/eris"
)

// Default gradient stops: light red to dark red.
const (
	DefaultLow  = "#ffcccc"
	DefaultHigh = "#ff3333"
)

// Linear is a piecewise-linear gradient over [min, max]. Stops are evenly
// spaced across the range; values outside it are clamped.
type Linear struct {
	min, max float64
	stops    []colorful.Color
	hex      []string
}

// New builds a scale bounded by the smallest and largest of values. With no
// stops given it uses DefaultLow and DefaultHigh.
func New(values []float64, stops ...string) (*Linear, error) {
	if len(values) == 0 {
		return nil, eris.New("colorscale: no values to scale")
	}
	if len(stops) == 0 {
		stops = []string{DefaultLow, DefaultHigh}
	}
	if len(stops) < 2 {
		return nil, eris.Errorf("colorscale: need at least two stops, got %d", len(stops))
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			return nil, eris.New("colorscale: NaN value")
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return NewRange(lo, hi, stops...)
}

// NewRange builds a scale over an explicit [lo, hi] range.
func NewRange(lo, hi float64, stops ...string) (*Linear, error) {
	if hi < lo {
		return nil, eris.Errorf("colorscale: max %v below min %v", hi, lo)
	}
	l := &Linear{min: lo, max: hi}
	for _, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, eris.Wrapf(err, "colorscale: parse stop %q", s)
		}
		l.stops = append(l.stops, c)
		l.hex = append(l.hex, c.Hex())
	}
	if len(l.stops) < 2 {
		return nil, eris.Errorf("colorscale: need at least two stops, got %d", len(l.stops))
	}
	return l, nil
}

// Min returns the lower bound of the scale.
func (l *Linear) Min() float64 { return l.min }

// Max returns the upper bound of the scale.
func (l *Linear) Max() float64 { return l.max }

// Stops returns the gradient stops as #rrggbb strings.
func (l *Linear) Stops() []string {
	out := make([]string, len(l.hex))
	copy(out, l.hex)
	return out
}

// Position returns where v falls in the range, clamped to [0, 1]. A
// degenerate range maps everything to 0.
func (l *Linear) Position(v float64) float64 {
	if l.max == l.min || math.IsNaN(v) {
		return 0
	}
	t := (v - l.min) / (l.max - l.min)
	return math.Max(0, math.Min(1, t))
}

// Color returns the #rrggbb color for v.
func (l *Linear) Color(v float64) string {
	t := l.Position(v)
	segments := len(l.stops) - 1
	scaled := t * float64(segments)
	i := int(scaled)
	if i >= segments {
		return l.hex[segments]
	}
	return l.stops[i].BlendRgb(l.stops[i+1], scaled-float64(i)).Clamped().Hex()
}
