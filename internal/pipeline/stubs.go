package pipeline

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/sells-group/listing-map/internal/mapview"
	"github.com/sells-group/listing-map/pkg/geocode"
)

// Compile-time interface check.
var _ geocode.Client = (*StubGeocoder)(nil)

// StubGeocoder implements geocode.Client without network access. Each
// address maps to a stable point near Center; blank addresses do not match.
type StubGeocoder struct {
	Center mapview.Coordinate
	// Spread is the maximum offset in degrees from Center.
	Spread float64
}

// NewStubGeocoder returns a StubGeocoder scattering points around center.
func NewStubGeocoder(center mapview.Coordinate) *StubGeocoder {
	return &StubGeocoder{Center: center, Spread: 0.15}
}

// Geocode implements geocode.Client.
func (s *StubGeocoder) Geocode(ctx context.Context, addr string) (*geocode.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(addr) == "" {
		return &geocode.Result{Matched: false, Source: "stub"}, nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(addr))
	sum := h.Sum64()

	// Two independent offsets in [-1, 1] from the hash halves.
	dy := float64(sum>>32)/float64(1<<32)*2 - 1
	dx := float64(sum&0xffffffff)/float64(1<<32)*2 - 1

	return &geocode.Result{
		Latitude:    s.Center.Lat + dy*s.Spread,
		Longitude:   s.Center.Lon + dx*s.Spread,
		Source:      "stub",
		DisplayName: addr,
		Matched:     true,
	}, nil
}
