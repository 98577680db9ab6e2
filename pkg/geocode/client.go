// Package geocode resolves free-text addresses to coordinates via Nominatim
// (default) or the Google Geocoding API.
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Provider names accepted by NewClient.
const (
	ProviderNominatim = "nominatim"
	ProviderGoogle    = "google"
)

// Client geocodes a single address.
type Client interface {
	// Geocode resolves addr. A lookup that finds nothing returns a Result with
	// Matched=false and a nil error; errors are reserved for failed requests.
	Geocode(ctx context.Context, addr string) (*Result, error)
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Source      string  `json:"source"`
	DisplayName string  `json:"display_name,omitempty"`
	Matched     bool    `json:"matched"`
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithProvider selects the backend: "nominatim" or "google".
func WithProvider(name string) Option {
	return func(g *geocoder) {
		g.provider = name
	}
}

// WithBaseURL overrides the Nominatim endpoint.
func WithBaseURL(u string) Option {
	return func(g *geocoder) {
		if u != "" {
			g.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent sent to Nominatim.
func WithUserAgent(ua string) Option {
	return func(g *geocoder) {
		if ua != "" {
			g.userAgent = ua
		}
	}
}

// WithGoogleAPIKey sets the key used by the Google provider.
func WithGoogleAPIKey(key string) Option {
	return func(g *geocoder) {
		g.googleKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *geocoder) {
		if d > 0 {
			g.httpClient.Timeout = d
		}
	}
}

// WithRateLimit paces requests to at most rps per second. Zero or less
// disables pacing.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		if rps <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type geocoder struct {
	httpClient *http.Client
	provider   string
	baseURL    string
	userAgent  string
	googleKey  string
	limiter    *rate.Limiter
}

// NewClient creates a new geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		provider:   ProviderNominatim,
		baseURL:    nominatimBaseURL,
		userAgent:  defaultUserAgent,
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode resolves addr with the configured provider.
func (g *geocoder) Geocode(ctx context.Context, addr string) (*Result, error) {
	if g.provider == ProviderGoogle {
		return g.geocodeGoogle(ctx, addr)
	}
	return g.geocodeNominatim(ctx, addr)
}
