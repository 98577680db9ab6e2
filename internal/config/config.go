package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input     InputConfig     `yaml:"input" mapstructure:"input"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Map       MapConfig       `yaml:"map" mapstructure:"map"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the listing file.
type InputConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// OutputConfig locates the rendered map.
type OutputConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// NormalizeConfig configures address cleaning.
type NormalizeConfig struct {
	City    string   `yaml:"city" mapstructure:"city"`
	Aliases []string `yaml:"aliases" mapstructure:"aliases"`
}

// GeocodeConfig selects and configures the geocoding provider.
type GeocodeConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	GoogleKey   string  `yaml:"google_key" mapstructure:"google_key"`
}

// MapConfig configures the rendered map.
type MapConfig struct {
	CenterLat     float64  `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLon     float64  `yaml:"center_lon" mapstructure:"center_lon"`
	Zoom          int      `yaml:"zoom" mapstructure:"zoom"`
	MarkerRadius  float64  `yaml:"marker_radius" mapstructure:"marker_radius"`
	FillOpacity   float64  `yaml:"fill_opacity" mapstructure:"fill_opacity"`
	Colors        []string `yaml:"colors" mapstructure:"colors"`
	TileURL       string   `yaml:"tile_url" mapstructure:"tile_url"`
	Attribution   string   `yaml:"attribution" mapstructure:"attribution"`
	LegendCaption string   `yaml:"legend_caption" mapstructure:"legend_caption"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultAliases lists the suburbs folded into the canonical city.
var DefaultAliases = []string{
	"Carp", "Stittsville", "Gloucester", "Manotick", "Nepean", "Greely", "North Gower",
	"Kanata", "Metcalfe", "Dunrobin", "Vars", "Kinburn",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LISTINGMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.path", "real_estate_dataset.csv")
	v.SetDefault("input.delimiter", "|")
	v.SetDefault("output.path", "ottawa_real_estate_colored_map_with_shades.html")
	v.SetDefault("normalize.city", "Ottawa")
	v.SetDefault("normalize.aliases", DefaultAliases)
	v.SetDefault("geocode.provider", "nominatim")
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "ottawa_real_estate")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.rate_limit", 0)
	v.SetDefault("map.center_lat", 45.4215)
	v.SetDefault("map.center_lon", -75.6972)
	v.SetDefault("map.zoom", 12)
	v.SetDefault("map.marker_radius", 8)
	v.SetDefault("map.fill_opacity", 0.6)
	v.SetDefault("map.colors", []string{"#ffcccc", "#ff3333"})
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", "&copy; OpenStreetMap contributors")
	v.SetDefault("map.legend_caption", "Sold Price")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if len([]rune(c.Input.Delimiter)) != 1 {
		return eris.Errorf("config: input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	switch c.Geocode.Provider {
	case "nominatim":
	case "google":
		if c.Geocode.GoogleKey == "" {
			return eris.New("config: geocode.google_key is required for the google provider")
		}
	default:
		return eris.Errorf("config: unknown geocode.provider %q", c.Geocode.Provider)
	}
	if len(c.Map.Colors) < 2 {
		return eris.New("config: map.colors needs at least two stops")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
