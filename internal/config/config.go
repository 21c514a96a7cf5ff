// Package config loads the application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Region      RegionConfig      `yaml:"region" mapstructure:"region"`
	Grid        GridConfig        `yaml:"grid" mapstructure:"grid"`
	Criteria    []CriterionConfig `yaml:"criteria" mapstructure:"criteria"`
	Query       QueryConfig       `yaml:"query" mapstructure:"query"`
	Orientation OrientationConfig `yaml:"orientation" mapstructure:"orientation"`
	Bands       BandsConfig       `yaml:"bands" mapstructure:"bands"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Recommend   RecommendConfig   `yaml:"recommend" mapstructure:"recommend"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// RegionConfig pins the deployment region. Everything downstream (grid
// bounds, orientation plausibility bands) derives from configuration, never
// from constants in code.
type RegionConfig struct {
	Name   string  `yaml:"name" mapstructure:"name"`
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MinLon float64 `yaml:"min_lon" mapstructure:"min_lon"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MaxLon float64 `yaml:"max_lon" mapstructure:"max_lon"`
}

// Bounds returns the region box as a model.Bounds.
func (r RegionConfig) Bounds() model.Bounds {
	return model.Bounds{MinLat: r.MinLat, MinLon: r.MinLon, MaxLat: r.MaxLat, MaxLon: r.MaxLon}
}

// GridConfig sets the shared lattice resolution.
type GridConfig struct {
	NLat int `yaml:"n_lat" mapstructure:"n_lat"`
	NLon int `yaml:"n_lon" mapstructure:"n_lon"`
}

// CriterionConfig describes one measurement dimension: its reference
// guideline, weight in the composite index, and direction of goodness.
type CriterionConfig struct {
	Name      string         `yaml:"name" mapstructure:"name"`
	Units     string         `yaml:"units" mapstructure:"units"`
	Guideline float64        `yaml:"guideline" mapstructure:"guideline"`
	Weight    float64        `yaml:"weight" mapstructure:"weight"`
	Direction string         `yaml:"direction" mapstructure:"direction"`
	URL       string         `yaml:"url" mapstructure:"url"`
	Sources   []SourceConfig `yaml:"sources" mapstructure:"sources"`
	Synth     SynthConfig    `yaml:"synth" mapstructure:"synth"`
}

// ParsedDirection returns the criterion's Direction.
func (c CriterionConfig) ParsedDirection() (model.Direction, error) {
	return model.ParseDirection(c.Direction)
}

// SourceConfig is one point emission source of a synthetic field.
type SourceConfig struct {
	Lat      float64 `yaml:"lat" mapstructure:"lat"`
	Lon      float64 `yaml:"lon" mapstructure:"lon"`
	Strength float64 `yaml:"strength" mapstructure:"strength"`
	Radius   float64 `yaml:"radius" mapstructure:"radius"`
}

// SynthConfig tunes synthetic field generation for a criterion.
type SynthConfig struct {
	Background float64 `yaml:"background" mapstructure:"background"`
	NoiseStd   float64 `yaml:"noise_std" mapstructure:"noise_std"`
	Seasonal   float64 `yaml:"seasonal" mapstructure:"seasonal"`
}

// QueryConfig tunes the area query engine.
type QueryConfig struct {
	BufferDegrees    float64 `yaml:"buffer_degrees" mapstructure:"buffer_degrees"`
	ReferenceDataset string  `yaml:"reference_dataset" mapstructure:"reference_dataset"`
}

// OrientationConfig holds the plausibility bands for the magnitude heuristic
// and the probe parameters for empirical confirmation.
type OrientationConfig struct {
	LatMin       float64 `yaml:"lat_min" mapstructure:"lat_min"`
	LatMax       float64 `yaml:"lat_max" mapstructure:"lat_max"`
	LonMin       float64 `yaml:"lon_min" mapstructure:"lon_min"`
	LonMax       float64 `yaml:"lon_max" mapstructure:"lon_max"`
	ProbeSection int     `yaml:"probe_section" mapstructure:"probe_section"`
	ProbeHits    int     `yaml:"probe_hits" mapstructure:"probe_hits"`
}

// BandsConfig holds the two threshold tables. Both are on the severity scale;
// status labels for suitability scores are looked up at 100-score.
type BandsConfig struct {
	Index  model.Bands `yaml:"index" mapstructure:"index"`
	Status model.Bands `yaml:"status" mapstructure:"status"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures dataset downloads.
type FetchConfig struct {
	DataDir     string  `yaml:"data_dir" mapstructure:"data_dir"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ServerConfig configures the HTTP query service.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// RecommendConfig points at an optional catalog override file.
type RecommendConfig struct {
	CatalogPath string `yaml:"catalog_path" mapstructure:"catalog_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Criterion returns the configuration for a named criterion, or nil.
func (c *Config) Criterion(name string) *CriterionConfig {
	for i := range c.Criteria {
		if c.Criteria[i].Name == name {
			return &c.Criteria[i]
		}
	}
	return nil
}

// Validate checks the invariants the engine depends on.
func (c *Config) Validate() error {
	if !c.Region.Bounds().Valid() {
		return eris.Errorf("config: region %q has an empty extent", c.Region.Name)
	}
	if c.Grid.NLat < 2 || c.Grid.NLon < 2 {
		return eris.New("config: grid resolution must be at least 2x2")
	}
	if len(c.Criteria) == 0 {
		return eris.New("config: at least one criterion is required")
	}
	for _, crit := range c.Criteria {
		if crit.Guideline <= 0 {
			return eris.Errorf("config: criterion %q needs a positive guideline", crit.Name)
		}
		if crit.Weight < 0 {
			return eris.Errorf("config: criterion %q has a negative weight", crit.Name)
		}
		if _, err := crit.ParsedDirection(); err != nil {
			return eris.Wrapf(err, "config: criterion %q", crit.Name)
		}
	}
	if c.Query.BufferDegrees < 0 {
		return eris.New("config: query.buffer_degrees must be non-negative")
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SUITABILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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
	if len(cfg.Bands.Index.Steps) == 0 {
		cfg.Bands.Index = model.DefaultIndexBands()
	}
	if len(cfg.Bands.Status.Steps) == 0 {
		cfg.Bands.Status = model.DefaultStatusBands()
	}
	if len(cfg.Criteria) == 0 {
		cfg.Criteria = DefaultCriteria()
	}
	if cfg.Query.ReferenceDataset == "" && len(cfg.Criteria) > 0 {
		cfg.Query.ReferenceDataset = cfg.Criteria[0].Name
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Sulaimani deployment region: NW 35°42'52"N 45°09'21"E to SE 35°25'38"N 45°33'07"E.
	v.SetDefault("region.name", "sulaimani")
	v.SetDefault("region.min_lat", 35.427222)
	v.SetDefault("region.min_lon", 45.155833)
	v.SetDefault("region.max_lat", 35.714444)
	v.SetDefault("region.max_lon", 45.551944)

	v.SetDefault("grid.n_lat", 40)
	v.SetDefault("grid.n_lon", 40)

	// ~100m expressed in degrees.
	v.SetDefault("query.buffer_degrees", 0.001)

	// Plausibility bands roughly a degree wider than the region so polygons
	// drawn slightly outside coverage still classify correctly.
	v.SetDefault("orientation.lat_min", 34.4)
	v.SetDefault("orientation.lat_max", 36.8)
	v.SetDefault("orientation.lon_min", 44.1)
	v.SetDefault("orientation.lon_max", 46.6)
	v.SetDefault("orientation.probe_section", 100)
	v.SetDefault("orientation.probe_hits", 3)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "suitability.db")

	v.SetDefault("fetch.data_dir", "data")
	v.SetDefault("fetch.user_agent", "suitability-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 5)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// DefaultCriteria is the six-pollutant air quality family with WHO guideline
// values. O3 is a total-column measurement where depletion, not excess, is
// the hazard, hence higher_is_better.
func DefaultCriteria() []CriterionConfig {
	return []CriterionConfig{
		{
			Name: "no2", Units: "µg/m³", Guideline: 40, Weight: 0.25, Direction: "lower_is_better",
			Sources: []SourceConfig{
				{Lat: 35.5608, Lon: 45.4347, Strength: 60, Radius: 0.05},
				{Lat: 35.5520, Lon: 45.4180, Strength: 45, Radius: 0.03},
				{Lat: 35.5650, Lon: 45.4500, Strength: 35, Radius: 0.02},
			},
			Synth: SynthConfig{Background: 5, NoiseStd: 3, Seasonal: 0.3},
		},
		{
			Name: "so2", Units: "µg/m³", Guideline: 20, Weight: 0.20, Direction: "lower_is_better",
			Sources: []SourceConfig{
				{Lat: 35.5400, Lon: 45.4100, Strength: 30, Radius: 0.04},
				{Lat: 35.5200, Lon: 45.4000, Strength: 25, Radius: 0.03},
				{Lat: 35.5800, Lon: 45.4600, Strength: 15, Radius: 0.02},
			},
			Synth: SynthConfig{Background: 5, NoiseStd: 3, Seasonal: 0.3},
		},
		{
			Name: "co", Units: "mg/m³", Guideline: 10, Weight: 0.15, Direction: "lower_is_better",
			Sources: []SourceConfig{
				{Lat: 35.5608, Lon: 45.4347, Strength: 2.5, Radius: 0.03},
				{Lat: 35.5500, Lon: 45.4200, Strength: 2.0, Radius: 0.02},
				{Lat: 35.5700, Lon: 45.4500, Strength: 1.5, Radius: 0.02},
			},
			Synth: SynthConfig{Background: 0.3, NoiseStd: 0.2, Seasonal: 0.3},
		},
		{
			Name: "hcho", Units: "µg/m³", Guideline: 30, Weight: 0.15, Direction: "lower_is_better",
			Sources: []SourceConfig{
				{Lat: 35.5450, Lon: 45.4150, Strength: 8, Radius: 0.03},
				{Lat: 35.5650, Lon: 45.4400, Strength: 6, Radius: 0.02},
				{Lat: 35.5350, Lon: 45.4250, Strength: 4, Radius: 0.02},
			},
			Synth: SynthConfig{Background: 5, NoiseStd: 3, Seasonal: 0.3},
		},
		{
			Name: "aer_ai", Units: "AI", Guideline: 2, Weight: 0.15, Direction: "lower_is_better",
			Sources: []SourceConfig{
				{Lat: 35.5500, Lon: 45.4000, Strength: 2.5, Radius: 0.10},
				{Lat: 35.5300, Lon: 45.4100, Strength: 2.0, Radius: 0.08},
				{Lat: 35.5700, Lon: 45.4500, Strength: 1.5, Radius: 0.06},
			},
			Synth: SynthConfig{Background: 0.5, NoiseStd: 0.3, Seasonal: 0.3},
		},
		{
			Name: "o3", Units: "DU", Guideline: 300, Weight: 0.10, Direction: "higher_is_better",
			Sources: []SourceConfig{
				{Lat: 35.5400, Lon: 45.4600, Strength: 320, Radius: 0.08},
				{Lat: 35.5800, Lon: 45.4100, Strength: 310, Radius: 0.06},
				{Lat: 35.5300, Lon: 45.4200, Strength: 280, Radius: 0.04},
			},
			Synth: SynthConfig{Background: 260, NoiseStd: 15, Seasonal: 0.3},
		},
	}
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
