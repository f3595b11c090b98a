// Package config loads application configuration from file and environment.
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
	Inputs Inputs       `yaml:"inputs" mapstructure:"inputs"`
	Filter FilterConfig `yaml:"filter" mapstructure:"filter"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// Inputs locates the two static input datasets and the metric definitions.
type Inputs struct {
	MetricsPath     string `yaml:"metrics_path" mapstructure:"metrics_path"`
	MetricDefsPath  string `yaml:"metric_defs_path" mapstructure:"metric_defs_path"`
	BoundariesPath  string `yaml:"boundaries_path" mapstructure:"boundaries_path"`
	BoundaryCodeCol string `yaml:"boundary_code_col" mapstructure:"boundary_code_col"`
	BoundaryNameCol string `yaml:"boundary_name_col" mapstructure:"boundary_name_col"`
	SourceSRID      int    `yaml:"source_srid" mapstructure:"source_srid"`
}

// FilterConfig holds the region allow-list.
type FilterConfig struct {
	Regions []string `yaml:"regions" mapstructure:"regions"`
}

// MapConfig configures the composed map widget.
type MapConfig struct {
	Title        string  `yaml:"title" mapstructure:"title"`
	CenterLat    float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLng    float64 `yaml:"center_lng" mapstructure:"center_lng"`
	Zoom         int     `yaml:"zoom" mapstructure:"zoom"`
	DefaultLayer string  `yaml:"default_layer" mapstructure:"default_layer"`
}

// RenderConfig configures HTML output.
type RenderConfig struct {
	OutPath string `yaml:"out_path" mapstructure:"out_path"`
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

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CHOROMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("inputs.metrics_path", "data/metrics.csv")
	v.SetDefault("inputs.metric_defs_path", "data/metrics.yaml")
	v.SetDefault("inputs.boundaries_path", "data/postcode_areas.shp")
	v.SetDefault("inputs.boundary_code_col", "pc_area")
	v.SetDefault("inputs.boundary_name_col", "name")
	v.SetDefault("inputs.source_srid", 27700)
	v.SetDefault("map.title", "Regional business metrics")
	v.SetDefault("map.zoom", 6)
	v.SetDefault("map.center_lat", 56.5)
	v.SetDefault("map.center_lng", -4.0)
	v.SetDefault("render.out_path", "map.html")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	return &cfg, nil
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
