package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jorgebc88/ProyectoFinalHaarCascadeApproach/counter"
	"github.com/spf13/viper"
)

// EnvPrefix is prefix of environment overrides, e.g. VEHICLECOUNTER_DATABASE_DSN
const EnvPrefix = "VEHICLECOUNTER"

// Config is the application configuration
type Config struct {
	Video    VideoConfig    `mapstructure:"video"`
	Counter  CounterConfig  `mapstructure:"counter"`
	Database DatabaseConfig `mapstructure:"database"`
	Report   ReportConfig   `mapstructure:"report"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
}

// VideoConfig describes frame source, detector and renderer
type VideoConfig struct {
	// File path or camera index
	Source  string `mapstructure:"source"`
	Cascade string `mapstructure:"cascade"`
	// Frames per second to pace the loop at. Zero means as fast as frames are decoded
	FPS          float64 `mapstructure:"fps"`
	ScaleFactor  float64 `mapstructure:"scale_factor"`
	MinNeighbors int     `mapstructure:"min_neighbors"`
	// Minimal detection size as a fraction of frame height
	MinSizeFraction float64 `mapstructure:"min_size_fraction"`
	// Annotated output video, empty disables writing
	Output string `mapstructure:"output"`
}

// CounterConfig mirrors counter.Config
type CounterConfig struct {
	LineFraction       float64       `mapstructure:"line_fraction"`
	ProximityWindow    float64       `mapstructure:"proximity_window"`
	DirectionThreshold float64       `mapstructure:"direction_threshold"`
	MaxIdle            time.Duration `mapstructure:"max_idle"`
	SizeWindow         float64       `mapstructure:"size_window"`
}

// DatabaseConfig - empty DSN disables persistence
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ReportConfig - empty URL disables the HTTP reporter
type ReportConfig struct {
	URL      string        `mapstructure:"url"`
	Category string        `mapstructure:"category"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// HTTPConfig - empty address disables the status API
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

// LogConfig - level is a logrus level name, format is "json" or "text"
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	engine := counter.DefaultConfig()

	v.SetDefault("video.source", "resources/video/MVI_3480.avi")
	v.SetDefault("video.cascade", "resources/lbpcascades/1_carCascade.xml")
	v.SetDefault("video.fps", 30.0)
	v.SetDefault("video.scale_factor", 1.1)
	v.SetDefault("video.min_neighbors", 2)
	v.SetDefault("video.min_size_fraction", 0.2)
	v.SetDefault("video.output", "")

	v.SetDefault("counter.line_fraction", engine.LineFraction)
	v.SetDefault("counter.proximity_window", engine.ProximityWindow)
	v.SetDefault("counter.direction_threshold", engine.DirectionThreshold)
	v.SetDefault("counter.max_idle", engine.MaxIdle)
	v.SetDefault("counter.size_window", engine.SizeWindow)

	v.SetDefault("database.dsn", "vehicles.db")

	v.SetDefault("report.url", "")
	v.SetDefault("report.category", "Car")
	v.SetDefault("report.timeout", 5*time.Second)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration. With empty path it looks for config.yaml in "." and "./config"
// and falls back to defaults when none is found; an explicit path must exist.
// Environment variables prefixed with EnvPrefix override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values which can not be defaulted
func (cfg *Config) Validate() error {
	if cfg.Video.Source == "" {
		return fmt.Errorf("video.source is required")
	}
	if cfg.Video.Cascade == "" {
		return fmt.Errorf("video.cascade is required")
	}
	if cfg.Video.ScaleFactor <= 1 {
		return fmt.Errorf("video.scale_factor must be greater than 1, got %v", cfg.Video.ScaleFactor)
	}
	if cfg.Video.MinSizeFraction < 0 || cfg.Video.MinSizeFraction >= 1 {
		return fmt.Errorf("video.min_size_fraction must be in [0, 1), got %v", cfg.Video.MinSizeFraction)
	}
	if err := cfg.Engine().Validate(); err != nil {
		return fmt.Errorf("counter: %w", err)
	}
	return nil
}

// Engine converts counter section to engine configuration
func (cfg *Config) Engine() counter.Config {
	return counter.Config{
		LineFraction:       cfg.Counter.LineFraction,
		ProximityWindow:    cfg.Counter.ProximityWindow,
		DirectionThreshold: cfg.Counter.DirectionThreshold,
		MaxIdle:            cfg.Counter.MaxIdle,
		SizeWindow:         cfg.Counter.SizeWindow,
	}
}
