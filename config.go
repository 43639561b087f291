package osm2initial

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds every tunable of the pipeline
type Config struct {
	ExcludedHighways   []string `mapstructure:"excluded_highways"`
	LaneWidth          float64  `mapstructure:"lane_width"`
	DeadEndLength      float64  `mapstructure:"dead_end_length"`
	AnomalyDepth       int      `mapstructure:"anomaly_depth"`
	ShortRoadThreshold float64  `mapstructure:"short_road_threshold"`
	RingClosure        string   `mapstructure:"ring_closure"`
	Workers            int      `mapstructure:"workers"`
}

// DefaultConfig returns configuration used when nothing is provided
func DefaultConfig() Config {
	excluded := make([]string, len(defaultExcludedHighways))
	copy(excluded, defaultExcludedHighways)
	return Config{
		ExcludedHighways:   excluded,
		LaneWidth:          defaultLaneWidth,
		DeadEndLength:      defaultDeadEndLength,
		AnomalyDepth:       defaultAnomalyDepth,
		ShortRoadThreshold: defaultShortRoadThreshold,
		RingClosure:        RING_CLOSURE_STRAIGHT.String(),
		Workers:            4,
	}
}

// LoadConfig reads configuration file (YAML, JSON, TOML - by extension). Empty path means defaults only.
// Every key could be overridden by environment variable with OSM2INITIAL_ prefix, e.g. OSM2INITIAL_LANE_WIDTH.
func LoadConfig(path string) (Config, error) {
	defaults := DefaultConfig()
	v := viper.New()
	v.SetDefault("excluded_highways", defaults.ExcludedHighways)
	v.SetDefault("lane_width", defaults.LaneWidth)
	v.SetDefault("dead_end_length", defaults.DeadEndLength)
	v.SetDefault("anomaly_depth", defaults.AnomalyDepth)
	v.SetDefault("short_road_threshold", defaults.ShortRoadThreshold)
	v.SetDefault("ring_closure", defaults.RingClosure)
	v.SetDefault("workers", defaults.Workers)

	v.SetEnvPrefix("OSM2INITIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "Can't read config '%s'", path)
		}
	}
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "Can't decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values ranges
func (cfg Config) Validate() error {
	if cfg.LaneWidth <= 0 {
		return errors.Errorf("lane_width must be positive, got %f", cfg.LaneWidth)
	}
	if cfg.DeadEndLength <= 0 {
		return errors.Errorf("dead_end_length must be positive, got %f", cfg.DeadEndLength)
	}
	if cfg.AnomalyDepth <= 0 {
		return errors.Errorf("anomaly_depth must be positive, got %d", cfg.AnomalyDepth)
	}
	if cfg.ShortRoadThreshold < 0 {
		return errors.Errorf("short_road_threshold must be non-negative, got %f", cfg.ShortRoadThreshold)
	}
	if cfg.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if _, err := ParseRingClosure(cfg.RingClosure); err != nil {
		return errors.Wrap(err, "Bad ring_closure")
	}
	return nil
}
