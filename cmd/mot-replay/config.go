package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/LdDl/crowd-tracker/mot"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Estimator names accepted by --estimator
const (
	EstimatorConstantVelocity = "constant-velocity"
	EstimatorKalman2D         = "kalman2d"
)

// Log levels supported by --log-level
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Config is complete configuration of the replay tool
type Config struct {
	Tracker   mot.Config `mapstructure:"tracker"`
	Estimator string     `mapstructure:"estimator"`
	Log       LogConfig  `mapstructure:"log"`
}

// LogConfig controls diagnostics output
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format is text or json
	Format string `mapstructure:"format"`
}

// SetDefaults registers default values with viper
func SetDefaults(v *viper.Viper) {
	defaults := mot.DefaultConfig()
	v.SetDefault("tracker.max_distance", defaults.MaxDistance)
	v.SetDefault("tracker.max_missed", defaults.MaxMissed)
	v.SetDefault("tracker.trail_length", defaults.TrailLength)
	v.SetDefault("tracker.estimator.initial_uncertainty", defaults.Estimator.InitialUncertainty)
	v.SetDefault("tracker.estimator.process_noise", defaults.Estimator.ProcessNoise)
	v.SetDefault("tracker.estimator.measurement_noise", defaults.Estimator.MeasurementNoise)
	v.SetDefault("estimator", EstimatorConstantVelocity)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load unmarshals configuration from viper
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "can't decode configuration")
	}
	return &cfg, nil
}

// NewTracker builds tracker from configuration
func (cfg *Config) NewTracker(logger *slog.Logger) (*mot.Tracker, error) {
	var factory mot.EstimatorFactory
	switch strings.ToLower(cfg.Estimator) {
	case EstimatorConstantVelocity, "":
		factory = mot.NewConstantVelocityEstimator
	case EstimatorKalman2D:
		factory = mot.NewKalman2DEstimator
	default:
		return nil, errors.Wrapf(mot.ErrInvalidConfig, "unknown estimator %q", cfg.Estimator)
	}
	return mot.NewTrackerFromConfig(cfg.Tracker, mot.WithLogger(logger), mot.WithEstimator(factory))
}

// NewLogger creates structured logger writing to w
func (cfg LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseLevel converts a string log level to slog.Level.
// Defaults to INFO if the level string is not recognized.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
