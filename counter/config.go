package counter

import (
	"time"

	"github.com/pkg/errors"
)

// Config holds tunable constants of the engine
type Config struct {
	// Counting line ordinate as a fraction of frame height. Default 0.6
	LineFraction float64
	// Relative half-width of the proximity window anchored on the old centroid. Default 0.2 (±20%)
	ProximityWindow float64
	// Centroid x below this fraction of frame width classifies a new track as downward. Default 0.7
	DirectionThreshold float64
	// Tracks not seen for longer than this are evicted uncounted. Zero or negative disables eviction. Default 2s
	MaxIdle time.Duration
	// Relative tolerance of area change between consecutive detections. Zero disables the check. Default 0
	SizeWindow float64
}

// DefaultConfig returns default engine configuration
func DefaultConfig() Config {
	return Config{
		LineFraction:       0.6,
		ProximityWindow:    0.2,
		DirectionThreshold: 0.7,
		MaxIdle:            2 * time.Second,
		SizeWindow:         0,
	}
}

// Validate checks that every knob is in its meaningful range
func (cfg Config) Validate() error {
	if !(cfg.LineFraction > 0) || cfg.LineFraction > 1 {
		return errors.Errorf("line fraction must be in (0, 1], got %v", cfg.LineFraction)
	}
	if !(cfg.ProximityWindow > 0) || cfg.ProximityWindow >= 1 {
		return errors.Errorf("proximity window must be in (0, 1), got %v", cfg.ProximityWindow)
	}
	if cfg.DirectionThreshold < 0 || cfg.DirectionThreshold > 1 {
		return errors.Errorf("direction threshold must be in [0, 1], got %v", cfg.DirectionThreshold)
	}
	if cfg.SizeWindow < 0 {
		return errors.Errorf("size window must be non-negative, got %v", cfg.SizeWindow)
	}
	return nil
}
