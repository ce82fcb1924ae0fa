package controller

import (
	"errors"
	"fmt"

	"autodrive/sensor"
)

var ErrInvalidConfig error = errors.New("invalid controller config")

// Config holds the controller's tuning. Speeds are in cells per second, radii in cells.
type Config struct {
	// CruiseSpeed is the reference speed every speed target is a fraction of.
	CruiseSpeed float64 `yaml:"cruisespeed"`
	// WallSensitivity is how many cells out a wall is considered present.
	WallSensitivity int `yaml:"wallsensitivity"`
	// ViewSquare is the radius of the tile window the vehicle reports.
	ViewSquare int `yaml:"viewsquare"`
	// DetectRadius is how far ahead a hazard starts an avoidance episode.
	DetectRadius int `yaml:"detectradius"`
	// ProbeRadius is the "can I keep going" range used while searching for a gap.
	ProbeRadius int `yaml:"proberadius"`
	// ScoreLength is the length of the ray scored for each candidate gap.
	ScoreLength int `yaml:"scorelength"`
	// RealignThreshold is the heading dead-band in degrees.
	RealignThreshold float64 `yaml:"realignthreshold"`
	// BrakeDecel is the deceleration the vehicle brakes with, used to time stops.
	BrakeDecel float64 `yaml:"brakedecel"`
}

func DefaultConfig() Config {
	return Config{
		CruiseSpeed:      3,
		WallSensitivity:  sensor.DEFAULT_WALL_SENSITIVITY,
		ViewSquare:       3,
		DetectRadius:     2,
		ProbeRadius:      1,
		ScoreLength:      3,
		RealignThreshold: 3,
		BrakeDecel:       6,
	}
}

// Validate checks that every scan fits inside ViewSquare and speeds are usable. Whether the
// vehicle really reports a window that large is up to the caller.
func (cfg Config) Validate() error {
	if cfg.CruiseSpeed <= 0 {
		return fmt.Errorf("%w: cruise speed %v must be positive", ErrInvalidConfig, cfg.CruiseSpeed)
	}
	if cfg.BrakeDecel <= 0 {
		return fmt.Errorf("%w: brake deceleration %v must be positive", ErrInvalidConfig, cfg.BrakeDecel)
	}
	if cfg.RealignThreshold < 0 {
		return fmt.Errorf("%w: realign threshold %v is negative", ErrInvalidConfig, cfg.RealignThreshold)
	}
	if cfg.ViewSquare < 1 {
		return fmt.Errorf("%w: view square %d must be at least 1", ErrInvalidConfig, cfg.ViewSquare)
	}

	radii := []struct {
		name  string
		value int
	}{
		{"wall sensitivity", cfg.WallSensitivity},
		{"detect radius", cfg.DetectRadius},
		{"probe radius", cfg.ProbeRadius},
		{"score length", cfg.ScoreLength},
	}
	for _, r := range radii {
		if r.value < 1 || r.value > cfg.ViewSquare {
			return fmt.Errorf("%w: %s %d must be within 1..%d", ErrInvalidConfig, r.name, r.value, cfg.ViewSquare)
		}
	}
	return nil
}

func (cfg Config) sensorConfig() sensor.Config {
	return sensor.Config{WallSensitivity: cfg.WallSensitivity}
}
