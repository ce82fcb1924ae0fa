package simulation

import (
	"errors"
	"fmt"
)

var ErrInvalidPhysics error = errors.New("invalid physics")

// Physics parameterizes the kinematic car. Units are cells, seconds and degrees.
type Physics struct {
	Acceleration float64 `yaml:"acceleration"`
	BrakeDecel   float64 `yaml:"brakedecel"`
	MaxSpeed     float64 `yaml:"maxspeed"`
	MaxReverse   float64 `yaml:"maxreverse"`
	// TurnRate is in degrees per second.
	TurnRate float64 `yaml:"turnrate"`
	// Tick is the simulated time between frames.
	Tick       float64 `yaml:"tick"`
	ViewRadius int     `yaml:"viewradius"`
}

func DefaultPhysics() Physics {
	return Physics{
		Acceleration: 4,
		BrakeDecel:   6,
		MaxSpeed:     3,
		MaxReverse:   3,
		TurnRate:     360,
		Tick:         0.05,
		ViewRadius:   3,
	}
}

func (p Physics) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"acceleration", p.Acceleration},
		{"brake deceleration", p.BrakeDecel},
		{"max speed", p.MaxSpeed},
		{"max reverse", p.MaxReverse},
		{"turn rate", p.TurnRate},
		{"tick", p.Tick},
		{"view radius", float64(p.ViewRadius)},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidPhysics, f.name, f.value)
		}
	}
	return nil
}
