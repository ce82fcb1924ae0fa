package controller

import (
	"autodrive/geometry"
	"autodrive/sensor"
)

// Vehicle is the simulated car the controller drives. The controller only reads its state and
// issues commands; it never owns the physics.
type Vehicle interface {
	// View is the tile window centered on the vehicle this tick.
	View() sensor.View
	// Position is the continuous position. An error means the reading is unusable this tick.
	Position() (geometry.Point, error)
	Orientation() geometry.Orientation
	// Velocity is signed along the heading: negative while reversing.
	Velocity() float64
	// Angle is the heading in degrees, counter-clockwise from east.
	Angle() float64

	AccelerateForward()
	AccelerateReverse()
	Brake()
	TurnLeft(delta float64)
	TurnRight(delta float64)
}
