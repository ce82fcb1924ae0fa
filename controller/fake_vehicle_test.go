package controller

import (
	"autodrive/geometry"
	"autodrive/grid_world"
	"autodrive/sensor"
)

// fakeVehicle is a vehicle frozen in place that records the commands it receives.
type fakeVehicle struct {
	view        sensor.View
	point       geometry.Point
	posErr      error
	orientation geometry.Orientation
	velocity    float64
	angle       float64
	commands    []string
}

func newFake(rows []string, at geometry.Point, facing geometry.Orientation) *fakeVehicle {
	track, err := grid_world.Convert(rows)
	if err != nil {
		panic(err)
	}
	return &fakeVehicle{
		view:        track.View(geometry.ToCell(at), 3),
		point:       at,
		orientation: facing,
		angle:       geometry.Degrees(facing),
	}
}

func (f *fakeVehicle) View() sensor.View { return f.view }
func (f *fakeVehicle) Position() (geometry.Point, error) { return f.point, f.posErr }
func (f *fakeVehicle) Orientation() geometry.Orientation { return f.orientation }
func (f *fakeVehicle) Velocity() float64 { return f.velocity }
func (f *fakeVehicle) Angle() float64 { return f.angle }
func (f *fakeVehicle) AccelerateForward() { f.commands = append(f.commands, "forward") }
func (f *fakeVehicle) AccelerateReverse() { f.commands = append(f.commands, "reverse") }
func (f *fakeVehicle) Brake() { f.commands = append(f.commands, "brake") }
func (f *fakeVehicle) TurnLeft(delta float64) { f.commands = append(f.commands, "left") }
func (f *fakeVehicle) TurnRight(delta float64) { f.commands = append(f.commands, "right") }

func (f *fakeVehicle) sense() *sensor.Sensor {
	return sensor.New(f.view, geometry.ToCell(f.point), f.orientation, sensor.Config{})
}

// recorder collects controller events.
type recorder struct {
	events []Event
}

func (r *recorder) observe(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() (kinds []EventKind) {
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return
}

func (r *recorder) transitions() (states []HazardState) {
	for _, ev := range r.events {
		if ev.Kind == EventTransition {
			states = append(states, ev.To)
		}
	}
	return
}
