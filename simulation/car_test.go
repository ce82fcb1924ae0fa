package simulation

import (
	"errors"
	"testing"

	"autodrive/geometry"
	"autodrive/grid_world"

	. "github.com/smartystreets/goconvey/convey"
)

func openTrack() *grid_world.Track {
	track, err := grid_world.Convert([]string{
		"WWWWWWW",
		"Wooooo+",
		"Wooxoo+",
		"Wooooo+",
		"WWWWWWW",
	})
	if err != nil {
		panic(err)
	}
	return track
}

type countingDriver struct {
	updates int
}

func (d *countingDriver) Update(delta float64) {
	d.updates++
}

func TestNewCar(t *testing.T) {
	Convey("When placing a car", t, func() {
		track := openTrack()

		Convey("A start inside a wall is refused", func() {
			_, err := NewCar(track, geometry.Point{X: 0, Y: 1}, geometry.EAST, DefaultPhysics())
			So(errors.Is(err, ErrBlockedStart), ShouldBeTrue)
		})

		Convey("Bad physics are refused", func() {
			physics := DefaultPhysics()
			physics.Tick = 0
			_, err := NewCar(track, geometry.Point{X: 1, Y: 1}, geometry.EAST, physics)
			So(errors.Is(err, ErrInvalidPhysics), ShouldBeTrue)
		})

		Convey("The heading sets the angle", func() {
			car, err := NewCar(track, geometry.Point{X: 1, Y: 1}, geometry.SOUTH, DefaultPhysics())
			So(err, ShouldBeNil)
			So(car.Angle(), ShouldEqual, geometry.SOUTH_DEGREE)
			So(car.Orientation(), ShouldEqual, geometry.SOUTH)
		})
	})
}

func TestThrottle(t *testing.T) {
	Convey("Given a car at rest", t, func() {
		car, err := NewCar(openTrack(), geometry.Point{X: 1, Y: 1}, geometry.EAST, DefaultPhysics())
		So(err, ShouldBeNil)

		Convey("Acceleration is capped at the max speed", func() {
			for i := 0; i < 100; i++ {
				car.AccelerateForward()
			}
			So(car.Velocity(), ShouldEqual, car.physics.MaxSpeed)
		})

		Convey("Reversing makes velocity negative", func() {
			car.AccelerateReverse()
			So(car.Velocity(), ShouldBeLessThan, 0)
		})

		Convey("Braking stops at zero from either direction", func() {
			car.SetVelocity(0.5)
			for i := 0; i < 5; i++ {
				car.Brake()
				So(car.Velocity(), ShouldBeGreaterThanOrEqualTo, 0)
			}
			So(car.Velocity(), ShouldEqual, 0)

			car.SetVelocity(-0.5)
			for i := 0; i < 5; i++ {
				car.Brake()
				So(car.Velocity(), ShouldBeLessThanOrEqualTo, 0)
			}
			So(car.Velocity(), ShouldEqual, 0)
		})
	})
}

func TestTurning(t *testing.T) {
	Convey("Given a car facing east", t, func() {
		car, err := NewCar(openTrack(), geometry.Point{X: 1, Y: 1}, geometry.EAST, DefaultPhysics())
		So(err, ShouldBeNil)
		dt := car.physics.Tick

		Convey("A partial left turn changes the angle but not the orientation", func() {
			car.TurnLeft(dt)
			So(car.Angle(), ShouldAlmostEqual, 18, 1e-6)
			So(car.Orientation(), ShouldEqual, geometry.EAST)
		})

		Convey("Five left turns complete a quarter turn to north", func() {
			for i := 0; i < 5; i++ {
				car.TurnLeft(dt)
			}
			So(car.Orientation(), ShouldEqual, geometry.NORTH)
			So(car.Angle(), ShouldEqual, geometry.NORTH_DEGREE)
		})

		Convey("Right turns wrap through zero to south", func() {
			car.TurnRight(dt)
			So(car.Angle(), ShouldAlmostEqual, 342, 1e-6)
			for i := 0; i < 4; i++ {
				car.TurnRight(dt)
			}
			So(car.Orientation(), ShouldEqual, geometry.SOUTH)
			So(car.Angle(), ShouldEqual, geometry.SOUTH_DEGREE)
		})

		Convey("A large sweep stops at the first cardinal", func() {
			car.TurnLeft(1)
			So(car.Orientation(), ShouldEqual, geometry.NORTH)
		})

		Convey("Turning back from a partial turn snaps onto the start cardinal", func() {
			car.TurnLeft(dt)
			car.TurnRight(dt)
			So(car.Angle(), ShouldEqual, geometry.EAST_DEGREE)
			So(car.Orientation(), ShouldEqual, geometry.EAST)
		})
	})
}

func TestStep(t *testing.T) {
	Convey("Given a moving car", t, func() {
		car, err := NewCar(openTrack(), geometry.Point{X: 1, Y: 2}, geometry.EAST, DefaultPhysics())
		So(err, ShouldBeNil)
		car.SetVelocity(2)

		Convey("It moves along its heading", func() {
			car.Step(0.1)
			p, err := car.Position()
			So(err, ShouldBeNil)
			So(p.X, ShouldAlmostEqual, 1.2, 1e-9)
			So(p.Y, ShouldAlmostEqual, 2, 1e-9)
		})

		Convey("Crossing a hazard is counted", func() {
			for car.Cell().X < 4 {
				car.Step(0.1)
			}
			So(car.HazardTicks(), ShouldBeGreaterThan, 0)
		})

		Convey("Driving into a wall stops it in place", func() {
			car.SetVelocity(-2)
			car.Step(0.5)
			So(car.Collisions(), ShouldEqual, 1)
			So(car.Velocity(), ShouldEqual, 0)
			So(car.Cell(), ShouldResemble, geometry.Position{X: 1, Y: 2})
		})

		Convey("Reaching the finish ends a run", func() {
			car.SetVelocity(3)
			driver := &countingDriver{}
			ticks := Run(car, driver, 1000, nil)
			So(car.Finished(), ShouldBeTrue)
			So(ticks, ShouldBeLessThan, 1000)
			So(driver.updates, ShouldEqual, ticks)
		})
	})

	Convey("Run stops when the observer says so", t, func() {
		car, err := NewCar(openTrack(), geometry.Point{X: 1, Y: 1}, geometry.EAST, DefaultPhysics())
		So(err, ShouldBeNil)
		ticks := Run(car, &countingDriver{}, 100, func(tick int) bool { return tick < 7 })
		So(ticks, ShouldEqual, 7)
		So(car.Ticks(), ShouldEqual, 7)
	})
}
