package controller

import (
	"testing"

	"autodrive/geometry"

	. "github.com/smartystreets/goconvey/convey"
)

var (
	openField = []string{
		"WWWWWWWWW",
		"WoooooooW",
		"WoooooooW",
		"WoooooooW",
		"WoooooooW",
		"WoooooooW",
		"WoooooooW",
		"WoooooooW",
		"WWWWWWWWW",
	}

	deadEndCorridor = []string{
		"WWWWW",
		"oooWW",
		"WWWWW",
	}

	corridor = []string{
		"WWWWWWW",
		"ooooooo",
		"WWWWWWW",
	}
)

func TestAcquire(t *testing.T) {
	Convey("Given a follower looking for a wall", t, func() {
		f := NewWallFollower(DefaultConfig())

		Convey("Away from walls it speeds up and turns left toward north", func() {
			v := newFake(openField, geometry.Point{X: 4, Y: 4}, geometry.SOUTH)
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldResemble, []string{"forward", "left"})
			So(f.lastTurn, ShouldEqual, geometry.LEFT)
			So(f.Following(), ShouldBeFalse)
		})

		Convey("Facing north it drives straight on", func() {
			v := newFake(openField, geometry.Point{X: 4, Y: 4}, geometry.NORTH)
			v.velocity = 2
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldBeEmpty)
		})

		Convey("With a wall to the north it turns right toward east", func() {
			v := newFake(openField, geometry.Point{X: 4, Y: 6}, geometry.NORTH)
			v.velocity = 2
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldResemble, []string{"right"})
			So(f.lastTurn, ShouldEqual, geometry.RIGHT)
		})

		Convey("Facing east with the wall on the left it is following", func() {
			v := newFake(openField, geometry.Point{X: 4, Y: 6}, geometry.EAST)
			v.velocity = 2
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldBeEmpty)
			So(f.State(), ShouldEqual, TRACKING_STRAIGHT)
			So(f.Following(), ShouldBeTrue)
		})
	})
}

func TestTracking(t *testing.T) {
	Convey("Given a follower tracking a wall", t, func() {
		f := NewWallFollower(DefaultConfig())
		f.state = TRACKING_STRAIGHT
		f.checkStateChange(geometry.EAST)

		Convey("A wall ahead starts a right turn that ends when the heading changes", func() {
			v := newFake(deadEndCorridor, geometry.Point{X: 1, Y: 1}, geometry.EAST)
			v.velocity = 2
			f.Update(v, v.sense(), dt)
			So(f.State(), ShouldEqual, TRACKING_TURN_RIGHT)
			So(f.lastTurn, ShouldEqual, geometry.RIGHT)

			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldResemble, []string{"right"})

			f.checkStateChange(geometry.EAST)
			So(f.State(), ShouldEqual, TRACKING_TURN_RIGHT)
			f.checkStateChange(geometry.SOUTH)
			So(f.State(), ShouldEqual, TRACKING_STRAIGHT)
		})

		Convey("Along a wall it holds half cruise", func() {
			v := newFake(corridor, geometry.Point{X: 1, Y: 1}, geometry.EAST)
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldResemble, []string{"forward"})
			So(f.State(), ShouldEqual, TRACKING_STRAIGHT)

			v.velocity = f.cfg.CruiseSpeed / 2
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldHaveLength, 1)
		})

		Convey("Losing the wall starts a left turn that ends when the wall is back", func() {
			v := newFake(openField, geometry.Point{X: 4, Y: 4}, geometry.EAST)
			f.Update(v, v.sense(), dt)
			So(f.State(), ShouldEqual, TRACKING_TURN_LEFT)
			So(v.commands, ShouldBeEmpty)

			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldResemble, []string{"left"})

			wall := newFake(corridor, geometry.Point{X: 1, Y: 1}, geometry.EAST)
			wall.velocity = 2
			f.Update(wall, wall.sense(), dt)
			So(f.State(), ShouldEqual, TRACKING_STRAIGHT)
			So(wall.commands, ShouldBeEmpty)
		})
	})
}

func TestRealign(t *testing.T) {
	Convey("Given a follower driving along a wall", t, func() {
		f := NewWallFollower(DefaultConfig())
		f.state = TRACKING_STRAIGHT
		v := newFake(corridor, geometry.Point{X: 1, Y: 1}, geometry.EAST)
		v.velocity = 2

		Convey("Without a previous turn there is nothing to correct", func() {
			v.angle = 10
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldBeEmpty)
		})

		Convey("After a left turn, drifting left past the dead-band steers right", func() {
			f.setLastTurn(geometry.LEFT)
			v.angle = 5
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldResemble, []string{"right"})
		})

		Convey("Drift inside the dead-band is left alone", func() {
			f.setLastTurn(geometry.LEFT)
			v.angle = 2
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldBeEmpty)
		})

		Convey("After a right turn, drifting right across zero steers left", func() {
			f.setLastTurn(geometry.RIGHT)
			v.angle = 355
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldResemble, []string{"left"})

			v.commands = nil
			v.angle = 358
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldBeEmpty)
		})

		Convey("Drift against the last turn is not corrected", func() {
			f.setLastTurn(geometry.RIGHT)
			v.angle = 10
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldBeEmpty)
		})

		Convey("Nothing is corrected mid-turn", func() {
			f.setLastTurn(geometry.LEFT)
			f.state = TRACKING_TURN_RIGHT
			v.angle = 40
			f.Update(v, v.sense(), dt)
			So(v.commands, ShouldResemble, []string{"right"})
		})
	})
}
