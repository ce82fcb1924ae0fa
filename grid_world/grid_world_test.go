package grid_world

import (
	"errors"
	"testing"

	"autodrive/geometry"
	"autodrive/sensor"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConvert(t *testing.T) {
	Convey("When converting the built in tracks", t, func() {
		for name, rows := range Tracks {
			track, err := Convert(rows)
			So(err, ShouldBeNil)
			So(track.Width, ShouldEqual, len(rows[0]))
			So(track.Height, ShouldEqual, len(rows))
			So(track.StartCells(), ShouldNotBeEmpty)
			So(track.FinishCells(), ShouldNotBeEmpty)
			So(track.HazardCells(), ShouldNotBeEmpty)

			named, err := Named(name)
			So(err, ShouldBeNil)
			So(named, ShouldResemble, track)
		}
	})

	Convey("No built in finish cell sits on the map edge", t, func() {
		for _, rows := range Tracks {
			track, err := Convert(rows)
			So(err, ShouldBeNil)
			for _, p := range track.FinishCells() {
				So(p.X, ShouldBeBetween, 0, track.Width-1)
				So(p.Y, ShouldBeBetween, 0, track.Height-1)
			}
		}
	})

	Convey("When converting a small track", t, func() {
		track, err := Convert([]string{
			"W+",
			"-x",
		})
		So(err, ShouldBeNil)

		Convey("The bottom left printed cell is (0,0)", func() {
			So(track.At(geometry.Position{X: 0, Y: 0}), ShouldEqual, START)
			So(track.At(geometry.Position{X: 1, Y: 0}), ShouldEqual, HAZARD)
			So(track.At(geometry.Position{X: 0, Y: 1}), ShouldEqual, WALL)
			So(track.At(geometry.Position{X: 1, Y: 1}), ShouldEqual, FINISH)
		})

		Convey("Off map cells read as wall", func() {
			So(track.At(geometry.Position{X: -1, Y: 0}), ShouldEqual, WALL)
			So(track.Kind(geometry.Position{X: 2, Y: 0}), ShouldEqual, sensor.WALL)
		})

		Convey("Start and finish are road to the sensor", func() {
			So(track.Kind(geometry.Position{X: 0, Y: 0}), ShouldEqual, sensor.EMPTY)
			So(track.Kind(geometry.Position{X: 1, Y: 1}), ShouldEqual, sensor.EMPTY)
			So(track.Kind(geometry.Position{X: 1, Y: 0}), ShouldEqual, sensor.HAZARD)
		})
	})

	Convey("When converting bad input", t, func() {
		_, err := Convert(nil)
		So(errors.Is(err, ErrEmptyTrack), ShouldBeTrue)

		_, err = Convert([]string{"WWW", "Wo"})
		So(errors.Is(err, ErrRaggedTrack), ShouldBeTrue)

		_, err = Convert([]string{"W?W"})
		So(errors.Is(err, ErrUnknownCell), ShouldBeTrue)

		_, err = Named("monaco")
		So(errors.Is(err, ErrUnknownName), ShouldBeTrue)
	})
}

func TestView(t *testing.T) {
	Convey("Given a view window near the corner of the map", t, func() {
		track, err := Convert([]string{
			"WWWW",
			"Wxoo",
			"Wooo",
		})
		So(err, ShouldBeNil)

		view := track.View(geometry.Position{X: 1, Y: 0}, 2)

		Convey("It holds exactly the window", func() {
			So(len(view), ShouldEqual, 25)
			_, ok := view.Lookup(geometry.Position{X: 4, Y: 0})
			So(ok, ShouldBeFalse)
		})

		Convey("Cells beyond the map are walls", func() {
			kind, ok := view.Lookup(geometry.Position{X: 1, Y: -2})
			So(ok, ShouldBeTrue)
			So(kind, ShouldEqual, sensor.WALL)
		})

		Convey("Cells on the map carry their kind", func() {
			kind, _ := view.Lookup(geometry.Position{X: 1, Y: 1})
			So(kind, ShouldEqual, sensor.HAZARD)
			kind, _ = view.Lookup(geometry.Position{X: 2, Y: 0})
			So(kind, ShouldEqual, sensor.EMPTY)
		})
	})
}

func TestRev(t *testing.T) {
	Convey("Rev counts down", t, func() {
		So(Rev(3), ShouldResemble, []int{2, 1, 0})
		So(Rev(0), ShouldBeEmpty)
	})
}
