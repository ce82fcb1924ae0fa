package atomic_float

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// race runs fn in numWriters goroutines released at the same moment.
func race(numWriters int, fn func()) {
	start := make(chan struct{})
	wg := sync.WaitGroup{}
	wg.Add(numWriters)
	for i := 0; i < numWriters; i++ {
		go func() {
			defer wg.Done()
			<-start
			fn()
		}()
	}

	// Wait for goroutines to begin
	time.Sleep(time.Millisecond * 10)
	close(start)
	wg.Wait()
}

func TestAtomicAdd(t *testing.T) {
	Convey("When AtomicAccumulate is called", t, func() {
		numOps := 3000
		numWriters := 200

		Convey("When multiple writers add to the float value concurrently", func() {
			af := NewAtomicFloat64(0)
			race(numWriters, func() {
				for i := 0; i < numOps; i++ {
					af.AtomicAccumulate(1.0)
				}
			})
			So(af.AtomicRead(), ShouldEqual, float64(numOps*numWriters))
		})

		Convey("When multiple writers increment and decrement the float value concurrently", func() {
			af := &AtomicFloat64{}
			race(numWriters, func() {
				for i := 0; i < numOps; i++ {
					af.AtomicAccumulate(1.0)
					af.AtomicAccumulate(-1.0)
				}
			})
			So(af.AtomicRead(), ShouldEqual, 0.0)
		})
	})

	Convey("When AtomicAdd is called without contention it succeeds", t, func() {
		af := NewAtomicFloat64(1.5)
		val, ok := af.AtomicAdd(2)
		So(ok, ShouldBeTrue)
		So(val, ShouldEqual, 3.5)
		So(af.AtomicRead(), ShouldEqual, 3.5)
	})
}

func TestAtomicMax(t *testing.T) {
	Convey("When many writers race to raise the maximum", t, func() {
		af := NewAtomicFloat64(-1)
		var next = make(chan float64, 1000)
		for i := 0; i < 1000; i++ {
			next <- float64(i)
		}
		close(next)

		race(50, func() {
			for v := range next {
				af.AtomicMax(v)
			}
		})
		So(af.AtomicRead(), ShouldEqual, 999.0)

		Convey("A smaller candidate leaves it alone", func() {
			So(af.AtomicMax(3), ShouldEqual, 999.0)
			af.AtomicSet(2)
			So(af.AtomicRead(), ShouldEqual, 2.0)
		})
	})
}
