package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 shared by concurrent episode workers and readers without locks.
// The bits live in an atomic.Uint64; every operation is a load or a compare-and-swap on them.
// The zero value holds 0.0 and is ready to use.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 encapsulates a float64 for atomic operations.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// Atomically read the float64.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(af.bits.Load())
}

// AtomicAdd makes a single attempt to add addend. If another writer changed the value in between,
// nothing is written and succeeded is false, so the caller can decide to drop or retry the update.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// AtomicAccumulate adds addend, retrying until no other writer interferes. Counters that must not
// lose updates, like visit counts, use this.
func (af *AtomicFloat64) AtomicAccumulate(addend float64) (newVal float64) {
	for {
		var ok bool
		if newVal, ok = af.AtomicAdd(addend); ok {
			return
		}
	}
}

// AtomicMax raises the value to candidate if candidate is larger and returns the resulting value.
func (af *AtomicFloat64) AtomicMax(candidate float64) float64 {
	for {
		old := af.bits.Load()
		current := math.Float64frombits(old)
		if candidate <= current {
			return current
		}
		if af.bits.CompareAndSwap(old, math.Float64bits(candidate)) {
			return candidate
		}
	}
}

// AtomicSet sets the float64 unconditionally.
func (af *AtomicFloat64) AtomicSet(val float64) {
	af.bits.Store(math.Float64bits(val))
}
