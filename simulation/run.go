package simulation

// Driver steers a car once per tick; controller.Controller is one.
type Driver interface {
	Update(delta float64)
}

// Run alternates driver updates and car steps at the physics tick until the car reaches the
// finish, maxTicks have run, or observe returns false. observe sees the car after every step and
// may be nil. Returns the number of ticks run.
func Run(car *Car, driver Driver, maxTicks int, observe func(tick int) bool) int {
	dt := car.physics.Tick
	for tick := 1; tick <= maxTicks; tick++ {
		driver.Update(dt)
		car.Step(dt)
		if observe != nil && !observe(tick) {
			return tick
		}
		if car.Finished() {
			return tick
		}
	}
	return maxTicks
}
