package controller

import (
	"errors"
	"fmt"
)

// ErrUnsupportedManeuver is returned by maneuvers the controller names but cannot perform.
// It means "not handled", never "checked and refused".
var ErrUnsupportedManeuver error = errors.New("unsupported maneuver")

func unsupported(name string) error {
	return fmt.Errorf("%s: %w", name, ErrUnsupportedManeuver)
}

func (c *Controller) ThreePointTurn(delta float64) error {
	return unsupported("three-point turn")
}

func (c *Controller) UTurn(delta float64) error {
	return unsupported("u-turn")
}

func (c *Controller) ReverseOut(delta float64) error {
	return unsupported("reverse out")
}

// EscapeDeadEnd would get the vehicle out of a dead end, presumably via one of the turns above.
func (c *Controller) EscapeDeadEnd(delta float64) error {
	return unsupported("escape dead end")
}

// OkToTurnRight cannot answer yet; callers must not read the bool when err is non-nil.
func (c *Controller) OkToTurnRight() (bool, error) {
	return false, unsupported("ok to turn right")
}
