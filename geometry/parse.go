package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseError is returned when coordinate text cannot be decoded. Callers are expected to
// keep their last known-good position rather than proceed with a zero value.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrCoordinateArity is the cause when the text does not hold exactly two comma-separated values.
var ErrCoordinateArity error = errors.New("expected two comma-separated values")

// ParsePoint decodes continuous coordinates of the form "x,y", e.g. "3.5,10".
func ParsePoint(text string) (Point, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return Point{}, &ParseError{Input: text, Err: ErrCoordinateArity}
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, &ParseError{Input: text, Err: err}
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, &ParseError{Input: text, Err: err}
	}
	return Point{X: x, Y: y}, nil
}

// ParsePosition decodes a coordinate string and rounds it into its grid cell.
func ParsePosition(text string) (Position, error) {
	p, err := ParsePoint(text)
	if err != nil {
		return Position{}, err
	}
	return ToCell(p), nil
}
