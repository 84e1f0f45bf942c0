package geom

import "fmt"

// RotationAngle is a quarter-turn rotation in counter-clockwise degrees, the
// same convention imaging.Rotate uses.
type RotationAngle int

const (
	RotationNone       RotationAngle = 0
	RotationRight      RotationAngle = 90
	RotationUpsideDown RotationAngle = 180
	RotationLeft       RotationAngle = 270
)

// ParseRotationAngle accepts only 0, 90, 180 and 270.
func ParseRotationAngle(degrees int) (RotationAngle, error) {
	switch a := RotationAngle(degrees); a {
	case RotationNone, RotationRight, RotationUpsideDown, RotationLeft:
		return a, nil
	default:
		return RotationNone, fmt.Errorf("%w: rotation %d is not a quarter turn", ErrInvalidArgument, degrees)
	}
}

// Rotate adds delta degrees and wraps the result into [0, 360). delta must be
// a multiple of 90.
func (a RotationAngle) Rotate(delta int) (RotationAngle, error) {
	if delta%90 != 0 {
		return a, fmt.Errorf("%w: rotation delta %d is not a multiple of 90", ErrInvalidArgument, delta)
	}
	if int(a)%90 != 0 {
		return a, fmt.Errorf("%w: rotation %d is not a quarter turn", ErrInvalidArgument, int(a))
	}
	d := (int(a) + delta) % 360
	if d < 0 {
		d += 360
	}
	return RotationAngle(d), nil
}

func (a RotationAngle) Clockwise() RotationAngle {
	r, _ := a.Rotate(-90)
	return r
}

func (a RotationAngle) CounterClockwise() RotationAngle {
	r, _ := a.Rotate(90)
	return r
}

func (a RotationAngle) Degrees() int { return int(a) }

func (a RotationAngle) String() string {
	switch a {
	case RotationNone:
		return "none"
	case RotationRight:
		return "right"
	case RotationUpsideDown:
		return "upside_down"
	case RotationLeft:
		return "left"
	}
	return fmt.Sprintf("RotationAngle(%d)", int(a))
}
