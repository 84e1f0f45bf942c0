// Package geom holds the box and size arithmetic used to place, scale, clip
// and rotate a photo inside a fixed-size edit area.
//
// Coordinates are integer pixels with the origin at the top-left corner and
// y growing downward.
package geom

import "fmt"

// Point is a position in canvas or image pixel space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PointFromTuple builds a Point from x and y.
func PointFromTuple(x, y int) Point {
	return Point{X: x, Y: y}
}

// ToTuple returns x and y.
func (p Point) ToTuple() (int, int) { return p.X, p.Y }

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size is a pixel dimension. Both components are non-negative when built
// through NewSize.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewSize returns a Size, rejecting negative components.
func NewSize(width, height int) (Size, error) {
	if width < 0 || height < 0 {
		return Size{}, fmt.Errorf("%w: size %dx%d has a negative component", ErrOutOfRange, width, height)
	}
	return Size{Width: width, Height: height}, nil
}

// SizeFromTuple is NewSize under the tuple naming used by the other helpers.
func SizeFromTuple(width, height int) (Size, error) {
	return NewSize(width, height)
}

// ToTuple returns width and height.
func (s Size) ToTuple() (int, int) { return s.Width, s.Height }

// Empty reports whether either dimension is zero or less.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Ratios returns the aspect ratios of s.
func (s Size) Ratios() Ratios { return Ratios{size: s} }

// Ratios exposes the aspect ratios of a Size.
type Ratios struct {
	size Size
}

// Landscape is width/height.
func (r Ratios) Landscape() float64 {
	return float64(r.size.Width) / float64(r.size.Height)
}

// Portrait is height/width.
func (r Ratios) Portrait() float64 {
	return float64(r.size.Height) / float64(r.size.Width)
}
