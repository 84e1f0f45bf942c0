package geom

import (
	"fmt"
	"image"
)

// CropBox is a positioned rectangle. Its mutators work in place and return
// the receiver so calls can be chained.
type CropBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewCropBox returns a box at (x, y) with the given size, rejecting negative
// sizes.
func NewCropBox(x, y, width, height int) (CropBox, error) {
	if width < 0 || height < 0 {
		return CropBox{}, fmt.Errorf("%w: crop box size %dx%d has a negative component", ErrOutOfRange, width, height)
	}
	return CropBox{X: x, Y: y, Width: width, Height: height}, nil
}

// CropBoxFromPoints spans the box from start to end. end must not lie above
// or left of start.
func CropBoxFromPoints(start, end Point) (CropBox, error) {
	return NewCropBox(start.X, start.Y, end.X-start.X, end.Y-start.Y)
}

// CropBoxFromPointSize places a box of the given size at start.
func CropBoxFromPointSize(start Point, size Size) (CropBox, error) {
	return NewCropBox(start.X, start.Y, size.Width, size.Height)
}

// ToTuple returns the box as x, y, width and height.
func (b CropBox) ToTuple() (x, y, width, height int) {
	return b.X, b.Y, b.Width, b.Height
}

// ToPointSize splits the box into its top-left corner and size.
func (b CropBox) ToPointSize() (Point, Size) {
	return Point{X: b.X, Y: b.Y}, Size{Width: b.Width, Height: b.Height}
}

// ToPoints returns the top-left and bottom-right corners.
func (b CropBox) ToPoints() (Point, Point) {
	return Point{X: b.X, Y: b.Y}, Point{X: b.X + b.Width, Y: b.Y + b.Height}
}

// Rect converts the box to an image.Rectangle.
func (b CropBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Clone returns a copy that can be mutated independently.
func (b CropBox) Clone() *CropBox { return &b }

func (b CropBox) String() string {
	return fmt.Sprintf("box(x=%d,y=%d,w=%d,h=%d)", b.X, b.Y, b.Width, b.Height)
}

// Resize sets the box size, keeping its position.
func (b *CropBox) Resize(width, height int) *CropBox {
	b.Width, b.Height = width, height
	return b
}

// Set moves the top-left corner to (x, y).
func (b *CropBox) Set(x, y int) *CropBox {
	b.X, b.Y = x, y
	return b
}

// Right moves the box n pixels right.
func (b *CropBox) Right(n int) *CropBox {
	b.X += n
	return b
}

// Left moves the box n pixels left.
func (b *CropBox) Left(n int) *CropBox {
	b.X -= n
	return b
}

// Up moves the box n pixels up.
func (b *CropBox) Up(n int) *CropBox {
	b.Y -= n
	return b
}

// Down moves the box n pixels down.
func (b *CropBox) Down(n int) *CropBox {
	b.Y += n
	return b
}

// EnforceBounds clamps the box to a container of the given size and returns
// its corners as (x1, y1, x2, y2). The far corner is x+width and y+height, not
// the raw size fields.
func (b CropBox) EnforceBounds(container Size) (x1, y1, x2, y2 int) {
	x1 = max(b.X, 0)
	y1 = max(b.Y, 0)
	x2 = min(b.X+b.Width, container.Width)
	y2 = min(b.Y+b.Height, container.Height)
	return x1, y1, x2, y2
}
