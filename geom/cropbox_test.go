package geom

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropBoxConstructors(t *testing.T) {
	b, err := CropBoxFromPoints(Point{10, 20}, Point{110, 70})
	require.NoError(t, err)
	assert.Equal(t, CropBox{X: 10, Y: 20, Width: 100, Height: 50}, b)

	b, err = CropBoxFromPointSize(Point{5, 5}, Size{30, 40})
	require.NoError(t, err)
	assert.Equal(t, CropBox{X: 5, Y: 5, Width: 30, Height: 40}, b)

	_, err = CropBoxFromPoints(Point{10, 10}, Point{5, 20})
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = NewCropBox(0, 0, 10, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCropBoxViews(t *testing.T) {
	b := CropBox{X: 10, Y: 20, Width: 30, Height: 40}

	p, s := b.ToPointSize()
	assert.Equal(t, Point{10, 20}, p)
	assert.Equal(t, Size{30, 40}, s)

	start, end := b.ToPoints()
	assert.Equal(t, Point{10, 20}, start)
	assert.Equal(t, Point{40, 60}, end)

	assert.Equal(t, image.Rect(10, 20, 40, 60), b.Rect())
}

func TestCropBoxMutators(t *testing.T) {
	b := &CropBox{}
	b.Set(10, 10).Resize(20, 30).Right(5).Down(7).Left(2).Up(1)
	assert.Equal(t, CropBox{X: 13, Y: 16, Width: 20, Height: 30}, *b)

	b.Left(50).Up(50)
	assert.Equal(t, -37, b.X)
	assert.Equal(t, -34, b.Y)
}

func TestCropBoxClone(t *testing.T) {
	b := CropBox{X: 1, Y: 2, Width: 3, Height: 4}
	c := b.Clone()
	c.Right(10)
	assert.Equal(t, 1, b.X)
	assert.Equal(t, 11, c.X)
}

func TestEnforceBounds(t *testing.T) {
	tests := []struct {
		name           string
		box            CropBox
		container      Size
		x1, y1, x2, y2 int
	}{
		{"inside", CropBox{10, 10, 50, 50}, Size{100, 100}, 10, 10, 60, 60},
		{"negative origin", CropBox{-10, -5, 50, 50}, Size{100, 100}, 0, 0, 40, 45},
		{"past far edge", CropBox{80, 90, 50, 50}, Size{100, 100}, 80, 90, 100, 100},
		{"larger than container", CropBox{0, 0, 500, 500}, Size{100, 80}, 0, 0, 100, 80},
		// The far corner is offset by the origin, not the raw width.
		{"offset origin", CropBox{30, 40, 60, 50}, Size{100, 100}, 30, 40, 90, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x1, y1, x2, y2 := tt.box.EnforceBounds(tt.container)
			assert.Equal(t, [4]int{tt.x1, tt.y1, tt.x2, tt.y2}, [4]int{x1, y1, x2, y2})
		})
	}
}
