package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecrop/geom"
)

func newTestCropper() *ViewCropper {
	return NewViewCropper(NewImagingCodec("png", 90), 60, 50)
}

func TestViewCropperCrop(t *testing.T) {
	tests := []struct {
		name   string
		view   View
		width  int
		height int
	}{
		{
			name:  "clipped on the left and bottom",
			view:  View{Pic: geom.Point{X: -50, Y: 0}, Image: geom.Size{Width: 200, Height: 100}, Edit: geom.Size{Width: 120, Height: 80}},
			width: 60, height: 40,
		},
		{
			name:  "fully visible",
			view:  View{Pic: geom.Point{X: 10, Y: 10}, Image: geom.Size{Width: 100, Height: 50}, Edit: geom.Size{Width: 300, Height: 200}},
			width: 60, height: 30,
		},
		{
			name:  "zoomed",
			view:  View{Pic: geom.Point{X: -50, Y: 0}, Image: geom.Size{Width: 100, Height: 50}, Zoom: 2, Edit: geom.Size{Width: 120, Height: 80}},
			width: 60, height: 40,
		},
		{
			name:  "rotated",
			view:  View{Image: geom.Size{Width: 100, Height: 200}, Edit: geom.Size{Width: 300, Height: 250}, Rotation: 90},
			width: 25, height: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := newTestCropper().Crop(context.Background(), bytes.NewReader(pngBytes(t, 400, 200)), &out, tt.view)
			require.NoError(t, err)
			w, h := imageSize(t, out.Bytes())
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestViewCropperCropErrors(t *testing.T) {
	src := pngBytes(t, 400, 200)
	tests := []struct {
		name string
		view View
		err  error
	}{
		{"outside edit area", View{Pic: geom.Point{X: 500}, Image: geom.Size{Width: 200, Height: 100}, Edit: geom.Size{Width: 120, Height: 80}}, errNotVisible},
		{"odd rotation", View{Image: geom.Size{Width: 200, Height: 100}, Edit: geom.Size{Width: 120, Height: 80}, Rotation: 45}, geom.ErrInvalidArgument},
		{"negative size", View{Image: geom.Size{Width: -200, Height: 100}, Edit: geom.Size{Width: 120, Height: 80}}, geom.ErrOutOfRange},
		{"negative zoom", View{Image: geom.Size{Width: 200, Height: 100}, Zoom: -1, Edit: geom.Size{Width: 120, Height: 80}}, geom.ErrOutOfRange},
		{"empty image", View{Edit: geom.Size{Width: 120, Height: 80}}, geom.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := newTestCropper().Crop(context.Background(), bytes.NewReader(src), &out, tt.view)
			assert.ErrorIs(t, err, tt.err)
			assert.Zero(t, out.Len())
		})
	}
}

func TestViewCropperCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	view := View{Image: geom.Size{Width: 200, Height: 100}, Edit: geom.Size{Width: 120, Height: 80}}
	err := newTestCropper().Crop(ctx, bytes.NewReader(pngBytes(t, 400, 200)), &bytes.Buffer{}, view)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestViewCropperResize(t *testing.T) {
	var out bytes.Buffer
	err := newTestCropper().Resize(context.Background(), bytes.NewReader(pngBytes(t, 400, 200)), &out, 60, 50)
	require.NoError(t, err)
	w, h := imageSize(t, out.Bytes())
	assert.Equal(t, 60, w)
	assert.Equal(t, 30, h)

	err = newTestCropper().Resize(context.Background(), bytes.NewReader(pngBytes(t, 400, 200)), &out, 50, 50)
	assert.ErrorIs(t, err, geom.ErrInvalidArgument)
}

func TestDecodeOrientedAppliesExif(t *testing.T) {
	codec := NewImagingCodec("png", 90)
	img, err := decodeOriented(context.Background(), codec, bytes.NewReader(jpegWithOrientation(t, 40, 20, 6)))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestOrientationRotation(t *testing.T) {
	tests := map[int]geom.RotationAngle{
		0: geom.RotationNone,
		1: geom.RotationNone,
		2: geom.RotationNone,
		3: geom.RotationUpsideDown,
		6: geom.RotationLeft,
		8: geom.RotationRight,
		9: geom.RotationNone,
	}
	for tag, want := range tests {
		assert.Equal(t, want, orientationRotation(tag), "tag %d", tag)
	}
}

func TestViewID(t *testing.T) {
	a := View{Image: geom.Size{Width: 10, Height: 20}}
	b := a
	assert.Equal(t, a.ID(), b.ID())
	b.Pic.X = 1
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, a.ID(), 32)
}
