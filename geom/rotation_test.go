package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRotationAngle(t *testing.T) {
	for _, d := range []int{0, 90, 180, 270} {
		a, err := ParseRotationAngle(d)
		require.NoError(t, err)
		assert.Equal(t, d, a.Degrees())
	}
	for _, d := range []int{45, -90, 360, 91} {
		_, err := ParseRotationAngle(d)
		assert.ErrorIs(t, err, ErrInvalidArgument, "degrees %d", d)
	}
}

func TestRotate(t *testing.T) {
	got, err := RotationLeft.Rotate(90)
	require.NoError(t, err)
	assert.Equal(t, RotationNone, got)

	got, err = RotationNone.Rotate(-90)
	require.NoError(t, err)
	assert.Equal(t, RotationLeft, got)

	got, err = RotationRight.Rotate(-720)
	require.NoError(t, err)
	assert.Equal(t, RotationRight, got)

	_, err = RotationNone.Rotate(45)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRotateStaysCanonical(t *testing.T) {
	canonical := map[RotationAngle]bool{
		RotationNone: true, RotationRight: true, RotationUpsideDown: true, RotationLeft: true,
	}
	for start := range canonical {
		for delta := -1080; delta <= 1080; delta += 90 {
			got, err := start.Rotate(delta)
			require.NoError(t, err)
			assert.True(t, canonical[got], "%s rotated by %d gave %d", start, delta, got)
		}
	}
}

func TestQuarterTurns(t *testing.T) {
	assert.Equal(t, RotationLeft, RotationNone.Clockwise())
	assert.Equal(t, RotationRight, RotationNone.CounterClockwise())
	assert.Equal(t, RotationNone, RotationLeft.CounterClockwise())
	assert.Equal(t, "upside_down", RotationUpsideDown.String())
}
