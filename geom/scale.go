package geom

import (
	"fmt"
	"math"
)

func checkBox(size Size, maxWidth, maxHeight int) error {
	if maxWidth <= 0 || maxHeight <= 0 {
		return fmt.Errorf("%w: bounding box %dx%d must be positive", ErrInvalidArgument, maxWidth, maxHeight)
	}
	if maxWidth == maxHeight {
		return fmt.Errorf("%w: bounding box %dx%d must not be square", ErrInvalidArgument, maxWidth, maxHeight)
	}
	if size.Empty() {
		return fmt.Errorf("%w: cannot scale empty size %s", ErrInvalidArgument, size)
	}
	return nil
}

func factors(size Size, maxWidth, maxHeight int) (float64, float64) {
	return float64(maxWidth) / float64(size.Width), float64(maxHeight) / float64(size.Height)
}

// MinScalingFactor returns the factor that fits size entirely inside the
// bounding box.
func MinScalingFactor(size Size, maxWidth, maxHeight int) (float64, error) {
	if err := checkBox(size, maxWidth, maxHeight); err != nil {
		return 0, err
	}
	fw, fh := factors(size, maxWidth, maxHeight)
	return math.Min(fw, fh), nil
}

// MaxScalingFactor returns the factor that makes size cover the bounding box.
func MaxScalingFactor(size Size, maxWidth, maxHeight int) (float64, error) {
	if err := checkBox(size, maxWidth, maxHeight); err != nil {
		return 0, err
	}
	fw, fh := factors(size, maxWidth, maxHeight)
	return math.Max(fw, fh), nil
}

// CalculateNewSize scales size by MinScalingFactor. Each dimension is
// truncated toward zero so the result never exceeds the bounding box.
func CalculateNewSize(size Size, maxWidth, maxHeight int) (Size, error) {
	f, err := MinScalingFactor(size, maxWidth, maxHeight)
	if err != nil {
		return Size{}, err
	}
	return scaleSize(size, f)
}

// FitScale is CalculateNewSize returning plain dimensions.
func FitScale(size Size, maxWidth, maxHeight int) (width, height int, err error) {
	s, err := CalculateNewSize(size, maxWidth, maxHeight)
	if err != nil {
		return 0, 0, err
	}
	return s.Width, s.Height, nil
}

// Scale multiplies both dimensions by factor and truncates. A zero factor
// means no factor was given and leaves size unchanged. Results wider or
// taller than math.MaxInt32 fail with ErrOutOfRange.
func Scale(size Size, factor float64) (Size, error) {
	if factor == 0 {
		factor = 1
	}
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Size{}, fmt.Errorf("%w: scale factor %v", ErrOutOfRange, factor)
	}
	return scaleSize(size, factor)
}

// maxDimension caps scaled dimensions so the float to int conversion
// cannot wrap around.
const maxDimension = math.MaxInt32

func scaleSize(size Size, factor float64) (Size, error) {
	w, h := float64(size.Width)*factor, float64(size.Height)*factor
	if w < 0 || h < 0 || w > maxDimension || h > maxDimension || math.IsNaN(w) || math.IsNaN(h) {
		return Size{}, fmt.Errorf("%w: %s scaled by %v does not fit in %d pixels", ErrOutOfRange, size, factor, maxDimension)
	}
	return Size{Width: int(w), Height: int(h)}, nil
}
