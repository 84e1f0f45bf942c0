package main

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"framecrop/geom"
)

// resizer lets smartcrop downscale through imaging.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

// suggestCrop proposes a box with the aspect ratio of width x height, in
// image coordinates, that keeps the most interesting part of img.
func suggestCrop(img image.Image, width, height int) (geom.CropBox, error) {
	if width <= 0 || height <= 0 {
		return geom.CropBox{}, fmt.Errorf("%w: suggestion size %dx%d", geom.ErrInvalidArgument, width, height)
	}
	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: imaging.Linear})
	best, err := analyzer.FindBestCrop(img, width, height)
	if err != nil {
		return geom.CropBox{}, fmt.Errorf("finding best crop: %w", err)
	}

	bounds := img.Bounds()
	best = best.Sub(bounds.Min)
	box, err := geom.NewCropBox(best.Min.X, best.Min.Y, best.Dx(), best.Dy())
	if err != nil {
		return geom.CropBox{}, err
	}
	x1, y1, x2, y2 := box.EnforceBounds(geom.Size{Width: bounds.Dx(), Height: bounds.Dy()})
	return geom.CropBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, nil
}
