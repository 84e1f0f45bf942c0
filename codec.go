package main

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"

	"framecrop/geom"
)

// Codec is the pixel side of the pipeline. Everything geometric is decided
// by the caller through the geom package; a Codec only executes it.
type Codec interface {
	// Size reads the pixel dimensions without decoding the whole image.
	Size(r io.Reader) (geom.Size, error)
	Decode(r io.Reader) (image.Image, error)
	// Orientation returns the EXIF orientation tag, if there is one.
	Orientation(r io.Reader) (int, bool)
	// Resample scales img to size. When box is not nil the image is first
	// cropped to box, clamped to the image bounds.
	Resample(img image.Image, size geom.Size, box *geom.CropBox) image.Image
	// Rotate turns img counter-clockwise. With expand the canvas grows to hold
	// the rotated image, otherwise the original size is kept.
	Rotate(img image.Image, angle geom.RotationAngle, expand bool) image.Image
	Encode(w io.Writer, img image.Image) error
	Ext() string
}

// ImagingCodec implements Codec with disintegration/imaging, goexif and webp.
type ImagingCodec struct {
	format  string
	quality int
	filter  imaging.ResampleFilter
}

func NewImagingCodec(format string, quality int) *ImagingCodec {
	return &ImagingCodec{
		format:  format,
		quality: quality,
		filter:  imaging.Lanczos,
	}
}

func (c *ImagingCodec) Size(r io.Reader) (geom.Size, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return geom.Size{}, fmt.Errorf("failed to read image header: %w", err)
	}
	return geom.NewSize(cfg.Width, cfg.Height)
}

func (c *ImagingCodec) Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (c *ImagingCodec) Orientation(r io.Reader) (int, bool) {
	x, err := exif.Decode(r)
	if err != nil {
		return 0, false
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0, false
	}
	orient, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return orient, true
}

func (c *ImagingCodec) Resample(img image.Image, size geom.Size, box *geom.CropBox) image.Image {
	if box != nil {
		b := img.Bounds()
		x1, y1, x2, y2 := box.EnforceBounds(geom.Size{Width: b.Dx(), Height: b.Dy()})
		img = imaging.Crop(img, image.Rect(x1, y1, x2, y2).Add(b.Min))
	}
	return imaging.Resize(img, size.Width, size.Height, c.filter)
}

func (c *ImagingCodec) Rotate(img image.Image, angle geom.RotationAngle, expand bool) image.Image {
	var rotated image.Image
	switch angle {
	case geom.RotationRight:
		rotated = imaging.Rotate90(img)
	case geom.RotationUpsideDown:
		rotated = imaging.Rotate180(img)
	case geom.RotationLeft:
		rotated = imaging.Rotate270(img)
	default:
		return img
	}
	if expand {
		return rotated
	}
	b := img.Bounds()
	return imaging.PasteCenter(imaging.New(b.Dx(), b.Dy(), color.Transparent), rotated)
}

func (c *ImagingCodec) Encode(w io.Writer, img image.Image) error {
	var err error
	switch c.format {
	case "png":
		err = imaging.Encode(w, img, imaging.PNG)
	case "webp":
		err = webp.Encode(w, img, &webp.Options{Quality: float32(c.quality)})
	default:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(c.quality))
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.format, err)
	}
	return nil
}

func (c *ImagingCodec) Ext() string {
	if c.format == "" {
		return "jpg"
	}
	return c.format
}
