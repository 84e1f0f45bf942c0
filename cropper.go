package main

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/rs/zerolog/log"

	"framecrop/geom"
)

// View is the state of the editor when the user saved: where the photo sits
// inside the edit area, how large it was drawn there and how it was turned.
type View struct {
	// Pic is the top-left corner of the photo relative to the edit area.
	Pic geom.Point `json:"pic"`
	// Image is the size the photo was fitted to before zooming.
	Image geom.Size `json:"image"`
	// Zoom multiplies Image. Zero means no zoom.
	Zoom float64 `json:"zoom"`
	// Edit is the size of the edit area.
	Edit geom.Size `json:"edit"`
	// Rotation is applied after EXIF orientation, in counter-clockwise degrees.
	Rotation int `json:"rotation"`
}

func (v View) String() string {
	return fmt.Sprintf("view(pic=%s,image=%s,zoom=%.2f,edit=%s,rot=%d)", v.Pic, v.Image, v.Zoom, v.Edit, v.Rotation)
}

func (v View) ID() string {
	return fmt.Sprintf("%x", md5.Sum([]byte(v.String())))
}

// Displayed is the size the photo had on screen.
func (v View) Displayed() (geom.Size, error) {
	if _, err := geom.NewSize(v.Image.Width, v.Image.Height); err != nil {
		return geom.Size{}, err
	}
	if _, err := geom.NewSize(v.Edit.Width, v.Edit.Height); err != nil {
		return geom.Size{}, err
	}
	size, err := geom.Scale(v.Image, v.Zoom)
	if err != nil {
		return geom.Size{}, err
	}
	if size.Empty() {
		return geom.Size{}, fmt.Errorf("%w: photo was drawn at %s", geom.ErrInvalidArgument, size)
	}
	return size, nil
}

var errNotVisible = errors.New("photo is outside the edit area")

// ViewCropper turns saved views into images fitted into MaxWidth x MaxHeight.
type ViewCropper struct {
	Codec     Codec
	MaxWidth  int
	MaxHeight int
}

func NewViewCropper(codec Codec, maxWidth, maxHeight int) *ViewCropper {
	return &ViewCropper{
		Codec:     codec,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
	}
}

// Crop reads an image from r, cuts out the part that was visible in view
// and writes it to w.
func (c *ViewCropper) Crop(ctx context.Context, r io.Reader, w io.Writer, view View) error {
	rotation, err := geom.ParseRotationAngle(view.Rotation)
	if err != nil {
		return err
	}
	displayed, err := view.Displayed()
	if err != nil {
		return err
	}

	src, err := c.load(ctx, r)
	if err != nil {
		return err
	}
	if rotation != geom.RotationNone {
		src = c.Codec.Rotate(src, rotation, true)
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	scaled := c.Codec.Resample(src, displayed, nil)

	box := geom.CropBox{Width: displayed.Width, Height: displayed.Height}
	if !box.Update(view.Pic, displayed, view.Edit) {
		log.Ctx(ctx).Debug().Stringer("view", view).Stringer("box", box).Msg("photo clipped by edit area")
	}
	_, visible := box.ToPointSize()
	if visible.Empty() {
		return errNotVisible
	}

	target, err := geom.CalculateNewSize(visible, c.MaxWidth, c.MaxHeight)
	if err != nil {
		return err
	}
	if target.Empty() {
		return fmt.Errorf("%w: visible area %s shrinks to nothing", geom.ErrInvalidArgument, visible)
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	return c.Codec.Encode(w, c.Codec.Resample(scaled, target, &box))
}

// Resize fits the whole image into maxWidth x maxHeight.
func (c *ViewCropper) Resize(ctx context.Context, r io.Reader, w io.Writer, maxWidth, maxHeight int) error {
	src, err := c.load(ctx, r)
	if err != nil {
		return err
	}
	b := src.Bounds()
	target, err := geom.CalculateNewSize(geom.Size{Width: b.Dx(), Height: b.Dy()}, maxWidth, maxHeight)
	if err != nil {
		return err
	}
	if target.Empty() {
		return fmt.Errorf("%w: %dx%d shrinks to nothing", geom.ErrInvalidArgument, b.Dx(), b.Dy())
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	return c.Codec.Encode(w, c.Codec.Resample(src, target, nil))
}

// load decodes the image and applies its EXIF orientation.
func (c *ViewCropper) load(ctx context.Context, r io.Reader) (image.Image, error) {
	return decodeOriented(ctx, c.Codec, r)
}

func decodeOriented(ctx context.Context, codec Codec, r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if tag, ok := codec.Orientation(bytes.NewReader(data)); ok {
		if angle := orientationRotation(tag); angle != geom.RotationNone {
			log.Ctx(ctx).Debug().Int("orientation", tag).Stringer("rotation", angle).Msg("applying exif orientation")
			img = codec.Rotate(img, angle, true)
		}
	}
	return img, nil
}

// orientationRotation maps EXIF orientation tags to the counter-clockwise
// turn that stands the photo upright. Mirrored orientations are left alone.
func orientationRotation(tag int) geom.RotationAngle {
	switch tag {
	case 3:
		return geom.RotationUpsideDown
	case 6:
		return geom.RotationLeft
	case 8:
		return geom.RotationRight
	default:
		return geom.RotationNone
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
