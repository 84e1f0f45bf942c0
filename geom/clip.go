package geom

// Update checks whether a photo of size img placed at pic is entirely inside
// an edit area of size edit. If it is, Update returns true and leaves b alone.
// Otherwise b is overwritten with the visible part of the photo, in the
// photo's own coordinates, and Update returns false. A photo that does not
// overlap the edit area at all yields a zero width or height.
func (b *CropBox) Update(pic Point, img, edit Size) bool {
	if pic.X >= 0 && pic.Y >= 0 &&
		pic.X+img.Width <= edit.Width &&
		pic.Y+img.Height <= edit.Height {
		return true
	}

	x, width := clipSpan(pic.X, img.Width, edit.Width)
	y, height := clipSpan(pic.Y, img.Height, edit.Height)
	b.X, b.Y, b.Width, b.Height = x, y, width, height
	return false
}

// Clip is Update on a copy of b.
func (b CropBox) Clip(pic Point, img, edit Size) (CropBox, bool) {
	visible := b.Update(pic, img, edit)
	return b, visible
}

// clipSpan intersects [pos, pos+length) with [0, limit) and returns where the
// intersection starts relative to pos and how long it is.
func clipSpan(pos, length, limit int) (start, extent int) {
	lo := max(pos, 0)
	hi := min(pos+length, limit)
	start = min(lo-pos, length)
	if hi <= lo {
		return start, 0
	}
	return start, hi - lo
}

// Crop builds a box and clips it against the edit area in one step.
func Crop(x, y, width, height int, pic Point, img, edit Size) (CropBox, error) {
	b, err := NewCropBox(x, y, width, height)
	if err != nil {
		return CropBox{}, err
	}
	b.Update(pic, img, edit)
	return b, nil
}

// BoxSize clamps a selection dragged from start to end on the canvas to the
// rectangle covered by a photo of size img at picPos. The selection may be
// dragged in any direction.
func BoxSize(start, end, picPos Point, img Size) CropBox {
	if end.X < start.X {
		start.X, end.X = end.X, start.X
	}
	if end.Y < start.Y {
		start.Y, end.Y = end.Y, start.Y
	}

	clamp := func(v, lo, hi int) int { return min(max(v, lo), hi) }
	right, bottom := picPos.X+img.Width, picPos.Y+img.Height

	x1 := clamp(start.X, picPos.X, right)
	y1 := clamp(start.Y, picPos.Y, bottom)
	x2 := clamp(end.X, picPos.X, right)
	y2 := clamp(end.Y, picPos.Y, bottom)
	return CropBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
