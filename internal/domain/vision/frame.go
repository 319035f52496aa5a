package vision

// Frame is an RGBA pixel buffer with explicit dimensions. Both the live
// capture path and static image decodes are converted into this shape before
// any metric code runs, so orientation and mirroring differences are already
// resolved by the time a Frame exists.
type Frame struct {
	Pix    []byte // 4 bytes per pixel, row-major
	Width  int
	Height int
}

// Valid reports whether the buffer matches the declared dimensions.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pix) >= f.Width*f.Height*4
}

// RGBAAt returns the pixel at (x, y). Callers must stay in bounds.
func (f Frame) RGBAAt(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}
