package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	_ "image/jpeg"
	_ "image/png"

	"github.com/evelynko/skinsight/internal/domain/vision"
)

// Decoder converts uploaded JPEG/PNG bytes into the RGBA frame layout the
// pixel extractor works on. Camera captures arrive mirrored; Mirrored
// controls whether frames are flipped back before analysis.
type Decoder struct {
	Mirrored bool
}

// NewDecoder returns a decoder for upright upload images.
func NewDecoder() Decoder {
	return Decoder{}
}

// Decode parses the image and repacks it as tightly-strided RGBA.
func (d Decoder) Decode(data []byte) (vision.Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return vision.Frame{}, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	frame := vision.Frame{
		Pix:    rgba.Pix,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	if d.Mirrored {
		frame = MirrorHorizontal(frame)
	}
	return frame, nil
}

// MirrorHorizontal flips a frame left-right in place-sized copy.
func MirrorHorizontal(f vision.Frame) vision.Frame {
	if !f.Valid() {
		return f
	}
	out := make([]byte, len(f.Pix))
	rowBytes := f.Width * 4
	for y := 0; y < f.Height; y++ {
		row := y * rowBytes
		for x := 0; x < f.Width; x++ {
			src := row + x*4
			dst := row + (f.Width-1-x)*4
			copy(out[dst:dst+4], f.Pix[src:src+4])
		}
	}
	return vision.Frame{Pix: out, Width: f.Width, Height: f.Height}
}
