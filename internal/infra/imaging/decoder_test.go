package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evelynko/skinsight/internal/domain/vision"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 50), G: 10, B: 20, A: 255})
		}
	}

	frame, err := NewDecoder().Decode(encodePNG(t, src))
	require.NoError(t, err)
	require.True(t, frame.Valid())
	require.Equal(t, 4, frame.Width)
	require.Equal(t, 2, frame.Height)

	r, g, b := frame.RGBAAt(2, 1)
	require.Equal(t, uint8(100), r)
	require.Equal(t, uint8(10), g)
	require.Equal(t, uint8(20), b)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := NewDecoder().Decode([]byte("not an image"))
	require.Error(t, err)
}

func TestMirrorHorizontal(t *testing.T) {
	frame := vision.Frame{Width: 2, Height: 1, Pix: []byte{
		10, 11, 12, 255,
		20, 21, 22, 255,
	}}
	flipped := MirrorHorizontal(frame)
	r, _, _ := flipped.RGBAAt(0, 0)
	require.Equal(t, uint8(20), r)
	r, _, _ = flipped.RGBAAt(1, 0)
	require.Equal(t, uint8(10), r)

	// Original is untouched.
	r, _, _ = frame.RGBAAt(0, 0)
	require.Equal(t, uint8(10), r)
}

func TestMirroredDecoder(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 200, A: 255})
	src.Set(1, 0, color.RGBA{B: 200, A: 255})

	frame, err := Decoder{Mirrored: true}.Decode(encodePNG(t, src))
	require.NoError(t, err)
	_, _, b := frame.RGBAAt(0, 0)
	require.Equal(t, uint8(200), b)
}
