package vision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evelynko/skinsight/internal/domain/skin"
)

// makeFrame builds a synthetic RGBA frame from a per-pixel color function.
func makeFrame(w, h int, color func(x, y int) (uint8, uint8, uint8)) Frame {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := color(x, y)
			i := (y*w + x) * 4
			pix[i] = r
			pix[i+1] = g
			pix[i+2] = b
			pix[i+3] = 255
		}
	}
	return Frame{Pix: pix, Width: w, Height: h}
}

func skinTone(x, y int) (uint8, uint8, uint8) { return 182, 121, 92 }

func darkFrame(x, y int) (uint8, uint8, uint8) { return 8, 8, 8 }

// centeredPatch paints a skin-colored square on a dark background.
func centeredPatch(w, h, side int) Frame {
	x0 := (w - side) / 2
	y0 := (h - side) / 2
	return makeFrame(w, h, func(x, y int) (uint8, uint8, uint8) {
		if x >= x0 && x < x0+side && y >= y0 && y < y0+side {
			return skinTone(x, y)
		}
		return darkFrame(x, y)
	})
}

func TestLocateFaceCentroid(t *testing.T) {
	f := centeredPatch(400, 400, 160)
	box := LocateFace(f)
	require.True(t, box.Found)
	require.InDelta(t, 200, box.CenterX, 8)
	require.InDelta(t, 200, box.CenterY, 8)
	require.Greater(t, box.Width, 0.0)
	require.InDelta(t, box.Width*1.35, box.Height, 0.001)
}

func TestLocateFaceNoFace(t *testing.T) {
	f := makeFrame(320, 240, darkFrame)
	box := LocateFace(f)
	require.False(t, box.Found)
	require.Zero(t, box.Width)
	require.InDelta(t, 160, box.CenterX, 0.001)
	require.InDelta(t, 120, box.CenterY, 0.001)
}

func TestAnalyzeBoundsAllChannels(t *testing.T) {
	frames := []Frame{
		makeFrame(320, 240, skinTone),
		makeFrame(320, 240, darkFrame),
		centeredPatch(320, 240, 100),
	}
	for _, f := range frames {
		m := Analyze(f)
		channels := append([]skin.Channel{skin.ChannelOverall}, skin.ConcernChannels...)
		for _, c := range channels {
			v := m.Channel(c)
			require.GreaterOrEqual(t, v, 18, "channel %s", c)
			require.LessOrEqual(t, v, 98, "channel %s", c)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	f := centeredPatch(400, 400, 180)
	first := Analyze(f)
	second := Analyze(f)
	require.Equal(t, first, second)
}

func TestAnalyzeNoFaceDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		Analyze(makeFrame(64, 48, darkFrame))
		Analyze(Frame{Width: 0, Height: 0})
	})
}

func TestTextureIsDerived(t *testing.T) {
	m := Analyze(centeredPatch(400, 400, 180))
	expected := skin.Normalize(float64(m.WrinkleFine+m.PoreSize+m.AcneScars) / 3)
	require.Equal(t, expected, m.Texture)
}
