package vision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAssessFrameNoFace(t *testing.T) {
	f := makeFrame(320, 240, darkFrame)
	g := AssessFrame(f, LocateFace(f), nil)
	require.False(t, g.Admissible)
	require.Equal(t, StatusError, g.Status)
	require.Equal(t, LabelNoFace, g.Label)
}

func TestAssessFrameMoveCloser(t *testing.T) {
	// A 40px patch in a 400px frame derives a face well under the minimum
	// fraction.
	f := centeredPatch(400, 400, 40)
	box := LocateFace(f)
	require.True(t, box.Found)
	g := AssessFrame(f, box, nil)
	require.True(t, g.Admissible)
	require.Equal(t, LabelCloser, g.Label)
}

func TestAssessFrameMoveBack(t *testing.T) {
	f := makeFrame(320, 240, skinTone)
	box := LocateFace(f)
	g := AssessFrame(f, box, nil)
	require.True(t, g.Admissible)
	require.Equal(t, LabelBack, g.Label)
}

func TestAssessFrameHoldStill(t *testing.T) {
	f := centeredPatch(200, 200, 80)
	box := LocateFace(f)
	require.True(t, box.Found)

	steady := AssessFrame(f, box, &Point{X: box.CenterX, Y: box.CenterY})
	require.Equal(t, LabelPerfect, steady.Label)

	jittery := AssessFrame(f, box, &Point{X: box.CenterX - 40, Y: box.CenterY})
	require.True(t, jittery.Admissible)
	require.Equal(t, LabelHoldStill, jittery.Label)
}

func TestTickCachesBetweenAnalyses(t *testing.T) {
	f := centeredPatch(200, 200, 80)
	base := time.Unix(1700000000, 0)

	var s Session
	s, d := Tick(s, f, base)
	require.True(t, d.Progressed)
	require.Len(t, s.Buffer, 1)

	// Within the analysis interval the cached metrics are reused.
	s, d = Tick(s, f, base.Add(50*time.Millisecond))
	require.True(t, d.Progressed)
	require.Len(t, s.Buffer, 1)
	require.Equal(t, s.Cached, d.Metrics)

	// Past the interval a fresh analysis lands in the buffer.
	s, _ = Tick(s, f, base.Add(250*time.Millisecond))
	require.Len(t, s.Buffer, 2)
}

func TestTickFaceLossBlocksProgress(t *testing.T) {
	face := centeredPatch(200, 200, 80)
	blank := makeFrame(200, 200, darkFrame)
	base := time.Unix(1700000000, 0)

	var s Session
	s, _ = Tick(s, face, base)
	before := len(s.Buffer)

	s, d := Tick(s, blank, base.Add(time.Second))
	require.False(t, d.Progressed)
	require.Equal(t, StatusError, d.Guidance.Status)
	require.Len(t, s.Buffer, before)
}

func TestTickBufferCap(t *testing.T) {
	f := centeredPatch(200, 200, 80)
	base := time.Unix(1700000000, 0)

	var s Session
	for i := 0; i < maxBufferedFrames+12; i++ {
		s, _ = Tick(s, f, base.Add(time.Duration(i)*200*time.Millisecond))
	}
	require.Len(t, s.Buffer, maxBufferedFrames)
}

func TestFinalize(t *testing.T) {
	_, ok := Finalize(Session{})
	require.False(t, ok)

	f := centeredPatch(200, 200, 80)
	var s Session
	s, _ = Tick(s, f, time.Unix(1700000000, 0))
	m, ok := Finalize(s)
	require.True(t, ok)
	require.Equal(t, s.Buffer[0], m)
}
