package vision

import (
	"time"

	"github.com/evelynko/skinsight/internal/domain/skin"
)

const (
	// maxBufferedFrames bounds the per-scan metrics buffer; the oldest
	// admissible frame is evicted first.
	maxBufferedFrames = 40

	// analysisInterval decouples the heavy per-channel analysis from the
	// display-refresh tick loop. Between analyses, the cached result is
	// shown while the admissibility check still runs every tick.
	analysisInterval = 150 * time.Millisecond
)

// Session is the explicit, caller-owned state for one continuous scan. Tick
// is a pure (session, frame) -> (session, display) transform; there is no
// hidden shared state, so a session can be dropped at any moment to cancel
// the scan without side effects.
type Session struct {
	Buffer         []skin.Metrics
	LastFace       *Point
	LastAnalysisAt time.Time
	Cached         skin.Metrics
	HasCached      bool
	Frames         int
}

// Display is what one tick surfaces to the UI.
type Display struct {
	Metrics    skin.Metrics `json:"metrics"`
	Guidance   Guidance     `json:"guidance"`
	Progressed bool         `json:"progressed"`
}

// Tick processes one captured frame at the given instant and returns the
// advanced session plus the display payload.
func Tick(s Session, f Frame, now time.Time) (Session, Display) {
	box := LocateFace(f)
	guidance := AssessFrame(f, box, s.LastFace)

	if box.Found {
		s.LastFace = &Point{X: box.CenterX, Y: box.CenterY}
	}

	if guidance.Admissible {
		s.Frames++
		if !s.HasCached || now.Sub(s.LastAnalysisAt) > analysisInterval {
			m := analyzeWithBox(f, box)
			s.Cached = m
			s.HasCached = true
			s.LastAnalysisAt = now
			s.Buffer = append(s.Buffer, m)
			if len(s.Buffer) > maxBufferedFrames {
				s.Buffer = s.Buffer[len(s.Buffer)-maxBufferedFrames:]
			}
		}
	}

	return s, Display{
		Metrics:    s.Cached,
		Guidance:   guidance,
		Progressed: guidance.Admissible,
	}
}

// Finalize reduces the buffered frames to the scan's local estimate. ok is
// false when no admissible frame was ever analyzed.
func Finalize(s Session) (skin.Metrics, bool) {
	if len(s.Buffer) == 0 {
		return skin.Metrics{}, false
	}
	return skin.AverageMetrics(s.Buffer), true
}
