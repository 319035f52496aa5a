package vision

import "math"

// Frame guidance statuses. Only true face loss reports StatusError; every
// other condition is a coaching label on an admissible frame. Guide, don't
// gatekeep: a slightly dark or shaky frame still accumulates progress.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Guidance labels shown to the user during a timed scan.
const (
	LabelNoFace    = "No Face Detected"
	LabelCloser    = "Move Closer"
	LabelBack      = "Move Back"
	LabelLowLight  = "Low Light"
	LabelTooBright = "Too Bright"
	LabelHoldStill = "Hold Still"
	LabelPerfect   = "Perfect"
)

const (
	minFaceFrac = 0.25
	maxFaceFrac = 0.85

	minCenterLuma = 40.0
	maxCenterLuma = 230.0

	// jitterFrac is the centroid displacement (as a fraction of frame
	// width) past which we coach the user to hold still.
	jitterFrac = 0.08
)

// Point is a face centroid carried between ticks for jitter detection.
type Point struct {
	X float64
	Y float64
}

// Guidance classifies one frame for continuous capture.
type Guidance struct {
	Admissible bool   `json:"admissible"`
	Status     string `json:"status"`
	Label      string `json:"label"`
}

// AssessFrame produces the guidance for the current frame. lastFace is the
// previously accepted centroid, nil on the first tick.
func AssessFrame(f Frame, box FaceBox, lastFace *Point) Guidance {
	if !box.Found {
		return Guidance{Admissible: false, Status: StatusError, Label: LabelNoFace}
	}

	g := Guidance{Admissible: true, Status: StatusOK, Label: LabelPerfect}

	frac := box.Width / float64(f.Width)
	switch {
	case frac < minFaceFrac:
		g.Label = LabelCloser
		return g
	case frac > maxFaceFrac:
		g.Label = LabelBack
		return g
	}

	cr, cg, cb := f.RGBAAt(f.Width/2, f.Height/2)
	switch luma := lumaOf(cr, cg, cb); {
	case luma < minCenterLuma:
		g.Label = LabelLowLight
		return g
	case luma > maxCenterLuma:
		g.Label = LabelTooBright
		return g
	}

	if lastFace != nil {
		dx := box.CenterX - lastFace.X
		dy := box.CenterY - lastFace.Y
		if math.Sqrt(dx*dx+dy*dy) > jitterFrac*float64(f.Width) {
			g.Label = LabelHoldStill
		}
	}
	return g
}
