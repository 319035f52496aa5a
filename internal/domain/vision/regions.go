package vision

import "math"

// Skin-pixel classification and face box derivation constants. The rule is a
// coarse chroma heuristic: plenty of false positives on warm backgrounds, but
// the centroid of a face-containing frame still lands on the face.
const (
	skinScanStride = 4
	minSkinPixels  = 50

	faceWidthFactor  = 1.5
	faceAspectFactor = 1.35
)

// FaceBox approximates the detected face region. When no face is found,
// Width and Height report 0 and callers fall back to the full frame.
type FaceBox struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
	Found   bool
}

func isSkinPixel(r, g, b uint8) bool {
	rg := int(r) - int(g)
	if rg < 0 {
		rg = -rg
	}
	return r > 60 && g > 40 && b > 20 && r > g && r > b && rg > 10
}

// LocateFace scans the frame on a fixed stride and derives the face box from
// the skin-pixel centroid and match count. It never fails: a frame with too
// few skin pixels yields a not-found box centered on the frame.
func LocateFace(f Frame) FaceBox {
	if !f.Valid() {
		return FaceBox{CenterX: float64(f.Width) / 2, CenterY: float64(f.Height) / 2}
	}

	var count, sumX, sumY int
	for y := 0; y < f.Height; y += skinScanStride {
		for x := 0; x < f.Width; x += skinScanStride {
			r, g, b := f.RGBAAt(x, y)
			if isSkinPixel(r, g, b) {
				count++
				sumX += x
				sumY += y
			}
		}
	}

	if count < minSkinPixels {
		return FaceBox{
			CenterX: float64(f.Width) / 2,
			CenterY: float64(f.Height) / 2,
		}
	}

	width := math.Sqrt(float64(count)*skinScanStride*skinScanStride) * faceWidthFactor
	return FaceBox{
		CenterX: float64(sumX) / float64(count),
		CenterY: float64(sumY) / float64(count),
		Width:   width,
		Height:  width * faceAspectFactor,
		Found:   true,
	}
}

// effectiveBox substitutes the full frame for a not-found face so the
// extractor still produces a low-confidence estimate instead of failing.
func effectiveBox(f Frame, box FaceBox) FaceBox {
	if box.Found {
		return box
	}
	return FaceBox{
		CenterX: float64(f.Width) / 2,
		CenterY: float64(f.Height) / 2,
		Width:   float64(f.Width),
		Height:  float64(f.Height),
	}
}

type rect struct {
	x0, y0, x1, y1 int
}

func (r rect) empty() bool {
	return r.x1 <= r.x0 || r.y1 <= r.y0
}

// Fixed ROI fractions of the face box. These are part of the extractor
// contract; tests depend on them staying put.
//
//	forehead:  0.60w x 0.20h, above center
//	cheeks:    0.20w x 0.20h, either side of the nose line
//	under-eye: 0.50w x 0.12h, just above the cheek line
//	nose:      0.20w x 0.25h, centered
//	jaw:       0.60w x 0.15h, low on the face
func faceROIs(f Frame, box FaceBox) (forehead, leftCheek, rightCheek, underEye, nose, jaw rect) {
	b := effectiveBox(f, box)
	forehead = clampRect(f, b, -0.30, -0.55, 0.30, -0.35)
	leftCheek = clampRect(f, b, -0.35, 0.00, -0.15, 0.20)
	rightCheek = clampRect(f, b, 0.15, 0.00, 0.35, 0.20)
	underEye = clampRect(f, b, -0.25, -0.16, 0.25, -0.04)
	nose = clampRect(f, b, -0.10, -0.08, 0.10, 0.17)
	jaw = clampRect(f, b, -0.30, 0.28, 0.30, 0.43)
	return
}

// clampRect converts face-relative fractional offsets into a pixel rect
// clamped to the frame bounds.
func clampRect(f Frame, b FaceBox, fx0, fy0, fx1, fy1 float64) rect {
	r := rect{
		x0: int(b.CenterX + fx0*b.Width),
		y0: int(b.CenterY + fy0*b.Height),
		x1: int(b.CenterX + fx1*b.Width),
		y1: int(b.CenterY + fy1*b.Height),
	}
	if r.x0 < 0 {
		r.x0 = 0
	}
	if r.y0 < 0 {
		r.y0 = 0
	}
	if r.x1 > f.Width {
		r.x1 = f.Width
	}
	if r.y1 > f.Height {
		r.y1 = f.Height
	}
	if r.x1 < r.x0 {
		r.x1 = r.x0
	}
	if r.y1 < r.y0 {
		r.y1 = r.y0
	}
	return r
}
