package vision

import (
	"math"

	"github.com/evelynko/skinsight/internal/domain/skin"
)

// Heuristic constants. Each channel has a fixed multiplier mapping a pixel
// statistic onto the 0-100 health scale; they are behavioral contract, not
// tunables (see spec tests built on their output ranges).
const (
	rednessDevScale = 9.0

	acneDevThreshold = 8.0
	acneFracScale    = 320.0

	scarDevThreshold = 12.0
	scarFracScale    = 300.0

	pigmentDevThreshold = 7.0
	pigmentFracScale    = 220.0

	hydrationBandLow   = 180.0
	hydrationBandHigh  = 240.0
	hydrationIdealFrac = 0.15
	hydrationFracScale = 250.0

	specularLumaMin   = 210.0
	specularSatMax    = 30
	oilinessFracScale = 400.0

	wrinkleFineEdge  = 20.0
	wrinkleDeepEdge  = 60.0
	wrinkleFineScale = 250.0
	wrinkleDeepScale = 400.0

	darkCircleScale = 1.8

	saggingContrastScale = 6.0
	saggingFloor         = 20

	poreDarkDelta      = 10.0
	blackheadDarkDelta = 25.0
	poreFracScale      = 200.0
	blackheadFracScale = 300.0
)

// Analyze converts one RGBA frame into a fully normalized metrics record.
// It is pure: identical buffers always produce identical output, and a frame
// without a detectable face degrades to a full-frame low-confidence estimate
// rather than an error.
func Analyze(f Frame) skin.Metrics {
	box := LocateFace(f)
	return analyzeWithBox(f, box)
}

func analyzeWithBox(f Frame, box FaceBox) skin.Metrics {
	forehead, leftCheek, rightCheek, underEye, nose, jaw := faceROIs(f, box)
	cheeks := mergeStats(roiStatsOf(f, leftCheek), roiStatsOf(f, rightCheek))
	foreheadStats := roiStatsOf(f, forehead)
	underEyeStats := roiStatsOf(f, underEye)
	noseStats := roiStatsOf(f, nose)
	faceStats := mergeStats(cheeks, foreheadStats)

	var m skin.Metrics
	m.Redness = skin.Normalize(rednessScore(cheeks))
	m.AcneActive = skin.Normalize(acneActiveScore(faceStats))
	m.AcneScars = skin.Normalize(acneScarScore(faceStats))
	m.Pigmentation = skin.Normalize(pigmentationScore(faceStats))
	m.Hydration = skin.Normalize(hydrationScore(cheeks))
	m.Oiliness = skin.Normalize(oilinessScore(mergeStats(foreheadStats, noseStats)))

	fine, deep := wrinkleScores(f, forehead)
	m.WrinkleFine = skin.Normalize(fine)
	m.WrinkleDeep = skin.Normalize(deep)

	m.DarkCircles = skin.Normalize(darkCircleScore(underEyeStats, cheeks))
	m.Sagging = skin.Normalize(saggingScore(f, jaw))

	pores, blackheads := noseDarknessScores(noseStats)
	m.PoreSize = skin.Normalize(pores)
	m.Blackheads = skin.Normalize(blackheads)

	// Texture is derived, not sampled: surface evenness is already captured
	// by fine lines, pores and scarring.
	m.Texture = skin.Normalize(float64(m.WrinkleFine+m.PoreSize+m.AcneScars) / 3)

	m.OverallScore = skin.ComputeOverall(m)
	return m
}

// roiStats aggregates the per-pixel values a channel heuristic needs.
type roiStats struct {
	l    []float64
	a    []float64
	luma []float64
	sat  []int
}

func (s roiStats) count() int { return len(s.l) }

func roiStatsOf(f Frame, r rect) roiStats {
	var s roiStats
	if r.empty() {
		return s
	}
	n := (r.x1 - r.x0) * (r.y1 - r.y0)
	s.l = make([]float64, 0, n)
	s.a = make([]float64, 0, n)
	s.luma = make([]float64, 0, n)
	s.sat = make([]int, 0, n)
	for y := r.y0; y < r.y1; y++ {
		for x := r.x0; x < r.x1; x++ {
			pr, pg, pb := f.RGBAAt(x, y)
			l, a := rgbToLab(pr, pg, pb)
			s.l = append(s.l, l)
			s.a = append(s.a, a)
			s.luma = append(s.luma, lumaOf(pr, pg, pb))
			s.sat = append(s.sat, saturationSpread(pr, pg, pb))
		}
	}
	return s
}

func mergeStats(a, b roiStats) roiStats {
	return roiStats{
		l:    append(append([]float64{}, a.l...), b.l...),
		a:    append(append([]float64{}, a.a...), b.a...),
		luma: append(append([]float64{}, a.luma...), b.luma...),
		sat:  append(append([]int{}, a.sat...), b.sat...),
	}
}

func saturationSpread(r, g, b uint8) int {
	maxC := r
	if g > maxC {
		maxC = g
	}
	if b > maxC {
		maxC = b
	}
	minC := r
	if g < minC {
		minC = g
	}
	if b < minC {
		minC = b
	}
	return int(maxC) - int(minC)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// rednessScore penalizes the average positive deviation of the a channel
// above the ROI's own mean, which tracks inflamed patches without being
// fooled by overall warm lighting.
func rednessScore(s roiStats) float64 {
	if s.count() == 0 {
		return skin.NeutralScore
	}
	meanA := mean(s.a)
	dev := 0.0
	for _, a := range s.a {
		if a > meanA {
			dev += a - meanA
		}
	}
	dev /= float64(s.count())
	return 100 - dev*rednessDevScale
}

func acneActiveScore(s roiStats) float64 {
	if s.count() == 0 {
		return skin.NeutralScore
	}
	meanA := mean(s.a)
	hits := 0
	for _, a := range s.a {
		if a-meanA > acneDevThreshold {
			hits++
		}
	}
	frac := float64(hits) / float64(s.count())
	return 100 - frac*acneFracScale
}

func acneScarScore(s roiStats) float64 {
	if s.count() == 0 {
		return skin.NeutralScore
	}
	meanL := mean(s.l)
	hits := 0
	for _, l := range s.l {
		if meanL-l > scarDevThreshold {
			hits++
		}
	}
	frac := float64(hits) / float64(s.count())
	return 100 - frac*scarFracScale
}

func pigmentationScore(s roiStats) float64 {
	if s.count() == 0 {
		return skin.NeutralScore
	}
	meanL := mean(s.l)
	hits := 0
	for _, l := range s.l {
		if meanL-l > pigmentDevThreshold {
			hits++
		}
	}
	frac := float64(hits) / float64(s.count())
	return 100 - frac*pigmentFracScale
}

// hydrationScore rewards a soft-highlight ratio near the ideal. Healthy,
// hydrated skin shows some sheen; both matte-flat and glare-heavy frames
// deviate from the band ratio.
func hydrationScore(s roiStats) float64 {
	if s.count() == 0 {
		return skin.NeutralScore
	}
	hits := 0
	for _, l := range s.luma {
		if l >= hydrationBandLow && l <= hydrationBandHigh {
			hits++
		}
	}
	frac := float64(hits) / float64(s.count())
	return 100 - math.Abs(frac-hydrationIdealFrac)*hydrationFracScale
}

// oilinessScore counts specular highlights: very bright and nearly
// unsaturated pixels.
func oilinessScore(s roiStats) float64 {
	if s.count() == 0 {
		return skin.NeutralScore
	}
	hits := 0
	for i, l := range s.luma {
		if l > specularLumaMin && s.sat[i] < specularSatMax {
			hits++
		}
	}
	frac := float64(hits) / float64(s.count())
	return 100 - frac*oilinessFracScale
}

// wrinkleScores runs a discrete 4-neighborhood Laplacian over the green
// channel and bins edge magnitudes into fine and deep lines.
func wrinkleScores(f Frame, r rect) (fine, deep float64) {
	if r.x1-r.x0 < 3 || r.y1-r.y0 < 3 {
		return skin.NeutralScore, skin.NeutralScore
	}
	var fineCount, deepCount, total int
	for y := r.y0 + 1; y < r.y1-1; y++ {
		for x := r.x0 + 1; x < r.x1-1; x++ {
			_, g, _ := f.RGBAAt(x, y)
			_, gl, _ := f.RGBAAt(x-1, y)
			_, gr, _ := f.RGBAAt(x+1, y)
			_, gu, _ := f.RGBAAt(x, y-1)
			_, gd, _ := f.RGBAAt(x, y+1)
			lap := math.Abs(4*float64(g) - float64(gl) - float64(gr) - float64(gu) - float64(gd))
			if lap >= wrinkleDeepEdge {
				deepCount++
			} else if lap >= wrinkleFineEdge {
				fineCount++
			}
			total++
		}
	}
	fineFrac := float64(fineCount) / float64(total)
	deepFrac := float64(deepCount) / float64(total)
	return 100 - fineFrac*wrinkleFineScale, 100 - deepFrac*wrinkleDeepScale
}

// darkCircleScore compares under-eye brightness with the cheeks; only a
// deficit (eye darker than cheek) penalizes.
func darkCircleScore(eye, cheek roiStats) float64 {
	if eye.count() == 0 || cheek.count() == 0 {
		return skin.NeutralScore
	}
	deficit := mean(cheek.luma) - mean(eye.luma)
	if deficit < 0 {
		deficit = 0
	}
	return 100 - deficit*darkCircleScale
}

// saggingScore reads vertical luma contrast across the jaw line. Firm skin
// keeps a defined shadow edge; the score floors at 20 for flat ROIs.
func saggingScore(f Frame, r rect) float64 {
	if r.x1-r.x0 < 1 || r.y1-r.y0 < 2 {
		return skin.NeutralScore
	}
	var contrast float64
	var total int
	for y := r.y0; y < r.y1-1; y++ {
		for x := r.x0; x < r.x1; x++ {
			a, b, c := f.RGBAAt(x, y)
			d, e, g := f.RGBAAt(x, y+1)
			contrast += math.Abs(lumaOf(a, b, c) - lumaOf(d, e, g))
			total++
		}
	}
	score := contrast / float64(total) * saggingContrastScale
	if score < saggingFloor {
		return saggingFloor
	}
	return score
}

// noseDarknessScores reports pore and blackhead density as the fraction of
// nose pixels darker than the ROI mean by a small and a large margin.
func noseDarknessScores(s roiStats) (pores, blackheads float64) {
	if s.count() == 0 {
		return skin.NeutralScore, skin.NeutralScore
	}
	meanLuma := mean(s.luma)
	var poreHits, blackheadHits int
	for _, l := range s.luma {
		if meanLuma-l > poreDarkDelta {
			poreHits++
		}
		if meanLuma-l > blackheadDarkDelta {
			blackheadHits++
		}
	}
	poreFrac := float64(poreHits) / float64(s.count())
	blackheadFrac := float64(blackheadHits) / float64(s.count())
	return 100 - poreFrac*poreFracScale, 100 - blackheadFrac*blackheadFracScale
}
