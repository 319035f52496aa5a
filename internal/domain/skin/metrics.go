package skin

import "math"

// Channel identifies one measured skin dimension. Every channel is stored on
// a 0-100 scale where higher is always healthier, whatever the underlying
// measurement direction was.
type Channel string

const (
	ChannelOverall     Channel = "overallScore"
	ChannelAcneActive  Channel = "acneActive"
	ChannelAcneScars   Channel = "acneScars"
	ChannelPoreSize    Channel = "poreSize"
	ChannelBlackheads  Channel = "blackheads"
	ChannelWrinkleFine Channel = "wrinkleFine"
	ChannelWrinkleDeep Channel = "wrinkleDeep"
	ChannelSagging     Channel = "sagging"
	ChannelPigment     Channel = "pigmentation"
	ChannelRedness     Channel = "redness"
	ChannelTexture     Channel = "texture"
	ChannelHydration   Channel = "hydration"
	ChannelOiliness    Channel = "oiliness"
	ChannelDarkCircles Channel = "darkCircles"
)

// ConcernChannels lists the 13 measurable channels in their canonical order.
// The order doubles as the deterministic tie-break for concern ranking, so it
// must never be reshuffled.
var ConcernChannels = []Channel{
	ChannelAcneActive,
	ChannelAcneScars,
	ChannelPoreSize,
	ChannelBlackheads,
	ChannelWrinkleFine,
	ChannelWrinkleDeep,
	ChannelSagging,
	ChannelPigment,
	ChannelRedness,
	ChannelTexture,
	ChannelHydration,
	ChannelOiliness,
	ChannelDarkCircles,
}

// Metrics is the canonical per-capture skin record.
type Metrics struct {
	OverallScore int `json:"overallScore"`
	AcneActive   int `json:"acneActive"`
	AcneScars    int `json:"acneScars"`
	PoreSize     int `json:"poreSize"`
	Blackheads   int `json:"blackheads"`
	WrinkleFine  int `json:"wrinkleFine"`
	WrinkleDeep  int `json:"wrinkleDeep"`
	Sagging      int `json:"sagging"`
	Pigmentation int `json:"pigmentation"`
	Redness      int `json:"redness"`
	Texture      int `json:"texture"`
	Hydration    int `json:"hydration"`
	Oiliness     int `json:"oiliness"`
	DarkCircles  int `json:"darkCircles"`
}

// Channel returns the value stored for c; unknown channels read as 0.
func (m Metrics) Channel(c Channel) int {
	switch c {
	case ChannelOverall:
		return m.OverallScore
	case ChannelAcneActive:
		return m.AcneActive
	case ChannelAcneScars:
		return m.AcneScars
	case ChannelPoreSize:
		return m.PoreSize
	case ChannelBlackheads:
		return m.Blackheads
	case ChannelWrinkleFine:
		return m.WrinkleFine
	case ChannelWrinkleDeep:
		return m.WrinkleDeep
	case ChannelSagging:
		return m.Sagging
	case ChannelPigment:
		return m.Pigmentation
	case ChannelRedness:
		return m.Redness
	case ChannelTexture:
		return m.Texture
	case ChannelHydration:
		return m.Hydration
	case ChannelOiliness:
		return m.Oiliness
	case ChannelDarkCircles:
		return m.DarkCircles
	}
	return 0
}

// SetChannel writes v into the field addressed by c.
func (m *Metrics) SetChannel(c Channel, v int) {
	switch c {
	case ChannelOverall:
		m.OverallScore = v
	case ChannelAcneActive:
		m.AcneActive = v
	case ChannelAcneScars:
		m.AcneScars = v
	case ChannelPoreSize:
		m.PoreSize = v
	case ChannelBlackheads:
		m.Blackheads = v
	case ChannelWrinkleFine:
		m.WrinkleFine = v
	case ChannelWrinkleDeep:
		m.WrinkleDeep = v
	case ChannelSagging:
		m.Sagging = v
	case ChannelPigment:
		m.Pigmentation = v
	case ChannelRedness:
		m.Redness = v
	case ChannelTexture:
		m.Texture = v
	case ChannelHydration:
		m.Hydration = v
	case ChannelOiliness:
		m.Oiliness = v
	case ChannelDarkCircles:
		m.DarkCircles = v
	}
}

const (
	normalizeFloor = 18
	normalizeCeil  = 98

	// NeutralScore replaces malformed numeric values coming back from any
	// collaborator.
	NeutralScore = 70
)

// Normalize is the single safety valve between raw heuristic output and the
// rest of the system. Scores never reach the extremes so downstream copy
// never has to present false certainty.
func Normalize(raw float64) int {
	if math.IsNaN(raw) {
		return normalizeFloor
	}
	if raw < normalizeFloor {
		raw = normalizeFloor
	}
	if raw > normalizeCeil {
		raw = normalizeCeil
	}
	return int(math.Floor(raw))
}

// SanitizeScore coerces an untrusted numeric value into a safe 0-100 score.
// NaN and infinities become the neutral default instead of propagating.
func SanitizeScore(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NeutralScore
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

const (
	localBlendWeight  = 0.20
	remoteBlendWeight = 0.80
)

// Blend merges a pixel-derived estimate with a remote AI estimate at a fixed
// 20/80 ratio. The remote side is trusted for context (it can tell peeling
// skin from acne); the local side damps transient hallucination.
func Blend(local, remote Metrics) Metrics {
	var out Metrics
	channels := append([]Channel{ChannelOverall}, ConcernChannels...)
	for _, c := range channels {
		mixed := float64(local.Channel(c))*localBlendWeight + float64(remote.Channel(c))*remoteBlendWeight
		out.SetChannel(c, int(math.Round(mixed)))
	}
	return out
}

// AverageMetrics reduces a buffered frame series to one record by arithmetic
// per-channel mean, rounded to nearest. Empty input yields the zero record.
func AverageMetrics(series []Metrics) Metrics {
	if len(series) == 0 {
		return Metrics{}
	}
	var out Metrics
	channels := append([]Channel{ChannelOverall}, ConcernChannels...)
	for _, c := range channels {
		sum := 0
		for _, m := range series {
			sum += m.Channel(c)
		}
		out.SetChannel(c, int(math.Round(float64(sum)/float64(len(series)))))
	}
	return out
}

// overallWeights holds the fixed per-channel contribution to the composite
// score. Acne, redness and texture dominate; dark circles barely move it.
var overallWeights = map[Channel]float64{
	ChannelAcneActive:  1.5,
	ChannelAcneScars:   1.5,
	ChannelRedness:     1.5,
	ChannelTexture:     1.5,
	ChannelPigment:     1.2,
	ChannelPoreSize:    1.0,
	ChannelBlackheads:  1.0,
	ChannelWrinkleFine: 0.8,
	ChannelWrinkleDeep: 0.8,
	ChannelSagging:     0.8,
	ChannelHydration:   0.8,
	ChannelOiliness:    0.8,
	ChannelDarkCircles: 0.5,
}

// ComputeOverall derives the composite score as the weighted mean of the
// concern channels. It is never measured independently.
func ComputeOverall(m Metrics) int {
	var weighted, total float64
	for _, c := range ConcernChannels {
		w := overallWeights[c]
		weighted += float64(m.Channel(c)) * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return Normalize(weighted / total)
}
