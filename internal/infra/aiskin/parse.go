package aiskin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// stripFences removes markdown code fencing some models wrap around JSON.
func stripFences(raw string) string {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	return strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))
}

// parseClassifyResponse enforces the full 13-channel contract. A missing
// channel is a hard error; a malformed number collapses to the neutral score.
func parseClassifyResponse(raw string) (skin.Metrics, string, error) {
	var wire struct {
		Summary string                     `json:"summary"`
		Metrics map[string]json.RawMessage `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &wire); err != nil {
		return skin.Metrics{}, "", err
	}
	if len(wire.Metrics) == 0 {
		return skin.Metrics{}, "", errors.New("metrics object missing")
	}

	var m skin.Metrics
	for _, channel := range skin.ConcernChannels {
		value, ok := wire.Metrics[string(channel)]
		if !ok {
			return skin.Metrics{}, "", fmt.Errorf("metric %q missing", channel)
		}
		m.SetChannel(channel, coerceScore(value))
	}
	m.OverallScore = skin.ComputeOverall(m)

	summary := strings.TrimSpace(wire.Summary)
	if summary == "" {
		return skin.Metrics{}, "", errors.New("summary missing")
	}
	return m, summary, nil
}

func parseExtractResponse(raw string) (scan.ExtractedProduct, error) {
	var wire struct {
		Name        string          `json:"name"`
		Brand       string          `json:"brand"`
		Type        string          `json:"type"`
		Ingredients json.RawMessage `json:"ingredients"`
		BaseScore   json.RawMessage `json:"baseScore"`
		Risks       json.RawMessage `json:"risks"`
		Benefits    json.RawMessage `json:"benefits"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &wire); err != nil {
		return scan.ExtractedProduct{}, err
	}
	if strings.TrimSpace(wire.Name) == "" {
		return scan.ExtractedProduct{}, errors.New("product name missing")
	}

	ingredients, err := coerceStringArray(wire.Ingredients)
	if err != nil {
		return scan.ExtractedProduct{}, err
	}
	risks, err := coerceStringArray(wire.Risks)
	if err != nil {
		return scan.ExtractedProduct{}, err
	}
	benefits, err := coerceStringArray(wire.Benefits)
	if err != nil {
		return scan.ExtractedProduct{}, err
	}

	return scan.ExtractedProduct{
		Name:        strings.TrimSpace(wire.Name),
		Brand:       strings.TrimSpace(wire.Brand),
		Type:        wire.Type,
		Ingredients: ingredients,
		BaseScore:   coerceScore(wire.BaseScore),
		Risks:       risks,
		Benefits:    benefits,
	}, nil
}

// coerceScore accepts numbers and numeric strings; anything else reads as
// the neutral score so one bad field never sinks the whole response.
func coerceScore(raw json.RawMessage) int {
	if len(raw) == 0 {
		return skin.NeutralScore
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return skin.SanitizeScore(num)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return skin.SanitizeScore(parsed)
		}
	}
	return skin.NeutralScore
}

func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(many))
		for _, item := range many {
			if clean := strings.TrimSpace(item); clean != "" {
				out = append(out, clean)
			}
		}
		return out, nil
	default:
		return nil, errors.New("unsupported array format")
	}
}
