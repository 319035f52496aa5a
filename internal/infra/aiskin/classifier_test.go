package aiskin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evelynko/skinsight/internal/domain/skin"
	"github.com/evelynko/skinsight/internal/infra/llm/chatgpt"
)

func metricsJSON(score int) string {
	parts := make([]string, 0, len(skin.ConcernChannels))
	for _, c := range skin.ConcernChannels {
		parts = append(parts, fmt.Sprintf("%q:%d", string(c), score))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func TestParseClassifyResponse(t *testing.T) {
	raw := `{"summary":"Healthy glow overall.","metrics":` + metricsJSON(82) + `}`
	m, summary, err := parseClassifyResponse(raw)
	require.NoError(t, err)
	require.Equal(t, "Healthy glow overall.", summary)
	for _, c := range skin.ConcernChannels {
		require.Equal(t, 82, m.Channel(c))
	}
	require.Equal(t, skin.ComputeOverall(m), m.OverallScore)
}

func TestParseClassifyResponseStripsFences(t *testing.T) {
	raw := "```json\n" + `{"summary":"Looks calm.","metrics":` + metricsJSON(70) + `}` + "\n```"
	_, summary, err := parseClassifyResponse(raw)
	require.NoError(t, err)
	require.Equal(t, "Looks calm.", summary)
}

func TestParseClassifyResponseMissingChannel(t *testing.T) {
	raw := `{"summary":"Partial.","metrics":{"acneActive":50}}`
	_, _, err := parseClassifyResponse(raw)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestParseClassifyResponseMalformedNumber(t *testing.T) {
	payload := metricsJSON(80)
	payload = strings.Replace(payload, `"redness":80`, `"redness":"not-a-number"`, 1)
	raw := `{"summary":"Odd values.","metrics":` + payload + `}`
	m, _, err := parseClassifyResponse(raw)
	require.NoError(t, err)
	require.Equal(t, skin.NeutralScore, m.Redness)
	require.Equal(t, 80, m.Texture)
}

func TestParseClassifyResponseOutOfRangeClamps(t *testing.T) {
	payload := metricsJSON(80)
	payload = strings.Replace(payload, `"hydration":80`, `"hydration":180`, 1)
	payload = strings.Replace(payload, `"oiliness":80`, `"oiliness":-40`, 1)
	raw := `{"summary":"Wild values.","metrics":` + payload + `}`
	m, _, err := parseClassifyResponse(raw)
	require.NoError(t, err)
	require.Equal(t, 100, m.Hydration)
	require.Equal(t, 0, m.Oiliness)
}

func TestParseExtractResponse(t *testing.T) {
	raw := "```json\n" + `{"name":" Glow Serum ","brand":"Labmuffin","type":"serum",` +
		`"ingredients":["Niacinamide"," Water ",""],"baseScore":"85","risks":[],"benefits":["Brightening"]}` + "\n```"
	p, err := parseExtractResponse(raw)
	require.NoError(t, err)
	require.Equal(t, "Glow Serum", p.Name)
	require.Equal(t, "serum", p.Type)
	require.Equal(t, []string{"Niacinamide", "Water"}, p.Ingredients)
	require.Equal(t, 85, p.BaseScore)
	require.Empty(t, p.Risks)
}

func TestParseExtractResponseSingleStringArray(t *testing.T) {
	raw := `{"name":"Mist","type":"TONER","ingredients":"Rose Water","baseScore":70}`
	p, err := parseExtractResponse(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"Rose Water"}, p.Ingredients)
}

func TestParseExtractResponseRequiresName(t *testing.T) {
	_, err := parseExtractResponse(`{"name":"","type":"SERUM"}`)
	require.Error(t, err)
}

type stubChatClient struct {
	content string
	usage   chatgpt.Usage
	err     error
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, _ chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	var resp chatgpt.ChatCompletionResponse
	resp.Choices = make([]struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Choices[0].Message.Content = s.content
	resp.Usage = s.usage
	return resp, nil
}

func newTestClassifier(client ChatClient) *Classifier {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClassifier(Config{Model: "gpt-4o-mini", MaxPromptTokens: 4000}, client, logger)
}

func TestClassifySurfacesUsage(t *testing.T) {
	stub := &stubChatClient{
		content: `{"summary":"Balanced.","metrics":` + metricsJSON(75) + `}`,
		usage:   chatgpt.Usage{PromptTokens: 900, CompletionTokens: 120, TotalTokens: 1020},
	}
	estimate, err := newTestClassifier(stub).Classify(context.Background(), []byte("img"), skin.Metrics{})
	require.NoError(t, err)
	require.Equal(t, 1020, estimate.Usage.TotalTokens)
	require.Equal(t, "Balanced.", estimate.Summary)
}

func TestClassifyMalformedResponseErrors(t *testing.T) {
	stub := &stubChatClient{content: "I cannot help with that."}
	_, err := newTestClassifier(stub).Classify(context.Background(), []byte("img"), skin.Metrics{})
	require.Error(t, err)
}
