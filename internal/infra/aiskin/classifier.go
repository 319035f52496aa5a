package aiskin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
	"github.com/evelynko/skinsight/internal/infra/llm/chatgpt"
	apperrors "github.com/evelynko/skinsight/pkg/errors"
	"github.com/evelynko/skinsight/pkg/metrics"
)

// Config drives the remote skin model adapter.
type Config struct {
	Model           string
	Temperature     float32
	MaxPromptTokens int
}

// ChatClient is the slice of the chatgpt client this adapter needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Classifier adapts an OpenAI-compatible vision model to the scan domain.
// Every failure mode ends in an error the caller resolves to its offline
// fallback; nothing here panics or guesses.
type Classifier struct {
	cfg     Config
	client  ChatClient
	logger  *slog.Logger
	encoder *tiktoken.Tiktoken
}

// NewClassifier constructs the adapter. The token encoder is best-effort:
// without one the budget check is skipped.
func NewClassifier(cfg Config, client ChatClient, logger *slog.Logger) *Classifier {
	encoder, err := tiktoken.EncodingForModel(cfg.Model)
	if err != nil {
		encoder, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			encoder = nil
		}
	}
	return &Classifier{
		cfg:     cfg,
		client:  client,
		logger:  logger.With("component", "aiskin.classifier"),
		encoder: encoder,
	}
}

var _ scan.Classifier = (*Classifier)(nil)

// Classify sends the capture plus the local estimate to the model and parses
// the strict-JSON verdict.
func (c *Classifier) Classify(ctx context.Context, image []byte, local skin.Metrics) (scan.RemoteEstimate, error) {
	userPrompt := c.buildClassifyPrompt(local)
	if err := c.checkPromptBudget(classifySystemPrompt, userPrompt); err != nil {
		return scan.RemoteEstimate{}, err
	}

	completion, err := c.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: classifySystemPrompt},
			{Role: "user", Content: []chatgpt.ContentPart{
				chatgpt.TextPart(userPrompt),
				chatgpt.ImagePart(image, http.DetectContentType(image)),
			}},
		},
	})
	if err != nil {
		return scan.RemoteEstimate{}, apperrors.Wrap("llm_error", "skin classification request failed", err)
	}

	m, summary, err := parseClassifyResponse(completion.FirstContent())
	if err != nil {
		return scan.RemoteEstimate{}, apperrors.Wrap("llm_error", "skin classification response malformed", err)
	}
	return scan.RemoteEstimate{
		Metrics: m,
		Summary: summary,
		Usage:   toUsage(completion.Usage),
	}, nil
}

// ExtractProduct reads a product label photo into a structured record.
func (c *Classifier) ExtractProduct(ctx context.Context, image []byte) (scan.ExtractedProduct, error) {
	if err := c.checkPromptBudget(extractSystemPrompt, extractUserPrompt); err != nil {
		return scan.ExtractedProduct{}, err
	}

	completion, err := c.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: extractSystemPrompt},
			{Role: "user", Content: []chatgpt.ContentPart{
				chatgpt.TextPart(extractUserPrompt),
				chatgpt.ImagePart(image, http.DetectContentType(image)),
			}},
		},
	})
	if err != nil {
		return scan.ExtractedProduct{}, apperrors.Wrap("llm_error", "product extraction request failed", err)
	}

	product, err := parseExtractResponse(completion.FirstContent())
	if err != nil {
		return scan.ExtractedProduct{}, apperrors.Wrap("llm_error", "product extraction response malformed", err)
	}
	product.Usage = toUsage(completion.Usage)
	return product, nil
}

func (c *Classifier) checkPromptBudget(parts ...string) error {
	if c.encoder == nil || c.cfg.MaxPromptTokens <= 0 {
		return nil
	}
	total := 0
	for _, part := range parts {
		total += len(c.encoder.Encode(part, nil, nil))
	}
	if total > c.cfg.MaxPromptTokens {
		return apperrors.Wrap("llm_error",
			fmt.Sprintf("prompt exceeds token budget: %d > %d", total, c.cfg.MaxPromptTokens), nil)
	}
	return nil
}

func (c *Classifier) buildClassifyPrompt(local skin.Metrics) string {
	payload, err := json.Marshal(local)
	if err != nil {
		payload = []byte("{}")
	}
	return "Analyze the facial skin in this photo. A rough pixel-level estimate is provided for" +
		" calibration; correct it where the photo shows otherwise: " + string(payload)
}

func toUsage(u chatgpt.Usage) metrics.TokenUsage {
	return metrics.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

var classifySystemPrompt = buildClassifySystemPrompt()

func buildClassifySystemPrompt() string {
	keys := make([]string, 0, len(skin.ConcernChannels))
	for _, c := range skin.ConcernChannels {
		keys = append(keys, `"`+string(c)+`":number`)
	}
	return "You are a dermatology-trained skin analysis model. Score each dimension 0-100 where" +
		" higher is healthier. Respond ONLY with valid minified JSON using this shape:" +
		` {"summary":string,"metrics":{` + strings.Join(keys, ",") + "}}." +
		" Every metric key is mandatory. The summary is one encouraging sentence under 20 words." +
		" Never return plain text, markdown, or other fields."
}

const extractSystemPrompt = "You are a cosmetic label reader. Extract the product on the photo." +
	` Respond ONLY with valid minified JSON using this shape: {"name":string,"brand":string,` +
	`"type":string,"ingredients":string[],"baseScore":number,"risks":string[],"benefits":string[]}.` +
	" type is one of CLEANSER, TONER, SERUM, MOISTURIZER, SPF, TREATMENT, MAKEUP, FRAGRANCE." +
	" baseScore grades overall formulation quality 0-100. Never return plain text or other fields."

const extractUserPrompt = "Read this product label and return the structured record."
