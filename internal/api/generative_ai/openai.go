package generativeAI

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// OpenAIClient completes prompts through langchaingo's OpenAI model.
type OpenAIClient struct {
	llm         llms.Model
	model       string
	temperature float64
}

var _ Completer = (*OpenAIClient)(nil)

// langchaingo reports non-200 answers only through the error text.
const openAIQuotaStatus = "status code: 429"

func NewOpenAIClient(apiKey, model string, temperature float32, opts ...openai.Option) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNotConfigured)
	}
	opts = append([]openai.Option{openai.WithToken(apiKey), openai.WithModel(model)}, opts...)
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return &OpenAIClient{llm: llm, model: model, temperature: float64(temperature)}, nil
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "OpenAIComplete", trace.WithAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt_length", len(prompt)),
	))
	defer span.End()

	text, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "OpenAI call failed")
		if strings.Contains(err.Error(), openAIQuotaStatus) {
			return "", fmt.Errorf("openai generate: %w: %v", types.ErrUpstreamQuota, err)
		}
		return "", fmt.Errorf("openai generate: %w: %v", types.ErrUpstream, err)
	}
	if text == "" {
		return "", fmt.Errorf("openai returned an empty response: %w", types.ErrUpstream)
	}
	return text, nil
}
