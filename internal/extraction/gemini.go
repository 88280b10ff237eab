package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

const (
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 1000
)

const promptTemplate = `Extract name, preferred country, city, state, and NEET score from the following text and return the result in JSON format: 

%s

 The JSON object should have the following format: { "name": "...", "preferredCountry": "...", "city": "...", "state": "...", "neetScore": "...", "enquiry": false }. Set "enquiry" to true when the lead asks about admissions, fees, courses or universities. DO NOT wrap the response in a code block or use markdown formatting. Only return raw JSON.`

// BuildPrompt returns the instruction sent to the model for text.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// GeminiExtractor implements Extractor with Google's Gemini API.
type GeminiExtractor struct {
	client    *genai.Client
	modelID   string
	maxTokens int32
}

// NewGeminiExtractor creates a Gemini-backed extractor. An empty modelID
// selects gemini-2.0-flash.
func NewGeminiExtractor(ctx context.Context, apiKey, modelID string) (*GeminiExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("extraction: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("extraction: failed to create gemini client: %w", err)
	}
	return &GeminiExtractor{client: client, modelID: modelID, maxTokens: defaultMaxTokens}, nil
}

// Extract asks the model for the lead fields found in text. A response that
// is not a JSON object yields (nil, nil).
func (g *GeminiExtractor) Extract(ctx context.Context, text string) (*Result, error) {
	ctx, span := otel.Tracer("extraction/Gemini").Start(ctx, "Extract",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.request.model", g.modelID),
			attribute.Int("extraction.input_len", len(text)),
		),
	)
	defer span.End()

	model := g.client.GenerativeModel(g.modelID)
	model.SetMaxOutputTokens(g.maxTokens)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(text)))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("extraction: gemini generate failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, nil
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, nil
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			out.WriteString(string(t))
		}
	}

	res, err := Parse(out.String())
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("extraction: unusable model output")
		return nil, nil
	}
	return res, nil
}

// Close releases resources held by the Gemini client.
func (g *GeminiExtractor) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
