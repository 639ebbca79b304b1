package llm

import (
	"context"
	"fmt"
	"tripgen/internal/structures"

	"github.com/sashabaranov/go-openai/jsonschema"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type geminiBackend struct {
	client      *genai.Client
	model       string
	temperature float32
}

func newGeminiBackend(ctx context.Context, conf structures.LLMConfig) (*geminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  conf.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := conf.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiBackend{client: client, model: model, temperature: conf.Temperature}, nil
}

func (g *geminiBackend) name() string { return ProviderGemini }

func (g *geminiBackend) config(req Request, schema *jsonschema.Definition) *genai.GenerateContentConfig {
	temp := g.temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    toGeminiSchema(schema),
	}
}

func (g *geminiBackend) contents(req Request) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}
}

func geminiUsage(meta *genai.GenerateContentResponseUsageMetadata) Usage {
	if meta == nil {
		return Usage{}
	}
	return Usage{InputTokens: int(meta.PromptTokenCount), OutputTokens: int(meta.CandidatesTokenCount)}
}

func (g *geminiBackend) complete(ctx context.Context, req Request, schema *jsonschema.Definition, _ string) (string, Usage, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, g.contents(req), g.config(req, schema))
	if err != nil {
		return "", Usage{}, err
	}
	text := res.Text()
	if text == "" {
		return "", geminiUsage(res.UsageMetadata), fmt.Errorf("gemini returned empty text")
	}
	return text, geminiUsage(res.UsageMetadata), nil
}

func (g *geminiBackend) stream(ctx context.Context, req Request, schema *jsonschema.Definition, _ string, emit func(string) error) (Usage, error) {
	var usage Usage
	for res, err := range g.client.Models.GenerateContentStream(ctx, g.model, g.contents(req), g.config(req, schema)) {
		if err != nil {
			return usage, err
		}
		if res.UsageMetadata != nil {
			usage = geminiUsage(res.UsageMetadata)
		}
		if err := emit(res.Text()); err != nil {
			return usage, err
		}
	}
	return usage, nil
}
