package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"tripgen/internal/structures"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const defaultOpenAIModel = openai.GPT4oMini

type openAIBackend struct {
	client      *openai.Client
	model       string
	temperature float32
}

func newOpenAIBackend(conf structures.LLMConfig) *openAIBackend {
	cfg := openai.DefaultConfig(conf.OpenAIAPIKey)
	if conf.OpenAIURL != "" {
		cfg.BaseURL = conf.OpenAIURL
	}
	model := conf.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAIBackend{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: conf.Temperature,
	}
}

func (o *openAIBackend) name() string { return ProviderOpenAI }

func (o *openAIBackend) request(req Request, schema *jsonschema.Definition, schemaName string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: false,
			},
		},
	}
}

func (o *openAIBackend) complete(ctx context.Context, req Request, schema *jsonschema.Definition, schemaName string) (string, Usage, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.request(req, schema, schemaName))
	if err != nil {
		return "", Usage{}, err
	}
	usage := Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	if len(resp.Choices) == 0 {
		return "", usage, errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, usage, nil
}

func (o *openAIBackend) stream(ctx context.Context, req Request, schema *jsonschema.Definition, schemaName string, emit func(string) error) (Usage, error) {
	r := o.request(req, schema, schemaName)
	r.Stream = true
	r.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := o.client.CreateChatCompletionStream(ctx, r)
	if err != nil {
		return Usage{}, err
	}
	defer stream.Close()

	var usage Usage
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return usage, nil
		}
		if err != nil {
			return usage, fmt.Errorf("receive: %w", err)
		}
		if chunk.Usage != nil {
			usage = Usage{InputTokens: chunk.Usage.PromptTokens, OutputTokens: chunk.Usage.CompletionTokens}
		}
		for _, choice := range chunk.Choices {
			if err := emit(choice.Delta.Content); err != nil {
				return usage, err
			}
		}
	}
}
