package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tripgen/internal/models"
	"tripgen/internal/providers"
	"tripgen/internal/structures"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

var SupportedProviders = []string{ProviderOpenAI, ProviderGemini, ProviderMock}

var (
	ErrMissingCredential   = errors.New("missing LLM credential")
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")
)

// NewClient selects the backend named by llm.provider. Credentials are
// checked before any client is built.
func NewClient(conf *structures.Config, logger providers.Logger) (*Client, error) {
	b, err := newBackend(conf.LLM)
	if err != nil {
		return nil, err
	}
	return newClient(b, conf.LLM.Timeout, logger), nil
}

func newBackend(conf structures.LLMConfig) (backend, error) {
	switch strings.ToLower(strings.TrimSpace(conf.Provider)) {
	case ProviderOpenAI:
		if conf.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrMissingCredential)
		}
		return newOpenAIBackend(conf), nil
	case ProviderGemini:
		if conf.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrMissingCredential)
		}
		return newGeminiBackend(context.Background(), conf)
	case ProviderMock:
		return &mockBackend{}, nil
	}
	return nil, fmt.Errorf("%w %q, supported providers: %s", ErrUnsupportedProvider, conf.Provider, strings.Join(SupportedProviders, ", "))
}

// NewClientProvider never fails: a misconfigured provider yields a client
// whose calls return the construction error, so the rest of the service
// keeps serving.
func NewClientProvider(conf *structures.Config, logger providers.Logger) ClientInterface {
	client, err := NewClient(conf, logger)
	if err != nil {
		logger.Errorf(providers.TypeLLM, "LLM client unavailable: %v", err)
		return &misconfiguredClient{provider: conf.LLM.Provider, err: err}
	}
	logger.Infof(providers.TypeLLM, "LLM provider %s ready", client.Provider())
	return client
}

type misconfiguredClient struct {
	provider string
	err      error
}

func (m *misconfiguredClient) Generate(_ context.Context, _ Request) (models.Record, Usage, error) {
	return nil, Usage{}, m.err
}

func (m *misconfiguredClient) Stream(_ context.Context, _ Request, _ func(FinishEvent)) (*ObjectStream, error) {
	return nil, m.err
}

func (m *misconfiguredClient) Provider() string {
	return m.provider
}
