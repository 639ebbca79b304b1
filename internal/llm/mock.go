package llm

import (
	"context"
	"tripgen/internal/models"
	"tripgen/internal/providers"

	"github.com/sashabaranov/go-openai/jsonschema"
)

const mockChunkSize = 24

var mockSamples = map[models.Version]string{
	models.VersionV1: `{"title":"Tokyo tech weekend","target":"engineer","days":[{"day":1,"events":[` +
		`["09:00","Shibuya Crossing","Visit Shibuya Crossing","spot","Famous scramble crossing","Shibuya Crossing Tokyo"],` +
		`["12:30","Afuri Ebisu","Yuzu ramen lunch","food","Queue moves fast",null],` +
		`["14:00","Tokyo Innovation Base","Two hours of focused work","work","Free wifi and outlets",null]]}]}`,
	models.VersionV2: `{"mission_title":"Osaka neon hunt","intro":"Night falls over Dotonbori. Your mission starts now.",` +
		`"target_spot":{"name":"Dotonbori","map_query":"Dotonbori Osaka"},"atmosphere":"Loud, bright and smelling of takoyaki",` +
		`"quests":[{"title":"Find the crab","description":"Spot the giant moving crab sign","gear":"Camera"},` +
		`{"title":"Street snack","description":"Eat takoyaki from a canal-side stall","gear":"Napkins"}],` +
		`"affiliate":{"item":"Portable charger","reason":"Night photos drain batteries","search_keyword":"power bank"}}`,
	models.VersionV3: `{"title":"Sapporo in one day","intro":"A compact loop around the city centre.","base_area":"Sapporo Station",` +
		`"itinerary":[{"day":1,"maps_url":"https://www.google.com/maps/dir/Sapporo+Station/Odori+Park",` +
		`"events":[{"t":"09:00","n":"Odori Park","q":"Odori Park Sapporo","d":"Morning stroll along the park","type":"spot"},` +
		`{"t":"12:00","n":"Nijo Market","q":"Nijo Market Sapporo","d":"Seafood bowl lunch","type":"food"}]}],` +
		`"affiliate":{"label":"Hokkaido rail pass","url":"https://www.jrhokkaido.co.jp/global/"}}`,
}

// mockBackend streams canned plans so that the service runs without
// provider credentials.
type mockBackend struct{}

func (m *mockBackend) name() string { return ProviderMock }

func (m *mockBackend) complete(_ context.Context, req Request, _ *jsonschema.Definition, _ string) (string, Usage, error) {
	sample := mockSamples[req.Version]
	return sample, Usage{InputTokens: len(req.System) + len(req.User), OutputTokens: len(sample)}, nil
}

func (m *mockBackend) stream(ctx context.Context, req Request, schema *jsonschema.Definition, schemaName string, emit func(string) error) (Usage, error) {
	sample, usage, _ := m.complete(ctx, req, schema, schemaName)
	for len(sample) > 0 {
		n := min(mockChunkSize, len(sample))
		if err := emit(sample[:n]); err != nil {
			return usage, err
		}
		sample = sample[n:]
	}
	return usage, nil
}

func NewMockClient(logger providers.Logger) *Client {
	return newClient(&mockBackend{}, 0, logger)
}
