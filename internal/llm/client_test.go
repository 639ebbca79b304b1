package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"tripgen/internal/models"
	"tripgen/internal/testutil"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokyoPlan = `{"title":"Test Tokyo Trip","target":"engineer","days":[{"day":1,"events":[["09:00","Shibuya Crossing","Visit Shibuya Crossing","spot","Famous scramble crossing","Shibuya Crossing Tokyo"]]}]}`

type fakeBackend struct {
	chunks    []string
	usage     Usage
	err       error
	gotSchema string
}

func (f *fakeBackend) name() string { return "fake" }

func (f *fakeBackend) complete(_ context.Context, _ Request, _ *jsonschema.Definition, schemaName string) (string, Usage, error) {
	f.gotSchema = schemaName
	return strings.Join(f.chunks, ""), f.usage, f.err
}

func (f *fakeBackend) stream(_ context.Context, _ Request, _ *jsonschema.Definition, schemaName string, emit func(string) error) (Usage, error) {
	f.gotSchema = schemaName
	for _, c := range f.chunks {
		if err := emit(c); err != nil {
			return f.usage, err
		}
	}
	return f.usage, f.err
}

func chunked(s string, size int) []string {
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	return append(out, s)
}

func TestClient_Generate(t *testing.T) {
	b := &fakeBackend{chunks: []string{tokyoPlan}, usage: Usage{InputTokens: 10, OutputTokens: 20}}
	c := newClient(b, time.Second, &testutil.MockLogger{})

	rec, usage, err := c.Generate(context.Background(), Request{Version: models.VersionV1})
	require.NoError(t, err)
	assert.Equal(t, "Test Tokyo Trip", rec.(*models.Plan).Title)
	assert.Equal(t, 20, usage.OutputTokens)
	assert.Equal(t, "travel_plan", b.gotSchema)
}

func TestClient_GenerateRejectsInvalidObject(t *testing.T) {
	b := &fakeBackend{chunks: []string{`{"title":"x"}`}}
	c := newClient(b, time.Second, &testutil.MockLogger{})

	_, _, err := c.Generate(context.Background(), Request{Version: models.VersionV1})
	var vErr *models.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestClient_Stream(t *testing.T) {
	b := &fakeBackend{chunks: chunked(tokyoPlan, 7), usage: Usage{InputTokens: 3, OutputTokens: 4}}
	c := newClient(b, time.Second, &testutil.MockLogger{})

	var finished FinishEvent
	s, err := c.Stream(context.Background(), Request{Version: models.VersionV1}, func(ev FinishEvent) {
		finished = ev
	})
	require.NoError(t, err)

	var sb strings.Builder
	sawPartial := false
	for fragment := range s.Fragments() {
		sb.WriteString(fragment)
		if p, ok := s.Partial().(*models.Plan); ok && p.Title != "" {
			sawPartial = true
		}
	}

	assert.Equal(t, tokyoPlan, sb.String())
	assert.True(t, sawPartial)
	require.NoError(t, s.Err())
	require.NoError(t, finished.Err)
	assert.Equal(t, Usage{InputTokens: 3, OutputTokens: 4}, finished.Usage)
	assert.Equal(t, "Shibuya Crossing", finished.Object.(*models.Plan).Days[0].Events[0].Name)
	assert.Equal(t, finished.Object, s.Partial())
}

func TestClient_StreamBackendError(t *testing.T) {
	b := &fakeBackend{err: errors.New("upstream 503")}
	logger := &testutil.MockLogger{}
	c := newClient(b, time.Second, logger)

	var finished FinishEvent
	s, err := c.Stream(context.Background(), Request{Version: models.VersionV2}, func(ev FinishEvent) {
		finished = ev
	})
	require.NoError(t, err)

	for range s.Fragments() {
		t.Fatal("no fragments expected")
	}
	assert.ErrorContains(t, s.Err(), "upstream 503")
	assert.Error(t, finished.Err)
	assert.Nil(t, finished.Object)
	assert.Equal(t, 1, logger.Count("error"))
}

func TestClient_StreamStopsWhenCallerGoesAway(t *testing.T) {
	b := &fakeBackend{chunks: chunked(tokyoPlan, 3)}
	c := newClient(b, time.Second, &testutil.MockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan FinishEvent, 1)
	s, err := c.Stream(ctx, Request{Version: models.VersionV1}, func(ev FinishEvent) { done <- ev })
	require.NoError(t, err)

	<-s.Fragments()
	cancel()

	select {
	case ev := <-done:
		assert.ErrorIs(t, ev.Err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("stream did not finish after cancellation")
	}
}

func TestClient_UnknownVersion(t *testing.T) {
	c := newClient(&fakeBackend{}, time.Second, &testutil.MockLogger{})
	_, err := c.Stream(context.Background(), Request{Version: "v7"}, nil)
	assert.Error(t, err)
}

func TestMockClient_SamplesAreValid(t *testing.T) {
	c := NewMockClient(&testutil.MockLogger{})
	for _, v := range models.Versions {
		rec, _, err := c.Generate(context.Background(), Request{Version: v})
		require.NoError(t, err, v)
		assert.Equal(t, v, rec.RecordVersion())

		var finished FinishEvent
		s, err := c.Stream(context.Background(), Request{Version: v}, func(ev FinishEvent) { finished = ev })
		require.NoError(t, err)
		for range s.Fragments() {
		}
		require.NoError(t, finished.Err, v)
		assert.Equal(t, rec, finished.Object)
	}
}
