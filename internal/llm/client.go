package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"tripgen/internal/models"
	"tripgen/internal/providers"

	"github.com/sashabaranov/go-openai/jsonschema"
)

type Request struct {
	Version models.Version
	System  string
	User    string
}

type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// FinishEvent is delivered once per stream. Object is nil when Err is set.
type FinishEvent struct {
	Object models.Record
	Usage  Usage
	Raw    string
	Err    error
}

type ClientInterface interface {
	Generate(ctx context.Context, req Request) (models.Record, Usage, error)
	Stream(ctx context.Context, req Request, onFinish func(FinishEvent)) (*ObjectStream, error)
	Provider() string
}

type backend interface {
	name() string
	complete(ctx context.Context, req Request, schema *jsonschema.Definition, schemaName string) (string, Usage, error)
	stream(ctx context.Context, req Request, schema *jsonschema.Definition, schemaName string, emit func(string) error) (Usage, error)
}

type Client struct {
	backend backend
	timeout time.Duration
	logger  providers.Logger
}

func newClient(b backend, timeout time.Duration, logger providers.Logger) *Client {
	return &Client{backend: b, timeout: timeout, logger: logger}
}

func (c *Client) Provider() string {
	return c.backend.name()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) Generate(ctx context.Context, req Request) (models.Record, Usage, error) {
	schema, name, err := SchemaFor(req.Version)
	if err != nil {
		return nil, Usage{}, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	raw, usage, err := c.backend.complete(ctx, req, schema, name)
	if err != nil {
		return nil, usage, fmt.Errorf("%s completion: %w", c.backend.name(), err)
	}

	rec, err := models.Parse(req.Version, []byte(raw), models.ModeComplete)
	if err != nil {
		return nil, usage, fmt.Errorf("%s returned an invalid %s object: %w", c.backend.name(), req.Version, err)
	}
	return rec, usage, nil
}

// Stream starts generation in the background. Fragments are handed over
// unbuffered; onFinish runs before the fragment channel is closed.
func (c *Client) Stream(ctx context.Context, req Request, onFinish func(FinishEvent)) (*ObjectStream, error) {
	schema, name, err := SchemaFor(req.Version)
	if err != nil {
		return nil, err
	}

	s := newObjectStream(req.Version)
	go func() {
		ctx, cancel := c.withTimeout(ctx)
		defer cancel()
		defer close(s.fragments)

		usage, err := c.backend.stream(ctx, req, schema, name, func(fragment string) error {
			return s.push(ctx, fragment)
		})

		ev := FinishEvent{Usage: usage, Raw: s.raw()}
		if err != nil {
			ev.Err = fmt.Errorf("%s stream: %w", c.backend.name(), err)
		} else {
			rec, parseErr := models.Parse(req.Version, []byte(ev.Raw), models.ModeComplete)
			if parseErr != nil {
				ev.Err = fmt.Errorf("%s returned an invalid %s object: %w", c.backend.name(), req.Version, parseErr)
			} else {
				ev.Object = rec
			}
		}

		if ev.Err != nil {
			c.logger.Errorf(providers.TypeLLM, "%v", ev.Err)
			s.setErr(ev.Err)
		}
		if onFinish != nil {
			onFinish(ev)
		}
	}()

	return s, nil
}

// ObjectStream exposes a generation in progress as raw text fragments and as
// the most recent partial object that could be decoded from them.
type ObjectStream struct {
	version   models.Version
	fragments chan string

	mu      sync.RWMutex
	buf     strings.Builder
	partial models.Record
	err     error
}

func newObjectStream(v models.Version) *ObjectStream {
	return &ObjectStream{version: v, fragments: make(chan string)}
}

func (s *ObjectStream) Fragments() <-chan string {
	return s.fragments
}

func (s *ObjectStream) Partial() models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partial
}

func (s *ObjectStream) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *ObjectStream) raw() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.String()
}

func (s *ObjectStream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *ObjectStream) push(ctx context.Context, fragment string) error {
	if fragment == "" {
		return nil
	}

	s.mu.Lock()
	s.buf.WriteString(fragment)
	if repaired, ok := RepairJSON(s.buf.String()); ok {
		if rec, err := models.Parse(s.version, []byte(repaired), models.ModePartial); err == nil {
			s.partial = rec
		}
	}
	s.mu.Unlock()

	select {
	case s.fragments <- fragment:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
