package llm

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
)

// ClientFactory builds a gollem client bound to one model
type ClientFactory func(ctx context.Context, model string) (gollem.LLMClient, error)

// Vertex calls Gemini models on Vertex AI through gollem
type Vertex struct {
	factory ClientFactory
	models  []string
	timeout time.Duration

	mu      sync.Mutex
	clients map[string]gollem.LLMClient
}

var _ Provider = (*Vertex)(nil)

// VertexClientFactory returns a factory creating Vertex AI clients for project and location
func VertexClientFactory(projectID, location string) ClientFactory {
	return func(ctx context.Context, model string) (gollem.LLMClient, error) {
		client, err := gemini.New(ctx, projectID, location, gemini.WithModel(model))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Vertex AI client",
				goerr.V("project", projectID),
				goerr.V("location", location),
				goerr.V("model", model))
		}
		return client, nil
	}
}

// NewVertex creates the Vertex AI provider
func NewVertex(factory ClientFactory, models []string, timeout time.Duration) *Vertex {
	if len(models) == 0 {
		models = DefaultGeminiModels
	}
	if timeout <= 0 {
		timeout = DefaultGeminiTimeout
	}
	return &Vertex{
		factory: factory,
		models:  models,
		timeout: timeout,
		clients: make(map[string]gollem.LLMClient),
	}
}

func (v *Vertex) Name() string {
	return "vertex"
}

func (v *Vertex) Models() []string {
	return v.models
}

func (v *Vertex) Timeout() time.Duration {
	return v.timeout
}

func (v *Vertex) client(ctx context.Context, model string) (gollem.LLMClient, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if c, ok := v.clients[model]; ok {
		return c, nil
	}
	c, err := v.factory(ctx, model)
	if err != nil {
		return nil, err
	}
	v.clients[model] = c
	return c, nil
}

func (v *Vertex) Attempt(ctx context.Context, model string, req *Request) (string, error) {
	client, err := v.client(ctx, model)
	if err != nil {
		return "", err
	}

	session, err := client.NewSession(ctx, gollem.WithSessionSystemPrompt(req.SystemInstruction()))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create session", goerr.V("model", model))
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(renderTranscript(req))})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.V("model", model))
	}

	return strings.Join(resp.Texts, ""), nil
}

// renderTranscript flattens history and the new message into one prompt
func renderTranscript(req *Request) string {
	if len(req.History) == 0 {
		return req.Message
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, msg := range req.History {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nuser: ")
	b.WriteString(req.Message)
	return b.String()
}
