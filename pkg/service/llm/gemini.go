package llm

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"google.golang.org/genai"
)

// DefaultGeminiModels is tried in order when no model list is configured
var DefaultGeminiModels = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}

// Gemini calls the Gemini API with an API key
type Gemini struct {
	client  *genai.Client
	models  []string
	timeout time.Duration
}

var _ Provider = (*Gemini)(nil)

type GeminiOption func(*geminiOptions)

type geminiOptions struct {
	models  []string
	timeout time.Duration
	baseURL string
}

// WithGeminiModels sets the ordered model candidates
func WithGeminiModels(models []string) GeminiOption {
	return func(o *geminiOptions) {
		if len(models) > 0 {
			o.models = models
		}
	}
}

// WithGeminiTimeout sets the per-attempt timeout
func WithGeminiTimeout(d time.Duration) GeminiOption {
	return func(o *geminiOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithGeminiBaseURL overrides the API endpoint
func WithGeminiBaseURL(url string) GeminiOption {
	return func(o *geminiOptions) {
		o.baseURL = url
	}
}

// NewGemini creates the Gemini provider. An empty API key yields nil, nil: the provider is not registered.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, nil
	}

	o := &geminiOptions{
		models:  DefaultGeminiModels,
		timeout: DefaultGeminiTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini API client")
	}

	return &Gemini{client: client, models: o.models, timeout: o.timeout}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Models() []string {
	return g.models
}

func (g *Gemini) Timeout() time.Duration {
	return g.timeout
}

func (g *Gemini) Attempt(ctx context.Context, model string, req *Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		var role genai.Role = genai.RoleUser
		if msg.Role == types.MessageRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction(), genai.RoleUser),
		MaxOutputTokens:   MaxOutputTokens,
		Temperature:       req.Temperature,
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return "", goerr.Wrap(err, "gemini request failed", goerr.V("model", model))
	}

	return resp.Text(), nil
}
