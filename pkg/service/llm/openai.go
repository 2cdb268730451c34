package llm

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI calls any OpenAI-compatible chat completions endpoint
type OpenAI struct {
	client  *openai.Client
	models  []string
	timeout time.Duration
	local   bool
}

var _ Provider = (*OpenAI)(nil)

// OpenAIConfig configures the OpenAI-compatible provider
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Models  []string
	Timeout time.Duration
}

// NewOpenAI creates the provider, or returns nil when it cannot authenticate. Local endpoints
// need no key and are sent no bearer credential.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	local := IsLocalEndpoint(cfg.BaseURL)
	if cfg.APIKey == "" && !local {
		return nil
	}

	token := cfg.APIKey
	if local {
		token = ""
	}
	clientConfig := openai.DefaultConfig(token)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	models := cfg.Models
	if len(models) == 0 {
		models = []string{DefaultOpenAIModel}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultOpenAITimeout
	}

	return &OpenAI{
		client:  openai.NewClientWithConfig(clientConfig),
		models:  models,
		timeout: timeout,
		local:   local,
	}
}

// IsLocalEndpoint reports whether baseURL targets the local machine
func IsLocalEndpoint(baseURL string) bool {
	if baseURL == "" {
		return false
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

func (o *OpenAI) Name() string {
	if o.local {
		return "openai-local"
	}
	return "openai"
}

func (o *OpenAI) Models() []string {
	return o.models
}

func (o *OpenAI) Timeout() time.Duration {
	return o.timeout
}

func (o *OpenAI) Attempt(ctx context.Context, model string, req *Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemInstruction(),
	})
	for _, msg := range req.History {
		role := openai.ChatMessageRoleUser
		if msg.Role == types.MessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: MaxOutputTokens,
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
			body := ""
			if reqErr.Err != nil {
				body = reqErr.Err.Error()
			}
			return "", &StatusError{StatusCode: reqErr.HTTPStatusCode, Body: body}
		}
		return "", goerr.Wrap(err, "chat completion request failed", goerr.V("model", model))
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
