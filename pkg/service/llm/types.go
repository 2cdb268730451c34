package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

const (
	// HistoryLimit is the number of active-conversation messages sent to a provider
	HistoryLimit = 16
	// ErrorBodyLimit bounds the provider error text echoed back in a reply
	ErrorBodyLimit = 200

	// DefaultGeminiTimeout bounds a single Gemini model attempt
	DefaultGeminiTimeout = 45 * time.Second
	// DefaultOpenAITimeout bounds a single OpenAI-compatible attempt
	DefaultOpenAITimeout = 60 * time.Second

	// MaxOutputTokens caps reply length for every provider
	MaxOutputTokens = 500
)

// Replies spoken when no provider produced an answer
const (
	NotConfiguredReply = "Sorry, the assistant isn't configured yet. Add a provider API key to the server configuration."
	EmptyReply         = "I didn't get a response."
)

// Request is everything a provider needs for one completion
type Request struct {
	SystemPrompt string
	Context      string
	History      []model.Message
	Message      string
	Temperature  *float32
}

// SystemInstruction combines the system prompt with the assembled context block
func (r *Request) SystemInstruction() string {
	return r.SystemPrompt + "\n\nCurrent context:\n" + r.Context
}

// Completion is the outcome of Gateway.Complete. Reply is always speakable.
type Completion struct {
	Reply    string
	Provider string
	Model    string
	// Failed is set when Reply describes a failure instead of carrying an answer
	Failed bool
}

// Provider is one LLM backend able to try a list of models
type Provider interface {
	Name() string
	Models() []string
	Timeout() time.Duration
	Attempt(ctx context.Context, model string, req *Request) (string, error)
}

// StatusError is returned by providers when the backend answered with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// FailureReply converts the last provider error into a sentence for the user
func FailureReply(err error) string {
	if err == nil {
		return NotConfiguredReply
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return "Sorry, I couldn't process that. Error: " + safe.Truncate(strings.TrimSpace(statusErr.Body), ErrorBodyLimit)
	}
	return "Sorry, I'm having trouble reaching the assistant right now (" + safe.Truncate(err.Error(), ErrorBodyLimit) + ")."
}
