package widget

import (
	"context"
	"errors"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

// ErrRecognizerUnsupported is returned by Recognizer.Start when recognition is unavailable
var ErrRecognizerUnsupported = errors.New("speech recognition not supported")

// ErrQuotaExceeded is matched by QuotaError
var ErrQuotaExceeded = errors.New("usage limit reached")

// QuotaError is returned by TurnClient when the server rejected the turn for quota. Message is
// the server's user-facing text.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	return "usage limit reached: " + e.Message
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// Recognizer turns speech into EventFragment, EventRecognitionEnd and EventRecognitionError events
// delivered through emit. Start must not block.
type Recognizer interface {
	Start(ctx context.Context, emit func(Event)) error
	Stop()
}

// Synthesizer speaks text. Speak blocks until playback completes or Cancel is called.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Recorder captures raw audio of a turn
type Recorder interface {
	Start(ctx context.Context) error
	// Stop ends capture and returns the recorded audio
	Stop() ([]byte, error)
	Discard()
}

// TurnRequest is one turn sent to the server
type TurnRequest struct {
	Message string
	Memory  *model.Memory
	AgentID types.AgentID
}

// TurnResponse is the server's answer
type TurnResponse struct {
	Reply  string
	Memory *model.Memory
}

// TurnClient submits turns to the server
type TurnClient interface {
	Send(ctx context.Context, req *TurnRequest) (*TurnResponse, error)
}

// Recording is a finished turn recording ready for upload
type Recording struct {
	Audio        []byte
	StoreID      types.AgentID
	UserID       string
	Transcript   string
	AIResponse   string
	ConsentGiven bool
}

// VoiceUploader stores a consented recording
type VoiceUploader interface {
	Upload(ctx context.Context, rec *Recording) error
}

// LocalStore is the client-side persistence of memory, consent and user id
type LocalStore interface {
	LoadMemory() (*model.Memory, error)
	SaveMemory(mem *model.Memory) error
	LoadConsent(agentID types.AgentID) (types.ConsentStatus, error)
	SaveConsent(agentID types.AgentID, status types.ConsentStatus) error
	// UserID returns the persisted client user id, creating one on first use
	UserID() (string, error)
}

// Presenter renders machine output to the user
type Presenter interface {
	StateChanged(from, to State)
	Notice(text string)
	Transcript(text string)
	Reply(text string)
	PromptConsent()
}
