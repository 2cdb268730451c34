package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

// Repository defines the interface for data persistence
type Repository interface {
	Memory() MemoryRepository
	Agent() AgentRepository
	ConversationLog() ConversationLogRepository
	VoiceSession() VoiceSessionRepository

	Close() error
}

// MemoryRepository persists the single conversational memory document
type MemoryRepository interface {
	// Load returns the stored memory. A missing document yields an empty Memory and no error.
	Load(ctx context.Context) (*model.Memory, error)

	// Save replaces the stored memory document
	Save(ctx context.Context, mem *model.Memory) error
}

// AgentRepository stores per-store agent records
type AgentRepository interface {
	// Get returns the agent or nil (with no error) if it does not exist
	Get(ctx context.Context, id types.AgentID) (*model.Agent, error)

	// Put creates or replaces an agent record
	Put(ctx context.Context, agent *model.Agent) error

	// List returns all agents
	List(ctx context.Context) ([]*model.Agent, error)

	// IncrementUsage adds one to the used count, stamps last-active time and returns the updated agent.
	// A missing agent yields nil with no error.
	IncrementUsage(ctx context.Context, id types.AgentID, now time.Time) (*model.Agent, error)
}

// ConversationLogRepository stores completed turns for operators
type ConversationLogRepository interface {
	// Append adds an entry and applies the retention ceiling
	Append(ctx context.Context, log *model.ConversationLog) error

	// ListByAgent returns the agent's entries, newest first
	ListByAgent(ctx context.Context, agentID types.AgentID) ([]*model.ConversationLog, error)
}

// VoiceSessionRepository stores consented voice recordings metadata
type VoiceSessionRepository interface {
	// Add appends a session record and applies the retention ceiling
	Add(ctx context.Context, session *model.VoiceSession) error

	// ListByStore returns the store's sessions matching query (empty matches all), newest first
	ListByStore(ctx context.Context, storeID types.AgentID, query string) ([]*model.VoiceSession, error)
}
