package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

type conversationLogRepository struct {
	mu      sync.RWMutex
	entries []*model.ConversationLog
}

func newConversationLogRepository() *conversationLogRepository {
	return &conversationLogRepository{}
}

func (r *conversationLogRepository) Append(ctx context.Context, log *model.ConversationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *log
	r.entries = append(r.entries, &copied)
	r.entries = model.TrimRetention(r.entries, model.ConversationLogCeiling, model.ConversationLogRetain)
	return nil
}

func (r *conversationLogRepository) ListByAgent(ctx context.Context, agentID types.AgentID) ([]*model.ConversationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.ConversationLog, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].AgentID == agentID {
			copied := *r.entries[i]
			result = append(result, &copied)
		}
	}
	return result, nil
}
