package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

type voiceSessionRepository struct {
	mu       sync.RWMutex
	sessions []*model.VoiceSession
}

func newVoiceSessionRepository() *voiceSessionRepository {
	return &voiceSessionRepository{}
}

func (r *voiceSessionRepository) Add(ctx context.Context, session *model.VoiceSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions = append(r.sessions, &copied)
	r.sessions = model.TrimRetention(r.sessions, model.VoiceSessionCeiling, model.VoiceSessionRetain)
	return nil
}

func (r *voiceSessionRepository) ListByStore(ctx context.Context, storeID types.AgentID, query string) ([]*model.VoiceSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.VoiceSession, 0)
	for _, s := range r.sessions {
		if s.StoreID == storeID && s.Matches(query) {
			copied := *s
			result = append(result, &copied)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}
