package file

import (
	"context"
	"sort"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

type voiceSessionsDoc struct {
	Sessions []*model.VoiceSession `json:"sessions"`
}

type voiceSessionRepository struct {
	f *File
}

func (r *voiceSessionRepository) load(ctx context.Context) (*voiceSessionsDoc, error) {
	doc := &voiceSessionsDoc{}
	if err := r.f.readJSON(ctx, voiceSessionsFile, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *voiceSessionRepository) Add(ctx context.Context, session *model.VoiceSession) error {
	r.f.voiceMu.Lock()
	defer r.f.voiceMu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	doc.Sessions = append(doc.Sessions, session)
	doc.Sessions = model.TrimRetention(doc.Sessions, model.VoiceSessionCeiling, model.VoiceSessionRetain)
	return r.f.writeJSON(ctx, voiceSessionsFile, doc)
}

func (r *voiceSessionRepository) ListByStore(ctx context.Context, storeID types.AgentID, query string) ([]*model.VoiceSession, error) {
	r.f.voiceMu.Lock()
	defer r.f.voiceMu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*model.VoiceSession, 0)
	for _, s := range doc.Sessions {
		if s.StoreID == storeID && s.Matches(query) {
			result = append(result, s)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}
