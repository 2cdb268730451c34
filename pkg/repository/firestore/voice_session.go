package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type voiceSessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newVoiceSessionRepository(client *firestore.Client) *voiceSessionRepository {
	return &voiceSessionRepository{client: client}
}

func (r *voiceSessionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionVoiceSessions))
}

func (r *voiceSessionRepository) Add(ctx context.Context, session *model.VoiceSession) error {
	if _, err := r.collection().Doc(session.ID).Set(ctx, session); err != nil {
		return goerr.Wrap(err, "failed to add voice session", goerr.V("storeID", session.StoreID))
	}

	newestFirst := r.collection().OrderBy("timestamp", firestore.Desc)
	if _, err := trimOldest(ctx, r.client, newestFirst, model.VoiceSessionCeiling, model.VoiceSessionRetain); err != nil {
		return goerr.Wrap(err, "failed to trim voice sessions")
	}
	return nil
}

// ListByStore filters the query in process since Firestore has no substring match
func (r *voiceSessionRepository) ListByStore(ctx context.Context, storeID types.AgentID, query string) ([]*model.VoiceSession, error) {
	iter := r.collection().
		Where("store_id", "==", string(storeID)).
		OrderBy("timestamp", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	sessions := make([]*model.VoiceSession, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate voice sessions", goerr.V("storeID", storeID))
		}

		var s model.VoiceSession
		if err := snap.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal voice session", goerr.V("docID", snap.Ref.ID))
		}
		if s.Matches(query) {
			sessions = append(sessions, &s)
		}
	}
	return sessions, nil
}
