package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type conversationLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newConversationLogRepository(client *firestore.Client) *conversationLogRepository {
	return &conversationLogRepository{client: client}
}

func (r *conversationLogRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionConversationLogs))
}

func (r *conversationLogRepository) Append(ctx context.Context, log *model.ConversationLog) error {
	if _, err := r.collection().Doc(log.ID).Set(ctx, log); err != nil {
		return goerr.Wrap(err, "failed to append conversation log", goerr.V("agentID", log.AgentID))
	}

	newestFirst := r.collection().OrderBy("timestamp", firestore.Desc)
	if _, err := trimOldest(ctx, r.client, newestFirst, model.ConversationLogCeiling, model.ConversationLogRetain); err != nil {
		return goerr.Wrap(err, "failed to trim conversation logs")
	}
	return nil
}

func (r *conversationLogRepository) ListByAgent(ctx context.Context, agentID types.AgentID) ([]*model.ConversationLog, error) {
	iter := r.collection().
		Where("agent_id", "==", string(agentID)).
		OrderBy("timestamp", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	logs := make([]*model.ConversationLog, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversation logs", goerr.V("agentID", agentID))
		}

		var log model.ConversationLog
		if err := snap.DataTo(&log); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal conversation log", goerr.V("docID", snap.Ref.ID))
		}
		logs = append(logs, &log)
	}
	return logs, nil
}
