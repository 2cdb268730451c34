package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type agentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAgentRepository(client *firestore.Client) *agentRepository {
	return &agentRepository{client: client}
}

func (r *agentRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionAgents))
}

func (r *agentRepository) Get(ctx context.Context, id types.AgentID) (*model.Agent, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get agent", goerr.V("agentID", id))
	}

	var agent model.Agent
	if err := snap.DataTo(&agent); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal agent", goerr.V("agentID", id))
	}
	return &agent, nil
}

func (r *agentRepository) Put(ctx context.Context, agent *model.Agent) error {
	if _, err := r.collection().Doc(string(agent.ID)).Set(ctx, agent); err != nil {
		return goerr.Wrap(err, "failed to put agent", goerr.V("agentID", agent.ID))
	}
	return nil
}

func (r *agentRepository) List(ctx context.Context) ([]*model.Agent, error) {
	iter := r.collection().OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	agents := make([]*model.Agent, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate agents")
		}

		var agent model.Agent
		if err := snap.DataTo(&agent); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal agent", goerr.V("docID", snap.Ref.ID))
		}
		agents = append(agents, &agent)
	}
	return agents, nil
}

func (r *agentRepository) IncrementUsage(ctx context.Context, id types.AgentID, now time.Time) (*model.Agent, error) {
	ref := r.collection().Doc(string(id))
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "usedCount", Value: firestore.Increment(1)},
		{Path: "lastActiveAt", Value: now.UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to increment usage", goerr.V("agentID", id))
	}
	return r.Get(ctx, id)
}
