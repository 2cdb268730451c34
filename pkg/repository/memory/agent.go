package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

type agentRepository struct {
	mu     sync.RWMutex
	agents map[types.AgentID]*model.Agent
}

func newAgentRepository() *agentRepository {
	return &agentRepository{
		agents: make(map[types.AgentID]*model.Agent),
	}
}

func (r *agentRepository) Get(ctx context.Context, id types.AgentID) (*model.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[id]
	if !ok {
		return nil, nil
	}
	return agent.Clone(), nil
}

func (r *agentRepository) Put(ctx context.Context, agent *model.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.agents[agent.ID] = agent.Clone()
	return nil
}

func (r *agentRepository) List(ctx context.Context) ([]*model.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]*model.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		agents = append(agents, a.Clone())
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})
	return agents, nil
}

func (r *agentRepository) IncrementUsage(ctx context.Context, id types.AgentID, now time.Time) (*model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[id]
	if !ok {
		return nil, nil
	}
	agent.UsedCount++
	ts := now.UTC()
	agent.LastActiveAt = &ts
	return agent.Clone(), nil
}
