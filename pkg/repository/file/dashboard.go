package file

import (
	"context"
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

// dashboardDoc is the on-disk layout shared by agents and conversation logs
type dashboardDoc struct {
	Agents        []*model.Agent           `json:"agents"`
	Conversations []*model.ConversationLog `json:"conversations"`
}

func (f *File) loadDashboard(ctx context.Context) (*dashboardDoc, error) {
	doc := &dashboardDoc{}
	if err := f.readJSON(ctx, dashboardFile, doc); err != nil {
		return nil, err
	}
	if doc.Agents == nil {
		doc.Agents = []*model.Agent{}
	}
	if doc.Conversations == nil {
		doc.Conversations = []*model.ConversationLog{}
	}
	return doc, nil
}

type agentRepository struct {
	f *File
}

func (r *agentRepository) Get(ctx context.Context, id types.AgentID) (*model.Agent, error) {
	r.f.dashboardMu.Lock()
	defer r.f.dashboardMu.Unlock()

	doc, err := r.f.loadDashboard(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range doc.Agents {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *agentRepository) Put(ctx context.Context, agent *model.Agent) error {
	r.f.dashboardMu.Lock()
	defer r.f.dashboardMu.Unlock()

	doc, err := r.f.loadDashboard(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i, a := range doc.Agents {
		if a.ID == agent.ID {
			doc.Agents[i] = agent
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Agents = append(doc.Agents, agent)
	}
	return r.f.writeJSON(ctx, dashboardFile, doc)
}

func (r *agentRepository) List(ctx context.Context) ([]*model.Agent, error) {
	r.f.dashboardMu.Lock()
	defer r.f.dashboardMu.Unlock()

	doc, err := r.f.loadDashboard(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Agents, nil
}

func (r *agentRepository) IncrementUsage(ctx context.Context, id types.AgentID, now time.Time) (*model.Agent, error) {
	r.f.dashboardMu.Lock()
	defer r.f.dashboardMu.Unlock()

	doc, err := r.f.loadDashboard(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range doc.Agents {
		if a.ID != id {
			continue
		}
		a.UsedCount++
		ts := now.UTC()
		a.LastActiveAt = &ts
		if err := r.f.writeJSON(ctx, dashboardFile, doc); err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, nil
}

type conversationLogRepository struct {
	f *File
}

func (r *conversationLogRepository) Append(ctx context.Context, log *model.ConversationLog) error {
	r.f.dashboardMu.Lock()
	defer r.f.dashboardMu.Unlock()

	doc, err := r.f.loadDashboard(ctx)
	if err != nil {
		return err
	}
	doc.Conversations = append(doc.Conversations, log)
	doc.Conversations = model.TrimRetention(doc.Conversations, model.ConversationLogCeiling, model.ConversationLogRetain)
	return r.f.writeJSON(ctx, dashboardFile, doc)
}

func (r *conversationLogRepository) ListByAgent(ctx context.Context, agentID types.AgentID) ([]*model.ConversationLog, error) {
	r.f.dashboardMu.Lock()
	defer r.f.dashboardMu.Unlock()

	doc, err := r.f.loadDashboard(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*model.ConversationLog, 0)
	for i := len(doc.Conversations) - 1; i >= 0; i-- {
		if doc.Conversations[i].AgentID == agentID {
			result = append(result, doc.Conversations[i])
		}
	}
	return result, nil
}
