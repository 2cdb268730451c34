package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
)

// AgentSettings is the public view of an agent the widget needs before its first turn
type AgentSettings struct {
	VoiceSettings         model.VoiceSettings `json:"voiceSettings"`
	StoreName             string              `json:"storeName"`
	VoiceRecordingEnabled bool                `json:"voiceRecordingEnabled"`
	VoiceUploadToken      string              `json:"voiceUploadToken,omitempty"`
}

type AgentUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func NewAgentUseCase(repo interfaces.Repository, now func() time.Time) *AgentUseCase {
	return &AgentUseCase{
		repo: repo,
		now:  now,
	}
}

// GetSettings returns the widget settings of an agent. The upload token is only exposed when
// recording is enabled.
func (uc *AgentUseCase) GetSettings(ctx context.Context, id types.AgentID) (*AgentSettings, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrAgentIDRequired, "agent id is empty")
	}

	agent, err := uc.repo.Agent().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.V("agent_id", id))
	}
	if agent == nil {
		return nil, goerr.Wrap(ErrAgentNotFound, "agent not found", goerr.V("agent_id", id))
	}

	settings := &AgentSettings{
		VoiceSettings:         agent.EffectiveVoiceSettings(),
		StoreName:             agent.DisplayName(),
		VoiceRecordingEnabled: agent.VoiceRecordingEnabled,
	}
	if agent.VoiceRecordingEnabled {
		settings.VoiceUploadToken = agent.VoiceUploadToken
	}
	return settings, nil
}

// ListConversations returns the agent's conversation log, newest first
func (uc *AgentUseCase) ListConversations(ctx context.Context, id types.AgentID) ([]*model.ConversationLog, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrAgentIDRequired, "agent id is empty")
	}

	logs, err := uc.repo.ConversationLog().ListByAgent(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversation logs", goerr.V("agent_id", id))
	}
	if logs == nil {
		logs = []*model.ConversationLog{}
	}
	return logs, nil
}

// SeedAgents registers agents that do not exist yet. Existing records, including their usage
// counters, are left untouched.
func (uc *AgentUseCase) SeedAgents(ctx context.Context, agents []*model.Agent) (int, error) {
	logger := logging.From(ctx)
	created := 0

	for _, a := range agents {
		if err := a.ID.Validate(); err != nil {
			return created, goerr.Wrap(err, "invalid seed agent")
		}

		existing, err := uc.repo.Agent().Get(ctx, a.ID)
		if err != nil {
			return created, goerr.Wrap(err, "failed to get agent", goerr.V("agent_id", a.ID))
		}
		if existing != nil {
			continue
		}

		seed := a.Clone()
		if seed.Policy == "" {
			seed.Policy = model.DefaultPolicy
		}
		if seed.UsageLimit == 0 {
			seed.UsageLimit = model.DefaultUsageLimit
		}
		if seed.CreatedAt.IsZero() {
			seed.CreatedAt = uc.now().UTC()
		}

		if err := uc.repo.Agent().Put(ctx, seed); err != nil {
			return created, goerr.Wrap(err, "failed to put agent", goerr.V("agent_id", a.ID))
		}
		logger.Info("agent seeded", "agent_id", seed.ID, "store", seed.DisplayName())
		created++
	}

	return created, nil
}
