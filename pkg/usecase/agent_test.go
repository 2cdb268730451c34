package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/repository/memory"
	"github.com/secmon-lab/storevoice/pkg/usecase"
)

func TestAgentUseCase_GetSettings(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	plain := newAgent("plain")
	recording := newAgent("recording")
	recording.VoiceRecordingEnabled = true
	recording.VoiceUploadToken = "tok-123"
	recording.VoiceSettings = &model.VoiceSettings{Tone: types.VoiceToneProfessional, Speed: 1.2}
	hidden := newAgent("hidden")
	hidden.VoiceUploadToken = "tok-456"

	for _, a := range []*model.Agent{plain, recording, hidden} {
		gt.NoError(t, repo.Agent().Put(ctx, a)).Required()
	}
	uc := usecase.New(repo, usecase.WithClock(fixedClock))

	t.Run("defaults when agent has no voice settings", func(t *testing.T) {
		s, err := uc.Agent.GetSettings(ctx, "plain")
		gt.NoError(t, err).Required()
		gt.Value(t, s.VoiceSettings).Equal(model.DefaultVoiceSettings())
		gt.Value(t, s.StoreName).Equal("Dune Outfitters")
		gt.Bool(t, s.VoiceRecordingEnabled).False()
		gt.Value(t, s.VoiceUploadToken).Equal("")
	})

	t.Run("token exposed only with recording enabled", func(t *testing.T) {
		s, err := uc.Agent.GetSettings(ctx, "recording")
		gt.NoError(t, err).Required()
		gt.Value(t, s.VoiceSettings.Tone).Equal(types.VoiceToneProfessional)
		gt.Value(t, s.VoiceUploadToken).Equal("tok-123")

		s, err = uc.Agent.GetSettings(ctx, "hidden")
		gt.NoError(t, err).Required()
		gt.Value(t, s.VoiceUploadToken).Equal("")
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := uc.Agent.GetSettings(ctx, "")
		gt.Bool(t, errors.Is(err, usecase.ErrAgentIDRequired)).True()
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, err := uc.Agent.GetSettings(ctx, "nobody")
		gt.Bool(t, errors.Is(err, usecase.ErrAgentNotFound)).True()
	})
}

func TestAgentUseCase_ListConversations(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	agent := newAgent("store-1")
	gt.NoError(t, repo.Agent().Put(ctx, agent)).Required()

	uc := usecase.New(repo, usecase.WithCompleter(newMockCompleter("ok")), usecase.WithClock(fixedClock))

	logs, err := uc.Agent.ListConversations(ctx, agent.ID)
	gt.NoError(t, err).Required()
	gt.True(t, logs != nil)
	gt.Array(t, logs).Length(0)

	for _, msg := range []string{"first", "second"} {
		_, err := uc.Chat.HandleTurn(ctx, &usecase.TurnInput{Message: msg, AgentID: agent.ID})
		gt.NoError(t, err).Required()
	}

	logs, err = uc.Agent.ListConversations(ctx, agent.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, logs).Length(2)
	for _, l := range logs {
		gt.Value(t, l.AgentID).Equal(agent.ID)
	}
}

func TestAgentUseCase_SeedAgents(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	existing := newAgent("existing")
	existing.UsedCount = 42
	gt.NoError(t, repo.Agent().Put(ctx, existing)).Required()

	uc := usecase.New(repo, usecase.WithClock(fixedClock))

	created, err := uc.Agent.SeedAgents(ctx, []*model.Agent{
		{ID: "existing", Name: "Overwritten?"},
		{ID: "fresh", Name: "Noor", StoreName: "Noor Books"},
	})
	gt.NoError(t, err).Required()
	gt.Number(t, created).Equal(1)

	kept, err := repo.Agent().Get(ctx, "existing")
	gt.NoError(t, err).Required()
	gt.Value(t, kept.Name).Equal("Sara")
	gt.Number(t, kept.UsedCount).Equal(42)

	fresh, err := repo.Agent().Get(ctx, "fresh")
	gt.NoError(t, err).Required()
	gt.Value(t, fresh.Policy).Equal(model.DefaultPolicy)
	gt.Number(t, fresh.UsageLimit).Equal(model.DefaultUsageLimit)
	gt.Bool(t, fresh.CreatedAt.Equal(fixedNow)).True()

	_, err = uc.Agent.SeedAgents(ctx, []*model.Agent{{ID: "bad id/"}})
	gt.Error(t, err)
}
