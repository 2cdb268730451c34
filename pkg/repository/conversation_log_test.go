package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/repository/memory"
)

func TestConversationLogRepository(t *testing.T) {
	runAllBackends(t, func(t *testing.T, newRepo repoFactory) {
		t.Run("ListByAgent returns newest first", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			agentID := types.AgentID(fmt.Sprintf("agent-%d", time.Now().UnixNano()))
			base := time.Now().UTC().Truncate(time.Millisecond)

			for i := range 3 {
				log := model.NewConversationLog(agentID, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), base.Add(time.Duration(i)*time.Second))
				gt.NoError(t, repo.ConversationLog().Append(ctx, log)).Required()
			}
			other := model.NewConversationLog("other-agent", "x", "y", base)
			gt.NoError(t, repo.ConversationLog().Append(ctx, other)).Required()

			logs, err := repo.ConversationLog().ListByAgent(ctx, agentID)
			gt.NoError(t, err).Required()
			gt.Array(t, logs).Length(3).Required()
			gt.Value(t, logs[0].UserMessage).Equal("q2")
			gt.Value(t, logs[2].UserMessage).Equal("q0")
		})
	})
}

func TestConversationLogRetention(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Now().UTC()

	for i := range model.ConversationLogCeiling + 1 {
		log := model.NewConversationLog("a", fmt.Sprintf("q%d", i), "r", base.Add(time.Duration(i)*time.Millisecond))
		gt.NoError(t, repo.ConversationLog().Append(ctx, log)).Required()
	}

	logs, err := repo.ConversationLog().ListByAgent(ctx, "a")
	gt.NoError(t, err).Required()
	gt.Array(t, logs).Length(model.ConversationLogRetain).Required()
	gt.Value(t, logs[0].UserMessage).Equal(fmt.Sprintf("q%d", model.ConversationLogCeiling))
}
