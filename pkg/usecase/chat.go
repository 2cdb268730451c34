package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/service/llm"
	"github.com/secmon-lab/storevoice/pkg/service/slack"
	"github.com/secmon-lab/storevoice/pkg/utils/async"
	"github.com/secmon-lab/storevoice/pkg/utils/errutil"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
)

// TurnInput is one user utterance sent by the widget
type TurnInput struct {
	Message     string
	Memory      *model.MemorySnapshot
	ImageURL    string
	AgentID     types.AgentID
	SiteContext *model.AgentContext
}

// TurnOutput carries the reply and the memory the widget should mirror
type TurnOutput struct {
	Reply    string
	Memory   *model.Memory
	Provider string
	Model    string
}

type ChatUseCase struct {
	repo         interfaces.Repository
	memory       *MemoryStore
	completer    Completer
	catalog      *CatalogUseCase
	slack        slack.Service
	slackChannel string
	brandName    string
	now          func() time.Time
}

// WithAttachment appends the image reference the way the assistant expects to see it
func WithAttachment(message, imageURL string) string {
	if imageURL == "" {
		return message
	}
	return message + " [User attached image: " + imageURL + "]"
}

// HandleTurn runs one conversation turn. Validation and quota errors are returned before any provider
// call or side effect. Provider failures degrade to a spoken sentence and are not errors.
func (uc *ChatUseCase) HandleTurn(ctx context.Context, input *TurnInput) (*TurnOutput, error) {
	if input == nil || strings.TrimSpace(input.Message) == "" {
		return nil, goerr.Wrap(ErrInvalidMessage, "message is empty")
	}

	logger := logging.From(ctx)
	agentCtx := input.SiteContext

	var (
		agent       *model.Agent
		temperature *float32
	)
	if input.AgentID != "" {
		found, err := uc.repo.Agent().Get(ctx, input.AgentID)
		if err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "agent lookup failed", goerr.V("agent_id", input.AgentID)), "agent lookup failed")
		}
		if found != nil {
			if found.QuotaExceeded() {
				return nil, goerr.Wrap(ErrQuotaExceeded, "agent usage limit reached",
					goerr.V("agent_id", found.ID),
					goerr.V("used_count", found.UsedCount),
					goerr.V("usage_limit", found.UsageLimit))
			}
			agent = found
			agentCtx = found.SiteContext()
			t := float32(found.EffectiveVoiceSettings().Temperature)
			temperature = &t
		}
	}

	mem := input.Memory.Merge(uc.memory.Load(ctx))
	userMessage := WithAttachment(input.Message, input.ImageURL)
	storeData := uc.catalog.StoreData(ctx, agent, input.Message)

	completion := uc.completer.Complete(ctx, &llm.Request{
		SystemPrompt: BuildSystemPrompt(uc.brandName, agentCtx),
		Context:      BuildContext(mem, storeData),
		History:      mem.RecentMessages(llm.HistoryLimit),
		Message:      userMessage,
		Temperature:  temperature,
	})

	if !completion.Failed {
		mem.AppendTurn(userMessage, completion.Reply, uc.now())
	}

	if agent != nil {
		uc.recordUsage(ctx, agent.ID, input.Message, completion.Reply)
	}
	uc.memory.Save(ctx, mem)

	logger.Info("turn completed",
		slog.String("agent_id", input.AgentID.String()),
		slog.String("provider", completion.Provider),
		slog.String("model", completion.Model),
		slog.Bool("failed", completion.Failed),
		slog.Bool("store_data", storeData != ""),
	)

	return &TurnOutput{
		Reply:    completion.Reply,
		Memory:   mem,
		Provider: completion.Provider,
		Model:    completion.Model,
	}, nil
}

// recordUsage applies the per-turn side effects. Every failure is logged and swallowed.
func (uc *ChatUseCase) recordUsage(ctx context.Context, agentID types.AgentID, message, reply string) {
	now := uc.now()

	updated, err := uc.repo.Agent().IncrementUsage(ctx, agentID, now)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to increment usage", goerr.V("agent_id", agentID)), "usage increment failed")
	} else if updated != nil && updated.UsageLimit > 0 && updated.UsedCount == updated.UsageLimit {
		uc.alertQuotaReached(ctx, updated)
	}

	entry := model.NewConversationLog(agentID, message, reply, now)
	if err := uc.repo.ConversationLog().Append(ctx, entry); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to append conversation log", goerr.V("agent_id", agentID)), "conversation log failed")
	}
}

func (uc *ChatUseCase) alertQuotaReached(ctx context.Context, agent *model.Agent) {
	if uc.slack == nil || uc.slackChannel == "" {
		return
	}

	blocks, text := quotaAlertMessage(agent)
	channel := uc.slackChannel
	async.Dispatch(ctx, "quota_alert", func(ctx context.Context) error {
		if _, err := uc.slack.PostMessage(ctx, channel, blocks, text); err != nil {
			return goerr.Wrap(err, "failed to post quota alert", goerr.V("agent_id", agent.ID), goerr.V("channel", channel))
		}
		return nil
	})
}
