package usecase

import (
	"context"
	"net/mail"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	mailsvc "github.com/secmon-lab/storevoice/pkg/service/mail"
	"github.com/secmon-lab/storevoice/pkg/utils/async"
)

// QuotationInput is a quotation email requested on behalf of an agent's store
type QuotationInput struct {
	AgentID types.AgentID `json:"agentId"`
	To      string        `json:"to"`
	Subject string        `json:"subject"`
	Body    string        `json:"body"`
}

type QuotationUseCase struct {
	repo   interfaces.Repository
	mailer mailsvc.Sender
}

func NewQuotationUseCase(repo interfaces.Repository, mailer mailsvc.Sender) *QuotationUseCase {
	return &QuotationUseCase{
		repo:   repo,
		mailer: mailer,
	}
}

// Send validates the request and queues the email. Delivery failures are logged only.
func (uc *QuotationUseCase) Send(ctx context.Context, in *QuotationInput) error {
	if in == nil || in.AgentID == "" || in.To == "" || in.Body == "" {
		return goerr.Wrap(ErrInvalidQuotation, "agentId, to, body required")
	}
	if _, err := mail.ParseAddress(in.To); err != nil {
		return goerr.Wrap(ErrInvalidQuotation, "invalid recipient", goerr.V("to", in.To))
	}

	agent, err := uc.repo.Agent().Get(ctx, in.AgentID)
	if err != nil {
		return goerr.Wrap(err, "failed to get agent", goerr.V("agent_id", in.AgentID))
	}
	if agent == nil || !agent.SMTP.Usable() || uc.mailer == nil {
		return goerr.Wrap(ErrSMTPNotConfigured, "quotation mail unavailable", goerr.V("agent_id", in.AgentID))
	}

	msg := &mailsvc.Message{
		To:      in.To,
		Subject: in.Subject,
		HTML:    in.Body,
	}
	if msg.Subject == "" {
		msg.Subject = "Quotation from " + agent.DisplayName()
	}

	cfg := *agent.SMTP
	async.Dispatch(ctx, "quotation_email", func(ctx context.Context) error {
		if err := uc.mailer.Send(ctx, &cfg, msg); err != nil {
			return goerr.Wrap(err, "failed to send quotation", goerr.V("agent_id", in.AgentID), goerr.V("to", in.To))
		}
		return nil
	})
	return nil
}
