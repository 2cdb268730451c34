package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/repository/memory"
	"github.com/secmon-lab/storevoice/pkg/usecase"
)

func TestQuotationUseCase_Send(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	mailing := newAgent("mailing")
	mailing.SMTP = &model.SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "shop@example.com", FromName: "Dune"}
	gt.NoError(t, repo.Agent().Put(ctx, mailing)).Required()
	gt.NoError(t, repo.Agent().Put(ctx, newAgent("nomail"))).Required()

	mailer := newMockMailer()
	uc := usecase.New(repo, usecase.WithMailer(mailer))

	t.Run("queues email with default subject", func(t *testing.T) {
		err := uc.Quotation.Send(ctx, &usecase.QuotationInput{
			AgentID: "mailing",
			To:      "buyer@example.com",
			Body:    "<p>2 tents: $240</p>",
		})
		gt.NoError(t, err).Required()

		select {
		case msg := <-mailer.sent:
			gt.Value(t, msg.Subject).Equal("Quotation from Dune Outfitters")
			gt.Value(t, msg.To).Equal("buyer@example.com")
			gt.Value(t, msg.HTML).Equal("<p>2 tents: $240</p>")
		case <-time.After(2 * time.Second):
			t.Fatal("quotation was not sent")
		}
	})

	t.Run("explicit subject", func(t *testing.T) {
		err := uc.Quotation.Send(ctx, &usecase.QuotationInput{
			AgentID: "mailing",
			To:      "buyer@example.com",
			Subject: "Your order",
			Body:    "<p>ok</p>",
		})
		gt.NoError(t, err).Required()

		select {
		case msg := <-mailer.sent:
			gt.Value(t, msg.Subject).Equal("Your order")
		case <-time.After(2 * time.Second):
			t.Fatal("quotation was not sent")
		}
	})

	t.Run("validation", func(t *testing.T) {
		for _, in := range []*usecase.QuotationInput{
			{To: "buyer@example.com", Body: "x"},
			{AgentID: "mailing", Body: "x"},
			{AgentID: "mailing", To: "buyer@example.com"},
			{AgentID: "mailing", To: "not an address", Body: "x"},
		} {
			err := uc.Quotation.Send(ctx, in)
			gt.Bool(t, errors.Is(err, usecase.ErrInvalidQuotation)).True()
		}
	})

	t.Run("smtp not configured", func(t *testing.T) {
		err := uc.Quotation.Send(ctx, &usecase.QuotationInput{AgentID: "nomail", To: "buyer@example.com", Body: "x"})
		gt.Bool(t, errors.Is(err, usecase.ErrSMTPNotConfigured)).True()

		err = uc.Quotation.Send(ctx, &usecase.QuotationInput{AgentID: "unknown", To: "buyer@example.com", Body: "x"})
		gt.Bool(t, errors.Is(err, usecase.ErrSMTPNotConfigured)).True()
	})
}
