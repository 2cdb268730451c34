package mail

import (
	"context"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

// Sender delivers email through a store's SMTP server
type Sender interface {
	Send(ctx context.Context, cfg *model.SMTPConfig, msg *Message) error
}

// Message is an HTML email; the plain text part is derived from HTML
type Message struct {
	To      string
	Subject string
	HTML    string
}
