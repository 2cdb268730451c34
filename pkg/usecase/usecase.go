package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/service/blob"
	"github.com/secmon-lab/storevoice/pkg/service/llm"
	"github.com/secmon-lab/storevoice/pkg/service/mail"
	"github.com/secmon-lab/storevoice/pkg/service/slack"
	"github.com/secmon-lab/storevoice/pkg/service/woocommerce"
)

// DefaultBrandName is the assistant brand used in the identity rules
const DefaultBrandName = "Ecommerco AI"

// Completer produces a reply for an assembled request. It never fails.
type Completer interface {
	Complete(ctx context.Context, req *llm.Request) *llm.Completion
}

type UseCases struct {
	repo         interfaces.Repository
	completer    Completer
	catalog      woocommerce.Service
	blobStore    blob.Store
	mailer       mail.Sender
	slack        slack.Service
	slackChannel string
	brandName    string
	now          func() time.Time

	Memory    *MemoryStore
	Chat      *ChatUseCase
	Agent     *AgentUseCase
	Catalog   *CatalogUseCase
	Voice     *VoiceUseCase
	Quotation *QuotationUseCase
}

type Option func(*UseCases)

// WithCompleter sets the provider gateway
func WithCompleter(c Completer) Option {
	return func(uc *UseCases) {
		uc.completer = c
	}
}

// WithCatalog enables live WooCommerce store data
func WithCatalog(svc woocommerce.Service) Option {
	return func(uc *UseCases) {
		uc.catalog = svc
	}
}

// WithBlobStore enables voice session uploads
func WithBlobStore(store blob.Store) Option {
	return func(uc *UseCases) {
		uc.blobStore = store
	}
}

// WithMailer enables quotation email
func WithMailer(sender mail.Sender) Option {
	return func(uc *UseCases) {
		uc.mailer = sender
	}
}

// WithSlack enables operator alerts posted to channelID
func WithSlack(svc slack.Service, channelID string) Option {
	return func(uc *UseCases) {
		uc.slack = svc
		uc.slackChannel = channelID
	}
}

// WithBrandName overrides the assistant brand
func WithBrandName(name string) Option {
	return func(uc *UseCases) {
		if name != "" {
			uc.brandName = name
		}
	}
}

// WithClock replaces time.Now, used by tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		brandName: DefaultBrandName,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.completer == nil {
		uc.completer = llm.NewGateway()
	}

	uc.Memory = NewMemoryStore(repo)
	uc.Catalog = NewCatalogUseCase(repo, uc.catalog)
	uc.Chat = &ChatUseCase{
		repo:         repo,
		memory:       uc.Memory,
		completer:    uc.completer,
		catalog:      uc.Catalog,
		slack:        uc.slack,
		slackChannel: uc.slackChannel,
		brandName:    uc.brandName,
		now:          uc.now,
	}
	uc.Agent = NewAgentUseCase(repo, uc.now)
	uc.Voice = NewVoiceUseCase(repo, uc.blobStore, uc.now)
	uc.Quotation = NewQuotationUseCase(repo, uc.mailer)

	return uc
}
