package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/service/llm"
	mailsvc "github.com/secmon-lab/storevoice/pkg/service/mail"
	"github.com/secmon-lab/storevoice/pkg/service/woocommerce"
	goslack "github.com/slack-go/slack"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

// mockCompleter records requests and answers with a fixed completion
type mockCompleter struct {
	mu         sync.Mutex
	requests   []*llm.Request
	completion llm.Completion
}

func newMockCompleter(reply string) *mockCompleter {
	return &mockCompleter{
		completion: llm.Completion{Reply: reply, Provider: "mock", Model: "mock-1"},
	}
}

func (m *mockCompleter) Complete(ctx context.Context, req *llm.Request) *llm.Completion {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *req
	m.requests = append(m.requests, &copied)
	c := m.completion
	return &c
}

func (m *mockCompleter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockCompleter) last() *llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// stubProvider is an llm.Provider whose attempts are scripted per model
type stubProvider struct {
	name      string
	models    []string
	attemptFn func(model string) (string, error)

	mu       sync.Mutex
	attempts map[string]int
}

func (p *stubProvider) Name() string           { return p.name }
func (p *stubProvider) Models() []string       { return p.models }
func (p *stubProvider) Timeout() time.Duration { return time.Second }

func (p *stubProvider) Attempt(ctx context.Context, model string, req *llm.Request) (string, error) {
	p.mu.Lock()
	if p.attempts == nil {
		p.attempts = make(map[string]int)
	}
	p.attempts[model]++
	p.mu.Unlock()
	return p.attemptFn(model)
}

func (p *stubProvider) attemptCount(model string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts[model]
}

// mockSlackService captures posted alerts
type mockSlackService struct {
	posted chan string
}

func newMockSlackService() *mockSlackService {
	return &mockSlackService{posted: make(chan string, 4)}
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	m.posted <- channelID + ":" + text
	return "1700000000.000100", nil
}

// mockCatalog is a scripted woocommerce.Service
type mockCatalog struct {
	mu          sync.Mutex
	count       int
	products    []woocommerce.Product
	countErr    error
	searchErr   error
	countCalls  int
	searchCalls int
	queries     []string
}

func (m *mockCatalog) ProductCount(ctx context.Context, cfg *model.WooCommerceConfig) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	return m.count, m.countErr
}

func (m *mockCatalog) SearchProducts(ctx context.Context, cfg *model.WooCommerceConfig, query string, limit int) ([]woocommerce.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.products) > limit {
		return m.products[:limit], nil
	}
	return m.products, nil
}

func (m *mockCatalog) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countCalls + m.searchCalls
}

// mockBlobStore keeps uploaded objects in memory
type mockBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string][]byte)}
}

func (m *mockBlobStore) Put(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = buf.Bytes()
	return "https://blob.example.com/" + path, nil
}

func (m *mockBlobStore) object(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[path]
	return b, ok
}

// mockMailer reports sent messages on a channel
type mockMailer struct {
	sent chan *mailsvc.Message
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: make(chan *mailsvc.Message, 4)}
}

func (m *mockMailer) Send(ctx context.Context, cfg *model.SMTPConfig, msg *mailsvc.Message) error {
	m.sent <- msg
	return nil
}

// brokenMemoryRepository fails every memory document operation
type brokenMemoryRepository struct {
	interfaces.Repository
}

func (r *brokenMemoryRepository) Memory() interfaces.MemoryRepository {
	return failingMemoryStore{}
}

type failingMemoryStore struct{}

func (failingMemoryStore) Load(ctx context.Context) (*model.Memory, error) {
	return nil, errors.New("memory document is corrupted")
}

func (failingMemoryStore) Save(ctx context.Context, mem *model.Memory) error {
	return errors.New("disk full")
}

func newAgent(id string) *model.Agent {
	return &model.Agent{
		ID:         types.AgentID(id),
		Name:       "Sara",
		StoreName:  "Dune Outfitters",
		StoreDesc:  "Outdoor gear for desert trips.",
		Policy:     "Returns accepted within 14 days.",
		UsageLimit: 100,
		CreatedAt:  fixedNow.Add(-24 * time.Hour),
	}
}
