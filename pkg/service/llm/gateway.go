package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/secmon-lab/storevoice/pkg/utils/logging"
)

// Gateway tries ranked providers, each over its ordered model list, and never fails
type Gateway struct {
	providers []Provider
}

// NewGateway creates a gateway over providers in rank order
func NewGateway(providers ...Provider) *Gateway {
	return &Gateway{providers: providers}
}

// Providers returns the names of registered providers in rank order
func (g *Gateway) Providers() []string {
	names := make([]string, 0, len(g.providers))
	for _, p := range g.providers {
		names = append(names, p.Name())
	}
	return names
}

// Complete returns the first successful reply. When every attempt fails, the reply describes the last failure.
func (g *Gateway) Complete(ctx context.Context, req *Request) *Completion {
	logger := logging.From(ctx)

	if len(g.providers) == 0 {
		logger.Warn("no LLM provider is configured")
		return &Completion{Reply: NotConfiguredReply, Failed: true}
	}

	trimmed := *req
	if len(trimmed.History) > HistoryLimit {
		trimmed.History = trimmed.History[len(trimmed.History)-HistoryLimit:]
	}

	var (
		lastErr      error
		lastProvider string
		lastModel    string
	)

	for _, p := range g.providers {
		for _, m := range p.Models() {
			if ctx.Err() != nil {
				lastErr = ctx.Err()
				break
			}

			attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout())
			start := time.Now()
			reply, err := p.Attempt(attemptCtx, m, &trimmed)
			cancel()

			attrs := []any{
				slog.String("provider", p.Name()),
				slog.String("model", m),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("LLM attempt failed", append(attrs, logging.ErrAttr(err))...)
				lastErr, lastProvider, lastModel = err, p.Name(), m
				continue
			}

			logger.Info("LLM attempt succeeded", attrs...)
			reply = strings.TrimSpace(reply)
			if reply == "" {
				reply = EmptyReply
			}
			return &Completion{Reply: reply, Provider: p.Name(), Model: m}
		}
	}

	return &Completion{
		Reply:    FailureReply(lastErr),
		Provider: lastProvider,
		Model:    lastModel,
		Failed:   true,
	}
}
