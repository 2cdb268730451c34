package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/service/woocommerce"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	// contextSearchLimit caps products summarized into the turn context
	contextSearchLimit = 5
	// endpointSearchLimit caps products returned by the catalog endpoint
	endpointSearchLimit = 10
	// minSearchTermLength is the shortest extracted term worth searching
	minSearchTermLength = 2
)

// CatalogAction selects the catalog endpoint operation
type CatalogAction string

const (
	CatalogActionCount  CatalogAction = "count"
	CatalogActionSearch CatalogAction = "search"
)

var (
	catalogQuestionPattern = regexp.MustCompile(`(?i)how many|count|products?|catalog|audi|stock|items?|أكثر كم|منتجات?|بضائع?`)
	searchTermPattern      = regexp.MustCompile(`(?i)(?:search|find|أبحث|ابحث|كم)\s+(.+?)(?:\?|$)`)
	brandTermPattern       = regexp.MustCompile(`(?i)(audi|سامسونج|iphone)`)
)

// IsCatalogQuestion reports whether a message looks like it asks about the product catalog
func IsCatalogQuestion(message string) bool {
	return catalogQuestionPattern.MatchString(strings.ToLower(message))
}

// ExtractSearchTerm pulls a product search term out of a message; empty when none is found
func ExtractSearchTerm(message string) string {
	msg := strings.ToLower(message)
	var term string
	if m := searchTermPattern.FindStringSubmatch(msg); m != nil {
		term = m[1]
	} else if m := brandTermPattern.FindStringSubmatch(msg); m != nil {
		term = m[1]
	}
	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchTermLength {
		return ""
	}
	return term
}

// CatalogResult is the payload of the catalog endpoint
type CatalogResult struct {
	Count    *int                  `json:"count,omitempty"`
	Products []woocommerce.Product `json:"products"`
}

type CatalogUseCase struct {
	repo    interfaces.Repository
	service woocommerce.Service
}

func NewCatalogUseCase(repo interfaces.Repository, service woocommerce.Service) *CatalogUseCase {
	return &CatalogUseCase{
		repo:    repo,
		service: service,
	}
}

// Enabled reports whether a catalog client is wired
func (uc *CatalogUseCase) Enabled() bool {
	return uc.service != nil
}

// StoreData builds the live store data block for a turn. Any failure omits the block.
func (uc *CatalogUseCase) StoreData(ctx context.Context, agent *model.Agent, message string) string {
	if uc.service == nil || agent == nil || !agent.WooCommerce.Usable() {
		return ""
	}
	if !IsCatalogQuestion(message) {
		return ""
	}

	logger := logging.From(ctx)
	term := ExtractSearchTerm(message)

	var (
		count    int
		products []woocommerce.Product
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		n, err := uc.service.ProductCount(egCtx, agent.WooCommerce)
		if err != nil {
			return goerr.Wrap(err, "failed to count products", goerr.V("agent_id", agent.ID))
		}
		count = n
		return nil
	})
	if term != "" {
		eg.Go(func() error {
			found, err := uc.service.SearchProducts(egCtx, agent.WooCommerce, term, contextSearchLimit)
			if err != nil {
				return goerr.Wrap(err, "failed to search products", goerr.V("agent_id", agent.ID), goerr.V("query", term))
			}
			products = found
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logger.Warn("store data omitted", logging.ErrAttr(err))
		return ""
	}

	data := fmt.Sprintf("Total products in catalog: %d", count)
	if term != "" {
		top := make([]string, 0, len(products))
		for _, p := range products {
			top = append(top, fmt.Sprintf("%s ($%s)", p.Name, p.Price))
		}
		data += fmt.Sprintf("\nSearch %q: %d found. Top: %s", term, len(products), strings.Join(top, "; "))
	}
	return data
}

// Lookup serves the catalog endpoint for an agent
func (uc *CatalogUseCase) Lookup(ctx context.Context, agentID types.AgentID, action CatalogAction, query string) (*CatalogResult, error) {
	if agentID == "" || action == "" {
		return nil, goerr.Wrap(ErrInvalidCatalogAction, "agentId and action required")
	}

	agent, err := uc.repo.Agent().Get(ctx, agentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.V("agent_id", agentID))
	}
	if uc.service == nil || agent == nil || !agent.WooCommerce.Usable() {
		return nil, goerr.Wrap(ErrCatalogNotConfigured, "catalog unavailable", goerr.V("agent_id", agentID))
	}

	switch {
	case action == CatalogActionCount:
		n, err := uc.service.ProductCount(ctx, agent.WooCommerce)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to count products", goerr.V("agent_id", agentID))
		}
		return &CatalogResult{Count: &n}, nil

	case action == CatalogActionSearch && query != "":
		products, err := uc.service.SearchProducts(ctx, agent.WooCommerce, query, endpointSearchLimit)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search products", goerr.V("agent_id", agentID), goerr.V("query", query))
		}
		if products == nil {
			products = []woocommerce.Product{}
		}
		return &CatalogResult{Products: products}, nil
	}

	return nil, goerr.Wrap(ErrInvalidCatalogAction, "invalid action", goerr.V("action", action))
}
