package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

// DefaultTimeout bounds a single catalog request
const DefaultTimeout = 10 * time.Second

// ErrNotConfigured is returned when the agent has no usable catalog configuration
var ErrNotConfigured = errors.New("woocommerce is not configured")

type client struct {
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// New creates the WooCommerce REST client
func New(opts ...Option) Service {
	c := &client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) ProductCount(ctx context.Context, cfg *model.WooCommerceConfig) (int, error) {
	resp, err := c.get(ctx, cfg, url.Values{"per_page": {"1"}})
	if err != nil {
		return 0, err
	}
	defer safe.Close(ctx, resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	total := resp.Header.Get("X-WP-Total")
	if total == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid X-WP-Total header", goerr.V("value", total))
	}
	return n, nil
}

func (c *client) SearchProducts(ctx context.Context, cfg *model.WooCommerceConfig, query string, limit int) ([]Product, error) {
	params := url.Values{"search": {query}}
	if limit > 0 {
		params.Set("per_page", strconv.Itoa(limit))
	}

	resp, err := c.get(ctx, cfg, params)
	if err != nil {
		return nil, err
	}
	defer safe.Close(ctx, resp.Body)

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, goerr.Wrap(err, "failed to decode products", goerr.V("query", query))
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (c *client) get(ctx context.Context, cfg *model.WooCommerceConfig, params url.Values) (*http.Response, error) {
	if !cfg.Usable() {
		return nil, goerr.Wrap(ErrNotConfigured, "cannot query catalog")
	}

	endpoint := strings.TrimSuffix(cfg.SiteURL, "/") + "/wp-json/wc/v3/products"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create catalog request", goerr.V("url", endpoint))
	}
	req.SetBasicAuth(cfg.ConsumerKey, cfg.ConsumerSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "catalog request failed", goerr.V("url", endpoint))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		safe.Close(ctx, resp.Body)
		return nil, goerr.New("WooCommerce API error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}
	return resp, nil
}
