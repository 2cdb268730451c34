package woocommerce

import (
	"context"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

// Service reads a store's WooCommerce catalog
type Service interface {
	// ProductCount returns the total number of products reported by the X-WP-Total header
	ProductCount(ctx context.Context, cfg *model.WooCommerceConfig) (int, error)

	// SearchProducts returns up to limit products matching query
	SearchProducts(ctx context.Context, cfg *model.WooCommerceConfig, query string, limit int) ([]Product, error)
}

// Product is the subset of the WooCommerce product resource used for answers
type Product struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Price         string     `json:"price"`
	RegularPrice  string     `json:"regular_price"`
	SalePrice     string     `json:"sale_price"`
	StockStatus   string     `json:"stock_status"`
	StockQuantity *int       `json:"stock_quantity,omitempty"`
	Categories    []Category `json:"categories,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
