package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/repository/memory"
	"github.com/secmon-lab/storevoice/pkg/service/woocommerce"
	"github.com/secmon-lab/storevoice/pkg/usecase"
)

func TestIsCatalogQuestion(t *testing.T) {
	cases := map[string]bool{
		"How many products do you have?": true,
		"Is this item in stock":           true,
		"show me the catalog":             true,
		"كم منتجات لديكم":                 true,
		"What time do you open?":          false,
		"hello there":                     false,
	}
	for msg, want := range cases {
		t.Run(msg, func(t *testing.T) {
			gt.Value(t, usecase.IsCatalogQuestion(msg)).Equal(want)
		})
	}
}

func TestExtractSearchTerm(t *testing.T) {
	cases := []struct {
		msg  string
		want string
	}{
		{msg: "Can you search red shoes?", want: "red shoes"},
		{msg: "find camping stoves", want: "camping stoves"},
		{msg: "how many audi parts", want: "audi"},
		{msg: "find x", want: ""},
		{msg: "how many products", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			gt.Value(t, usecase.ExtractSearchTerm(tc.msg)).Equal(tc.want)
		})
	}
}

func wooAgent(id string) *model.Agent {
	a := newAgent(id)
	a.WooCommerce = &model.WooCommerceConfig{
		SiteURL:        "https://shop.example.com",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		Enabled:        true,
	}
	return a
}

func TestCatalogUseCase_StoreData(t *testing.T) {
	ctx := context.Background()

	t.Run("count and search summary", func(t *testing.T) {
		catalog := &mockCatalog{
			count: 120,
			products: []woocommerce.Product{
				{Name: "Trail Tent", Price: "120"},
				{Name: "Dome Tent", Price: "89.5"},
			},
		}
		uc := usecase.NewCatalogUseCase(memory.New(), catalog)

		got := uc.StoreData(ctx, wooAgent("s1"), "Can you find tent products?")
		gt.Value(t, got).Equal("Total products in catalog: 120\nSearch \"tent products\": 2 found. Top: Trail Tent ($120); Dome Tent ($89.5)")
		gt.Array(t, catalog.queries).Length(1)
	})

	t.Run("non catalog question skips lookups", func(t *testing.T) {
		catalog := &mockCatalog{count: 1}
		uc := usecase.NewCatalogUseCase(memory.New(), catalog)

		gt.Value(t, uc.StoreData(ctx, wooAgent("s1"), "What are your opening hours?")).Equal("")
		gt.Number(t, catalog.totalCalls()).Equal(0)
	})

	t.Run("lookup failure omits block", func(t *testing.T) {
		catalog := &mockCatalog{count: 3, searchErr: errors.New("timeout")}
		uc := usecase.NewCatalogUseCase(memory.New(), catalog)

		gt.Value(t, uc.StoreData(ctx, wooAgent("s1"), "search tent products")).Equal("")
		gt.Value(t, catalog.queries).Equal([]string{"tent products"})
	})

	t.Run("disabled configuration", func(t *testing.T) {
		catalog := &mockCatalog{count: 3}
		uc := usecase.NewCatalogUseCase(memory.New(), catalog)

		agent := wooAgent("s1")
		agent.WooCommerce.Enabled = false
		gt.Value(t, uc.StoreData(ctx, agent, "how many products")).Equal("")
		gt.Value(t, uc.StoreData(ctx, nil, "how many products")).Equal("")
		gt.Number(t, catalog.totalCalls()).Equal(0)
	})
}

func TestCatalogUseCase_Lookup(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	gt.NoError(t, repo.Agent().Put(ctx, wooAgent("woo"))).Required()
	gt.NoError(t, repo.Agent().Put(ctx, newAgent("plain"))).Required()

	catalog := &mockCatalog{
		count:    7,
		products: []woocommerce.Product{{Name: "Lantern", Price: "15"}},
	}
	uc := usecase.NewCatalogUseCase(repo, catalog)

	t.Run("count", func(t *testing.T) {
		res, err := uc.Lookup(ctx, "woo", usecase.CatalogActionCount, "")
		gt.NoError(t, err).Required()
		gt.Value(t, res.Count).NotNil()
		gt.Number(t, *res.Count).Equal(7)
	})

	t.Run("search", func(t *testing.T) {
		res, err := uc.Lookup(ctx, "woo", usecase.CatalogActionSearch, "lantern")
		gt.NoError(t, err).Required()
		gt.Array(t, res.Products).Length(1)
		gt.Value(t, res.Products[0].Name).Equal("Lantern")
	})

	t.Run("search without matches", func(t *testing.T) {
		empty := usecase.NewCatalogUseCase(repo, &mockCatalog{})
		res, err := empty.Lookup(ctx, "woo", usecase.CatalogActionSearch, "unicorn")
		gt.NoError(t, err).Required()
		gt.True(t, res.Products != nil)
		gt.Array(t, res.Products).Length(0)
	})

	t.Run("search without query", func(t *testing.T) {
		_, err := uc.Lookup(ctx, "woo", usecase.CatalogActionSearch, "")
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidCatalogAction)).True()
	})

	t.Run("missing parameters", func(t *testing.T) {
		_, err := uc.Lookup(ctx, "", usecase.CatalogActionCount, "")
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidCatalogAction)).True()
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := uc.Lookup(ctx, "plain", usecase.CatalogActionCount, "")
		gt.Bool(t, errors.Is(err, usecase.ErrCatalogNotConfigured)).True()

		_, err = uc.Lookup(ctx, "unknown", usecase.CatalogActionCount, "")
		gt.Bool(t, errors.Is(err, usecase.ErrCatalogNotConfigured)).True()
	})
}
