package woocommerce_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/service/woocommerce"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ck" || pass != "cs" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"woocommerce_rest_cannot_view"}`))
			return
		}
		if r.URL.Path != "/wp-json/wc/v3/products" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("X-WP-Total", "42")
		if r.URL.Query().Get("search") == "" {
			_, _ = w.Write([]byte(`[{"id":1,"name":"First","price":"1.00"}]`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"id":1,"name":"Audi A4 mat","price":"25.00"},
			{"id":2,"name":"Audi Q5 cover","price":"80.50"},
			{"id":3,"name":"Audi key case","price":"9.99"}
		]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProductCount(t *testing.T) {
	srv := newCatalogServer(t)
	svc := woocommerce.New()
	cfg := &model.WooCommerceConfig{SiteURL: srv.URL + "/", ConsumerKey: "ck", ConsumerSecret: "cs", Enabled: true}

	n, err := svc.ProductCount(context.Background(), cfg)
	gt.NoError(t, err).Required()
	gt.Value(t, n).Equal(42)
}

func TestSearchProducts(t *testing.T) {
	srv := newCatalogServer(t)
	svc := woocommerce.New()
	cfg := &model.WooCommerceConfig{SiteURL: srv.URL, ConsumerKey: "ck", ConsumerSecret: "cs", Enabled: true}

	products, err := svc.SearchProducts(context.Background(), cfg, "audi", 2)
	gt.NoError(t, err).Required()
	gt.Array(t, products).Length(2).Required()
	gt.Value(t, products[0].Name).Equal("Audi A4 mat")
	gt.Value(t, products[1].Price).Equal("80.50")
}

func TestCatalogErrors(t *testing.T) {
	srv := newCatalogServer(t)
	svc := woocommerce.New()

	t.Run("bad credentials", func(t *testing.T) {
		cfg := &model.WooCommerceConfig{SiteURL: srv.URL, ConsumerKey: "ck", ConsumerSecret: "wrong", Enabled: true}
		_, err := svc.ProductCount(context.Background(), cfg)
		gt.Error(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := &model.WooCommerceConfig{SiteURL: srv.URL, ConsumerKey: "ck", ConsumerSecret: "cs", Enabled: false}
		_, err := svc.SearchProducts(context.Background(), cfg, "audi", 5)
		gt.Bool(t, errors.Is(err, woocommerce.ErrNotConfigured)).True()
	})
}
