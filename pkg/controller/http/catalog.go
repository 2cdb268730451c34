package http

import (
	"net/http"

	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/service/woocommerce"
	"github.com/secmon-lab/storevoice/pkg/usecase"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

func (s *Server) productsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.uc.Catalog.Lookup(r.Context(),
		types.AgentID(q.Get("agentId")),
		usecase.CatalogAction(q.Get("action")),
		q.Get("q"),
	)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if res.Count != nil {
		safe.WriteJSON(r.Context(), w, http.StatusOK, struct {
			Count int `json:"count"`
		}{Count: *res.Count})
		return
	}
	safe.WriteJSON(r.Context(), w, http.StatusOK, struct {
		Products []woocommerce.Product `json:"products"`
	}{Products: res.Products})
}
