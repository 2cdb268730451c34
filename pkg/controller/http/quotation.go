package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/usecase"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

func (s *Server) quotationHandler(w http.ResponseWriter, r *http.Request) {
	var in usecase.QuotationInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&in); err != nil {
		badRequest(w, r, goerr.Wrap(err, "failed to decode quotation request"), "Invalid JSON body")
		return
	}

	if err := s.uc.Quotation.Send(r.Context(), &in); err != nil {
		s.handleError(w, r, err)
		return
	}
	safe.WriteJSON(r.Context(), w, http.StatusAccepted, okResponse{OK: true})
}
