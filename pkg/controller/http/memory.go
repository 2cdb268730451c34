package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

func (s *Server) getMemoryHandler(w http.ResponseWriter, r *http.Request) {
	safe.WriteJSON(r.Context(), w, http.StatusOK, s.uc.Memory.Load(r.Context()))
}

func (s *Server) postMemoryHandler(w http.ResponseWriter, r *http.Request) {
	var snap model.MemorySnapshot
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&snap); err != nil {
		badRequest(w, r, goerr.Wrap(err, "failed to decode memory"), "Invalid memory structure")
		return
	}

	if err := s.uc.Memory.Replace(r.Context(), &snap); err != nil {
		s.handleError(w, r, err)
		return
	}
	safe.WriteJSON(r.Context(), w, http.StatusOK, struct {
		Success bool `json:"success"`
	}{Success: true})
}
