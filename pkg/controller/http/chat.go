package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/usecase"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

type chatRequest struct {
	Message     string                `json:"message"`
	Memory      *model.MemorySnapshot `json:"memory,omitempty"`
	ImageURL    string                `json:"imageUrl,omitempty"`
	AgentID     types.AgentID         `json:"agentId,omitempty"`
	SiteContext *model.AgentContext   `json:"siteContext,omitempty"`
}

type chatResponse struct {
	Reply         string        `json:"reply"`
	UpdatedMemory *model.Memory `json:"updatedMemory"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		badRequest(w, r, goerr.Wrap(err, "failed to decode chat request"), "Invalid JSON body")
		return
	}

	out, err := s.uc.Chat.HandleTurn(r.Context(), &usecase.TurnInput{
		Message:     req.Message,
		Memory:      req.Memory,
		ImageURL:    req.ImageURL,
		AgentID:     req.AgentID,
		SiteContext: req.SiteContext,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	safe.WriteJSON(r.Context(), w, http.StatusOK, chatResponse{
		Reply:         out.Reply,
		UpdatedMemory: out.Memory,
	})
}
