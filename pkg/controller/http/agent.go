package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

func (s *Server) agentSettingsHandler(w http.ResponseWriter, r *http.Request) {
	id := types.AgentID(r.URL.Query().Get("agentId"))

	settings, err := s.uc.Agent.GetSettings(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	safe.WriteJSON(r.Context(), w, http.StatusOK, settings)
}

func (s *Server) conversationsHandler(w http.ResponseWriter, r *http.Request) {
	id := types.AgentID(chi.URLParam(r, "agentID"))

	logs, err := s.uc.Agent.ListConversations(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	safe.WriteJSON(r.Context(), w, http.StatusOK, struct {
		Conversations []*model.ConversationLog `json:"conversations"`
	}{Conversations: logs})
}
