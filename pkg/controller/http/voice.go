package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/usecase"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

func (s *Server) voiceUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		badRequest(w, r, goerr.Wrap(err, "failed to parse voice upload"), "Invalid form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	in := &usecase.VoiceUpload{
		StoreID:      types.AgentID(r.FormValue("store_id")),
		UserID:       r.FormValue("user_id"),
		Transcript:   r.FormValue("transcript"),
		AIResponse:   r.FormValue("ai_response"),
		ConsentGiven: r.FormValue("consent_given") == "true",
		Token:        bearerToken(r),
		Operator:     isOperator(r, s.operatorSecret),
	}

	if file, _, err := r.FormFile("audio"); err == nil {
		defer safe.Close(r.Context(), file)
		in.Audio = file
	}

	session, err := s.uc.Voice.Upload(r.Context(), in)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	safe.WriteJSON(r.Context(), w, http.StatusOK, okResponse{OK: true, ID: session.ID})
}

func (s *Server) voiceSessionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		query = q.Get("search")
	}

	sessions, err := s.uc.Voice.ListSessions(r.Context(), types.AgentID(q.Get("storeId")), query)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	safe.WriteJSON(r.Context(), w, http.StatusOK, struct {
		Sessions []*model.VoiceSession `json:"sessions"`
	}{Sessions: sessions})
}
