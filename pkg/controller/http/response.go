package http

import (
	"errors"
	"net/http"

	"github.com/secmon-lab/storevoice/pkg/usecase"
	"github.com/secmon-lab/storevoice/pkg/utils/errutil"
)

type errorBody struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

// errorStatuses maps use case sentinels to the status and public message of the response
var errorStatuses = []struct {
	err    error
	status int
	msg    string
}{
	{usecase.ErrInvalidMessage, http.StatusBadRequest, "Missing or invalid message"},
	{usecase.ErrInvalidMemory, http.StatusBadRequest, "Invalid memory structure"},
	{usecase.ErrAgentIDRequired, http.StatusBadRequest, "agentId required"},
	{usecase.ErrInvalidUpload, http.StatusBadRequest, "audio, store_id, user_id required"},
	{usecase.ErrInvalidCatalogAction, http.StatusBadRequest, "Invalid action"},
	{usecase.ErrInvalidQuotation, http.StatusBadRequest, "agentId, to, body required"},
	{usecase.ErrCatalogNotConfigured, http.StatusBadRequest, "WooCommerce not configured"},
	{usecase.ErrSMTPNotConfigured, http.StatusBadRequest, "SMTP not configured for this agent"},
	{usecase.ErrQuotaExceeded, http.StatusTooManyRequests, usecase.QuotaExceededMessage},
	{usecase.ErrAgentNotFound, http.StatusNotFound, "Agent not found"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{usecase.ErrRecordingDisabled, http.StatusForbidden, "Voice recording not enabled"},
	{usecase.ErrBlobStoreUnavailable, http.StatusInternalServerError, "Blob storage not configured"},
}

// handleError writes the response for err. Unknown errors become 500 with details outside production.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			errutil.HandleHTTP(r.Context(), w, err, e.status, e.msg, false)
			return
		}
	}
	errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError, "Internal server error", !s.production)
}

// badRequest writes a 400 for malformed input detected by the controller itself
func badRequest(w http.ResponseWriter, r *http.Request, err error, msg string) {
	errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest, msg, false)
}
