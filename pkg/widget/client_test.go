package widget_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/widget"
)

func TestHTTPClient_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/api/chat")
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"reply":"Tents are in aisle 3.","updatedMemory":{"userProfile":{"name":"Lena"},"projects":[],"notes":[],"conversations":[]}}`)
	}))
	defer srv.Close()

	mem := model.NewMemory()
	mem.UserProfile.Name = "Lena"
	client := widget.NewHTTPClient(srv.URL + "/")
	resp, err := client.Send(context.Background(), &widget.TurnRequest{
		Message: "where are the tents",
		Memory:  mem,
		AgentID: "store-1",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, resp.Reply).Equal("Tents are in aisle 3.")
	gt.Value(t, resp.Memory).NotNil()
	gt.Value(t, resp.Memory.UserProfile.Name).Equal("Lena")

	gt.Value(t, got["message"]).Equal("where are the tents")
	gt.Value(t, got["agentId"]).Equal("store-1")
	sent, ok := got["memory"].(map[string]any)
	gt.Bool(t, ok).True()
	gt.Value(t, sent["userProfile"].(map[string]any)["name"]).Equal("Lena")
}

func TestHTTPClient_SendWithoutMemory(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"reply":"hi","updatedMemory":null}`)
	}))
	defer srv.Close()

	resp, err := widget.NewHTTPClient(srv.URL).Send(context.Background(), &widget.TurnRequest{Message: "hi"})
	gt.NoError(t, err).Required()
	gt.Value(t, resp.Reply).Equal("hi")
	_, has := got["memory"]
	gt.Bool(t, has).False()
}

func TestHTTPClient_SendQuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"Usage limit reached. Please contact the store owner to renew."}`)
	}))
	defer srv.Close()

	_, err := widget.NewHTTPClient(srv.URL).Send(context.Background(), &widget.TurnRequest{Message: "hi"})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, widget.ErrQuotaExceeded)).True()

	var quota *widget.QuotaError
	gt.Bool(t, errors.As(err, &quota)).True()
	gt.Value(t, quota.Message).Equal("Usage limit reached. Please contact the store owner to renew.")
}

func TestHTTPClient_SendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Internal server error"}`)
	}))
	defer srv.Close()

	_, err := widget.NewHTTPClient(srv.URL).Send(context.Background(), &widget.TurnRequest{Message: "hi"})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, widget.ErrQuotaExceeded)).False()
}

func TestHTTPClient_Settings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/api/agent/settings")
		gt.Value(t, r.URL.Query().Get("agentId")).Equal("store-1")
		_, _ = io.WriteString(w, `{"voiceSettings":{"tone":"friendly","speed":1.2},"storeName":"Dune Outfitters","voiceRecordingEnabled":true,"voiceUploadToken":"tok"}`)
	}))
	defer srv.Close()

	s, err := widget.NewHTTPClient(srv.URL).Settings(context.Background(), "store-1")
	gt.NoError(t, err).Required()
	gt.Value(t, s.StoreName).Equal("Dune Outfitters")
	gt.Value(t, s.VoiceSettings.Speed).Equal(1.2)
	gt.Bool(t, s.VoiceRecordingEnabled).True()
	gt.Value(t, s.VoiceUploadToken).Equal("tok")
}

func TestHTTPClient_SettingsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := widget.NewHTTPClient(srv.URL).Settings(context.Background(), "missing")
	gt.Error(t, err)
}

func TestHTTPClient_Upload(t *testing.T) {
	type received struct {
		auth, storeID, userID, transcript, reply, consent, audio string
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/api/voice/upload")
		gt.NoError(t, r.ParseMultipartForm(1<<20))

		file, _, err := r.FormFile("audio")
		gt.NoError(t, err).Required()
		audio, err := io.ReadAll(file)
		gt.NoError(t, err)

		got <- received{
			auth:       r.Header.Get("Authorization"),
			storeID:    r.FormValue("store_id"),
			userID:     r.FormValue("user_id"),
			transcript: r.FormValue("transcript"),
			reply:      r.FormValue("ai_response"),
			consent:    r.FormValue("consent_given"),
			audio:      string(audio),
		}
		_, _ = io.WriteString(w, `{"ok":true,"id":"v1"}`)
	}))
	defer srv.Close()

	client := widget.NewHTTPClient(srv.URL, widget.WithUploadToken("tok"))
	err := client.Upload(context.Background(), &widget.Recording{
		Audio:        []byte("webm"),
		StoreID:      types.AgentID("store-1"),
		UserID:       "user-1",
		Transcript:   "hello",
		AIResponse:   "hi there",
		ConsentGiven: true,
	})
	gt.NoError(t, err).Required()

	r := <-got
	gt.Value(t, r.auth).Equal("Bearer tok")
	gt.Value(t, r.storeID).Equal("store-1")
	gt.Value(t, r.userID).Equal("user-1")
	gt.Value(t, r.transcript).Equal("hello")
	gt.Value(t, r.reply).Equal("hi there")
	gt.Value(t, r.consent).Equal("true")
	gt.Value(t, r.audio).Equal("webm")
}

func TestHTTPClient_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Unauthorized"}`)
	}))
	defer srv.Close()

	err := widget.NewHTTPClient(srv.URL).Upload(context.Background(), &widget.Recording{Audio: []byte("x"), StoreID: "s", UserID: "u"})
	gt.Error(t, err)
}
