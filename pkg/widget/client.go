package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

// DefaultClientTimeout covers the server's provider fallback chain
const DefaultClientTimeout = 3 * time.Minute

// Settings is the agent configuration served to the widget
type Settings struct {
	VoiceSettings         model.VoiceSettings `json:"voiceSettings"`
	StoreName             string              `json:"storeName"`
	VoiceRecordingEnabled bool                `json:"voiceRecordingEnabled"`
	VoiceUploadToken      string              `json:"voiceUploadToken,omitempty"`
}

// HTTPClient talks to the storevoice server. It implements TurnClient and VoiceUploader.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	uploadToken string
}

type HTTPClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithUploadToken sets the credential used for voice uploads
func WithUploadToken(token string) HTTPClientOption {
	return func(c *HTTPClient) {
		c.uploadToken = token
	}
}

func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUploadToken updates the upload credential, typically from Settings
func (c *HTTPClient) SetUploadToken(token string) {
	c.uploadToken = token
}

type chatRequest struct {
	Message string                `json:"message"`
	Memory  *model.MemorySnapshot `json:"memory,omitempty"`
	AgentID types.AgentID         `json:"agentId,omitempty"`
}

type chatResponse struct {
	Reply         string        `json:"reply"`
	UpdatedMemory *model.Memory `json:"updatedMemory"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Send posts a turn. A 429 response yields a *QuotaError carrying the server message.
func (c *HTTPClient) Send(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	payload := chatRequest{Message: req.Message, AgentID: req.AgentID}
	if req.Memory != nil {
		payload.Memory = req.Memory.Snapshot()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send chat request")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, &QuotaError{Message: e.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "chat request failed")
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, goerr.Wrap(err, "failed to decode chat response")
	}
	return &TurnResponse{Reply: out.Reply, Memory: out.UpdatedMemory}, nil
}

// Settings fetches the agent's widget settings
func (c *HTTPClient) Settings(ctx context.Context, agentID types.AgentID) (*Settings, error) {
	u := c.baseURL + "/api/agent/settings?" + url.Values{"agentId": {agentID.String()}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create settings request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent settings")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "agent settings request failed", goerr.V("agent_id", agentID))
	}

	var s Settings
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode agent settings")
	}
	return &s, nil
}

// Upload posts a recording as multipart form data
func (c *HTTPClient) Upload(ctx context.Context, rec *Recording) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"store_id", rec.StoreID.String()},
		{"user_id", rec.UserID},
		{"transcript", rec.Transcript},
		{"ai_response", rec.AIResponse},
		{"consent_given", strconv.FormatBool(rec.ConsentGiven)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return goerr.Wrap(err, "failed to write form field", goerr.V("field", f[0]))
		}
	}
	fw, err := mw.CreateFormFile("audio", "recording.webm")
	if err != nil {
		return goerr.Wrap(err, "failed to create audio part")
	}
	if _, err := fw.Write(rec.Audio); err != nil {
		return goerr.Wrap(err, "failed to write audio part")
	}
	if err := mw.Close(); err != nil {
		return goerr.Wrap(err, "failed to finish form")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/voice/upload", &buf)
	if err != nil {
		return goerr.Wrap(err, "failed to create upload request")
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if c.uploadToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.uploadToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return goerr.Wrap(err, "failed to upload recording")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, "voice upload failed", goerr.V("store_id", rec.StoreID))
	}
	return nil
}

func statusError(resp *http.Response, msg string, opts ...goerr.Option) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	opts = append(opts, goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	return goerr.New(msg, opts...)
}
