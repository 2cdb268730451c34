package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/service/blob"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
)

// VoiceContentType is the content type of recorded turns
const VoiceContentType = "audio/webm"

// VoiceUpload is one recorded turn posted by the widget
type VoiceUpload struct {
	Audio        io.Reader
	StoreID      types.AgentID
	UserID       string
	Transcript   string
	AIResponse   string
	ConsentGiven bool

	// Token is the credential presented by the client, compared with the agent's upload token
	Token string
	// Operator is set when the request carried the operator secret
	Operator bool
}

type VoiceUseCase struct {
	repo      interfaces.Repository
	blobStore blob.Store
	now       func() time.Time
}

func NewVoiceUseCase(repo interfaces.Repository, blobStore blob.Store, now func() time.Time) *VoiceUseCase {
	return &VoiceUseCase{
		repo:      repo,
		blobStore: blobStore,
		now:       now,
	}
}

// Upload stores the audio of a consented turn and records the session
func (uc *VoiceUseCase) Upload(ctx context.Context, in *VoiceUpload) (*model.VoiceSession, error) {
	if in == nil || in.StoreID == "" {
		return nil, goerr.Wrap(ErrInvalidUpload, "store_id required")
	}

	agent, err := uc.repo.Agent().Get(ctx, in.StoreID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent", goerr.V("store_id", in.StoreID))
	}

	tokenOK := agent != nil && agent.VoiceUploadToken != "" && in.Token == agent.VoiceUploadToken
	if !in.Operator && !tokenOK {
		return nil, goerr.Wrap(ErrUnauthorized, "upload credential rejected", goerr.V("store_id", in.StoreID))
	}

	if uc.blobStore == nil {
		return nil, goerr.Wrap(ErrBlobStoreUnavailable, "voice upload without blob store")
	}

	if in.Audio == nil || in.UserID == "" {
		return nil, goerr.Wrap(ErrInvalidUpload, "audio and user_id required")
	}
	if err := in.StoreID.Validate(); err != nil || strings.ContainsAny(in.UserID, `/\`) || strings.Contains(in.UserID, "..") {
		return nil, goerr.Wrap(ErrInvalidUpload, "store_id or user_id is not a valid path segment",
			goerr.V("store_id", in.StoreID), goerr.V("user_id", in.UserID))
	}

	if agent == nil || !agent.VoiceRecordingEnabled {
		return nil, goerr.Wrap(ErrRecordingDisabled, "voice recording not enabled", goerr.V("store_id", in.StoreID))
	}

	sessionID := model.NewVoiceSessionID()
	path := model.VoiceBlobPath(in.StoreID, in.UserID, sessionID)
	url, err := uc.blobStore.Put(ctx, path, VoiceContentType, in.Audio)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store audio", goerr.V("path", path))
	}

	session := &model.VoiceSession{
		ID:           sessionID,
		UserID:       in.UserID,
		StoreID:      in.StoreID,
		AudioBlobURL: url,
		Transcript:   in.Transcript,
		AIResponse:   in.AIResponse,
		Timestamp:    uc.now().UTC(),
		ConsentGiven: in.ConsentGiven,
	}
	if err := uc.repo.VoiceSession().Add(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to record voice session", goerr.V("session_id", sessionID))
	}

	logging.From(ctx).Info("voice session stored", "session_id", sessionID, "store_id", in.StoreID)
	return session, nil
}

// ListSessions returns a store's sessions matching query, newest first
func (uc *VoiceUseCase) ListSessions(ctx context.Context, storeID types.AgentID, query string) ([]*model.VoiceSession, error) {
	if storeID == "" {
		return nil, goerr.Wrap(ErrAgentIDRequired, "storeId required")
	}

	sessions, err := uc.repo.VoiceSession().ListByStore(ctx, storeID, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list voice sessions", goerr.V("store_id", storeID))
	}
	if sessions == nil {
		sessions = []*model.VoiceSession{}
	}
	return sessions, nil
}
