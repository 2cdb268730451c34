package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

const (
	// VoiceSessionCeiling is the record count beyond which voice sessions are trimmed
	VoiceSessionCeiling = 50000
	// VoiceSessionRetain is the number of newest records kept after trimming
	VoiceSessionRetain = 25000
)

// VoiceSession is a consented audio recording of one turn
type VoiceSession struct {
	ID           string        `json:"id" firestore:"id"`
	UserID       string        `json:"user_id" firestore:"user_id"`
	StoreID      types.AgentID `json:"store_id" firestore:"store_id"`
	AudioBlobURL string        `json:"audio_blob_url" firestore:"audio_blob_url"`
	Transcript   string        `json:"transcript" firestore:"transcript"`
	AIResponse   string        `json:"ai_response" firestore:"ai_response"`
	Timestamp    time.Time     `json:"timestamp" firestore:"timestamp"`
	ConsentGiven bool          `json:"consent_given" firestore:"consent_given"`
}

// NewVoiceSessionID generates an identifier for a recorded session
func NewVoiceSessionID() string {
	return uuid.New().String()
}

// VoiceBlobPath is the object path of a session's audio
func VoiceBlobPath(storeID types.AgentID, userID, sessionID string) string {
	return fmt.Sprintf("stores/%s/users/%s/voice/%s.webm", storeID, userID, sessionID)
}

// Matches reports whether the session contains the query in its transcript, reply or user id
func (s *VoiceSession) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Transcript), q) ||
		strings.Contains(strings.ToLower(s.AIResponse), q) ||
		strings.Contains(strings.ToLower(s.UserID), q)
}
