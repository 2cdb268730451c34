package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

const (
	// ConversationLogCeiling is the entry count beyond which the log is trimmed
	ConversationLogCeiling = 10000
	// ConversationLogRetain is the number of newest entries kept after trimming
	ConversationLogRetain = 5000
)

// ConversationLog is one completed turn recorded for the store operator
type ConversationLog struct {
	ID             string        `json:"id" firestore:"id"`
	AgentID        types.AgentID `json:"agentId" firestore:"agent_id"`
	UserMessage    string        `json:"userMessage" firestore:"user_message"`
	AssistantReply string        `json:"assistantReply" firestore:"assistant_reply"`
	Timestamp      time.Time     `json:"timestamp" firestore:"timestamp"`
}

func NewConversationLog(agentID types.AgentID, userMessage, reply string, now time.Time) *ConversationLog {
	return &ConversationLog{
		ID:             uuid.New().String(),
		AgentID:        agentID,
		UserMessage:    userMessage,
		AssistantReply: reply,
		Timestamp:      now.UTC(),
	}
}

// TrimRetention applies the ceiling/retain pair to a chronologically ordered slice
func TrimRetention[T any](s []T, ceiling, retain int) []T {
	if len(s) <= ceiling {
		return s
	}
	return trimTail(s, retain)
}
