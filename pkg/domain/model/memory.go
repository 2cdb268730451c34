package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

const (
	// MaxConversationMessages bounds a single conversation; oldest messages are dropped first.
	MaxConversationMessages = 50
	// MaxConversations bounds the conversation list; oldest conversations are dropped first.
	MaxConversations = 20
)

// UserProfile holds what is known about the end user. Preferences values are scalars.
type UserProfile struct {
	Name        string         `json:"name,omitempty" firestore:"name,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty" firestore:"preferences,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty" firestore:"createdAt,omitempty"`
}

type Project struct {
	ID          string `json:"id" firestore:"id"`
	Name        string `json:"name" firestore:"name"`
	Description string `json:"description,omitempty" firestore:"description,omitempty"`
	UpdatedAt   string `json:"updatedAt" firestore:"updatedAt"`
}

type Note struct {
	ID        string `json:"id" firestore:"id"`
	Content   string `json:"content" firestore:"content"`
	CreatedAt string `json:"createdAt" firestore:"createdAt"`
}

// Message is a single utterance in a conversation. It is never modified after creation.
type Message struct {
	Role      types.MessageRole `json:"role" firestore:"role"`
	Content   string            `json:"content" firestore:"content"`
	Timestamp string            `json:"timestamp" firestore:"timestamp"`
}

type Conversation struct {
	ID        string    `json:"id" firestore:"id"`
	Messages  []Message `json:"messages" firestore:"messages"`
	StartedAt string    `json:"startedAt" firestore:"startedAt"`
	UpdatedAt string    `json:"updatedAt" firestore:"updatedAt"`
}

// Memory is the durable conversational state carried across turns.
// When Conversations is non-empty its last element is the active conversation.
type Memory struct {
	UserProfile   UserProfile    `json:"userProfile" firestore:"userProfile"`
	Projects      []Project      `json:"projects" firestore:"projects"`
	Notes         []Note         `json:"notes" firestore:"notes"`
	Conversations []Conversation `json:"conversations" firestore:"conversations"`
}

// NewMemory returns an empty Memory with non-nil containers
func NewMemory() *Memory {
	return &Memory{
		UserProfile:   UserProfile{Preferences: map[string]any{}},
		Projects:      []Project{},
		Notes:         []Note{},
		Conversations: []Conversation{},
	}
}

// Normalize replaces nil containers with empty ones so that a persisted and reloaded
// Memory compares equal to the original.
func (m *Memory) Normalize() *Memory {
	if m.UserProfile.Preferences == nil {
		m.UserProfile.Preferences = map[string]any{}
	}
	if m.Projects == nil {
		m.Projects = []Project{}
	}
	if m.Notes == nil {
		m.Notes = []Note{}
	}
	if m.Conversations == nil {
		m.Conversations = []Conversation{}
	}
	for i := range m.Conversations {
		if m.Conversations[i].Messages == nil {
			m.Conversations[i].Messages = []Message{}
		}
	}
	return m
}

// Validate checks the structural shape of a Memory received from a client
func (m *Memory) Validate() error {
	for i, c := range m.Conversations {
		for j, msg := range c.Messages {
			if !msg.Role.IsValid() {
				return goerr.New("invalid message role",
					goerr.V("conversation", i),
					goerr.V("message", j),
					goerr.V("role", msg.Role))
			}
		}
	}
	for key, v := range m.UserProfile.Preferences {
		switch v.(type) {
		case string, bool, float64, int, int64:
		default:
			return goerr.New("preference value must be a scalar", goerr.V("key", key))
		}
	}
	return nil
}

// ActiveConversation returns the conversation new turns append to, or nil if none exists
func (m *Memory) ActiveConversation() *Conversation {
	if len(m.Conversations) == 0 {
		return nil
	}
	return &m.Conversations[len(m.Conversations)-1]
}

// RecentMessages returns up to n of the latest messages of the active conversation
func (m *Memory) RecentMessages(n int) []Message {
	conv := m.ActiveConversation()
	if conv == nil || n <= 0 {
		return nil
	}
	msgs := conv.Messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// AppendTurn records one user message and its assistant reply in the active conversation,
// creating one when the list is empty, then applies both retention caps.
func (m *Memory) AppendTurn(userText, assistantText string, now time.Time) {
	ts := now.UTC().Format(time.RFC3339Nano)
	if len(m.Conversations) == 0 {
		m.Conversations = append(m.Conversations, Conversation{
			ID:        uuid.New().String(),
			Messages:  []Message{},
			StartedAt: ts,
			UpdatedAt: ts,
		})
	}

	conv := m.ActiveConversation()
	conv.Messages = append(conv.Messages,
		Message{Role: types.MessageRoleUser, Content: userText, Timestamp: ts},
		Message{Role: types.MessageRoleAssistant, Content: assistantText, Timestamp: ts},
	)
	conv.UpdatedAt = ts
	conv.Messages = trimTail(conv.Messages, MaxConversationMessages)
	m.Conversations = trimTail(m.Conversations, MaxConversations)
}

// trimTail keeps the newest max elements in their original order
func trimTail[T any](s []T, max int) []T {
	if len(s) <= max {
		return s
	}
	out := make([]T, max)
	copy(out, s[len(s)-max:])
	return out
}

// Clone returns a deep copy of the memory
func (m *Memory) Clone() *Memory {
	c := &Memory{
		UserProfile: UserProfile{
			Name:      m.UserProfile.Name,
			CreatedAt: m.UserProfile.CreatedAt,
		},
		Projects:      append([]Project{}, m.Projects...),
		Notes:         append([]Note{}, m.Notes...),
		Conversations: make([]Conversation, len(m.Conversations)),
	}
	if m.UserProfile.Preferences != nil {
		c.UserProfile.Preferences = make(map[string]any, len(m.UserProfile.Preferences))
		for k, v := range m.UserProfile.Preferences {
			c.UserProfile.Preferences[k] = v
		}
	}
	for i, conv := range m.Conversations {
		conv.Messages = append([]Message{}, conv.Messages...)
		c.Conversations[i] = conv
	}
	return c
}
