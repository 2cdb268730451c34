package model

// MemorySnapshot is a client-held copy of Memory in which each top-level key may be
// absent. A nil field means the client did not send it; an empty non-nil value is a
// concrete value and wins over the server copy.
type MemorySnapshot struct {
	UserProfile   *UserProfile   `json:"userProfile,omitempty"`
	Projects      []Project      `json:"projects"`
	Notes         []Note         `json:"notes"`
	Conversations []Conversation `json:"conversations"`
}

// Merge combines the snapshot with the server copy per top-level key, preferring the
// snapshot whenever it carries the key. Stale client data therefore survives a server
// side wipe.
func (s *MemorySnapshot) Merge(server *Memory) *Memory {
	if server == nil {
		server = NewMemory()
	}
	merged := &Memory{
		UserProfile:   server.UserProfile,
		Projects:      server.Projects,
		Notes:         server.Notes,
		Conversations: server.Conversations,
	}
	if s == nil {
		return merged.Normalize()
	}

	if s.UserProfile != nil {
		merged.UserProfile = *s.UserProfile
	}
	if s.Projects != nil {
		merged.Projects = s.Projects
	}
	if s.Notes != nil {
		merged.Notes = s.Notes
	}
	if s.Conversations != nil {
		merged.Conversations = s.Conversations
	}
	return merged.Normalize()
}

// Snapshot converts a Memory into a snapshot carrying every key
func (m *Memory) Snapshot() *MemorySnapshot {
	profile := m.UserProfile
	n := NewMemory()
	n.Projects = append(n.Projects, m.Projects...)
	n.Notes = append(n.Notes, m.Notes...)
	n.Conversations = append(n.Conversations, m.Conversations...)
	return &MemorySnapshot{
		UserProfile:   &profile,
		Projects:      n.Projects,
		Notes:         n.Notes,
		Conversations: n.Conversations,
	}
}
