package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// AgentID identifies a per-store agent record. It doubles as the store id for voice sessions.
type AgentID string

// Validate checks if the AgentID is usable as a lookup key and storage path segment
func (id AgentID) Validate() error {
	if id == "" {
		return goerr.New("agent ID cannot be empty")
	}
	if !agentIDPattern.MatchString(string(id)) {
		return goerr.New("agent ID must be alphanumeric with hyphens or underscores", goerr.V("id", id))
	}
	return nil
}

// String returns the string representation of AgentID
func (id AgentID) String() string {
	return string(id)
}
