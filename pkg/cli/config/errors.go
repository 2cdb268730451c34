package config

import "errors"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = errors.New("configuration file not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrDuplicateAgent  = errors.New("duplicate agent ID")
	ErrInvalidAgentID  = errors.New("invalid agent ID")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	AgentIDKey    = "agent_id"
	FieldKey      = "field"
)
