package usecase

import "errors"

// QuotaExceededMessage is shown to end users when an agent has no turns left
const QuotaExceededMessage = "Usage limit reached. Please contact the store owner to renew."

// Sentinel errors for use case layer
var (
	// Validation errors
	ErrInvalidMessage       = errors.New("missing or invalid message")
	ErrInvalidMemory        = errors.New("invalid memory structure")
	ErrAgentIDRequired      = errors.New("agentId required")
	ErrInvalidUpload        = errors.New("audio, store_id, user_id required")
	ErrInvalidCatalogAction = errors.New("invalid catalog action")
	ErrInvalidQuotation     = errors.New("agentId, to, body required")

	// Quota
	ErrQuotaExceeded = errors.New("usage limit reached")

	// Not found errors
	ErrAgentNotFound = errors.New("agent not found")

	// Access control errors
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRecordingDisabled = errors.New("voice recording not enabled")

	// Capability errors
	ErrCatalogNotConfigured = errors.New("WooCommerce not configured")
	ErrSMTPNotConfigured    = errors.New("SMTP not configured for this agent")
	ErrBlobStoreUnavailable = errors.New("blob storage not configured")
)
