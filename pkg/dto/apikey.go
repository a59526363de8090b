package dto

import (
	"time"

	"github.com/google/uuid"
)

// StatusResponse is the envelope every key endpoint answers with.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type CreateAPIKeyRequest struct {
	Name         string `json:"name"`
	MonthlyLimit *int   `json:"monthly_limit,omitempty"`
}

type RenameAPIKeyRequest struct {
	Name string `json:"name"`
}

type APIKeyResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	KeyPrefix    string    `json:"key_prefix"`
	MonthlyLimit *int      `json:"monthly_limit"`
	Usage        int64     `json:"usage"`
	UsagePercent *int      `json:"usage_percent"`
	CreatedAt    time.Time `json:"created_at"`
}

// APIKeyCreatedResponse is the only response that ever carries the full key.
type APIKeyCreatedResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Key          string    `json:"key"`
	KeyPrefix    string    `json:"key_prefix"`
	MonthlyLimit *int      `json:"monthly_limit"`
	CreatedAt    time.Time `json:"created_at"`
}

type ValidateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type ValidateKeyData struct {
	KeyID        uuid.UUID `json:"key_id"`
	Name         string    `json:"name"`
	MonthlyLimit *int      `json:"monthly_limit"`
}
