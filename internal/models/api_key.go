package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a stored credential. The plaintext secret is never persisted;
// KeyPrefix is what the dashboard shows.
type APIKey struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	KeyHash      string    `json:"-"`
	KeyPrefix    string    `json:"key_prefix"`
	MonthlyLimit *int      `json:"monthly_limit"`
	CreatedAt    time.Time `json:"created_at"`
}

// KeyOwner is what a successful key validation resolves to.
type KeyOwner struct {
	KeyID        uuid.UUID `json:"key_id"`
	UserID       uuid.UUID `json:"user_id"`
	KeyName      string    `json:"key_name"`
	MonthlyLimit *int      `json:"monthly_limit"`
}
