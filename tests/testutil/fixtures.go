package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/martsy-api/internal/database"
	"github.com/dimitrije/martsy-api/internal/models"
	"github.com/dimitrije/martsy-api/internal/oauth"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = providerID
	}
}

// CreateAPIKey stores a key for the user and returns the row with its
// plaintext token.
func (f *Fixtures) CreateAPIKey(t *testing.T, user *models.User, opts ...APIKeyOption) (*models.APIKey, string) {
	t.Helper()
	f.counter++

	plainKey, keyHash, keyPrefix, err := services.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate api key: %v", err)
	}

	key := &models.APIKey{
		UserID:    user.ID,
		Name:      fmt.Sprintf("Key %d", f.counter),
		KeyHash:   keyHash,
		KeyPrefix: keyPrefix,
	}

	for _, opt := range opts {
		opt(key)
	}

	err = f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO api_keys (user_id, name, key_hash, key_prefix, monthly_limit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.MonthlyLimit).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create api key: %v", err)
	}

	return key, plainKey
}

// APIKeyOption configures a test api key
type APIKeyOption func(*models.APIKey)

func WithKeyName(name string) APIKeyOption {
	return func(k *models.APIKey) {
		k.Name = name
	}
}

func WithMonthlyLimit(limit int) APIKeyOption {
	return func(k *models.APIKey) {
		k.MonthlyLimit = &limit
	}
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates test OAuth user info
func OAuthUserInfo(email, name, provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: "https://example.com/avatar.png",
		ID:        id,
		Provider:  provider,
	}
}
