package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/dimitrije/martsy-api/internal/database"
	"github.com/dimitrije/martsy-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	APIKeyPrefix     = "martsy_"
	apiKeyRandomLen  = 32
	apiKeyDisplayLen = 12
	maxKeyNameLen    = 255
	base36Alphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
)

type APIKeyService struct {
	db *database.DB
}

func NewAPIKeyService(db *database.DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// GenerateKey returns a new plaintext key together with the hash and display
// prefix that are stored in its place.
func GenerateKey() (plainKey, keyHash, keyPrefix string, err error) {
	var b strings.Builder
	b.Grow(len(APIKeyPrefix) + apiKeyRandomLen)
	b.WriteString(APIKeyPrefix)

	alphabetLen := big.NewInt(int64(len(base36Alphabet)))
	for range apiKeyRandomLen {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", "", "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		b.WriteByte(base36Alphabet[n.Int64()])
	}

	plainKey = b.String()
	return plainKey, HashAPIKey(plainKey), plainKey[:apiKeyDisplayLen] + "...", nil
}

func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

func normalizeKeyName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newError(KindInvalidFormat, "name is required", nil)
	}
	if utf8.RuneCountInString(name) > maxKeyNameLen {
		return "", newError(KindInvalidFormat, fmt.Sprintf("name must be at most %d characters", maxKeyNameLen), nil)
	}
	return name, nil
}

func normalizeMonthlyLimit(limit *int) (*int, error) {
	if limit == nil || *limit == 0 {
		return nil, nil
	}
	if *limit < 0 {
		return nil, newError(KindInvalidFormat, "monthly_limit must be a positive integer", nil)
	}
	v := *limit
	return &v, nil
}

func (s *APIKeyService) Create(ctx context.Context, userID uuid.UUID, name string, monthlyLimit *int) (*models.APIKey, string, error) {
	name, err := normalizeKeyName(name)
	if err != nil {
		return nil, "", err
	}
	limit, err := normalizeMonthlyLimit(monthlyLimit)
	if err != nil {
		return nil, "", err
	}

	plainKey, keyHash, keyPrefix, err := GenerateKey()
	if err != nil {
		return nil, "", err
	}

	var key models.APIKey
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO api_keys (user_id, name, key_hash, key_prefix, monthly_limit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, key_hash, key_prefix, monthly_limit, created_at
	`, userID, name, keyHash, keyPrefix, limit).Scan(
		&key.ID, &key.UserID, &key.Name, &key.KeyHash,
		&key.KeyPrefix, &key.MonthlyLimit, &key.CreatedAt,
	)
	if err != nil {
		return nil, "", newError(KindStorageUnavailable, "failed to create api key", err)
	}

	return &key, plainKey, nil
}

// Validate resolves a presented key to its owner. Unknown keys are
// Unauthorized; a failing store is StorageUnavailable.
func (s *APIKeyService) Validate(ctx context.Context, token string) (*models.KeyOwner, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, newError(KindInvalidFormat, "API key is required", nil)
	}

	var owner models.KeyOwner
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, monthly_limit
		FROM api_keys
		WHERE key_hash = $1
	`, HashAPIKey(token)).Scan(&owner.KeyID, &owner.UserID, &owner.KeyName, &owner.MonthlyLimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newError(KindUnauthorized, "Invalid API key", nil)
	}
	if err != nil {
		return nil, newError(KindStorageUnavailable, "failed to validate api key", err)
	}

	return &owner, nil
}

func (s *APIKeyService) List(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, name, key_hash, key_prefix, monthly_limit, created_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, newError(KindStorageUnavailable, "failed to list api keys", err)
	}
	defer rows.Close()

	keys := []models.APIKey{}
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(
			&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.MonthlyLimit, &k.CreatedAt,
		); err != nil {
			return nil, newError(KindStorageUnavailable, "failed to list api keys", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindStorageUnavailable, "failed to list api keys", err)
	}
	return keys, nil
}

func (s *APIKeyService) Get(ctx context.Context, keyID, userID uuid.UUID) (*models.APIKey, error) {
	var k models.APIKey
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, key_hash, key_prefix, monthly_limit, created_at
		FROM api_keys
		WHERE id = $1 AND user_id = $2
	`, keyID, userID).Scan(
		&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.MonthlyLimit, &k.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newError(KindNotFound, "api key not found", nil)
	}
	if err != nil {
		return nil, newError(KindStorageUnavailable, "failed to get api key", err)
	}
	return &k, nil
}

// Rename is idempotent: renaming to the current name succeeds unchanged.
// Keys owned by someone else are reported as not found.
func (s *APIKeyService) Rename(ctx context.Context, keyID, userID uuid.UUID, name string) (*models.APIKey, error) {
	name, err := normalizeKeyName(name)
	if err != nil {
		return nil, err
	}

	var k models.APIKey
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE api_keys SET name = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, key_hash, key_prefix, monthly_limit, created_at
	`, name, keyID, userID).Scan(
		&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.MonthlyLimit, &k.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newError(KindNotFound, "api key not found", nil)
	}
	if err != nil {
		return nil, newError(KindStorageUnavailable, "failed to rename api key", err)
	}
	return &k, nil
}

func (s *APIKeyService) Delete(ctx context.Context, keyID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM api_keys WHERE id = $1 AND user_id = $2
	`, keyID, userID)
	if err != nil {
		return newError(KindStorageUnavailable, "failed to delete api key", err)
	}
	if result.RowsAffected() == 0 {
		return newError(KindNotFound, "api key not found", nil)
	}
	return nil
}
