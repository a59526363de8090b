package services

import (
	"context"
	"errors"

	"github.com/dimitrije/martsy-api/internal/database"
	"github.com/dimitrije/martsy-api/internal/models"
	"github.com/dimitrije/martsy-api/internal/oauth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, avatar_url, provider, provider_id, last_sign_in_at, created_at, updated_at`

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

func scanUser(row pgx.Row, user *models.User) error {
	return row.Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider,
		&user.ProviderID, &user.LastSignInAt, &user.CreatedAt, &user.UpdatedAt,
	)
}

// FindOrCreateFromOAuth keeps one row per email. A returning user gets their
// profile fields refreshed and last_sign_in_at bumped.
func (s *UserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	if info == nil || info.Email == "" {
		return nil, newError(KindInvalidFormat, "identity provider returned no email", nil)
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}

	var user models.User
	err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id, last_sign_in_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			provider = EXCLUDED.provider,
			provider_id = EXCLUDED.provider_id,
			last_sign_in_at = NOW(),
			updated_at = NOW()
		RETURNING `+userColumns,
		info.Email, name, nullableString(info.AvatarURL), info.Provider, info.ID), &user)
	if err != nil {
		return nil, newError(KindStorageUnavailable, "failed to sign in user", err)
	}

	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := scanUser(s.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newError(KindNotFound, "user not found", nil)
	}
	if err != nil {
		return nil, newError(KindStorageUnavailable, "failed to get user", err)
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := scanUser(s.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email), &user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newError(KindNotFound, "user not found", nil)
	}
	if err != nil {
		return nil, newError(KindStorageUnavailable, "failed to get user", err)
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	var user models.User
	err := scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns, name, id), &user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newError(KindNotFound, "user not found", nil)
	}
	if err != nil {
		return nil, newError(KindStorageUnavailable, "failed to update user", err)
	}
	return &user, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
