package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dimitrije/martsy-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTokenService(t *testing.T) (*TokenService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTokenService(db), mock
}

func TestTokenService_StoreRefreshToken(t *testing.T) {
	svc, mock := setupTokenService(t)
	userID := uuid.New()
	expiresAt := time.Now().Add(24 * time.Hour)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(userID, "abc123hash", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.StoreRefreshToken(context.Background(), userID, "abc123hash", expiresAt)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_StoreRefreshToken_StoreDown(t *testing.T) {
	svc, mock := setupTokenService(t)
	userID := uuid.New()
	expiresAt := time.Now().Add(time.Hour)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(userID, "h", expiresAt).
		WillReturnError(errors.New("pool closed"))

	err := svc.StoreRefreshToken(context.Background(), userID, "h", expiresAt)

	assert.Equal(t, KindStorageUnavailable, KindOf(err))
}

func TestTokenService_ValidateRefreshToken_Valid(t *testing.T) {
	svc, mock := setupTokenService(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs("valid-hash").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(userID))

	result, err := svc.ValidateRefreshToken(context.Background(), "valid-hash")

	assert.NoError(t, err)
	assert.Equal(t, userID, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ValidateRefreshToken_ExpiredOrUnknown(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs("expired-hash").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.ValidateRefreshToken(context.Background(), "expired-hash")

	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ConsumeRefreshToken(t *testing.T) {
	svc, mock := setupTokenService(t)
	userID := uuid.New()

	mock.ExpectQuery(`DELETE FROM refresh_tokens\s+WHERE token_hash = \$1 AND expires_at > NOW\(\)\s+RETURNING user_id`).
		WithArgs("rotate-hash").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(userID))
	mock.ExpectQuery(`DELETE FROM refresh_tokens`).
		WithArgs("rotate-hash").
		WillReturnError(pgx.ErrNoRows)

	got, err := svc.ConsumeRefreshToken(context.Background(), "rotate-hash")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = svc.ConsumeRefreshToken(context.Background(), "rotate-hash")
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ConsumeRefreshToken_StoreDown(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectQuery(`DELETE FROM refresh_tokens`).
		WithArgs("h").
		WillReturnError(errors.New("conn reset"))

	_, err := svc.ConsumeRefreshToken(context.Background(), "h")
	assert.Equal(t, KindStorageUnavailable, KindOf(err))
}

func TestTokenService_RevokeRefreshToken(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash`).
		WithArgs("to-be-revoked").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, svc.RevokeRefreshToken(context.Background(), "to-be-revoked"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_RevokeAllUserTokens(t *testing.T) {
	svc, mock := setupTokenService(t)
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	assert.NoError(t, svc.RevokeAllUserTokens(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_CleanupExpired(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < NOW`).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	purged, err := svc.CleanupExpired(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(5), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
