package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/martsy-api/internal/models"
	"github.com/dimitrije/martsy-api/internal/oauth"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// APIKeyServiceInterface defines the methods used by handlers from APIKeyService
type APIKeyServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, name string, monthlyLimit *int) (*models.APIKey, string, error)
	Validate(ctx context.Context, token string) (*models.KeyOwner, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error)
	Rename(ctx context.Context, keyID, userID uuid.UUID, name string) (*models.APIKey, error)
	Delete(ctx context.Context, keyID, userID uuid.UUID) error
}

// UsageServiceInterface defines the methods used by handlers from UsageService
type UsageServiceInterface interface {
	Record(ctx context.Context, keyID uuid.UUID)
	Counts(ctx context.Context, keyIDs []uuid.UUID) map[uuid.UUID]int64
}

type ReadmeFetcherInterface interface {
	Fetch(ctx context.Context, rawURL string) (*models.Readme, error)
}

type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, repo models.RepoRef, readme string) (*models.AnalysisOutcome, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
