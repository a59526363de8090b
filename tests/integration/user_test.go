package integration

import (
	"context"
	"testing"

	"github.com/dimitrije/martsy-api/internal/oauth"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/dimitrije/martsy-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Integration_FirstSignInCreatesUser(t *testing.T) {
	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB)
	ctx := context.Background()

	info := testutil.OAuthUserInfo("newuser@example.com", "New User", "github", "github-12345")

	user, err := svc.FindOrCreateFromOAuth(ctx, info)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, info.Email, user.Email)
	assert.Equal(t, info.Name, user.Name)
	assert.Equal(t, info.Provider, user.Provider)
	assert.Equal(t, info.ID, user.ProviderID)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, info.AvatarURL, *user.AvatarURL)
	assert.NotNil(t, user.LastSignInAt)

	byID, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := svc.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserService_Integration_NameFallsBackToEmail(t *testing.T) {
	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB)

	user, err := svc.FindOrCreateFromOAuth(context.Background(), &oauth.UserInfo{
		Email:    "quiet@example.com",
		ID:       "google-1",
		Provider: "google",
	})
	require.NoError(t, err)
	assert.Equal(t, "quiet@example.com", user.Name)
	assert.Nil(t, user.AvatarURL)
}

func TestUserService_Integration_SameEmailOtherProvider(t *testing.T) {
	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB)
	ctx := context.Background()

	first, err := svc.FindOrCreateFromOAuth(ctx, testutil.OAuthUserInfo("shared@example.com", "Original Name", "github", "github-11111"))
	require.NoError(t, err)
	require.NotNil(t, first.LastSignInAt)

	second, err := svc.FindOrCreateFromOAuth(ctx, &oauth.UserInfo{
		Email:    "shared@example.com",
		Name:     "Updated Name",
		ID:       "google-11111",
		Provider: "google",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Updated Name", second.Name)
	assert.Equal(t, "google", second.Provider)
	// avatar is kept when the new provider sends none
	assert.Equal(t, first.AvatarURL, second.AvatarURL)
	require.NotNil(t, second.LastSignInAt)
	assert.False(t, second.LastSignInAt.Before(*first.LastSignInAt))
}

func TestUserService_Integration_UpdateAndMissing(t *testing.T) {
	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewUserService(tdb.DB)
	ctx := context.Background()

	created := fixtures.CreateUser(t, testutil.WithName("Original"))

	updated, err := svc.Update(ctx, created.ID, "New Name")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "New Name", updated.Name)

	_, err = svc.Update(ctx, uuid.New(), "Nobody")
	assert.Equal(t, services.KindNotFound, services.KindOf(err))

	_, err = svc.GetByEmail(ctx, "missing@example.com")
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
}
