package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/internal/middleware"
	"github.com/dimitrije/martsy-api/internal/models"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/dimitrije/martsy-api/pkg/dto"
	"github.com/dimitrije/martsy-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserApp(handler *UserHandler) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Session(testutil.TestJWTService()))
	app.Get("/users/me", handler.GetMe)
	app.Patch("/users/me", handler.UpdateMe)
	return app
}

func sessionRequest(t *testing.T, method, path string, userID uuid.UUID, body any) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", testutil.AuthHeader(testutil.GenerateTestToken(t, userID, "test@example.com")))
	return req
}

func TestUserHandler_GetMe_Success(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	app := newUserApp(NewUserHandler(mockUserService, logger.Nop()))

	userID := uuid.New()
	avatarURL := "https://example.com/avatar.png"
	signedIn := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &models.User{
		ID:           userID,
		Email:        "test@example.com",
		Name:         "Test User",
		AvatarURL:    &avatarURL,
		Provider:     "github",
		LastSignInAt: &signedIn,
	}
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, sessionRequest(t, http.MethodGet, "/users/me", userID, nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, userID, response.ID)
	assert.Equal(t, "test@example.com", response.Email)
	assert.Equal(t, "Test User", response.Name)
	assert.Equal(t, &avatarURL, response.AvatarURL)
	assert.Equal(t, "github", response.Provider)
	require.NotNil(t, response.LastSignInAt)
	assert.True(t, signedIn.Equal(*response.LastSignInAt))

	mockUserService.AssertExpectations(t)
}

func TestUserHandler_GetMe_NotAuthenticated(t *testing.T) {
	app := newUserApp(NewUserHandler(new(testutil.MockUserService), logger.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_GetMe_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "deleted user",
			err:    &services.Error{Kind: services.KindNotFound, Message: "user not found"},
			status: http.StatusNotFound,
			body:   "user not found",
		},
		{
			name:   "store down",
			err:    &services.Error{Kind: services.KindStorageUnavailable, Message: "failed to load user", Err: errors.New("conn refused")},
			status: http.StatusInternalServerError,
			body:   "failed to load user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserService := new(testutil.MockUserService)
			app := newUserApp(NewUserHandler(mockUserService, logger.Nop()))
			userID := uuid.New()
			mockUserService.On("GetByID", mock.Anything, userID).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, sessionRequest(t, http.MethodGet, "/users/me", userID, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.NotContains(t, rec.Body.String(), "conn refused")
		})
	}
}

func TestUserHandler_UpdateMe(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	app := newUserApp(NewUserHandler(mockUserService, logger.Nop()))

	userID := uuid.New()
	updated := &models.User{ID: userID, Email: "test@example.com", Name: "New Name", Provider: "google"}
	mockUserService.On("Update", mock.Anything, userID, "New Name").Return(updated, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, sessionRequest(t, http.MethodPatch, "/users/me", userID, dto.UpdateUserRequest{Name: "  New Name  "}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var response dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "New Name", response.Name)

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, sessionRequest(t, http.MethodPatch, "/users/me", userID, dto.UpdateUserRequest{Name: "   "}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	mockUserService.AssertNumberOfCalls(t, "Update", 1)
}
