package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/internal/middleware"
	"github.com/dimitrije/martsy-api/internal/oauth"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/dimitrije/martsy-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	stateTTL        = 10 * time.Minute
	authCodeTTL     = 30 * time.Second
	providerCallTTL = 30 * time.Second
	sweepInterval   = time.Minute
)

type AuthHandler struct {
	frontendCallbackURL string
	providers           map[string]oauth.Provider
	userService         UserServiceInterface
	tokenService        TokenServiceInterface
	jwtService          JWTServiceInterface
	log                 *logger.Logger
	states              sync.Map
	authCodes           sync.Map
}

type stateData struct {
	provider  string
	expiresAt time.Time
}

type authCodeData struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func NewAuthHandler(
	frontendCallbackURL string,
	providers map[string]oauth.Provider,
	userService UserServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
	log *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		frontendCallbackURL: frontendCallbackURL,
		providers:           providers,
		userService:         userService,
		tokenService:        tokenService,
		jwtService:          jwtService,
		log:                 log,
	}
}

// RunSweeper drops expired states and auth codes until ctx is done.
func (h *AuthHandler) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.sweep(now)
		}
	}
}

func (h *AuthHandler) sweep(now time.Time) {
	h.states.Range(func(key, value any) bool {
		if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
			h.states.Delete(key)
		}
		return true
	})
	h.authCodes.Range(func(key, value any) bool {
		if acd, ok := value.(authCodeData); ok && now.After(acd.expiresAt) {
			h.authCodes.Delete(key)
		}
		return true
	})
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	h.states.Store(state, stateData{provider: provider, expiresAt: time.Now().Add(stateTTL)})

	_ = c.JSON(http.StatusOK, dto.ConsentURLResponse{URL: p.GetConsentURL(state)})
}

func (h *AuthHandler) Callback(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		h.redirect(c, "error", "unsupported provider")
		return
	}

	if denied := c.QueryParam("error"); denied != "" {
		h.redirect(c, "error", "sign-in was cancelled")
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		h.redirect(c, "error", "missing state parameter")
		return
	}

	sd, ok := h.states.LoadAndDelete(state)
	if !ok {
		h.redirect(c, "error", "invalid or expired state")
		return
	}

	sdTyped, ok := sd.(stateData)
	if !ok || sdTyped.provider != provider || time.Now().After(sdTyped.expiresAt) {
		h.redirect(c, "error", "state expired")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		h.redirect(c, "error", "missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), providerCallTTL)
	defer cancel()

	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		h.log.WithError(err).Warn("oauth code exchange failed", "provider", provider)
		h.redirect(c, "error", "failed to sign in with "+provider)
		return
	}

	user, err := h.userService.FindOrCreateFromOAuth(ctx, userInfo)
	if err != nil {
		h.log.WithError(err).Error("failed to find or create user", "provider", provider)
		h.redirect(c, "error", "failed to create user")
		return
	}

	authCode, err := oauth.GenerateState()
	if err != nil {
		h.redirect(c, "error", "failed to generate auth code")
		return
	}

	h.authCodes.Store(authCode, authCodeData{
		userID:    user.ID,
		expiresAt: time.Now().Add(authCodeTTL),
	})

	h.log.Info("user signed in", "user_id", user.ID, "provider", provider)
	h.redirect(c, "code", authCode)
}

func (h *AuthHandler) ExchangeCode(c *drift.Context) {
	var req dto.ExchangeCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	acd, ok := h.authCodes.LoadAndDelete(req.Code)
	if !ok {
		c.Unauthorized("invalid or expired code")
		return
	}

	codeData, ok := acd.(authCodeData)
	if !ok || time.Now().After(codeData.expiresAt) {
		c.Unauthorized("code expired")
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.GetByID(ctx, codeData.userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	h.issueTokens(c, user.ID, user.Email)
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	ctx := c.Request.Context()

	storedUserID, err := h.tokenService.ConsumeRefreshToken(ctx, services.HashToken(req.RefreshToken))
	if err != nil {
		if services.KindOf(err) == services.KindStorageUnavailable {
			h.log.WithError(err).Error("failed to rotate refresh token", "user_id", userID)
			c.InternalServerError("failed to rotate refresh token")
			return
		}
		c.Unauthorized("refresh token not found or expired")
		return
	}
	if storedUserID != userID {
		c.Unauthorized("refresh token not found or expired")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	h.issueTokens(c, user.ID, user.Email)
}

func (h *AuthHandler) issueTokens(c *drift.Context, userID uuid.UUID, email string) {
	tokenPair, err := h.jwtService.GenerateTokenPair(userID, email)
	if err != nil {
		h.log.WithError(err).Error("failed to generate tokens", "user_id", userID)
		c.InternalServerError("failed to generate tokens")
		return
	}

	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(c.Request.Context(), userID, services.HashToken(tokenPair.RefreshToken), expiresAt); err != nil {
		h.log.WithError(err).Error("failed to store refresh token", "user_id", userID)
		c.InternalServerError("failed to store refresh token")
		return
	}

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		if err := h.tokenService.RevokeRefreshToken(c.Request.Context(), services.HashToken(req.RefreshToken)); err != nil {
			h.log.WithError(err).Warn("failed to revoke refresh token on logout")
		}
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(c.Request.Context(), userID); err != nil {
		h.log.WithError(err).Error("failed to revoke sessions", "user_id", userID)
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "all sessions logged out"})
}

// redirect sends the browser back to the frontend with either ?code= or ?error=.
func (h *AuthHandler) redirect(c *drift.Context, param, value string) {
	target := h.frontendCallbackURL
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	target += sep + param + "=" + url.QueryEscape(value)

	c.Response.Header().Set("Location", target)
	c.Response.WriteHeader(http.StatusFound)
	c.Abort()
}
