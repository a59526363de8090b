package handlers

import (
	"net/http"
	"strings"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/internal/middleware"
	"github.com/dimitrije/martsy-api/internal/models"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/dimitrije/martsy-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// APIKeyHeader is accepted wherever a key may also be sent in the body.
const APIKeyHeader = "x-api-key"

type APIKeyHandler struct {
	apiKeyService APIKeyServiceInterface
	usageService  UsageServiceInterface
	log           *logger.Logger
}

func NewAPIKeyHandler(apiKeyService APIKeyServiceInterface, usageService UsageServiceInterface, log *logger.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: apiKeyService,
		usageService:  usageService,
		log:           log,
	}
}

func (h *APIKeyHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	key, plainKey, err := h.apiKeyService.Create(c.Request.Context(), userID, req.Name, req.MonthlyLimit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("api key created", "user_id", userID, "key_prefix", key.KeyPrefix)

	_ = c.JSON(http.StatusCreated, dto.StatusResponse{
		Success: true,
		Data: dto.APIKeyCreatedResponse{
			ID:           key.ID,
			Name:         key.Name,
			Key:          plainKey,
			KeyPrefix:    key.KeyPrefix,
			MonthlyLimit: key.MonthlyLimit,
			CreatedAt:    key.CreatedAt,
		},
	})
}

func (h *APIKeyHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := c.Request.Context()

	keys, err := h.apiKeyService.List(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ids := make([]uuid.UUID, len(keys))
	for i, k := range keys {
		ids[i] = k.ID
	}
	counts := h.usageService.Counts(ctx, ids)

	response := make([]dto.APIKeyResponse, 0, len(keys))
	for _, k := range keys {
		response = append(response, toAPIKeyResponse(k, counts[k.ID]))
	}

	_ = c.JSON(http.StatusOK, response)
}

func (h *APIKeyHandler) Rename(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid key id")
		return
	}

	var req dto.RenameAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := c.Request.Context()

	key, err := h.apiKeyService.Rename(ctx, keyID, userID, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	counts := h.usageService.Counts(ctx, []uuid.UUID{key.ID})

	_ = c.JSON(http.StatusOK, dto.StatusResponse{
		Success: true,
		Data:    toAPIKeyResponse(*key, counts[key.ID]),
	})
}

func (h *APIKeyHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid key id")
		return
	}

	if err := h.apiKeyService.Delete(c.Request.Context(), keyID, userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("api key deleted", "user_id", userID, "key_id", keyID)

	_ = c.JSON(http.StatusOK, dto.StatusResponse{Success: true})
}

// Validate is public: it lets a client check a key before calling the
// summarizer. It does not count as usage.
func (h *APIKeyHandler) Validate(c *drift.Context) {
	var req dto.ValidateKeyRequest
	if err := c.BindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, err := h.apiKeyService.Validate(c.Request.Context(), apiKeyFrom(c, req.APIKey))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	_ = c.JSON(http.StatusOK, dto.StatusResponse{
		Success: true,
		Message: "Valid API key",
		Data: dto.ValidateKeyData{
			KeyID:        owner.KeyID,
			Name:         owner.KeyName,
			MonthlyLimit: owner.MonthlyLimit,
		},
	})
}

// apiKeyFrom prefers the key sent in the body and falls back to the header.
func apiKeyFrom(c *drift.Context, bodyKey string) string {
	if key := strings.TrimSpace(bodyKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.GetHeader(APIKeyHeader))
}

func toAPIKeyResponse(k models.APIKey, usage int64) dto.APIKeyResponse {
	return dto.APIKeyResponse{
		ID:           k.ID,
		Name:         k.Name,
		KeyPrefix:    k.KeyPrefix,
		MonthlyLimit: k.MonthlyLimit,
		Usage:        usage,
		UsagePercent: services.UsagePercent(usage, k.MonthlyLimit),
		CreatedAt:    k.CreatedAt,
	}
}
