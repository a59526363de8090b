package handlers

import (
	"net/http"
	"strings"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const analyzedMessage = "Successfully analyzed repository"

type SummarizerHandler struct {
	apiKeyService   APIKeyServiceInterface
	readmeFetcher   ReadmeFetcherInterface
	analysisService AnalysisServiceInterface
	usageService    UsageServiceInterface
	log             *logger.Logger
}

func NewSummarizerHandler(
	apiKeyService APIKeyServiceInterface,
	readmeFetcher ReadmeFetcherInterface,
	analysisService AnalysisServiceInterface,
	usageService UsageServiceInterface,
	log *logger.Logger,
) *SummarizerHandler {
	return &SummarizerHandler{
		apiKeyService:   apiKeyService,
		readmeFetcher:   readmeFetcher,
		analysisService: analysisService,
		usageService:    usageService,
		log:             log,
	}
}

// Summarize validates the caller's key, fetches the repository README and
// returns the model's structured analysis of it.
func (h *SummarizerHandler) Summarize(c *drift.Context) {
	var req dto.SummarizeRequest
	if err := c.BindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	apiKey := apiKeyFrom(c, req.APIKey)
	if apiKey == "" {
		respondMessage(c, http.StatusBadRequest, "API key is required")
		return
	}

	githubURL := strings.TrimSpace(req.GitHubURL)
	if githubURL == "" {
		respondMessage(c, http.StatusBadRequest, "GitHub URL is required")
		return
	}

	ctx := c.Request.Context()

	owner, err := h.apiKeyService.Validate(ctx, apiKey)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	log := h.log.WithFields("key_id", owner.KeyID, "github_url", githubURL)

	readme, err := h.readmeFetcher.Fetch(ctx, githubURL)
	if err != nil {
		respondError(c, log, err)
		return
	}

	outcome, err := h.analysisService.Analyze(ctx, readme.Repo, readme.Content)
	if err != nil {
		respondError(c, log, err)
		return
	}

	h.usageService.Record(ctx, owner.KeyID)

	log.Info("repository analyzed",
		"repo", readme.Repo.String(),
		"readme_source", string(readme.Source),
		"degraded", outcome.Degraded,
	)

	_ = c.JSON(http.StatusOK, dto.SummarizeResponse{
		Success:  true,
		Message:  analyzedMessage,
		Analysis: outcome.Analysis,
		Degraded: outcome.Degraded,
	})
}
