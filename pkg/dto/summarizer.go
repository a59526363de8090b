package dto

import "github.com/dimitrije/martsy-api/internal/models"

type SummarizeRequest struct {
	APIKey    string `json:"apiKey"`
	GitHubURL string `json:"githubURL"`
}

type SummarizeResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Analysis models.Analysis `json:"analysis"`
	Degraded bool            `json:"degraded"`
}
