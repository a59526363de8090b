package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/martsy-api/internal/config"
	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/internal/models"
)

const maxReadmeBytes = 1 << 20

// ParseRepositoryURL accepts https://github.com/{owner}/{repo}[/...] and
// nothing else.
func ParseRepositoryURL(raw string) (models.RepoRef, error) {
	invalid := func(msg string) (models.RepoRef, error) {
		return models.RepoRef{}, newError(KindInvalidRepositoryURL, msg, nil)
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() {
		return invalid("Invalid GitHub URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("Invalid GitHub URL")
	}

	host := strings.ToLower(u.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return invalid("URL must point to github.com")
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return invalid("URL must include both owner and repository")
	}

	repo := strings.TrimSuffix(segments[1], ".git")
	if repo == "" {
		return invalid("URL must include both owner and repository")
	}

	return models.RepoRef{Owner: segments[0], Repo: repo}, nil
}

type ReadmeFetcher struct {
	client     *http.Client
	rawBaseURL string
	apiBaseURL string
	token      string
	log        *logger.Logger
}

func NewReadmeFetcher(cfg config.RepoConfig, log *logger.Logger) *ReadmeFetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &ReadmeFetcher{
		client:     &http.Client{Timeout: cfg.OutboundTimeout},
		rawBaseURL: strings.TrimRight(cfg.RawBaseURL, "/"),
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		token:      cfg.Token,
		log:        log,
	}
}

// Fetch tries the main branch, then master, then the GitHub readme endpoint.
func (f *ReadmeFetcher) Fetch(ctx context.Context, rawURL string) (*models.Readme, error) {
	repo, err := ParseRepositoryURL(rawURL)
	if err != nil {
		return nil, err
	}

	attempts := []struct {
		source models.ReadmeSource
		url    string
		accept string
	}{
		{models.ReadmeSourceMain, fmt.Sprintf("%s/%s/%s/main/README.md", f.rawBaseURL, repo.Owner, repo.Repo), ""},
		{models.ReadmeSourceMaster, fmt.Sprintf("%s/%s/%s/master/README.md", f.rawBaseURL, repo.Owner, repo.Repo), ""},
		{models.ReadmeSourceAPI, fmt.Sprintf("%s/repos/%s/%s/readme", f.apiBaseURL, repo.Owner, repo.Repo), "application/vnd.github.v3.raw"},
	}

	var lastErr error
	for _, a := range attempts {
		content, err := f.get(ctx, a.url, a.accept, a.source == models.ReadmeSourceAPI)
		if err == nil {
			f.log.Debug("readme fetched", "repo", repo.String(), "source", a.source)
			return &models.Readme{Repo: repo, Content: content, Source: a.source}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	f.log.WithError(lastErr).Warn("readme unavailable", "repo", repo.String())
	return nil, newError(KindReadmeUnavailable, "Failed to fetch README from GitHub", lastErr)
}

func (f *ReadmeFetcher) get(ctx context.Context, target, accept string, authorize bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if authorize && f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	req.Header.Set("User-Agent", "martsy-api")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReadmeBytes))
		return "", fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadmeBytes))
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", target, err)
	}
	f.log.Debug("outbound request", "url", target, "status", resp.StatusCode, "duration", time.Since(start))
	return string(body), nil
}
