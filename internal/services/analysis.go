package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dimitrije/martsy-api/internal/llm"
	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/internal/models"
	"github.com/tidwall/gjson"
)

const systemPrompt = "You are an expert GitHub repository analyzer. " +
	"You read README files and describe projects accurately and concisely. " +
	"You always answer with a single JSON object and nothing else."

const userPromptTemplate = `Analyze the README of the GitHub repository %s and provide:
- summary: a concise summary of the repository (max 150 words)
- coolFacts: 3 specific and interesting facts about the project
- mainTechnologies: the main technologies used in the project
- targetAudience: who the project is for
- setupComplexity: one of "Simple", "Moderate" or "Complex"

Respond with JSON in exactly this shape:
{"summary": "...", "coolFacts": ["...", "...", "..."], "mainTechnologies": ["..."], "targetAudience": "...", "setupComplexity": "Simple|Moderate|Complex"}

README:
%s`

// PlaceholderAnalysis is returned, marked degraded, when the model reply
// cannot be understood.
func PlaceholderAnalysis() models.Analysis {
	return models.Analysis{
		Summary:          "This repository contains code and documentation. Unable to provide detailed analysis.",
		CoolFacts:        []string{"Contains a README file", "Is hosted on GitHub", "May include code samples"},
		MainTechnologies: []string{"Unknown"},
		TargetAudience:   "Developers",
		SetupComplexity:  models.ComplexityModerate,
	}
}

type AnalysisService struct {
	completer llm.Completer
	maxChars  int
	log       *logger.Logger
}

// NewAnalysisService accepts a nil completer; every Analyze call then fails
// with KindLLMUnavailable.
func NewAnalysisService(completer llm.Completer, maxChars int, log *logger.Logger) *AnalysisService {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalysisService{completer: completer, maxChars: maxChars, log: log}
}

func (s *AnalysisService) Analyze(ctx context.Context, repo models.RepoRef, readme string) (*models.AnalysisOutcome, error) {
	if s.completer == nil {
		return nil, newError(KindLLMUnavailable, "Failed to analyze repository", llm.ErrMissingAPIKey)
	}

	prompt := llm.Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(userPromptTemplate, repo.String(), truncateRunes(readme, s.maxChars)),
	}

	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.log.WithError(err).Error("llm call failed", "repo", repo.String())
		return nil, newError(KindLLMUnavailable, "Failed to analyze repository", err)
	}

	analysis, ok := ParseAnalysis(reply)
	if !ok {
		s.log.Warn("llm reply was not usable, returning placeholder analysis",
			"repo", repo.String(), "reply_length", len(reply))
		return &models.AnalysisOutcome{
			Analysis: PlaceholderAnalysis(),
			Degraded: true,
			Reason:   "model response could not be parsed",
		}, nil
	}

	return &models.AnalysisOutcome{Analysis: analysis}, nil
}

// ParseAnalysis reads a model reply. The whole text is tried first, then the
// first balanced {...} span inside it. An "analysis" wrapper object is unwrapped.
// A reply without a summary is rejected.
func ParseAnalysis(text string) (models.Analysis, bool) {
	candidates := []string{strings.TrimSpace(text)}
	if span := firstObject(text); span != "" {
		candidates = append(candidates, span)
	}

	for _, candidate := range candidates {
		if !gjson.Valid(candidate) {
			continue
		}
		root := gjson.Parse(candidate)
		if !root.IsObject() {
			continue
		}
		if inner := root.Get("analysis"); inner.IsObject() {
			root = inner
		}

		summary := strings.TrimSpace(root.Get("summary").String())
		if summary == "" {
			continue
		}

		return models.Analysis{
			Summary:          summary,
			CoolFacts:        stringList(root.Get("coolFacts")),
			MainTechnologies: stringList(root.Get("mainTechnologies")),
			TargetAudience:   strings.TrimSpace(root.Get("targetAudience").String()),
			SetupComplexity:  models.ParseSetupComplexity(root.Get("setupComplexity").String()),
		}, true
	}

	return models.Analysis{}, false
}

// firstObject returns the first balanced {...} span of text. Braces inside
// JSON strings do not count.
func firstObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func stringList(r gjson.Result) []string {
	out := []string{}
	if r.IsArray() {
		for _, item := range r.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := strings.TrimSpace(r.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
