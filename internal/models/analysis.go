package models

import "strings"

type SetupComplexity string

const (
	ComplexitySimple   SetupComplexity = "Simple"
	ComplexityModerate SetupComplexity = "Moderate"
	ComplexityComplex  SetupComplexity = "Complex"
)

// ParseSetupComplexity matches case-insensitively and falls back to Moderate.
func ParseSetupComplexity(s string) SetupComplexity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return ComplexitySimple
	case "complex":
		return ComplexityComplex
	default:
		return ComplexityModerate
	}
}

type Analysis struct {
	Summary          string          `json:"summary"`
	CoolFacts        []string        `json:"coolFacts"`
	MainTechnologies []string        `json:"mainTechnologies"`
	TargetAudience   string          `json:"targetAudience"`
	SetupComplexity  SetupComplexity `json:"setupComplexity"`
}

// AnalysisOutcome separates model output from the canned placeholder.
// Degraded is true when the model reply could not be parsed.
type AnalysisOutcome struct {
	Analysis Analysis `json:"analysis"`
	Degraded bool     `json:"degraded"`
	Reason   string   `json:"reason,omitempty"`
}

type RepoRef struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

type ReadmeSource string

const (
	ReadmeSourceMain   ReadmeSource = "main"
	ReadmeSourceMaster ReadmeSource = "master"
	ReadmeSourceAPI    ReadmeSource = "api"
)

type Readme struct {
	Repo    RepoRef
	Content string
	Source  ReadmeSource
}
