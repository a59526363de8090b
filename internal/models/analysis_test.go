package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSetupComplexity(t *testing.T) {
	tests := []struct {
		in   string
		want SetupComplexity
	}{
		{"Simple", ComplexitySimple},
		{"simple", ComplexitySimple},
		{" COMPLEX ", ComplexityComplex},
		{"Moderate", ComplexityModerate},
		{"Hard", ComplexityModerate},
		{"", ComplexityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSetupComplexity(tt.in))
		})
	}
}

func TestRepoRef_String(t *testing.T) {
	assert.Equal(t, "golang/go", RepoRef{Owner: "golang", Repo: "go"}.String())
}
