package oauth

import (
	"testing"

	"github.com/dimitrije/martsy-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateState(t *testing.T) {
	state1, err := GenerateState()
	require.NoError(t, err)
	state2, err := GenerateState()
	require.NoError(t, err)

	assert.NotEqual(t, state1, state2)
	assert.Len(t, state1, 44)
}

func TestNewProviders_OnlyConfigured(t *testing.T) {
	providers := NewProviders(&config.Config{Google: config.OAuthConfig{ClientID: "g"}})

	assert.Len(t, providers, 1)
	assert.Contains(t, providers, "google")
	assert.NotContains(t, providers, "github")

	providers = NewProviders(&config.Config{
		GitHub: config.OAuthConfig{ClientID: "gh"},
		Google: config.OAuthConfig{ClientID: "g"},
	})
	assert.Len(t, providers, 2)
}
