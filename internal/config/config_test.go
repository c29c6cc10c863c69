package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadMissingFileReturnsEmptyFeatures(t *testing.T) {
	os.Setenv("CONFIG_PATH", "/nonexistent/research.yaml")
	defer os.Unsetenv("CONFIG_PATH")

	f, err := Load()
	assert.NoError(t, err)
	assert.NotNil(t, f)
}

func TestResearchFromEnvOrDefaultsUsesDefaultsWhenUnset(t *testing.T) {
	rc := ResearchFromEnvOrDefaults(nil)
	want := DefaultResearchConfig()
	assert.Equal(t, want, rc)
}

func TestResearchFromEnvOrDefaultsEnvOverride(t *testing.T) {
	os.Setenv("RESEARCH_BREADTH", "5")
	defer os.Unsetenv("RESEARCH_BREADTH")

	rc := ResearchFromEnvOrDefaults(nil)
	assert.Equal(t, 5, rc.Breadth)
	assert.Equal(t, DefaultResearchConfig().Depth, rc.Depth)
}

func TestDefaultSiteAllowListHasRedditAndQuora(t *testing.T) {
	cfg, err := LoadSiteAllowList()
	assert.NoError(t, err)
	assert.True(t, cfg.IsAllowedSite("reddit.com"))
	assert.True(t, cfg.IsAllowedSite("quora.com"))
	assert.False(t, cfg.IsAllowedSite("example.com"))
}
