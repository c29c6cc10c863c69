package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// SiteAllowList is the restricted set of site: search operators the
// sub-query generator (spec §4.9) is permitted to emit, plus the
// fallback-gap query templates biased toward success criteria the
// saturation evaluator reports as uncovered. Adapted from the teacher's
// internal/config/source_types.go, trimmed from a multi-dimension source
// router down to the single list this orchestrator's sub-query generator
// actually consults.
type SiteAllowList struct {
	AllowedSites []string          `yaml:"allowed_sites"`
	GapQueries   map[string]string `yaml:"gap_queries"` // gap keyword -> query template
}

var (
	siteAllowList     *SiteAllowList
	siteAllowListOnce sync.Once
	siteAllowListErr  error
)

// LoadSiteAllowList loads SITE_ALLOWLIST_CONFIG_PATH, falling back to
// compiled-in defaults (site:reddit.com and site:quora.com, matching the
// two operators spec §4.9 names) when that variable is unset. A set path
// that cannot be read or parsed returns an error.
func LoadSiteAllowList() (*SiteAllowList, error) {
	siteAllowListOnce.Do(func() {
		siteAllowList, siteAllowListErr = loadSiteAllowListFromFile()
	})
	return siteAllowList, siteAllowListErr
}

func loadSiteAllowListFromFile() (*SiteAllowList, error) {
	cfgPath := os.Getenv("SITE_ALLOWLIST_CONFIG_PATH")
	if cfgPath == "" {
		return defaultSiteAllowList(), nil
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read site allowlist config: %w", err)
	}
	var cfg SiteAllowList
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse site allowlist config: %w", err)
	}
	if len(cfg.AllowedSites) == 0 {
		cfg.AllowedSites = defaultSiteAllowList().AllowedSites
	}
	return &cfg, nil
}

func defaultSiteAllowList() *SiteAllowList {
	return &SiteAllowList{
		AllowedSites: []string{"reddit.com", "quora.com"},
		GapQueries: map[string]string{
			"no coverage yet": "overview basics",
			"initial gap":     "introduction explained",
		},
	}
}

// IsAllowedSite reports whether site is permitted in a site: operator.
func (c *SiteAllowList) IsAllowedSite(site string) bool {
	for _, s := range c.AllowedSites {
		if s == site {
			return true
		}
	}
	return false
}
