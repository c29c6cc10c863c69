package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Features struct {
	Research ResearchConfig `mapstructure:"research"`
}

// ResearchConfig holds the §6 configuration knobs for the orchestrator:
// tokenizer/trim sizing, quick-pass shape, fallback-query shape, and the
// saturation/minimal-iteration thresholds.
type ResearchConfig struct {
	MaxDurationMinutes      int     `mapstructure:"max_duration_minutes"`
	Breadth                 int     `mapstructure:"breadth"`
	Depth                   int     `mapstructure:"depth"`
	TokenizerContextWindow  int     `mapstructure:"tokenizer_context_window"`
	MinTrimChunk            int     `mapstructure:"min_trim_chunk"`
	PerContentTrimSize      int     `mapstructure:"per_content_trim_size"`
	QuickPassBreadth        int     `mapstructure:"quick_pass_breadth"`
	QuickPassDepth          int     `mapstructure:"quick_pass_depth"`
	FallbackQueryMaxWords   int     `mapstructure:"fallback_query_max_words"`
	ComponentSaturationPct  float64 `mapstructure:"component_saturation_pct"`
	MidDepthSaturationPct   float64 `mapstructure:"mid_depth_saturation_pct"`
	MinimalIterationGatePct float64 `mapstructure:"minimal_iteration_gate_pct"`
}

// DefaultResearchConfig matches spec §6's defaults exactly, so the
// orchestrator runs correctly with zero config file present.
func DefaultResearchConfig() ResearchConfig {
	return ResearchConfig{
		MaxDurationMinutes:      30,
		Breadth:                 3,
		Depth:                   2,
		TokenizerContextWindow:  120000,
		MinTrimChunk:            140,
		PerContentTrimSize:      25000,
		QuickPassBreadth:        2,
		QuickPassDepth:          1,
		FallbackQueryMaxWords:   4,
		ComponentSaturationPct:  75,
		MidDepthSaturationPct:   65,
		MinimalIterationGatePct: 10,
	}
}

// ResearchFromEnvOrDefaults merges env-var overrides over f's research
// section (if present) over the hardcoded defaults. Only
// max_duration_minutes, breadth and depth are taken from f; every other
// field keeps its DefaultResearchConfig value.
func ResearchFromEnvOrDefaults(f *Features) ResearchConfig {
	rc := DefaultResearchConfig()
	if f != nil {
		if f.Research.MaxDurationMinutes > 0 {
			rc.MaxDurationMinutes = f.Research.MaxDurationMinutes
		}
		if f.Research.Breadth > 0 {
			rc.Breadth = f.Research.Breadth
		}
		if f.Research.Depth > 0 {
			rc.Depth = f.Research.Depth
		}
	}
	if v := os.Getenv("RESEARCH_MAX_DURATION_MIN"); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			rc.MaxDurationMinutes = x
		}
	}
	if v := os.Getenv("RESEARCH_BREADTH"); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			rc.Breadth = x
		}
	}
	if v := os.Getenv("RESEARCH_DEPTH"); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			rc.Depth = x
		}
	}
	return rc
}

// Load loads research.yaml from CONFIG_PATH, falling back to
// ./config/research.yaml. A missing file is not an error: the
// orchestrator runs on DefaultResearchConfig defaults with zero config
// file present.
func Load() (*Features, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./config/research.yaml"
	}

	v := viper.New()
	v.SetConfigFile(cfgPath)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return &Features{}, nil
		}
		if os.IsNotExist(err) {
			return &Features{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var f Features
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &f, nil
}
