// Package config loads privacyguard's YAML configuration (spec §6) and
// watches it for hot-reload.
package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OpenBMB/privacyguard/internal/detect"
	"github.com/OpenBMB/privacyguard/internal/localmodel"
	"github.com/OpenBMB/privacyguard/internal/model"
)

// Config is the full on-disk configuration surface.
type Config struct {
	Enabled     bool              `yaml:"enabled"`
	Checkpoints CheckpointsConfig `yaml:"checkpoints"`
	Rules       RulesConfig       `yaml:"rules"`
	LocalModel  LocalModelConfig  `yaml:"localModel"`
	GuardAgent  GuardAgentConfig  `yaml:"guardAgent"`
	Session     SessionConfig     `yaml:"session"`
}

// CheckpointsConfig configures which detector kinds ("ruleDetector",
// "localModelDetector") run at each checkpoint. A key present with an
// empty list means "run no detector at all" at that checkpoint; a key
// absent falls back to detect.DefaultCheckpointDetectors.
type CheckpointsConfig struct {
	OnUserMessage      []string `yaml:"onUserMessage"`
	OnToolCallProposed []string `yaml:"onToolCallProposed"`
	OnToolCallExecuted []string `yaml:"onToolCallExecuted"`
}

// RulesConfig is the rule detector's (C1) configuration.
type RulesConfig struct {
	Keywords TierStrings     `yaml:"keywords"`
	Patterns TierStrings     `yaml:"patterns"`
	Tools    TierToolConfig  `yaml:"tools"`
}

// TierStrings holds a per-tier list of strings (keywords or pattern
// source text — patterns are compiled by BuildRuleConfig, not here).
type TierStrings struct {
	S2 []string `yaml:"S2"`
	S3 []string `yaml:"S3"`
}

// TierToolConfig holds per-tier tool name/path rules.
type TierToolConfig struct {
	S2 ToolRule `yaml:"S2"`
	S3 ToolRule `yaml:"S3"`
}

// ToolRule is one tier's tool names and paths for the rule detector; a tool
// call matching either raises the detection to that tier.
type ToolRule struct {
	Names []string `yaml:"names"`
	Paths []string `yaml:"paths"`
}

// LocalModelConfig configures the on-box model endpoint (C2/C4).
type LocalModelConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
}

// GuardAgentConfig configures the guard-session identity (spec §4.9/§6).
type GuardAgentConfig struct {
	ID        string `yaml:"id"`
	Workspace string `yaml:"workspace"`
	Model     string `yaml:"model"`
}

// SessionConfig configures session-registry behavior.
type SessionConfig struct {
	IsolateGuardHistory bool   `yaml:"isolateGuardHistory"`
	BaseDir             string `yaml:"baseDir"`
}

// Load reads and strictly decodes the YAML config at path: unknown keys
// are rejected rather than silently ignored, so a typo in an operator's
// config surfaces immediately instead of silently disabling a checkpoint.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// CompilePatterns validates and compiles the configured S2/S3 regex
// pattern source strings. Invalid regex is rejected here, at
// config-load time, per spec §4.1's failure semantics.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("config: invalid pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// BuildRuleConfig compiles RulesConfig into the detect package's
// RuleConfig, rejecting invalid regex at this boundary rather than
// letting it surface mid-detection.
func (c *Config) BuildRuleConfig() (detect.RuleConfig, error) {
	s2Patterns, err := CompilePatterns(c.Rules.Patterns.S2)
	if err != nil {
		return detect.RuleConfig{}, err
	}
	s3Patterns, err := CompilePatterns(c.Rules.Patterns.S3)
	if err != nil {
		return detect.RuleConfig{}, err
	}

	return detect.RuleConfig{
		S2: detect.TierRules{
			Keywords: c.Rules.Keywords.S2,
			Patterns: s2Patterns,
			Tools:    c.Rules.Tools.S2.Names,
			Paths:    c.Rules.Tools.S2.Paths,
		},
		S3: detect.TierRules{
			Keywords: c.Rules.Keywords.S3,
			Patterns: s3Patterns,
			Tools:    c.Rules.Tools.S3.Names,
			Paths:    c.Rules.Tools.S3.Paths,
		},
	}, nil
}

// BuildCheckpointDetectors compiles CheckpointsConfig into the detect
// package's per-checkpoint detector-kind map. A checkpoint whose config
// key was omitted entirely is left out of the map, so the aggregator
// falls back to detect.DefaultCheckpointDetectors for it; a checkpoint
// configured with an explicit empty list is included as an empty slice,
// so an operator can express "run no detector at this checkpoint" —
// which an all-or-nothing bool could never express.
func (c *Config) BuildCheckpointDetectors() (map[model.Checkpoint][]model.DetectorKind, error) {
	out := make(map[model.Checkpoint][]model.DetectorKind)
	entries := []struct {
		checkpoint model.Checkpoint
		kinds      []string
	}{
		{model.MessageReceived, c.Checkpoints.OnUserMessage},
		{model.BeforeToolCall, c.Checkpoints.OnToolCallProposed},
		{model.AfterToolCall, c.Checkpoints.OnToolCallExecuted},
	}
	for _, e := range entries {
		if e.kinds == nil {
			continue
		}
		kinds := make([]model.DetectorKind, 0, len(e.kinds))
		for _, s := range e.kinds {
			kind, err := model.ParseDetectorKind(s)
			if err != nil {
				return nil, fmt.Errorf("config: checkpoints: %w", err)
			}
			kinds = append(kinds, kind)
		}
		out[e.checkpoint] = kinds
	}
	return out, nil
}

// BuildLocalModelConfig translates the YAML local-model section into
// localmodel.Config. It does not look at c.LocalModel.Enabled; callers
// gate on it before wiring a Client.
func (c *Config) BuildLocalModelConfig() localmodel.Config {
	return localmodel.Config{
		Endpoint: c.LocalModel.Endpoint,
		Model:    c.LocalModel.Model,
		Timeout:  20 * time.Second,
	}
}
