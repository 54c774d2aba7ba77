package redact

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ExtraPatternConfig holds an operator-defined addition to the fallback
// regex redactor (spec §4.5's fallback path is "a small ordered list" —
// this lets an operator extend it without a code change).
type ExtraPatternConfig struct {
	Type  string `yaml:"type"`
	Regex string `yaml:"regex"`
}

// Config is the on-disk redaction configuration loaded alongside the
// main privacyguard config.
type Config struct {
	ExtraPatterns []ExtraPatternConfig `yaml:"extra_patterns"`
}

// LoadConfig loads redaction config from path. A missing file is not an
// error — it returns a nil Config, meaning "no extra patterns".
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read redact config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse redact config: %w", err)
	}
	return &cfg, nil
}

// CompileExtraPatterns validates and compiles the configured extra
// patterns, rejecting invalid regex at load time per spec §4.1's
// failure-semantics note (applied here to the analogous fallback-pattern
// config).
func CompileExtraPatterns(cfg *Config) ([]CompiledPattern, error) {
	if cfg == nil {
		return nil, nil
	}
	var out []CompiledPattern
	for i, def := range cfg.ExtraPatterns {
		if def.Type == "" {
			return nil, fmt.Errorf("extra_patterns[%d]: type is required", i)
		}
		re, err := regexp.Compile(def.Regex)
		if err != nil {
			return nil, fmt.Errorf("extra_patterns[%d] %q: invalid regex: %w", i, def.Type, err)
		}
		out = append(out, CompiledPattern{Type: def.Type, Regex: re})
	}
	return out, nil
}

// CompiledPattern is a ready-to-scan extra fallback pattern.
type CompiledPattern struct {
	Type  string
	Regex *regexp.Regexp
}
