package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OpenBMB/privacyguard/internal/config"
	"github.com/OpenBMB/privacyguard/internal/detect"
	"github.com/OpenBMB/privacyguard/internal/model"
)

// Run evaluates all cases in a scenario against a rule detector built from
// ruleCfg. Each case is independent — no session state is shared between
// them, since the rule detector alone is deterministic and stateless.
func Run(s *Scenario, ruleCfg detect.RuleConfig) *RunResult {
	detector := detect.NewRuleDetector(ruleCfg)

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		dctx := model.DetectionContext{
			MessageText: c.Message,
			ToolName:    c.ToolName,
			ToolResult:  c.ToolResult,
		}
		dres := detector.Detect(dctx)
		actual := dres.Tier.String()
		expected := strings.ToUpper(c.Expect)

		input := c.Message
		if input == "" {
			input = c.ToolName
		}

		cr := CaseResult{
			Index:    i + 1,
			Input:    input,
			Expected: expected,
			Actual:   actual,
			Reason:   dres.Reason,
		}

		if actual == expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result
}

// LoadAndRun loads a scenario YAML file and a privacyguard config, builds
// the rule detector from the config's rules section, and runs the scenario.
func LoadAndRun(scenarioPath, configPath string) (*RunResult, error) {
	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", scenarioPath, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", scenarioPath, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	ruleCfg, err := cfg.BuildRuleConfig()
	if err != nil {
		return nil, fmt.Errorf("build rule config: %w", err)
	}

	result := Run(&s, ruleCfg)
	result.File = scenarioPath

	return result, nil
}
