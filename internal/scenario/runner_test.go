package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenBMB/privacyguard/internal/detect"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRuleConfig() detect.RuleConfig {
	return detect.RuleConfig{
		S2: detect.TierRules{Keywords: []string{"address"}},
		S3: detect.TierRules{Keywords: []string{"ssn"}},
	}
}

func TestAllCasesPass(t *testing.T) {
	s := &Scenario{
		Name: "basic tiering",
		Cases: []Case{
			{Message: "what's the weather", Expect: "S1"},
			{Message: "my address is 1 Main St", Expect: "S2"},
			{Message: "my ssn is 123-45-6789", Expect: "S3"},
		},
	}

	result := Run(s, testRuleConfig())
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d: %+v", result.Failed, result.Cases)
	}
	if result.Passed != 3 {
		t.Errorf("expected 3 passed, got %d", result.Passed)
	}
}

func TestFailedAssertionDetected(t *testing.T) {
	s := &Scenario{
		Name: "wrong expectation",
		Cases: []Case{
			{Message: "what's the weather", Expect: "S3"},
		},
	}

	result := Run(s, testRuleConfig())
	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	if result.Passed != 0 {
		t.Errorf("expected 0 passed, got %d", result.Passed)
	}
}

func TestLoadAndRunFromFile(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "test.yaml", `
name: "file test"
cases:
  - message: "what's the weather"
    expect: S1
`)
	configPath := writeFile(t, dir, "config.yaml", `
enabled: true
rules:
  keywords:
    S2: ["address"]
    S3: ["ssn"]
`)

	result, err := LoadAndRun(scenarioPath, configPath)
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d", result.Failed)
	}
	if result.File != scenarioPath {
		t.Errorf("expected file path set, got %q", result.File)
	}
}

func TestInvalidScenarioYAML(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "bad.yaml", ":::not yaml\x00")
	configPath := writeFile(t, dir, "config.yaml", "enabled: true\n")

	_, err := LoadAndRun(scenarioPath, configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEmptyCasesList(t *testing.T) {
	s := &Scenario{Name: "empty", Cases: []Case{}}

	result := Run(s, testRuleConfig())
	if result.Total != 0 {
		t.Errorf("expected 0 total, got %d", result.Total)
	}
	if result.Failed != 0 {
		t.Errorf("expected 0 failed, got %d", result.Failed)
	}
}

func TestCaseResultFieldsPopulated(t *testing.T) {
	s := &Scenario{
		Name: "fields check",
		Cases: []Case{
			{Message: "my address is 1 Main St", Expect: "S2"},
		},
	}

	result := Run(s, testRuleConfig())
	if len(result.Cases) != 1 {
		t.Fatalf("expected 1 case, got %d", len(result.Cases))
	}
	c := result.Cases[0]
	if c.Index != 1 {
		t.Errorf("index: got %d", c.Index)
	}
	if c.Input != "my address is 1 Main St" {
		t.Errorf("input: got %s", c.Input)
	}
	if c.Expected != "S2" {
		t.Errorf("expected: got %s", c.Expected)
	}
	if c.Actual != "S2" {
		t.Errorf("actual: got %s", c.Actual)
	}
	if !c.Passed {
		t.Error("expected passed=true")
	}
	if c.Reason == "" {
		t.Error("reason should not be empty")
	}
}

func TestMultipleScenariosViaGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
name: "scenario A"
cases:
  - message: "hello"
    expect: S1
`)
	writeFile(t, dir, "b.yaml", `
name: "scenario B"
cases:
  - message: "hi there"
    expect: S1
`)
	configPath := writeFile(t, dir, "config.yaml", "enabled: true\n")

	matches, err := filepath.Glob(filepath.Join(dir, "[ab].yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	var results []*RunResult
	for _, m := range matches {
		r, err := LoadAndRun(m, configPath)
		if err != nil {
			t.Fatal(err)
		}
		results = append(results, r)
	}

	totalPassed := 0
	for _, r := range results {
		totalPassed += r.Passed
	}
	if totalPassed != 2 {
		t.Errorf("expected 2 total passed across scenarios, got %d", totalPassed)
	}
}
