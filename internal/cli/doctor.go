package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenBMB/privacyguard/internal/config"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and storage readiness",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []checkResult

	if cfgPath == "" {
		checks = append(checks, checkResult{label: "config path", ok: false, detail: "no --config given"})
		return printDoctorResults(checks)
	}

	if !config.Exists(cfgPath) {
		checks = append(checks, checkResult{
			label: "config file", ok: false, detail: cfgPath + " (missing)",
			fix: "create a config.yaml at this path; see SPEC_FULL.md §6 for the schema",
		})
		return printDoctorResults(checks)
	}
	checks = append(checks, checkResult{label: "config file", ok: true, detail: cfgPath})

	cfg, err := config.Load(cfgPath)
	if err != nil {
		checks = append(checks, checkResult{label: "config parse", ok: false, detail: err.Error()})
		return printDoctorResults(checks)
	}
	checks = append(checks, checkResult{label: "config parse", ok: true, detail: "strict decode succeeded"})

	if cfg.GuardAgent.ID == "" {
		checks = append(checks, checkResult{label: "guardAgent.id", ok: false, detail: "empty", fix: "set guardAgent.id in config"})
	} else {
		checks = append(checks, checkResult{label: "guardAgent.id", ok: true, detail: cfg.GuardAgent.ID})
	}

	baseDir := cfg.Session.BaseDir
	if baseDir == "" {
		baseDir = cfg.GuardAgent.Workspace
	}
	if baseDir == "" {
		checks = append(checks, checkResult{label: "session base dir", ok: false, detail: "neither session.baseDir nor guardAgent.workspace set"})
	} else if info, err := os.Stat(baseDir); err == nil && info.IsDir() {
		checks = append(checks, checkResult{label: "session base dir", ok: true, detail: baseDir})
	} else {
		checks = append(checks, checkResult{label: "session base dir", ok: false, detail: baseDir + " (missing)", fix: "mkdir -p " + baseDir})
	}

	if cfg.LocalModel.Enabled {
		if cfg.LocalModel.Endpoint == "" {
			checks = append(checks, checkResult{label: "localModel.endpoint", ok: false, detail: "enabled but empty"})
		} else {
			checks = append(checks, checkResult{label: "localModel.endpoint", ok: true, detail: cfg.LocalModel.Endpoint})
		}
	} else {
		checks = append(checks, checkResult{label: "localModel", ok: true, detail: "disabled (S3 falls back to a fixed local reply)"})
	}

	return printDoctorResults(checks)
}

func printDoctorResults(checks []checkResult) error {
	hasFailures := false
	for _, c := range checks {
		mark := "✓"
		if !c.ok {
			mark = "✗"
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-20s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Println(line)
	}

	if hasFailures {
		fmt.Println()
		fmt.Println("Some checks failed. Run the suggested commands to fix.")
		return fmt.Errorf("doctor found issues")
	}

	fmt.Println()
	fmt.Println("All checks passed.")
	return nil
}
