// Package cli implements privacyguard's operator-facing subcommands:
// serve, check, replay, doctor, reset, version.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "privacyguardd",
	Short: "Privacy-tier interception middleware for AI agent runtimes",
	Long:  "Intercepts every message and tool call at six lifecycle checkpoints, classifies it into a privacy tier, and keeps tier-3 content from ever reaching a cloud model.",
}

func init() {
	home, _ := os.UserHomeDir()
	def := ""
	if home != "" {
		def = filepath.Join(home, ".privacyguard", "config.yaml")
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", def, "Path to privacyguard config YAML")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
