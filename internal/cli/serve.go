package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OpenBMB/privacyguard/internal/config"
	"github.com/OpenBMB/privacyguard/internal/guard"
	"github.com/OpenBMB/privacyguard/internal/mcpserver"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP checkpoint server",
	Long:  "Runs privacyguard as an MCP server exposing the six lifecycle checkpoints\nas tools over stdio. Hot-reloads the config file's protected roots on change.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfgPath == "" {
		return fmt.Errorf("--config is required")
	}
	w, err := buildOrchestrator(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to wire privacyguard: %w", err)
	}

	watcher, err := config.NewWatcher(cfgPath, func(cfg *config.Config) {
		baseDir := cfg.Session.BaseDir
		if baseDir == "" {
			baseDir = cfg.GuardAgent.Workspace
		}
		w.guard.SetConfig(guard.DeriveConfig(baseDir, cfg.GuardAgent.ID))
		fmt.Fprintln(os.Stderr, "privacyguard: config reloaded, protected roots updated")
	}, func(err error) {
		fmt.Fprintf(os.Stderr, "privacyguard: config reload failed: %v\n", err)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	} else {
		defer watcher.Close()
	}

	srv := mcpserver.New(mcpserver.Config{Name: "privacyguard"}, w.orch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down privacyguard...")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "privacyguard MCP server listening on stdio (agent=%s)\n", w.cfg.GuardAgent.ID)
	return srv.Run(ctx)
}
