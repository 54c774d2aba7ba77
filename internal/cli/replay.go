package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenBMB/privacyguard/internal/track"
)

var replayFormat string

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVarP(&replayFormat, "format", "f", "text", "Output format (text|json)")
}

var replayCmd = &cobra.Command{
	Use:   "replay <agent-id> <session-key>",
	Short: "Replay a session's dual-track history",
	Long:  "Reads a session's full and clean JSONL tracks and renders a paired\ntimeline, so an operator can see exactly what the clean track exposed\nfor each full-track entry.",
	Args:  cobra.ExactArgs(2),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	agentID, session := args[0], args[1]
	if cfgPath == "" {
		return fmt.Errorf("--config is required")
	}
	w, err := buildOrchestrator(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to wire privacyguard: %w", err)
	}

	baseDir := w.cfg.Session.BaseDir
	if baseDir == "" {
		baseDir = w.cfg.GuardAgent.Workspace
	}
	store := track.NewStore(baseDir)

	full, err := track.ReadFull(store.FullPath(agentID, session))
	if err != nil {
		return err
	}
	clean, err := track.ReadClean(store.CleanPath(agentID, session))
	if err != nil {
		return err
	}

	timeline := track.BuildTimeline(session, full, clean)

	switch replayFormat {
	case "json":
		out, err := track.FormatJSON(timeline)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Print(track.FormatTimeline(timeline))
	}

	return nil
}
