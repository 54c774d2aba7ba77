package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset <session-key>",
	Short: "Clear a session's in-memory privacy state",
	Long: "Resets is_private, the highest tier, detection history, and the\n" +
		"pre-read-file set for a session key. The orchestrator itself never\n" +
		"calls this — it is an explicit operator action (spec §4.6's reset is\n" +
		"never automatic), meant for an operator attached to the same running\n" +
		"daemon process, not a fresh CLI invocation against on-disk state.",
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	sessionKey := args[0]
	if cfgPath == "" {
		return fmt.Errorf("--config is required")
	}
	w, err := buildOrchestrator(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to wire privacyguard: %w", err)
	}

	w.sessions.Reset(sessionKey)
	fmt.Printf("session %q reset\n", sessionKey)
	fmt.Println("note: this clears state in this process's registry only; a live serve daemon keeps its own in-memory registry and is unaffected unless reset is invoked against its process")
	return nil
}
