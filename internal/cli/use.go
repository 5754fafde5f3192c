package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pyvm/internal/activate"
)

func newUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <version>",
		Short: "Switch the active runtime version",
		Args:  cobra.ExactArgs(1),
		RunE:  runUse,
	}
	return cmd
}

func runUse(cmd *cobra.Command, args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	id := args[0]
	engine := &activate.Engine{
		Store:      env.Store,
		Locker:     env.Store,
		Scanner:    env.Scanner,
		Backend:    &activate.EnvFileBackend{Path: env.Paths.EnvFile},
		Privilege:  elevatedPrivilege,
		Executable: env.Settings.Executable,
	}

	outcome, err := engine.Activate(cmd.Context(), id)
	if err != nil {
		env.Log.Error("activation failed", "version", id, "env_mutated", outcome.EnvironmentMutated, "err", err)
		return err
	}
	env.Log.Info("activation finished", "version", id)

	if outputJSON {
		payload := map[string]any{
			"id":        outcome.ID,
			"committed": outcome.Committed,
			"note":      outcome.Note,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Switched to %s\n", id)
	if outcome.Note != "" {
		cmd.Println(outcome.Note)
	}
	return nil
}
