package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pyvm/internal/activate"
	"pyvm/internal/install"
)

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall <version>",
		Short: "Remove a version installed by pyvm",
		Args:  cobra.ExactArgs(1),
		RunE:  runUninstall,
	}
	return cmd
}

func runUninstall(cmd *cobra.Command, args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if !elevatedPrivilege() {
		return activate.ErrInsufficientPrivilege
	}

	id := args[0]
	mgr := &install.Manager{
		Store:   env.Store,
		Locker:  env.Store,
		Paths:   env.Paths,
		Scanner: env.Scanner,
	}

	if err := mgr.Uninstall(cmd.Context(), id); err != nil {
		env.Log.Error("uninstall failed", "version", id, "err", err)
		return err
	}
	env.Log.Info("uninstall finished", "version", id)

	if outputJSON {
		data, err := json.MarshalIndent(map[string]string{"id": id, "result": "uninstalled"}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Uninstalled %s\n", id)
	return nil
}
