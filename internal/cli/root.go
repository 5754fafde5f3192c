package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootDir    string
	outputJSON bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pyvm",
		Short: "Python runtime version manager",
	}

	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "Path to the managed root (default ~/.pyvm or $PYVM_HOME)")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newUseCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newUninstallCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}
