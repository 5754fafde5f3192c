package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"pyvm/internal/registry"
)

var activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed and detected runtime versions",
		RunE:  runList,
	}
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	view, err := registry.Build(cmd.Context(), retryStore{store: env.Store}, env.Scanner)
	if err != nil {
		return err
	}
	if err := view.CheckCurrent(); err != nil {
		// Data-integrity fault: report it, keep listing.
		cmd.PrintErrf("warning: %v\n", err)
	}

	items := view.List()

	if outputJSON {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(items) == 0 {
		cmd.Println("No runtime versions found.")
		return nil
	}

	cmd.Print(renderList(items))
	return nil
}

func renderList(items []registry.Item) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tVERSION\tSOURCE\tPATH")
	for _, item := range items {
		marker := " "
		version := item.ID
		if item.Current {
			marker = activeStyle.Render("*")
			version = activeStyle.Render(version)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, version, item.Provenance, item.Path)
	}
	_ = w.Flush()
	return b.String()
}
