package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pyvm/internal/paths"
	"pyvm/internal/registry"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the managed root and registry state",
		RunE:  runDoctor,
	}
	return cmd
}

type doctorReport struct {
	Root            string          `json:"root"`
	StateFile       string          `json:"state_file"`
	StateFileExists bool            `json:"state_file_exists"`
	StateError      string          `json:"state_error,omitempty"`
	SelfManaged     int             `json:"self_managed"`
	SystemDetected  int             `json:"system_detected"`
	Current         string          `json:"current,omitempty"`
	DanglingCurrent bool            `json:"dangling_current"`
	Items           []registry.Item `json:"items"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	report := doctorReport{
		Root:      env.Paths.Root,
		StateFile: env.Paths.StateFile,
	}
	if ok, err := paths.FileExists(env.Paths.StateFile); err == nil {
		report.StateFileExists = ok
	}

	view, err := registry.Build(cmd.Context(), retryStore{store: env.Store}, env.Scanner)
	if err != nil {
		report.StateError = err.Error()
	} else {
		report.Current = view.Current
		report.DanglingCurrent = view.Dangling
		report.Items = view.List()
		for _, item := range report.Items {
			switch item.Provenance {
			case registry.SelfManaged:
				report.SelfManaged++
			default:
				report.SystemDetected++
			}
		}
	}

	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Managed root: %s\n", report.Root)
	cmd.Printf("State file:   %s (exists: %v)\n", report.StateFile, report.StateFileExists)
	if report.StateError != "" {
		cmd.Printf("State error:  %s\n", report.StateError)
		return nil
	}
	cmd.Printf("Self-managed: %d, system-detected: %d\n", report.SelfManaged, report.SystemDetected)
	if report.Current != "" {
		cmd.Printf("Active:       %s", report.Current)
		if report.DanglingCurrent {
			cmd.Print("  (DANGLING: not present in registry)")
		}
		cmd.Println()
	} else {
		cmd.Println("Active:       (none)")
	}
	if len(report.Items) > 0 {
		cmd.Println()
		cmd.Print(renderList(report.Items))
	}
	return nil
}
