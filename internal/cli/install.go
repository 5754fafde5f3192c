package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"pyvm/internal/install"
	"pyvm/internal/tui"
)

const installTimeout = 10 * time.Minute

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <version>",
		Short: "Download and install a runtime version",
		Args:  cobra.ExactArgs(1),
		RunE:  runInstall,
	}
	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	id := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), installTimeout)
	defer cancel()

	var result install.Result
	if interactiveOutput() {
		result, err = installWithProgress(ctx, env, id)
	} else {
		result, err = installPlain(ctx, env, id)
	}
	if err != nil {
		env.Log.Error("install failed", "version", id, "err", err)
		return err
	}
	env.Log.Info("install finished", "version", id, "result", string(result))

	if outputJSON {
		payload := map[string]string{
			"id":     id,
			"result": string(result),
			"path":   env.Paths.VersionDir(id),
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	switch result {
	case install.ResultAlreadyInstalled:
		cmd.Printf("%s is already installed\n", id)
	default:
		cmd.Printf("Installed %s to %s\n", id, env.Paths.VersionDir(id))
	}
	return nil
}

func newManager(env *appEnv, fetcher install.Fetcher, unpacker install.Unpacker) *install.Manager {
	return &install.Manager{
		Store:    env.Store,
		Locker:   env.Store,
		Paths:    env.Paths,
		Fetcher:  fetcher,
		Unpacker: unpacker,
		Scanner:  env.Scanner,
	}
}

func installPlain(ctx context.Context, env *appEnv, id string) (install.Result, error) {
	fetcher := &install.HTTPFetcher{Settings: env.Settings}
	return newManager(env, fetcher, install.ZipUnpacker{}).Install(ctx, id)
}

func installWithProgress(ctx context.Context, env *appEnv, id string) (install.Result, error) {
	model := tui.NewInstallModel(
		fmt.Sprintf("Installing %s", id),
		[]string{"download", "unpack", "register"},
	)

	var (
		result install.Result
		runErr error
	)
	err := tui.RunWithWork(os.Stdout, model, func(send func(tea.Msg)) {
		fetcher := &stepFetcher{
			inner: &install.HTTPFetcher{
				Settings: env.Settings,
				Progress: func(written, total int64) {
					send(tui.DownloadProgressMsg{Written: written, Total: total})
				},
			},
			send: send,
		}
		unpacker := &stepUnpacker{inner: install.ZipUnpacker{}, send: send}

		send(tui.StepUpdateMsg{Step: "register", Status: "pending"})
		result, runErr = newManager(env, fetcher, unpacker).Install(ctx, id)
		if runErr != nil {
			send(tui.ErrorMsg{Err: runErr})
			return
		}
		send(tui.StepUpdateMsg{Step: "register", Status: "done"})
	})
	if runErr != nil {
		return result, runErr
	}
	return result, err
}

// stepFetcher and stepUnpacker decorate the collaborators with step updates
// for the progress display.
type stepFetcher struct {
	inner install.Fetcher
	send  func(tea.Msg)
}

func (f *stepFetcher) Fetch(ctx context.Context, id, destDir string) (string, error) {
	f.send(tui.StepUpdateMsg{Step: "download", Status: "downloading"})
	path, err := f.inner.Fetch(ctx, id, destDir)
	if err != nil {
		f.send(tui.StepUpdateMsg{Step: "download", Status: "failed", Detail: err.Error()})
		return "", err
	}
	f.send(tui.StepUpdateMsg{Step: "download", Status: "done"})
	return path, nil
}

type stepUnpacker struct {
	inner install.Unpacker
	send  func(tea.Msg)
}

func (u *stepUnpacker) Unpack(ctx context.Context, archivePath, destDir string) error {
	u.send(tui.StepUpdateMsg{Step: "unpack", Status: "unpacking"})
	if err := u.inner.Unpack(ctx, archivePath, destDir); err != nil {
		u.send(tui.StepUpdateMsg{Step: "unpack", Status: "failed", Detail: err.Error()})
		return err
	}
	u.send(tui.StepUpdateMsg{Step: "unpack", Status: "done"})
	return nil
}

func interactiveOutput() bool {
	return !outputJSON && isatty.IsTerminal(os.Stdout.Fd())
}
