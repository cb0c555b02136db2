package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/version"
)

// ErrNotInstalled is returned when launching without an installed package.
var ErrNotInstalled = errors.New("package is not installed: run realms-launcher install")

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Start the game with the package loaded",
	Long: `Start the base game with the installed package loaded as a mod.

The game is started detached, so the launcher exits right away. No
network access is needed.`,
	RunE: runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	folder, err := a.installFolder()
	if err != nil {
		return err
	}

	wf := a.workflow()

	record, ok := version.ReadRecord(wf.ManagedDir(folder))
	if !ok {
		return ErrNotInstalled
	}

	pid, err := a.gameLauncher().Launch(folder)
	if err != nil {
		return err
	}

	a.term.Done(fmt.Sprintf("Started Realms in Exile %s (pid %d).", record.Version, pid))

	return nil
}
