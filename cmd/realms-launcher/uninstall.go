package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/settings"
	"github.com/smykla-skalski/realms-launcher/internal/tui"
)

// ErrConfirmationRequired is returned when a destructive command runs
// without a terminal and without --yes.
var ErrConfirmationRequired = errors.New("confirmation required: pass --yes")

var uninstallYes bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the installed package",
	Long: `Remove the managed package folder from the game folder and the
desktop shortcuts pointing at it.

The base game and the base dependency are left untouched.`,
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)

	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "Do not ask for confirmation")
}

func runUninstall(cmd *cobra.Command, _ []string) error {
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
	managedDir := wf.ManagedDir(folder)

	ok, err := confirm(uninstallYes, "Uninstall Realms in Exile?", "Removes "+managedDir)
	if err != nil || !ok {
		return err
	}

	if err := wf.Uninstall(folder); err != nil {
		return err
	}

	if _, err := a.shortcuts().Remove(); err != nil {
		a.log.Info("some shortcuts were not removed", "error", err)
	}

	if err := settings.MarkInstalled(a.store, folder, false); err != nil {
		a.log.Error("failed to save settings", "error", err)
	}

	a.term.Done(fmt.Sprintf("Removed %s.", managedDir))

	return nil
}

// confirm asks title on a terminal. yes skips the question; without a
// terminal ErrConfirmationRequired is returned.
func confirm(yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}

	ui := tui.New(tui.ModeAuto)
	if !ui.IsInteractive() {
		return false, ErrConfirmationRequired
	}

	return ui.Confirm(title, description, false)
}
