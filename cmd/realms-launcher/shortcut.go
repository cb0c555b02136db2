package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/shortcut"
	"github.com/smykla-skalski/realms-launcher/internal/version"
)

var shortcutCmd = &cobra.Command{
	Use:   "shortcut",
	Short: "Manage the desktop shortcut",
	Long: `Manage the desktop shortcut that starts the game with the package loaded.

The shortcut is named after the installed version. On Windows it is a .lnk
file, elsewhere a .desktop launcher.`,
}

var shortcutCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the desktop shortcut",
	Long: `Create the desktop shortcut for the installed version.

Shortcuts left from earlier versions are removed.`,
	Args: cobra.NoArgs,
	RunE: runShortcutCreate,
}

var shortcutRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove every desktop shortcut",
	Args:  cobra.NoArgs,
	RunE:  runShortcutRemove,
}

func init() {
	rootCmd.AddCommand(shortcutCmd)
	shortcutCmd.AddCommand(shortcutCreateCmd)
	shortcutCmd.AddCommand(shortcutRemoveCmd)
}

func runShortcutCreate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	folder, err := a.installFolder()
	if err != nil {
		return err
	}

	if _, ok := version.ReadRecord(a.workflow().ManagedDir(folder)); !ok {
		return ErrNotInstalled
	}

	path, err := a.shortcuts().Create(folder)
	if err != nil {
		return err
	}

	a.term.Done("Shortcut created: " + path)

	return nil
}

func runShortcutRemove(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	removed, err := a.shortcuts().Remove()
	if err != nil {
		return err
	}

	a.term.Done(fmt.Sprintf("Removed %d shortcut(s).", len(removed)))

	return nil
}

// shortcuts returns the desktop shortcut manager for the configured layout.
func (a *app) shortcuts() *shortcut.Manager {
	layout := a.cfg.GetInstall()

	return shortcut.NewManager(layout.BaseGameFolder, layout.ManagedFolder, shortcut.WithLogger(a.log))
}
