package main

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/internal/settings"
	"github.com/smykla-skalski/realms-launcher/internal/version"
)

// ErrInstallFailed is returned when the install workflow reports a failure.
var ErrInstallFailed = errors.New("install failed")

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install or update the package",
	Long: `Install or update the Realms in Exile package in the game folder.

A fresh install downloads the base package and then the update. An
existing install is updated, or reinstalled from the full package when
it was built against an older base dependency.

The install folder is saved, so later commands can omit --install-folder.

Examples:
  realms-launcher install --install-folder "C:\Games\BFME2"
  realms-launcher install`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	folder, err := a.installFolder()
	if err != nil {
		return err
	}

	// With a base dependency URL a missing base folder is downloaded.
	if a.cfg.GetRemote().BaseDependencyURL == "" {
		if err := install.ValidateInstallFolder(folder, a.cfg.GetInstall().BaseFolder); err != nil {
			return err
		}
	}

	ctx := context.Background()

	status := a.resolver().GetStatus(ctx, folder)
	if status.Decision == version.UpToDate {
		a.term.Done(status.Message())

		return settings.MarkInstalled(a.store, folder, true)
	}

	a.term.Status(status.Message())

	wf := a.workflow()
	result := wf.InstallOrUpdate(ctx, folder, a.term.StatusFunc(), a.term.ProgressFunc())

	if !result.Success {
		a.log.Error("install failed", "error", result.Err)

		return errors.Wrapf(ErrInstallFailed, "%v", result.Err)
	}

	if err := settings.MarkInstalled(a.store, folder, true); err != nil {
		a.log.Error("failed to save settings", "error", err)
	}

	// A fresh package ships English strings.
	if lang := a.saved.Language; lang != "" && lang != settings.DefaultLanguage {
		if err := install.ChangeLanguage(wf.ManagedDir(folder), lang); err != nil {
			a.log.Error("failed to apply saved language", "language", lang, "error", err)
		}
	}

	a.term.Done(fmt.Sprintf("Installed version %s.", result.InstalledVersion))

	return nil
}
