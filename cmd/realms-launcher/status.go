package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/internal/version"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the install status",
	Long: `Show the installed and latest package versions.

The install record in the managed folder is compared with the release
metadata to decide whether the package needs installing or updating.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	folder, err := a.installFolder()
	if err != nil {
		return err
	}

	status := a.resolver().GetStatus(context.Background(), folder)

	a.log.Info("status checked",
		"install_folder", folder,
		"decision", status.Decision.String(),
		"forced_reinstall", status.ForcedReinstall,
	)

	baseVersion := install.ReadBaseVersion(filepath.Join(folder, a.cfg.GetInstall().BaseFolder))

	fmt.Fprintln(a.out, renderStatus(folder, baseVersion, a.saved.Language, status))

	a.term.Status(status.Message())

	if status.Decision == version.CheckFailed && status.Err != nil {
		a.log.Error("metadata fetch failed", "error", status.Err)
	}

	return nil
}

func renderStatus(folder, baseVersion, language string, status version.Status) string {
	installed := "not installed"
	if status.HasLocal {
		installed = status.Local.Version
		if status.Local.BaseVersion != "" {
			installed += " (base " + status.Local.BaseVersion + ")"
		}
	}

	latest := "unknown"
	launcherLatest := "unknown"

	if status.Decision != version.CheckFailed {
		latest = fmt.Sprintf("%s (base %s)", status.Remote.Version, status.Remote.RequiredBaseVersion)
		launcherLatest = status.Remote.LauncherVersion
	}

	rows := [][]string{
		{"Install folder", folder},
		{"Base dependency", baseVersion},
		{"Installed", installed},
		{"Latest", latest},
		{"Language", language},
		{"Launcher", buildVersion},
		{"Latest launcher", launcherLatest},
	}

	var buf bytes.Buffer

	t := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleRounded),
		})),
		tablewriter.WithPadding(tw.Padding{Left: " ", Right: " "}),
	)

	for _, row := range rows {
		_ = t.Append(row)
	}

	_ = t.Render()

	return strings.TrimRight(buf.String(), "\n")
}
