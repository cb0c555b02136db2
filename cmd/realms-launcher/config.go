package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	internalconfig "github.com/smykla-skalski/realms-launcher/internal/config"
	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/internal/tui"
	"github.com/smykla-skalski/realms-launcher/internal/xdg"
)

var (
	forceFlag bool
	noTUIFlag bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the launcher configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file",
	Long: `Create the global configuration file with default values.

The initialization asks for:
- The default language
- The launcher update helper (script or native)
- Whether updates always request administrator rights

Use --force to overwrite an existing configuration file.
Use --no-tui to use simple prompts instead of the interactive TUI.`,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration, settings and log file locations",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config:   %s\n", xdg.GlobalConfigFile())
		fmt.Fprintf(out, "settings: %s\n", xdg.SettingsFile())
		fmt.Fprintf(out, "log:      %s\n", xdg.LogFile())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVarP(
		&forceFlag,
		"force",
		"f",
		false,
		"Overwrite existing configuration file",
	)

	configInitCmd.Flags().BoolVar(
		&noTUIFlag,
		"no-tui",
		false,
		"Use simple prompts instead of interactive TUI",
	)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	writer := internalconfig.NewWriter()
	if configPath != "" {
		writer = internalconfig.NewWriterWithPath(configPath)
	}

	path := writer.GlobalConfigPath()

	if !forceFlag && fileExists(path) {
		return errors.Errorf("configuration file already exists: %s\nUse --force to overwrite", path)
	}

	ui := tui.New(tui.ModeFor(noTUIFlag))

	cfg, err := ui.RunInitForm(tui.InitFormOptions{
		Base:      internalconfig.DefaultConfig(),
		Languages: install.Languages(),
	})
	if err != nil {
		return errors.Wrap(err, "configuration form failed")
	}

	if err := internalconfig.NewValidator().Validate(cfg); err != nil {
		return err
	}

	if err := writer.WriteFile(path, cfg, forceFlag); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration written to %s\n", path)

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
