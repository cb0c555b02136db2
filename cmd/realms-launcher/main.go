// Package main provides the CLI entry point for realms-launcher.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	// ExitCodeOK indicates success.
	ExitCodeOK = 0

	// ExitCodeError indicates a command failed.
	ExitCodeError = 1

	// ExitCodeCrash indicates an unexpected panic.
	ExitCodeCrash = 3
)

var (
	configPath        string
	installFolderFlag string
	debugMode         bool
	traceMode         bool
	noColorFlag       bool
	timeoutFlag       string
	metadataURLFlag   string
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "realms-launcher crashed: %v\n", r)

			exitCode = ExitCodeCrash
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return ExitCodeError
	}

	return ExitCodeOK
}

var rootCmd = &cobra.Command{
	Use:   "realms-launcher",
	Short: "Installer and launcher for Realms in Exile",
	Long: `Installer and launcher for Realms in Exile.

Installs and updates the Realms in Exile package inside a game folder,
switches its language, starts the game with the mod loaded and keeps
the launcher itself up to date.

Without a subcommand the install status is printed.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		checkVersionFlag()
	},
	RunE:              runStatus,
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"Path to an extra configuration file layered over the global one",
	)
	flags.StringVarP(
		&installFolderFlag,
		"install-folder",
		"i",
		"",
		"Game install folder (default: the folder saved by the last install)",
	)
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")
	flags.BoolVar(&traceMode, "trace", false, "Enable trace logging")
	flags.BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	flags.StringVar(&timeoutFlag, "timeout", "", "Metadata request timeout (e.g. 15s)")
	flags.StringVar(&metadataURLFlag, "metadata-url", "", "Release metadata URL")
}
