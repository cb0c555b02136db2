package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/internal/settings"
	"github.com/smykla-skalski/realms-launcher/internal/version"
)

var languageCmd = &cobra.Command{
	Use:   "language [name]",
	Short: "Switch the package language",
	Long: `Switch the language of the installed package.

Without an argument the current language and the available ones are
printed. The choice is saved and applied again after every install.

Examples:
  realms-launcher language English
  realms-launcher language pt-br`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLanguage,
}

func init() {
	rootCmd.AddCommand(languageCmd)
}

func runLanguage(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 0 {
		fmt.Fprintf(a.out, "Current: %s\nAvailable: %s\n", a.saved.Language, strings.Join(install.Languages(), ", "))

		return nil
	}

	name, err := displayLanguage(args[0])
	if err != nil {
		return err
	}

	folder, err := a.installFolder()
	if err != nil {
		return err
	}

	managedDir := a.workflow().ManagedDir(folder)
	if _, ok := version.ReadRecord(managedDir); !ok {
		return ErrNotInstalled
	}

	if err := install.ChangeLanguage(managedDir, name); err != nil {
		return err
	}

	if err := settings.SetLanguage(a.store, name); err != nil {
		return errors.Wrap(err, "failed to save language")
	}

	a.log.Info("language changed", "language", name)
	a.term.Done(fmt.Sprintf("Language set to %s.", name))

	return nil
}

// displayLanguage maps a name or code to its display name.
func displayLanguage(arg string) (string, error) {
	code, err := install.LanguageCode(arg)
	if err != nil {
		return "", err
	}

	for _, name := range install.Languages() {
		if c, _ := install.LanguageCode(name); c == code {
			return name, nil
		}
	}

	return arg, nil
}
