package main

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smykla-skalski/realms-launcher/internal/color"
	internalconfig "github.com/smykla-skalski/realms-launcher/internal/config"
	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	configchecker "github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/config"
	installchecker "github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/install"
	"github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/launcher"
	"github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/network"
	"github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/staging"
	"github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/tools"
	"github.com/smykla-skalski/realms-launcher/internal/doctor/fixers"
	"github.com/smykla-skalski/realms-launcher/internal/doctor/reporters"
	"github.com/smykla-skalski/realms-launcher/internal/exec"
	"github.com/smykla-skalski/realms-launcher/internal/game"
	"github.com/smykla-skalski/realms-launcher/internal/prompt"
)

const toolProbeTimeout = 10 * time.Second

var (
	verboseFlag  bool
	fixFlag      bool
	categoryFlag []string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the launcher setup",
	Long: `Diagnose the launcher setup.

Checks:
- Install folder, install record and game executable
- Configuration file validity and permissions
- Launcher folder write access and running game instances
- Update helper interpreters
- Release metadata reachability
- Staging folders left behind by interrupted updates

Examples:
  realms-launcher doctor              # Run all checks
  realms-launcher doctor --verbose    # Run with detailed output
  realms-launcher doctor --fix        # Automatically fix issues
  realms-launcher doctor --category install,network`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVarP(
		&verboseFlag,
		"verbose",
		"v",
		false,
		"Enable verbose output with detailed context",
	)

	doctorCmd.Flags().BoolVar(
		&fixFlag,
		"fix",
		false,
		"Automatically fix issues without prompting",
	)

	doctorCmd.Flags().StringSliceVar(
		&categoryFlag,
		"category",
		[]string{},
		"Filter checks by category (install, config, launcher, staging, tools, network)",
	)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	a, err := newLenientApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	a.log.Info("starting doctor command",
		"verbose", verboseFlag,
		"fix", fixFlag,
		"categories", categoryFlag,
	)

	registry := buildDoctorRegistry(a)

	prompter := prompt.NewStdPrompter()
	registerFixers(registry, prompter, a)

	runner := doctor.NewRunner(registry, selectReporter(a), prompter, a.log, doctor.WithOutput(a.out))

	opts := doctor.RunOptions{
		Verbose:     verboseFlag,
		AutoFix:     fixFlag,
		Interactive: !fixFlag && color.IsTerminal(os.Stdin) && color.IsTerminal(os.Stdout),
		Categories:  parseCategories(categoryFlag),
	}

	if err := runner.Run(context.Background(), opts); err != nil {
		if errors.Is(err, doctor.ErrChecksFailed) {
			return err
		}

		return errors.Wrap(err, "doctor command failed")
	}

	return nil
}

// buildDoctorRegistry creates and populates the health check registry.
func buildDoctorRegistry(a *app) *doctor.Registry {
	registry := doctor.NewRegistry()
	layout := a.cfg.GetInstall()

	folder, _ := a.installFolder()
	registry.RegisterChecker(installchecker.NewFolderChecker(folder, layout.BaseFolder))

	if folder != "" {
		registry.RegisterChecker(installchecker.NewRecordChecker(a.workflow().ManagedDir(folder)))
		registry.RegisterChecker(installchecker.NewGameChecker(a.gameLauncher().ExecutablePath(folder)))
	}

	registry.RegisterChecker(configchecker.NewGlobalChecker(a.loader))
	registry.RegisterChecker(configchecker.NewPermissionsChecker(a.loader))

	registry.RegisterChecker(launcher.NewWritableChecker(nil))
	registry.RegisterChecker(launcher.NewRunningChecker(game.ExecutableName, nil))
	registry.RegisterChecker(staging.NewChecker("", staging.DefaultMinAge))

	for _, checker := range tools.NewHelperCheckers(runtime.GOOS, exec.NewToolChecker(), exec.NewCommandRunner(toolProbeTimeout)) {
		registry.RegisterChecker(checker)
	}

	registry.RegisterChecker(network.NewMetadataChecker(a.source, a.source.URL()))

	return registry
}

// registerFixers registers all available fixers.
func registerFixers(registry *doctor.Registry, prompter prompt.Prompter, a *app) {
	registry.RegisterFixer(fixers.NewStagingFixer(prompter, "", staging.DefaultMinAge))
	registry.RegisterFixer(fixers.NewConfigFixer(prompter, internalconfig.NewWriterWithPath(a.loader.GlobalConfigPath())))
	registry.RegisterFixer(fixers.NewPermissionsFixer(prompter, a.loader.GlobalConfigPath()))
}

// selectReporter returns the table reporter on a terminal and the plain
// reporter otherwise.
func selectReporter(a *app) doctor.Reporter {
	if color.IsTerminal(os.Stdout) {
		width, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint:gosec // fd fits int
		if err != nil {
			width = 0
		}

		return reporters.NewTableReporter(a.out, a.theme, reporters.WithWidth(width))
	}

	return reporters.NewSimpleReporter(a.out)
}

func parseCategories(values []string) []doctor.Category {
	var categories []doctor.Category

	for _, value := range values {
		for part := range strings.SplitSeq(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				categories = append(categories, doctor.Category(strings.ToLower(part)))
			}
		}
	}

	return categories
}
