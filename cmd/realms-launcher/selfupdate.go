package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/handoff"
	"github.com/smykla-skalski/realms-launcher/internal/selfupdate"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

var (
	selfUpdateCheck  bool
	selfUpdateYes    bool
	selfUpdateHelper string
	selfUpdateElev   bool
)

var selfUpdateCmd = &cobra.Command{
	Use:   "self-update",
	Short: "Update the launcher itself",
	Long: `Update the launcher to the version advertised in the release metadata.

The new release is downloaded and staged first. A helper then waits for
the launcher to exit, copies the staged files over it and starts it
again. The helper asks for administrator rights when the launcher
folder is not writable, or always when self_update.force_elevation is set.

Examples:
  realms-launcher self-update --check
  realms-launcher self-update --yes --helper native`,
	RunE: runSelfUpdate,
}

var applyUpdateCmd = &cobra.Command{
	Use:    selfupdate.ApplyUpdateCommand + " <target> <staged> <pid> <relaunch> <args> <cwd> <log>",
	Short:  "Apply a staged launcher update",
	Hidden: true,
	Args:   cobra.ExactArgs(selfupdate.PlanArgCount),
	RunE:   runApplyUpdate,
}

func init() {
	rootCmd.AddCommand(selfUpdateCmd)
	rootCmd.AddCommand(applyUpdateCmd)

	selfUpdateCmd.Flags().BoolVar(&selfUpdateCheck, "check", false, "Only report whether an update is available")
	selfUpdateCmd.Flags().BoolVarP(&selfUpdateYes, "yes", "y", false, "Do not ask for confirmation")
	selfUpdateCmd.Flags().StringVar(&selfUpdateHelper, "helper", "", "Update helper: script or native")
	selfUpdateCmd.Flags().BoolVar(&selfUpdateElev, "elevate", true, "Always request administrator rights")
}

func runSelfUpdate(cmd *cobra.Command, _ []string) error {
	extra := map[string]any{"helper": selfUpdateHelper}
	if cmd.Flags().Changed("elevate") {
		extra["elevate"] = selfUpdateElev
	}

	a, err := newApp(cmd, extra)
	if err != nil {
		return err
	}
	defer a.close()

	su := a.cfg.GetSelfUpdate()

	orch := selfupdate.NewOrchestrator(a.source, a.download, selfupdate.Options{
		URL:            a.cfg.GetRemote().LauncherURL,
		ForceElevation: su.IsForceElevation(),
		HelperMode:     selfupdate.HelperMode(su.GetHelperMode()),
		GraceDelay:     su.GetGraceDelay(),
		RelaunchArgs:   su.RelaunchArgs,
	}, selfupdate.WithLogger(a.log))

	ctx := context.Background()

	latest, err := orch.Check(ctx, buildVersion)
	if errors.Is(err, selfupdate.ErrAlreadyLatest) {
		a.term.Done(fmt.Sprintf("Launcher is up-to-date (%s).", buildVersion))

		return nil
	}

	if err != nil {
		return err
	}

	if selfUpdateCheck {
		fmt.Fprintf(a.out, "Launcher update available: %s (current %s)\n", latest, buildVersion)

		return nil
	}

	ok, err := confirm(
		selfUpdateYes,
		fmt.Sprintf("Update the launcher to %s?", latest),
		"The launcher will close and reopen.",
	)
	if err != nil || !ok {
		return err
	}

	stagedDir, err := orch.Stage(ctx, "", a.term.StatusFunc(), a.term.ProgressFunc())
	if err != nil {
		return err
	}

	return orch.SpawnAndQuit(ctx, stagedDir, a.quitForUpdate(latest, os.Exit), a.term.StatusFunc())
}

// quitForUpdate releases the log and settings handles before exiting, so
// the helper can replace the launcher files as soon as the process is gone.
func (a *app) quitForUpdate(latest string, exit func(int)) func() {
	return func() {
		a.log.Info("exiting for launcher update", "version", latest)
		a.close()
		exit(ExitCodeOK)
	}
}

func runApplyUpdate(_ *cobra.Command, args []string) error {
	plan, err := selfupdate.ParsePlan(args)
	if err != nil {
		return err
	}

	var log logger.Logger = logger.NewNoOpLogger()

	if plan.LogPath != "" {
		fileLog, logErr := logger.NewFileLogger(plan.LogPath, true, false)
		if logErr == nil {
			defer fileLog.Close() //nolint:errcheck // best-effort close of the helper log

			log = fileLog
		}
	}

	log.Info("native update helper started",
		"target", plan.TargetDir,
		"staged", plan.StagedDir,
		"pid", plan.MainPID,
	)

	result, err := handoff.NewHelper(handoff.WithLogger(log)).Apply(context.Background(), plan)
	if err != nil {
		log.Error("update helper failed", "error", err)

		return err
	}

	log.Info("update helper finished", "copied", result.Copied, "relaunched", result.Relaunched)

	return nil
}
