// Package selfupdate replaces the running launcher with a newer release.
//
// The update runs in two phases. Stage downloads and extracts the release
// while the launcher is still running. SpawnAndQuit writes a helper next to
// the staged files, starts it detached (elevated when the launcher directory
// is not writable) and exits, leaving the helper to copy the staged files
// over the launcher and start it again.
package selfupdate

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/realms-launcher/internal/exec"
	"github.com/smykla-skalski/realms-launcher/internal/fetch"
	"github.com/smykla-skalski/realms-launcher/internal/helperscript"
	"github.com/smykla-skalski/realms-launcher/internal/merge"
	"github.com/smykla-skalski/realms-launcher/internal/ui"
	"github.com/smykla-skalski/realms-launcher/internal/version"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

const (
	// StagePrefix prefixes every update scratch directory.
	StagePrefix = "realms_launcher_update_"

	// LogFileName is the helper log written to the OS temp directory.
	LogFileName = "realms_launcher_update.log"

	// DefaultGraceDelay lets the UI show the last status before exiting.
	DefaultGraceDelay = 300 * time.Millisecond

	// ApplyUpdateCommand is the launcher subcommand run by the native helper.
	ApplyUpdateCommand = "apply-update"

	stageArchiveName = "update.zip"
	stageExtractName = "staged"

	nativeHelperName = "realms_launcher_helper"
)

// HelperMode selects what replaces the launcher files.
type HelperMode string

const (
	// HelperScript runs the rendered script helpers.
	HelperScript HelperMode = "script"
	// HelperNative runs a copy of the launcher binary in apply-update mode.
	HelperNative HelperMode = "native"
)

var (
	// ErrAlreadyLatest is returned when the current launcher is already the latest.
	ErrAlreadyLatest = errors.New("already up to date")

	// ErrNoUpdateURL is returned when no launcher package URL is configured.
	ErrNoUpdateURL = errors.New("launcher update URL is not configured")
)

// Options configures an Orchestrator.
type Options struct {
	// URL is the launcher package archive.
	URL string

	// ForceElevation always asks for administrative rights.
	ForceElevation bool

	// HelperMode defaults to HelperScript.
	HelperMode HelperMode

	// GraceDelay is slept between the last status and quit.
	GraceDelay time.Duration

	// RelaunchArgs is passed to the relaunched launcher as one string.
	RelaunchArgs string

	// Params tunes the script helpers.
	Params helperscript.Params
}

// Orchestrator stages a launcher release and hands off to the helper.
type Orchestrator struct {
	source     version.MetadataSource
	downloader *fetch.Downloader
	opts       Options

	spawner    Spawner
	tools      exec.ToolChecker
	executable func() (string, error)
	goos       string
	sleep      func(time.Duration)
	log        logger.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithSpawner replaces the process spawner.
func WithSpawner(s Spawner) OrchestratorOption {
	return func(o *Orchestrator) {
		o.spawner = s
	}
}

// WithToolChecker replaces the interpreter lookup.
func WithToolChecker(t exec.ToolChecker) OrchestratorOption {
	return func(o *Orchestrator) {
		o.tools = t
	}
}

// WithExecutable replaces the running executable lookup.
func WithExecutable(fn func() (string, error)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.executable = fn
	}
}

// WithGOOS overrides the target operating system.
func WithGOOS(goos string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.goos = goos
	}
}

// WithSleep replaces the grace delay sleep.
func WithSleep(fn func(time.Duration)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.sleep = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	source version.MetadataSource,
	downloader *fetch.Downloader,
	opts Options,
	options ...OrchestratorOption,
) *Orchestrator {
	if opts.HelperMode == "" {
		opts.HelperMode = HelperScript
	}

	if opts.GraceDelay <= 0 {
		opts.GraceDelay = DefaultGraceDelay
	}

	if opts.Params == (helperscript.Params{}) {
		opts.Params = helperscript.DefaultParams()
	}

	o := &Orchestrator{
		source:     source,
		downloader: downloader,
		opts:       opts,
		spawner:    NewSystemSpawner(),
		tools:      exec.NewToolChecker(),
		executable: CurrentBinaryPath,
		goos:       runtime.GOOS,
		sleep:      time.Sleep,
		log:        logger.NewNoOpLogger(),
	}

	for _, option := range options {
		option(o)
	}

	return o
}

// Check returns the advertised launcher version, or ErrAlreadyLatest when
// current is not older. Dev builds always get the advertised version.
func (o *Orchestrator) Check(ctx context.Context, current string) (string, error) {
	info, err := o.source.Fetch(ctx)
	if err != nil {
		return "", errors.Wrap(err, "checking launcher version")
	}

	latest := info.LauncherVersion

	if current == "dev" {
		return latest, nil
	}

	if !version.IsNewer(current, latest) {
		return latest, ErrAlreadyLatest
	}

	return latest, nil
}

// Stage downloads and extracts the launcher package at url, or at the
// configured URL when url is empty, and returns the directory holding the new
// launcher files. The scratch directory is removed on failure.
func (o *Orchestrator) Stage(
	ctx context.Context,
	url string,
	onStatus ui.StatusFunc,
	onProgress ui.ProgressFunc,
) (string, error) {
	if url == "" {
		url = o.opts.URL
	}

	if url == "" {
		return "", ErrNoUpdateURL
	}

	session, err := fetch.NewSession(StagePrefix, stageArchiveName, stageExtractName)
	if err != nil {
		return "", err
	}

	stagedDir, err := o.stageInto(ctx, session, url, onStatus, onProgress)
	if err != nil {
		if cleanupErr := session.Cleanup(); cleanupErr != nil {
			o.log.Error("failed to clean up update staging", "error", cleanupErr)
		}

		return "", err
	}

	o.log.Info("launcher update staged", "dir", stagedDir)

	return stagedDir, nil
}

func (o *Orchestrator) stageInto(
	ctx context.Context,
	session *fetch.Session,
	url string,
	onStatus ui.StatusFunc,
	onProgress ui.ProgressFunc,
) (string, error) {
	onStatus.Report("Downloading launcher update...")
	onProgress.Report(0)

	if err := session.Download(ctx, o.downloader, url, onProgress.Bytes()); err != nil {
		return "", errors.Wrap(err, "downloading launcher update")
	}

	onStatus.Report("Staging launcher update...")

	if err := session.Extract(); err != nil {
		return "", errors.Wrap(err, "extracting launcher update")
	}

	if err := session.DiscardArchive(); err != nil {
		o.log.Debug("keeping update archive", "error", err)
	}

	root := merge.ResolveSourceRoot(session.ExtractedDir, "")

	exe, err := o.executable()
	if err != nil {
		o.log.Debug("cannot locate executable in staged files", "error", err)

		return root, nil
	}

	if dir := merge.FindDirWithFile(root, filepath.Base(exe)); dir != "" {
		return dir, nil
	}

	return root, nil
}

// BuildPlan describes the handoff for stagedDir.
func (o *Orchestrator) BuildPlan(stagedDir string) (Plan, error) {
	exe, err := o.executable()
	if err != nil {
		return Plan{}, err
	}

	targetDir := filepath.Dir(exe)

	return Plan{
		TargetDir:    targetDir,
		StagedDir:    stagedDir,
		MainPID:      os.Getpid(),
		RelaunchPath: exe,
		RelaunchArgs: o.opts.RelaunchArgs,
		RelaunchCwd:  targetDir,
		LogPath:      filepath.Join(os.TempDir(), LogFileName),
	}, nil
}

// SpawnAndQuit starts the helper for stagedDir and calls quit. When the
// helper cannot be started the error is returned and quit is not called.
func (o *Orchestrator) SpawnAndQuit(
	_ context.Context,
	stagedDir string,
	quit func(),
	onStatus ui.StatusFunc,
) error {
	plan, err := o.BuildPlan(stagedDir)
	if err != nil {
		return err
	}

	helperDir := helperDirFor(stagedDir)

	name, args, err := o.prepareHelper(helperDir, plan)
	if err != nil {
		return err
	}

	writeLogLine(plan.LogPath, "launcher handing off update", "target", plan.TargetDir, "staged", plan.StagedDir)

	elevate := o.opts.ForceElevation || !CanWrite(plan.TargetDir)

	o.log.Info("spawning update helper",
		"program", name,
		"elevated", elevate,
		"mode", string(o.opts.HelperMode),
	)

	if elevate {
		onStatus.Report("Requesting permission to update...")

		err = o.spawner.StartElevated(name, args, helperDir)
	} else {
		err = o.spawner.Start(name, args, helperDir)
	}

	if err != nil {
		return errors.Wrap(err, "starting update helper")
	}

	onStatus.Report("Applying update... The launcher will close and reopen.")
	o.sleep(o.opts.GraceDelay)
	quit()

	return nil
}

// prepareHelper writes the helper into dir and returns the command that
// runs it with the plan.
func (o *Orchestrator) prepareHelper(dir string, plan Plan) (string, []string, error) {
	if o.opts.HelperMode == HelperNative {
		return o.prepareNativeHelper(dir, plan)
	}

	dialects := helperscript.Dialects(o.goos)

	paths := make(map[helperscript.Dialect]string, len(dialects))

	for _, d := range dialects {
		path, err := helperscript.Write(dir, d, o.opts.Params)
		if err != nil {
			return "", nil, err
		}

		paths[d] = path
	}

	chosen := dialects[0]

	for _, d := range dialects {
		if o.tools.IsAvailable(d.Interpreter()) {
			chosen = d

			break
		}
	}

	name, args := helperscript.Command(chosen, paths[chosen], plan.Args())

	return name, args, nil
}

func (o *Orchestrator) prepareNativeHelper(dir string, plan Plan) (string, []string, error) {
	exe, err := o.executable()
	if err != nil {
		return "", nil, err
	}

	helper := filepath.Join(dir, nativeHelperName+filepath.Ext(exe))

	if err := merge.CopyFile(exe, helper); err != nil {
		return "", nil, errors.Wrap(err, "copying native update helper")
	}

	return helper, append([]string{ApplyUpdateCommand}, plan.Args()...), nil
}

// helperDirFor returns the scratch root that owns stagedDir, so the helpers
// sit outside the tree they copy. Without one the parent directory is used.
func helperDirFor(stagedDir string) string {
	for dir := filepath.Dir(stagedDir); ; dir = filepath.Dir(dir) {
		if strings.HasPrefix(filepath.Base(dir), StagePrefix) {
			return dir
		}

		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}

	return filepath.Dir(stagedDir)
}

// writeLogLine appends one line to the helper log. Failures are ignored.
func writeLogLine(path, msg string, keysAndValues ...any) {
	handler, err := logger.NewFileHandler(path, logger.LevelInfo)
	if err != nil {
		return
	}

	log := logger.NewSlogAdapter(handler)
	log.Info(msg, keysAndValues...)

	_ = log.Close()
}

// CurrentBinaryPath returns the resolved path of the running executable.
func CurrentBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, "finding current executable")
	}

	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", errors.Wrap(err, "resolving executable symlinks")
	}

	return resolved, nil
}
