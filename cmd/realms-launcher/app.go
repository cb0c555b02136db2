package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/realms-launcher/internal/color"
	internalconfig "github.com/smykla-skalski/realms-launcher/internal/config"
	"github.com/smykla-skalski/realms-launcher/internal/fetch"
	"github.com/smykla-skalski/realms-launcher/internal/game"
	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/internal/settings"
	"github.com/smykla-skalski/realms-launcher/internal/ui"
	"github.com/smykla-skalski/realms-launcher/internal/version"
	"github.com/smykla-skalski/realms-launcher/internal/xdg"
	"github.com/smykla-skalski/realms-launcher/pkg/config"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

// ErrNoInstallFolder is returned when neither --install-folder nor the saved
// settings name a game folder.
var ErrNoInstallFolder = errors.New("no install folder: pass --install-folder <path>")

// app holds what every command needs: configuration, logging, saved
// settings and the remote clients.
type app struct {
	cfg      *config.Config
	loader   *internalconfig.KoanfLoader
	log      logger.Logger
	store    settings.Store
	saved    settings.Settings
	theme    color.Theme
	term     *ui.Terminal
	out      io.Writer
	source   *version.Client
	download *fetch.Downloader

	closers []func() error
}

// newApp loads the configuration and opens the logger and settings store.
// Commands must call close when done.
func newApp(cmd *cobra.Command, extraFlags map[string]any) (*app, error) {
	loader := internalconfig.NewKoanfLoader(configPath)

	cfg, err := loader.Load(collectFlags(extraFlags))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	return buildApp(cmd, loader, cfg)
}

// newLenientApp is newApp for diagnostics: an unreadable or invalid
// configuration falls back to the defaults.
func newLenientApp(cmd *cobra.Command) (*app, error) {
	loader := internalconfig.NewKoanfLoader(configPath)

	cfg, err := loader.LoadWithoutValidation(collectFlags(nil))
	if err != nil {
		cfg = internalconfig.DefaultConfig()
	}

	return buildApp(cmd, loader, cfg)
}

func buildApp(cmd *cobra.Command, loader *internalconfig.KoanfLoader, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:    cfg,
		loader: loader,
		out:    cmd.OutOrStdout(),
	}

	a.log = a.openLogger()

	a.theme = color.NewTheme(color.Enabled(noColorFlag, os.Stdout))
	a.term = ui.NewTerminal(a.out, color.IsTerminal(os.Stdout), a.theme)

	store, err := openSettings(cfg)
	if err != nil {
		a.close()

		return nil, err
	}

	a.store = store

	saved, loadErr := store.Load()
	if loadErr != nil {
		a.log.Error("failed to load settings, using defaults", "error", loadErr)
	}

	a.saved = saved

	remote := cfg.GetRemote()
	a.source = version.NewClient(remote.MetadataURL, nil, remote.GetTimeout())
	a.download = fetch.NewDownloader(&http.Client{})

	a.log.Debug("configuration loaded",
		"metadata_url", remote.MetadataURL,
		"settings_backend", cfg.GetLauncher().GetSettingsBackend(),
	)

	return a, nil
}

func collectFlags(extra map[string]any) map[string]any {
	flags := map[string]any{
		"timeout":      timeoutFlag,
		"metadata-url": metadataURLFlag,
	}

	for k, v := range extra {
		flags[k] = v
	}

	return flags
}

func (a *app) openLogger() logger.Logger {
	log, err := logger.NewFileLogger(xdg.LogFile(), debugMode, traceMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)

		return logger.NewNoOpLogger()
	}

	a.closers = append(a.closers, log.Close)

	return log
}

func openSettings(cfg *config.Config) (settings.Store, error) {
	launcher := cfg.GetLauncher()

	path := launcher.SettingsFile
	if path == "" {
		path = xdg.SettingsFile()
	}

	store, err := settings.Open(settings.Backend(launcher.GetSettingsBackend()), xdg.ExpandPathSilent(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open settings")
	}

	return store, nil
}

func (a *app) close() {
	for _, fn := range a.closers {
		_ = fn()
	}
}

// installFolder returns --install-folder, or the saved folder.
func (a *app) installFolder() (string, error) {
	if installFolderFlag != "" {
		return xdg.ExpandPath(installFolderFlag)
	}

	if a.saved.InstallFolder != "" {
		return a.saved.InstallFolder, nil
	}

	return "", ErrNoInstallFolder
}

func (a *app) workflow() *install.Workflow {
	remote := a.cfg.GetRemote()
	layout := a.cfg.GetInstall()

	return install.NewWorkflow(a.source, a.download, install.Options{
		ManagedFolder:      layout.ManagedFolder,
		BaseFolder:         layout.BaseFolder,
		BaseURL:            remote.BaseURL,
		UpdateURL:          remote.UpdateURL,
		FullURL:            remote.FullURL,
		BaseDependencyURL:  remote.BaseDependencyURL,
		BasePackageVersion: layout.BasePackageVersion,
		ObsoletePatterns:   layout.ObsoleteFolders,
		VerifySample:       layout.GetVerifySample(),
	}, a.log)
}

func (a *app) resolver() *version.Resolver {
	return version.NewResolver(a.source, a.cfg.GetInstall().ManagedFolder)
}

func (a *app) gameLauncher() *game.Launcher {
	layout := a.cfg.GetInstall()

	return game.NewLauncher(layout.BaseGameFolder, layout.ManagedFolder, game.WithLogger(a.log))
}
