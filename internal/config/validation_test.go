package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalconfig "github.com/smykla-skalski/realms-launcher/internal/config"
	"github.com/smykla-skalski/realms-launcher/pkg/config"
)

var _ = Describe("Validator", func() {
	var (
		validator *internalconfig.Validator
		cfg       *config.Config
	)

	BeforeEach(func() {
		validator = internalconfig.NewValidator()
		cfg = internalconfig.DefaultConfig()
	})

	It("accepts the default config", func() {
		Expect(validator.Validate(cfg)).To(Succeed())
	})

	It("rejects a nil config", func() {
		Expect(validator.Validate(nil)).To(MatchError(internalconfig.ErrInvalidConfig))
	})

	It("accepts sections that are not set", func() {
		Expect(validator.Validate(&config.Config{})).To(Succeed())
	})

	DescribeTable("invalid values",
		func(mutate func(*config.Config), substring string) {
			mutate(cfg)

			err := validator.Validate(cfg)
			Expect(err).To(MatchError(internalconfig.ErrInvalidConfig))
			Expect(errorDetails(err)).To(ContainSubstring(substring))
		},
		Entry("relative metadata URL",
			func(c *config.Config) { c.Remote.MetadataURL = "version.json" },
			"remote.metadata_url"),
		Entry("non-http launcher URL",
			func(c *config.Config) { c.Remote.LauncherURL = "ftp://example.com/l.zip" },
			"remote.launcher_url"),
		Entry("empty update URL",
			func(c *config.Config) { c.Remote.UpdateURL = "" },
			"remote.update_url"),
		Entry("bad base dependency URL",
			func(c *config.Config) { c.Remote.BaseDependencyURL = "not a url" },
			"remote.base_dependency_url"),
		Entry("nested managed folder",
			func(c *config.Config) { c.Install.ManagedFolder = "a/b" },
			"install.managed_folder"),
		Entry("parent base folder",
			func(c *config.Config) { c.Install.BaseFolder = ".." },
			"install.base_folder"),
		Entry("broken obsolete pattern",
			func(c *config.Config) { c.Install.ObsoleteFolders = []string{"maps/[abc"} },
			"install.obsolete_folders"),
		Entry("zero verify sample",
			func(c *config.Config) {
				zero := 0
				c.Install.VerifySample = &zero
			},
			"install.verify_sample"),
		Entry("unknown helper mode",
			func(c *config.Config) { c.SelfUpdate.HelperMode = "magic" },
			"self_update.helper_mode"),
		Entry("unknown language",
			func(c *config.Config) { c.Launcher.Language = "Klingon" },
			"launcher.language"),
		Entry("unknown settings backend",
			func(c *config.Config) { c.Launcher.SettingsBackend = "cloud" },
			"launcher.settings_backend"),
	)

	It("reports every failure at once", func() {
		cfg.Remote.MetadataURL = ""
		cfg.SelfUpdate.HelperMode = "magic"

		err := validator.Validate(cfg)
		Expect(err).To(MatchError(ContainSubstring("2 error(s)")))
	})
})
