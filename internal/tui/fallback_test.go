package tui_test

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/smykla-skalski/realms-launcher/internal/prompt"
	"github.com/smykla-skalski/realms-launcher/internal/tui"
	pkgConfig "github.com/smykla-skalski/realms-launcher/pkg/config"
)

var _ = Describe("FallbackUI", func() {
	var (
		ctrl     *gomock.Controller
		prompter *prompt.MockPrompter
		out      *bytes.Buffer
		ui       *tui.FallbackUI
	)

	languages := []string{"English", "Deutsch"}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		prompter = prompt.NewMockPrompter(ctrl)
		out = &bytes.Buffer{}
		ui = tui.NewFallbackUIWithPrompter(prompter, out)
	})

	It("prints the description before confirming", func() {
		prompter.EXPECT().Confirm("Update now?", true).Return(true, nil)

		ok, err := ui.Confirm("Update now?", "Launcher 2.0.0 is available.", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(out.String()).To(Equal("Launcher 2.0.0 is available.\n"))
	})

	It("delegates Select", func() {
		prompter.EXPECT().Select("Language", languages, "English").Return("Deutsch", nil)

		choice, err := ui.Select("Language", languages, "English")
		Expect(err).NotTo(HaveOccurred())
		Expect(choice).To(Equal("Deutsch"))
	})

	Describe("RunInitForm", func() {
		It("offers the base config as defaults and applies the answers", func() {
			native := pkgConfig.HelperModeNative
			base := &pkgConfig.Config{
				Launcher:   &pkgConfig.LauncherConfig{Language: "Deutsch"},
				SelfUpdate: &pkgConfig.SelfUpdateConfig{HelperMode: native},
			}

			gomock.InOrder(
				prompter.EXPECT().Select("Language", languages, "Deutsch").Return("English", nil),
				prompter.EXPECT().
					Select("Update helper", []string{"script", "native"}, native).
					Return("script", nil),
				prompter.EXPECT().Confirm("Always request administrator rights", true).Return(false, nil),
			)

			cfg, err := ui.RunInitForm(tui.InitFormOptions{Base: base, Languages: languages})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(BeIdenticalTo(base))
			Expect(cfg.Launcher.Language).To(Equal("English"))
			Expect(cfg.SelfUpdate.HelperMode).To(Equal("script"))
			Expect(cfg.SelfUpdate.IsForceElevation()).To(BeFalse())
			Expect(out.String()).To(ContainSubstring("Realms Launcher Configuration Setup"))
		})

		It("stops at the first failed prompt", func() {
			prompter.EXPECT().Select("Language", languages, "English").Return("", errors.New("closed"))

			_, err := ui.RunInitForm(tui.InitFormOptions{Languages: languages})
			Expect(err).To(MatchError("closed"))
		})

		It("works with the line prompter", func() {
			p := prompt.NewPrompter(strings.NewReader("2\n\ny\n"), out)
			ui = tui.NewFallbackUIWithPrompter(p, out)

			cfg, err := ui.RunInitForm(tui.InitFormOptions{Languages: languages})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Launcher.Language).To(Equal("Deutsch"))
			Expect(cfg.SelfUpdate.HelperMode).To(Equal(pkgConfig.HelperModeScript))
			Expect(cfg.SelfUpdate.IsForceElevation()).To(BeTrue())
		})
	})
})
