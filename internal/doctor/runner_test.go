package doctor_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	"github.com/smykla-skalski/realms-launcher/internal/prompt"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

var _ = Describe("Runner", func() {
	var (
		registry *doctor.Registry
		reporter *recordingReporter
		out      *bytes.Buffer
		fixed    bool
		fixer    *stubFixer
	)

	BeforeEach(func() {
		registry = doctor.NewRegistry()
		reporter = &recordingReporter{}
		out = &bytes.Buffer{}
		fixed = false
		fixer = &stubFixer{id: "remove_stale", onFix: func() { fixed = true }}

		registry.RegisterChecker(&stubChecker{name: "folder", category: doctor.CategoryInstall})
		registry.RegisterChecker(&stubChecker{
			name:     "staging",
			category: doctor.CategoryLauncher,
			fn: func() doctor.CheckResult {
				if fixed {
					return doctor.Pass("staging", "clean")
				}

				return doctor.FailWarning("staging", "stale dirs").WithFixID("remove_stale")
			},
		})
		registry.RegisterFixer(fixer)
	})

	newRunner := func(p prompt.Prompter) *doctor.Runner {
		return doctor.NewRunner(registry, reporter, p, logger.NewNoOpLogger(), doctor.WithOutput(out))
	}

	It("reports once and suggests fixes without --fix", func() {
		Expect(newRunner(nil).Run(context.Background(), doctor.RunOptions{})).To(Succeed())
		Expect(reporter.batches).To(HaveLen(1))
		Expect(fixer.calls).To(BeZero())
		Expect(out.String()).To(ContainSubstring("staging: stub fix"))
		Expect(out.String()).To(ContainSubstring("realms-launcher doctor --fix"))
	})

	It("applies fixes and reports the rerun", func() {
		Expect(newRunner(nil).Run(context.Background(), doctor.RunOptions{AutoFix: true})).To(Succeed())
		Expect(fixer.calls).To(Equal(1))
		Expect(reporter.batches).To(HaveLen(2))
		Expect(reporter.batches[1]).To(HaveLen(1))
		Expect(reporter.batches[1][0].IsPassed()).To(BeTrue())
	})

	It("asks before fixing in interactive mode", func() {
		ctrl := gomock.NewController(GinkgoT())
		p := prompt.NewMockPrompter(ctrl)
		p.EXPECT().Confirm(`Apply fix for "staging"?`, true).Return(false, nil)

		Expect(newRunner(p).Run(context.Background(), doctor.RunOptions{Interactive: true})).To(Succeed())
		Expect(fixer.calls).To(BeZero())
	})

	It("fails when a check reports an error", func() {
		registry.RegisterChecker(&stubChecker{
			name:     "game",
			category: doctor.CategoryInstall,
			fn:       func() doctor.CheckResult { return doctor.FailError("game", "missing") },
		})

		err := newRunner(nil).Run(context.Background(), doctor.RunOptions{})
		Expect(err).To(MatchError(doctor.ErrChecksFailed))
	})

	It("limits checks to the requested categories", func() {
		err := newRunner(nil).Run(context.Background(), doctor.RunOptions{
			Categories: []doctor.Category{doctor.CategoryInstall},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(reporter.batches[0]).To(HaveLen(1))
		Expect(reporter.batches[0][0].Name).To(Equal("folder"))
	})
})
