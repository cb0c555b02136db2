package selfupdate_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/selfupdate"
)

var _ = Describe("Plan", func() {
	plan := selfupdate.Plan{
		TargetDir:    "/opt/launcher",
		StagedDir:    "/tmp/realms_launcher_update_1/staged",
		MainPID:      4242,
		RelaunchPath: "/opt/launcher/launcher",
		RelaunchArgs: "",
		RelaunchCwd:  "/opt/launcher",
		LogPath:      "/tmp/realms_launcher_update.log",
	}

	It("keeps the fixed argument order", func() {
		Expect(plan.Args()).To(Equal([]string{
			"/opt/launcher",
			"/tmp/realms_launcher_update_1/staged",
			"4242",
			"/opt/launcher/launcher",
			"",
			"/opt/launcher",
			"/tmp/realms_launcher_update.log",
		}))
	})

	It("parses its own arguments back", func() {
		parsed, err := selfupdate.ParsePlan(plan.Args())
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(Equal(plan))
	})

	It("rejects the wrong number of arguments", func() {
		_, err := selfupdate.ParsePlan([]string{"/opt/launcher", "/tmp/staged"})
		Expect(err).To(MatchError(selfupdate.ErrInvalidPlan))
	})

	It("rejects a missing staged directory", func() {
		args := plan.Args()
		args[1] = ""

		_, err := selfupdate.ParsePlan(args)
		Expect(err).To(MatchError(selfupdate.ErrInvalidPlan))
	})

	It("treats a non-numeric pid as no pid", func() {
		args := plan.Args()
		args[2] = "not-a-pid"

		parsed, err := selfupdate.ParsePlan(args)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.MainPID).To(BeZero())
	})
})
