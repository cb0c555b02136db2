package handoff_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/handoff"
	"github.com/smykla-skalski/realms-launcher/internal/merge"
	"github.com/smykla-skalski/realms-launcher/internal/selfupdate"
)

func fastOptions() handoff.Options {
	return handoff.Options{
		PidWait:       50 * time.Millisecond,
		PidPoll:       5 * time.Millisecond,
		Settle:        time.Millisecond,
		UnlockTimeout: 20 * time.Millisecond,
		UnlockBase:    5 * time.Millisecond,
		UnlockStep:    time.Millisecond,
		UnlockPoll:    time.Millisecond,
		CopyAttempts:  3,
		BackoffStep:   time.Millisecond,
	}
}

type startCall struct {
	name string
	args []string
	dir  string
}

func writeFile(path, content string, mode os.FileMode) {
	Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
	Expect(os.WriteFile(path, []byte(content), mode)).To(Succeed())
}

var _ = Describe("Helper", func() {
	var (
		tmp    string
		plan   selfupdate.Plan
		starts []startCall
		helper *handoff.Helper
	)

	starter := func(name string, args []string, dir string) (int, error) {
		starts = append(starts, startCall{name: name, args: args, dir: dir})

		return 1, nil
	}

	BeforeEach(func() {
		if runtime.GOOS == "windows" {
			Skip("uses POSIX executable bits")
		}

		tmp = GinkgoT().TempDir()
		starts = nil

		target := filepath.Join(tmp, "launcher")
		staged := filepath.Join(tmp, "realms_launcher_update_1", "staged")

		writeFile(filepath.Join(target, "launcher"), "old", 0o755)
		writeFile(filepath.Join(target, "settings.toml"), "user", 0o644)
		writeFile(filepath.Join(staged, "launcher"), "new", 0o755)
		writeFile(filepath.Join(staged, "lib", "core.dat"), "core", 0o644)

		plan = selfupdate.Plan{
			TargetDir:    target,
			StagedDir:    staged,
			RelaunchPath: filepath.Join(target, "launcher"),
			RelaunchArgs: "--updated --quiet",
			RelaunchCwd:  target,
			LogPath:      filepath.Join(tmp, "update.log"),
		}

		helper = handoff.NewHelper(
			handoff.WithOptions(fastOptions()),
			handoff.WithStarter(starter),
		)
	})

	It("copies additively, removes the staging and relaunches", func() {
		result, err := helper.Apply(context.Background(), plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(handoff.Result{Copied: true, Relaunched: true}))

		data, err := os.ReadFile(filepath.Join(plan.TargetDir, "launcher"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("new"))
		Expect(filepath.Join(plan.TargetDir, "lib", "core.dat")).To(BeARegularFile())
		Expect(filepath.Join(plan.TargetDir, "settings.toml")).To(BeARegularFile())
		Expect(plan.StagedDir).NotTo(BeAnExistingFile())

		Expect(starts).To(Equal([]startCall{{
			name: plan.RelaunchPath,
			args: []string{"--updated", "--quiet"},
			dir:  plan.TargetDir,
		}}))
	})

	It("runs a non-executable relaunch path as a command line", func() {
		plan.RelaunchPath = "echo"
		plan.RelaunchArgs = "hello"

		result, err := helper.Apply(context.Background(), plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Relaunched).To(BeTrue())
		Expect(starts).To(Equal([]startCall{{
			name: "/bin/sh",
			args: []string{"-c", "echo hello"},
			dir:  plan.TargetDir,
		}}))
	})

	It("skips the relaunch without a relaunch path", func() {
		plan.RelaunchPath = ""

		result, err := helper.Apply(context.Background(), plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(handoff.Result{Copied: true}))
		Expect(starts).To(BeEmpty())
	})

	It("fails without relaunching when the staged directory is missing", func() {
		Expect(os.RemoveAll(plan.StagedDir)).To(Succeed())

		result, err := helper.Apply(context.Background(), plan)
		Expect(err).To(MatchError(handoff.ErrStagedMissing))
		Expect(result.Copied).To(BeFalse())
		Expect(starts).To(BeEmpty())
	})

	It("makes one final copy after every retry failed", func() {
		var calls int

		helper = handoff.NewHelper(
			handoff.WithOptions(fastOptions()),
			handoff.WithStarter(starter),
			handoff.WithCopier(func(staged, target string) error {
				calls++
				if calls <= fastOptions().CopyAttempts {
					return errors.New("launcher is locked")
				}

				return merge.OverlayCopy(staged, target)
			}),
		)

		result, err := helper.Apply(context.Background(), plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(handoff.Result{Copied: true, Relaunched: true}))
		Expect(calls).To(Equal(fastOptions().CopyAttempts + 1))

		data, err := os.ReadFile(filepath.Join(plan.TargetDir, "launcher"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("new"))
		Expect(plan.StagedDir).NotTo(BeAnExistingFile())
	})

	It("keeps the retry error when the final copy fails too", func() {
		locked := errors.New("launcher is locked")

		var calls int

		helper = handoff.NewHelper(
			handoff.WithOptions(fastOptions()),
			handoff.WithStarter(starter),
			handoff.WithCopier(func(string, string) error {
				calls++

				return locked
			}),
		)

		result, err := helper.Apply(context.Background(), plan)
		Expect(err).To(MatchError(locked))
		Expect(result.Copied).To(BeFalse())
		Expect(calls).To(Equal(fastOptions().CopyAttempts + 1))
		Expect(starts).To(BeEmpty())
	})

	It("waits until the launcher process is gone", func() {
		plan.MainPID = 4242

		checks := 0
		helper = handoff.NewHelper(
			handoff.WithOptions(fastOptions()),
			handoff.WithStarter(starter),
			handoff.WithPidChecker(func(_ context.Context, pid int32) (bool, error) {
				Expect(pid).To(Equal(int32(4242)))
				checks++

				return checks < 3, nil
			}),
		)

		_, err := helper.Apply(context.Background(), plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(checks).To(Equal(3))
	})

	It("gives up waiting after the pid timeout", func() {
		plan.MainPID = 4242

		helper = handoff.NewHelper(
			handoff.WithOptions(fastOptions()),
			handoff.WithStarter(starter),
			handoff.WithPidChecker(func(context.Context, int32) (bool, error) {
				return true, nil
			}),
		)

		result, err := helper.Apply(context.Background(), plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Copied).To(BeTrue())
	})
})

var _ = Describe("LinearBackOff", func() {
	It("grows by one step per attempt and restarts on reset", func() {
		b := handoff.NewLinearBackOff(500 * time.Millisecond)

		Expect(b.NextBackOff()).To(Equal(500 * time.Millisecond))
		Expect(b.NextBackOff()).To(Equal(time.Second))
		Expect(b.NextBackOff()).To(Equal(1500 * time.Millisecond))

		b.Reset()
		Expect(b.NextBackOff()).To(Equal(500 * time.Millisecond))
	})
})

var _ = Describe("WaitUnlocked", func() {
	It("returns at once for a missing file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "missing.exe")

		Expect(handoff.WaitUnlocked(context.Background(), path, time.Second, time.Millisecond)).To(BeTrue())
	})

	It("reports an idle file as unlocked", func() {
		path := filepath.Join(GinkgoT().TempDir(), "idle.exe")
		Expect(os.WriteFile(path, []byte("x"), 0o600)).To(Succeed())

		Expect(handoff.WaitUnlocked(context.Background(), path, time.Second, time.Millisecond)).To(BeTrue())
	})
})
