package selfupdate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/smykla-skalski/realms-launcher/internal/exec"
	"github.com/smykla-skalski/realms-launcher/internal/fetch"
	"github.com/smykla-skalski/realms-launcher/internal/selfupdate"
	"github.com/smykla-skalski/realms-launcher/internal/version"
)

var _ = Describe("Orchestrator", func() {
	var (
		tmp      string
		exePath  string
		spawner  *recordingSpawner
		ctrl     *gomock.Controller
		tools    *exec.MockToolChecker
		slept    []time.Duration
		statuses []string
	)

	BeforeEach(func() {
		tmp = GinkgoT().TempDir()
		GinkgoT().Setenv("TMPDIR", tmp)

		exePath = filepath.Join(tmp, "app", "App.exe")
		writeFile(exePath, "old launcher")

		spawner = &recordingSpawner{}
		ctrl = gomock.NewController(GinkgoT())
		tools = exec.NewMockToolChecker(ctrl)
		slept = nil
		statuses = nil
	})

	newOrchestrator := func(source version.MetadataSource, opts selfupdate.Options, extra ...selfupdate.OrchestratorOption) *selfupdate.Orchestrator {
		options := append([]selfupdate.OrchestratorOption{
			selfupdate.WithSpawner(spawner),
			selfupdate.WithToolChecker(tools),
			selfupdate.WithExecutable(func() (string, error) { return exePath, nil }),
			selfupdate.WithGOOS("linux"),
			selfupdate.WithSleep(func(d time.Duration) { slept = append(slept, d) }),
		}, extra...)

		return selfupdate.NewOrchestrator(source, fetch.NewDownloader(nil), opts, options...)
	}

	onStatus := func(text string) { statuses = append(statuses, text) }

	Describe("Check", func() {
		source := staticSource{info: version.RemoteInfo{LauncherVersion: "1.2.0"}}

		It("returns the newer launcher version", func() {
			latest, err := newOrchestrator(source, selfupdate.Options{}).Check(context.Background(), "1.1.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(latest).To(Equal("1.2.0"))
		})

		It("returns ErrAlreadyLatest when current is not older", func() {
			o := newOrchestrator(source, selfupdate.Options{})

			_, err := o.Check(context.Background(), "1.2")
			Expect(err).To(MatchError(selfupdate.ErrAlreadyLatest))

			_, err = o.Check(context.Background(), "1.3.0")
			Expect(err).To(MatchError(selfupdate.ErrAlreadyLatest))
		})

		It("always offers the latest to dev builds", func() {
			latest, err := newOrchestrator(source, selfupdate.Options{}).Check(context.Background(), "dev")
			Expect(err).NotTo(HaveOccurred())
			Expect(latest).To(Equal("1.2.0"))
		})

		It("wraps metadata failures", func() {
			failing := staticSource{err: version.ErrMetadataUnavailable}

			_, err := newOrchestrator(failing, selfupdate.Options{}).Check(context.Background(), "1.0.0")
			Expect(err).To(MatchError(version.ErrMetadataUnavailable))
		})
	})

	Describe("Stage", func() {
		var server *httptest.Server

		serve := func(body []byte, code int) {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if code != http.StatusOK {
					w.WriteHeader(code)

					return
				}

				_, _ = w.Write(body)
			}))
			DeferCleanup(server.Close)
		}

		It("resolves the directory that holds the launcher executable", func() {
			serve(zipBytes(map[string]string{
				"App-1.2/README.txt":   "readme",
				"App-1.2/bin/App.exe":  "new launcher",
				"App-1.2/bin/data.pak": "data",
			}), http.StatusOK)

			var progress []float64

			o := newOrchestrator(staticSource{}, selfupdate.Options{})
			staged, err := o.Stage(context.Background(), server.URL+"/realms_launcher.zip", onStatus,
				func(p float64) { progress = append(progress, p) })
			Expect(err).NotTo(HaveOccurred())

			Expect(staged).To(HaveSuffix(filepath.Join("staged", "App-1.2", "bin")))
			Expect(filepath.Join(staged, "App.exe")).To(BeARegularFile())
			Expect(statuses).To(Equal([]string{
				"Downloading launcher update...",
				"Staging launcher update...",
			}))
			Expect(progress).NotTo(BeEmpty())
			Expect(progress[0]).To(BeZero())

			root := filepath.Dir(filepath.Dir(filepath.Dir(staged)))
			Expect(filepath.Base(root)).To(HavePrefix(selfupdate.StagePrefix))
			Expect(filepath.Join(root, "update.zip")).NotTo(BeAnExistingFile())
		})

		It("falls back to the wrapper directory when the executable is absent", func() {
			serve(zipBytes(map[string]string{
				"Launcher/Other.exe": "other",
			}), http.StatusOK)

			staged, err := newOrchestrator(staticSource{}, selfupdate.Options{}).
				Stage(context.Background(), server.URL, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(staged)).To(Equal("Launcher"))
		})

		It("uses the configured URL when none is given", func() {
			serve(zipBytes(map[string]string{"App.exe": "new"}), http.StatusOK)

			staged, err := newOrchestrator(staticSource{}, selfupdate.Options{URL: server.URL}).
				Stage(context.Background(), "", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(staged)).To(Equal("staged"))
		})

		It("fails without any URL", func() {
			_, err := newOrchestrator(staticSource{}, selfupdate.Options{}).
				Stage(context.Background(), "", nil, nil)
			Expect(err).To(MatchError(selfupdate.ErrNoUpdateURL))
		})

		It("removes the scratch directory when the download fails", func() {
			serve(nil, http.StatusNotFound)

			_, err := newOrchestrator(staticSource{}, selfupdate.Options{}).
				Stage(context.Background(), server.URL, nil, nil)
			Expect(err).To(HaveOccurred())

			var httpErr *fetch.HTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())

			leftovers, globErr := filepath.Glob(filepath.Join(tmp, selfupdate.StagePrefix+"*"))
			Expect(globErr).NotTo(HaveOccurred())
			Expect(leftovers).To(BeEmpty())
		})
	})

	Describe("SpawnAndQuit", func() {
		var (
			scratch string
			staged  string
			quits   int
		)

		quit := func() { quits++ }

		BeforeEach(func() {
			scratch = filepath.Join(tmp, selfupdate.StagePrefix+"test")
			staged = filepath.Join(scratch, "staged", "App-1.2")
			writeFile(filepath.Join(staged, "App.exe"), "new launcher")
			quits = 0
		})

		It("writes the POSIX helper and spawns it detached", func() {
			tools.EXPECT().IsAvailable("/bin/sh").Return(true)

			o := newOrchestrator(staticSource{}, selfupdate.Options{RelaunchArgs: "--from-update"})
			Expect(o.SpawnAndQuit(context.Background(), staged, quit, onStatus)).To(Succeed())

			script := filepath.Join(scratch, "do_update.sh")
			Expect(script).To(BeARegularFile())

			calls := spawner.recorded()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].elevated).To(BeFalse())
			Expect(calls[0].name).To(Equal("/bin/sh"))
			Expect(calls[0].dir).To(Equal(scratch))
			Expect(calls[0].args).To(Equal([]string{
				script,
				filepath.Dir(exePath),
				staged,
				strconv.Itoa(os.Getpid()),
				exePath,
				"--from-update",
				filepath.Dir(exePath),
				filepath.Join(os.TempDir(), selfupdate.LogFileName),
			}))

			Expect(quits).To(Equal(1))
			Expect(slept).To(Equal([]time.Duration{selfupdate.DefaultGraceDelay}))
			Expect(statuses).To(ContainElement(HavePrefix("Applying update...")))
		})

		It("records the handoff in the helper log", func() {
			tools.EXPECT().IsAvailable(gomock.Any()).Return(true).AnyTimes()

			o := newOrchestrator(staticSource{}, selfupdate.Options{})
			Expect(o.SpawnAndQuit(context.Background(), staged, quit, onStatus)).To(Succeed())

			data, err := os.ReadFile(filepath.Join(os.TempDir(), selfupdate.LogFileName))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("launcher handing off update"))
		})

		It("asks for elevation when forced", func() {
			tools.EXPECT().IsAvailable(gomock.Any()).Return(true).AnyTimes()

			o := newOrchestrator(staticSource{}, selfupdate.Options{ForceElevation: true})
			Expect(o.SpawnAndQuit(context.Background(), staged, quit, onStatus)).To(Succeed())

			calls := spawner.recorded()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].elevated).To(BeTrue())
			Expect(statuses).To(ContainElement("Requesting permission to update..."))
		})

		It("writes both Windows dialects and falls back to cmd without PowerShell", func() {
			tools.EXPECT().IsAvailable("powershell.exe").Return(false)
			tools.EXPECT().IsAvailable("cmd.exe").Return(true)

			o := newOrchestrator(staticSource{}, selfupdate.Options{}, selfupdate.WithGOOS("windows"))
			Expect(o.SpawnAndQuit(context.Background(), staged, quit, onStatus)).To(Succeed())

			Expect(filepath.Join(scratch, "do_update.ps1")).To(BeARegularFile())
			Expect(filepath.Join(scratch, "do_update.cmd")).To(BeARegularFile())

			calls := spawner.recorded()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].name).To(Equal("cmd.exe"))
			Expect(calls[0].args[:2]).To(Equal([]string{"/c", filepath.Join(scratch, "do_update.cmd")}))
		})

		It("prefers PowerShell when it is available", func() {
			tools.EXPECT().IsAvailable("powershell.exe").Return(true)

			o := newOrchestrator(staticSource{}, selfupdate.Options{}, selfupdate.WithGOOS("windows"))
			Expect(o.SpawnAndQuit(context.Background(), staged, quit, onStatus)).To(Succeed())

			calls := spawner.recorded()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].name).To(Equal("powershell.exe"))
			Expect(calls[0].args).To(ContainElement(filepath.Join(scratch, "do_update.ps1")))
		})

		It("copies the launcher as the native helper", func() {
			o := newOrchestrator(staticSource{}, selfupdate.Options{HelperMode: selfupdate.HelperNative})
			Expect(o.SpawnAndQuit(context.Background(), staged, quit, onStatus)).To(Succeed())

			calls := spawner.recorded()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].name).To(Equal(filepath.Join(scratch, "realms_launcher_helper.exe")))
			Expect(calls[0].args[0]).To(Equal(selfupdate.ApplyUpdateCommand))
			Expect(calls[0].args[1:]).To(HaveLen(selfupdate.PlanArgCount))

			data, err := os.ReadFile(calls[0].name)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("old launcher"))
		})

		It("does not quit when the helper cannot start", func() {
			tools.EXPECT().IsAvailable(gomock.Any()).Return(true).AnyTimes()
			spawner.err = errors.New("spawn refused")

			o := newOrchestrator(staticSource{}, selfupdate.Options{})
			err := o.SpawnAndQuit(context.Background(), staged, quit, onStatus)
			Expect(err).To(MatchError(ContainSubstring("spawn refused")))
			Expect(quits).To(BeZero())
			Expect(slept).To(BeEmpty())
		})

		It("uses the parent directory outside a scratch root", func() {
			tools.EXPECT().IsAvailable(gomock.Any()).Return(true).AnyTimes()

			loose := filepath.Join(tmp, "loose", "App")
			writeFile(filepath.Join(loose, "App.exe"), "new")

			o := newOrchestrator(staticSource{}, selfupdate.Options{})
			Expect(o.SpawnAndQuit(context.Background(), loose, quit, onStatus)).To(Succeed())

			Expect(filepath.Join(tmp, "loose", "do_update.sh")).To(BeARegularFile())
			Expect(strings.HasPrefix(spawner.recorded()[0].dir, filepath.Join(tmp, "loose"))).To(BeTrue())
		})
	})
})

var _ = Describe("CanWrite", func() {
	It("reports a writable directory and leaves no probe behind", func() {
		dir := GinkgoT().TempDir()

		Expect(selfupdate.CanWrite(dir)).To(BeTrue())

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("reports a missing directory as not writable", func() {
		Expect(selfupdate.CanWrite(filepath.Join(GinkgoT().TempDir(), "missing"))).To(BeFalse())
	})
})
