package version_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/version"
)

// staticSource implements version.MetadataSource for testing.
type staticSource struct {
	info  version.RemoteInfo
	err   error
	calls int
}

func (s *staticSource) Fetch(_ context.Context) (version.RemoteInfo, error) {
	s.calls++

	return s.info, s.err
}

var _ = Describe("Resolver", func() {
	var (
		installPath string
		managedDir  string
		source      *staticSource
		resolver    *version.Resolver
	)

	BeforeEach(func() {
		installPath = GinkgoT().TempDir()
		managedDir = filepath.Join(installPath, "realms")
		source = &staticSource{info: version.RemoteInfo{
			Version:             "1.2.0",
			LauncherVersion:     "1.1.0",
			RequiredBaseVersion: "1.0",
			CurrentBaseVersion:  "1.0",
		}}
		resolver = version.NewResolver(source, "realms")
	})

	It("reports NotInstalled without a record and still fetches remote info", func() {
		status := resolver.GetStatus(context.Background(), installPath)

		Expect(status.Decision).To(Equal(version.NotInstalled))
		Expect(status.Remote.Version).To(Equal("1.2.0"))
		Expect(source.calls).To(Equal(1))
	})

	It("treats an unparsable record as not installed", func() {
		Expect(os.MkdirAll(managedDir, 0o755)).To(Succeed())
		Expect(os.WriteFile(version.RecordPath(managedDir), []byte("{not json"), 0o644)).To(Succeed())

		status := resolver.GetStatus(context.Background(), installPath)
		Expect(status.Decision).To(Equal(version.NotInstalled))
	})

	It("reports CheckFailed when the metadata fetch fails", func() {
		source.err = errors.New("connection refused")

		status := resolver.GetStatus(context.Background(), installPath)
		Expect(status.Decision).To(Equal(version.CheckFailed))
		Expect(status.Err).To(MatchError(ContainSubstring("connection refused")))
	})

	It("forces a reinstall when the base version changed even if versions match", func() {
		Expect(version.WriteRecord(managedDir, version.Record{
			Version:     "1.2.0",
			BaseVersion: "0.9",
		})).To(Succeed())

		status := resolver.GetStatus(context.Background(), installPath)
		Expect(status.Decision).To(Equal(version.UpdateAvailable))
		Expect(status.ForcedReinstall).To(BeTrue())
	})

	It("reports UpdateAvailable for an older package", func() {
		Expect(version.WriteRecord(managedDir, version.Record{
			Version:     "1.1.0",
			BaseVersion: "1.0",
		})).To(Succeed())

		status := resolver.GetStatus(context.Background(), installPath)
		Expect(status.Decision).To(Equal(version.UpdateAvailable))
		Expect(status.ForcedReinstall).To(BeFalse())
		Expect(status.Installed()).To(BeTrue())
	})

	It("reports UpToDate when versions match", func() {
		Expect(version.WriteRecord(managedDir, version.Record{
			Version:     "1.2.0",
			BaseVersion: "1.0",
		})).To(Succeed())

		status := resolver.GetStatus(context.Background(), installPath)
		Expect(status.Decision).To(Equal(version.UpToDate))
		Expect(status.Message()).To(Equal("Mod is up-to-date (1.2.0)."))
	})

	It("ignores a missing base version in the record", func() {
		Expect(version.WriteRecord(managedDir, version.Record{Version: "1.2.0"})).To(Succeed())

		status := resolver.GetStatus(context.Background(), installPath)
		Expect(status.Decision).To(Equal(version.UpToDate))
	})
})

var _ = Describe("Record", func() {
	It("round-trips through the managed directory", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "realms")

		Expect(version.WriteRecord(dir, version.Record{Version: "1.0", BaseVersion: "2.0"})).To(Succeed())

		rec, ok := version.ReadRecord(dir)
		Expect(ok).To(BeTrue())
		Expect(rec).To(Equal(version.Record{Version: "1.0", BaseVersion: "2.0"}))

		_, err := os.Stat(version.RecordPath(dir) + ".tmp")
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})
