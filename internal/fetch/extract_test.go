package fetch_test

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/fetch"
)

var _ = Describe("Extract", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("extracts a zip archive with nested directories", func() {
		archive := filepath.Join(dir, "pkg.zip")
		writeZip(archive, map[string]string{
			"realms/":              "",
			"realms/data/lotr.str": "strings",
			"readme.txt":           "hello",
		})

		dest := filepath.Join(dir, "out")
		Expect(fetch.Extract(archive, dest)).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dest, "realms", "data", "lotr.str"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("strings"))
		Expect(filepath.Join(dest, "readme.txt")).To(BeARegularFile())
	})

	It("extracts a tar.gz archive", func() {
		archive := filepath.Join(dir, "pkg.tar.gz")
		writeTarGz(archive, map[string]string{"bin/app": "binary"})

		dest := filepath.Join(dir, "out")
		Expect(fetch.Extract(archive, dest)).To(Succeed())
		Expect(filepath.Join(dest, "bin", "app")).To(BeARegularFile())
	})

	It("detects a zip archive without an extension", func() {
		archive := filepath.Join(dir, "download")
		writeZip(archive, map[string]string{"a.txt": "a"})

		Expect(fetch.DetectFormat(archive)).To(Equal(fetch.FormatZip))
	})

	It("marks unsupported archives with ErrArchive", func() {
		archive := filepath.Join(dir, "pkg.bin")
		Expect(os.WriteFile(archive, []byte("not an archive"), 0o644)).To(Succeed())

		err := fetch.Extract(archive, filepath.Join(dir, "out"))
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, fetch.ErrArchive)).To(BeTrue())
	})

	It("marks corrupt zip archives with ErrArchive", func() {
		archive := filepath.Join(dir, "broken.zip")
		Expect(os.WriteFile(archive, []byte("PK\x03\x04 truncated"), 0o644)).To(Succeed())

		err := fetch.Extract(archive, filepath.Join(dir, "out"))
		Expect(errors.Is(err, fetch.ErrArchive)).To(BeTrue())
	})

	It("rejects entries escaping the destination", func() {
		archive := filepath.Join(dir, "evil.zip")
		writeZip(archive, map[string]string{"../evil.txt": "x"})

		err := fetch.Extract(archive, filepath.Join(dir, "out"))
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, fetch.ErrArchive)).To(BeTrue())
		Expect(filepath.Join(dir, "evil.txt")).NotTo(BeAnExistingFile())
	})
})

var _ = Describe("Session", func() {
	It("removes the archive and extraction directory after a failed extraction", func() {
		session, err := fetch.NewSession("fetch-test-*", "pkg.zip", "extracted")
		Expect(err).NotTo(HaveOccurred())

		Expect(os.WriteFile(session.ArchivePath, []byte("PK\x03\x04 garbage"), 0o644)).To(Succeed())

		Expect(session.Extract()).NotTo(Succeed())
		Expect(session.Cleanup()).To(Succeed())

		Expect(session.ArchivePath).NotTo(BeAnExistingFile())
		Expect(session.ExtractedDir).NotTo(BeAnExistingFile())
		Expect(session.TempRoot).NotTo(BeAnExistingFile())
	})

	It("keeps the caller's directory for sessions created in place", func() {
		dir := GinkgoT().TempDir()
		session := fetch.NewSessionIn(dir, "pkg.zip", "extracted")

		writeZip(session.ArchivePath, map[string]string{"a.txt": "a"})
		Expect(session.Extract()).To(Succeed())
		Expect(session.Cleanup()).To(Succeed())

		Expect(dir).To(BeADirectory())
		Expect(session.ArchivePath).NotTo(BeAnExistingFile())
		Expect(session.ExtractedDir).NotTo(BeAnExistingFile())
	})

	It("discards only the archive", func() {
		dir := GinkgoT().TempDir()
		session := fetch.NewSessionIn(dir, "pkg.zip", "extracted")

		writeZip(session.ArchivePath, map[string]string{"a.txt": "a"})
		Expect(session.Extract()).To(Succeed())
		Expect(session.DiscardArchive()).To(Succeed())

		Expect(session.ArchivePath).NotTo(BeAnExistingFile())
		Expect(filepath.Join(session.ExtractedDir, "a.txt")).To(BeARegularFile())
	})
})
