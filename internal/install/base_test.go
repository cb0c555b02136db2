package install_test

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/install"
)

var _ = Describe("ReadBaseVersion", func() {
	var baseDir string

	BeforeEach(func() {
		baseDir = GinkgoT().TempDir()
	})

	It("defaults when the strings file is absent", func() {
		Expect(install.ReadBaseVersion(baseDir)).To(Equal("0.0.0"))
	})

	It("skips comment lines", func() {
		writeTree(baseDir, map[string]string{
			"data/lotr.str": "// Age of the Ring Version 9.9\n" +
				"APT:Title\n" +
				"\"Age of the Ring Version 8.3.1 - Translated\"\n" +
				"END\n",
		})

		Expect(install.ReadBaseVersion(baseDir)).To(Equal("8.3.1"))
	})

	It("matches case-insensitively", func() {
		writeTree(baseDir, map[string]string{"data/lotr.str": "age of the ring version 8.4"})

		Expect(install.ReadBaseVersion(baseDir)).To(Equal("8.4"))
	})

	It("defaults when no line declares a version", func() {
		writeTree(baseDir, map[string]string{"data/lotr.str": "nothing here\n"})

		Expect(install.ReadBaseVersion(baseDir)).To(Equal("0.0.0"))
	})
})

var _ = Describe("ValidateInstallFolder", func() {
	It("accepts a folder with the base dependency", func() {
		root := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(root, "aotr"), 0o755)).To(Succeed())

		Expect(install.ValidateInstallFolder(root, "aotr")).To(Succeed())
	})

	It("rejects a folder without the base dependency", func() {
		err := install.ValidateInstallFolder(GinkgoT().TempDir(), "aotr")

		Expect(errors.Is(err, install.ErrBaseFolderMissing)).To(BeTrue())
	})

	It("rejects a missing folder", func() {
		err := install.ValidateInstallFolder(filepath.Join(GinkgoT().TempDir(), "nope"), "aotr")

		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, install.ErrBaseFolderMissing)).To(BeFalse())
	})
})
