package merge_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/merge"
)

var _ = Describe("ResolveSourceRoot", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("descends into a single wrapper directory", func() {
		writeTree(dir, map[string]string{"Realms-1.2/data/a.txt": "a"})

		Expect(merge.ResolveSourceRoot(dir, "")).To(Equal(filepath.Join(dir, "Realms-1.2")))
	})

	It("returns the extraction root when there are several entries", func() {
		writeTree(dir, map[string]string{"data/a.txt": "a", "readme.txt": "r"})

		Expect(merge.ResolveSourceRoot(dir, "")).To(Equal(dir))
	})

	It("does not descend into a single file", func() {
		writeTree(dir, map[string]string{"only.txt": "x"})

		Expect(merge.ResolveSourceRoot(dir, "")).To(Equal(dir))
	})

	It("finds a named folder nested inside a wrapper", func() {
		writeTree(dir, map[string]string{
			"Package-1.2/extras/notes.txt":     "n",
			"Package-1.2/content/realms/a.txt": "a",
		})

		Expect(merge.ResolveSourceRoot(dir, "realms")).
			To(Equal(filepath.Join(dir, "Package-1.2", "content", "realms")))
	})

	It("prefers the shallowest named folder", func() {
		writeTree(dir, map[string]string{
			"a/deep/realms/x.txt": "deep",
			"realms/y.txt":        "shallow",
		})

		Expect(merge.ResolveSourceRoot(dir, "realms")).To(Equal(filepath.Join(dir, "realms")))
	})

	It("falls back to the wrapper rule when the named folder is missing", func() {
		writeTree(dir, map[string]string{"Wrapper/data/a.txt": "a"})

		Expect(merge.ResolveSourceRoot(dir, "realms")).To(Equal(filepath.Join(dir, "Wrapper")))
	})
})

var _ = Describe("FindDirWithFile", func() {
	It("finds the directory holding the executable below a wrapper", func() {
		dir := GinkgoT().TempDir()
		writeTree(dir, map[string]string{"App-1.2/bin/App.exe": "exe", "App-1.2/readme.txt": "r"})

		Expect(merge.FindDirWithFile(dir, "App.exe")).To(Equal(filepath.Join(dir, "App-1.2", "bin")))
	})

	It("returns the root when it holds the file", func() {
		dir := GinkgoT().TempDir()
		writeTree(dir, map[string]string{"App.exe": "exe"})

		Expect(merge.FindDirWithFile(dir, "App.exe")).To(Equal(dir))
	})

	It("ignores directories named like the file", func() {
		dir := GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(dir, "x", "App.exe"), 0o755)).To(Succeed())

		Expect(merge.FindDirWithFile(dir, "App.exe")).To(BeEmpty())
	})
})
