package prompt_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/prompt"
)

var _ = Describe("StdPrompter", func() {
	var out *bytes.Buffer

	newPrompter := func(input string) *prompt.StdPrompter {
		return prompt.NewPrompter(strings.NewReader(input), out)
	}

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	Describe("Input", func() {
		It("returns trimmed input", func() {
			v, err := newPrompter("  C:\\Games  \n").Input("Install folder", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(`C:\Games`))
			Expect(out.String()).To(Equal("Install folder: "))
		})

		It("falls back to the default", func() {
			v, err := newPrompter("\n").Input("Install folder", "/games")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("/games"))
			Expect(out.String()).To(Equal("Install folder [/games]: "))
		})

		It("rejects empty input without a default", func() {
			_, err := newPrompter("\n").Input("Install folder", "")
			Expect(err).To(MatchError(prompt.ErrEmptyInput))
		})

		It("accepts a last line without newline", func() {
			v, err := newPrompter("abc").Input("Name", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("abc"))
		})

		It("fails on closed input", func() {
			_, err := newPrompter("").Input("Name", "x")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Confirm", func() {
		DescribeTable("answers",
			func(input string, def, expected bool) {
				v, err := newPrompter(input).Confirm("Continue?", def)
				Expect(err).NotTo(HaveOccurred())
				Expect(v).To(Equal(expected))
			},
			Entry("yes", "y\n", false, true),
			Entry("YES", "YES\n", false, true),
			Entry("no", "no\n", true, false),
			Entry("default true", "\n", true, true),
			Entry("default false", "\n", false, false),
		)

		It("rejects anything else", func() {
			_, err := newPrompter("maybe\n").Confirm("Continue?", true)
			Expect(err).To(MatchError(prompt.ErrInvalidInput))
		})

		It("shows the default in the prompt", func() {
			_, _ = newPrompter("\n").Confirm("Continue?", true)
			Expect(out.String()).To(Equal("Continue? [Y/n]: "))
		})
	})

	Describe("Select", func() {
		options := []string{"English", "Deutsch", "Polski"}

		It("picks by number", func() {
			v, err := newPrompter("2\n").Select("Language", options, "English")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("Deutsch"))
		})

		It("picks by name regardless of case", func() {
			v, err := newPrompter("polski\n").Select("Language", options, "English")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("Polski"))
		})

		It("picks the default on empty input", func() {
			v, err := newPrompter("\n").Select("Language", options, "Deutsch")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("Deutsch"))
			Expect(out.String()).To(ContainSubstring("*  2) Deutsch"))
		})

		It("rejects empty input without a valid default", func() {
			_, err := newPrompter("\n").Select("Language", options, "Klingon")
			Expect(err).To(MatchError(prompt.ErrEmptyInput))
		})

		It("rejects out of range numbers", func() {
			_, err := newPrompter("9\n").Select("Language", options, "")
			Expect(err).To(MatchError(prompt.ErrInvalidInput))
		})

		It("rejects unknown names", func() {
			_, err := newPrompter("Elvish\n").Select("Language", options, "")
			Expect(err).To(MatchError(prompt.ErrInvalidInput))
		})

		It("needs options", func() {
			_, err := newPrompter("1\n").Select("Language", nil, "")
			Expect(err).To(MatchError(prompt.ErrNoOptions))
		})
	})
})
