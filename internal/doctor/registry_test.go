package doctor_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
)

var _ = Describe("Registry", func() {
	var registry *doctor.Registry

	BeforeEach(func() {
		registry = doctor.NewRegistry()
		registry.RegisterChecker(&stubChecker{name: "folder", category: doctor.CategoryInstall})
		registry.RegisterChecker(&stubChecker{name: "record", category: doctor.CategoryInstall})
		registry.RegisterChecker(&stubChecker{name: "writable", category: doctor.CategoryLauncher})
		registry.RegisterChecker(&stubChecker{name: "sh", category: doctor.CategoryTools})
	})

	Describe("Checkers", func() {
		It("returns all registered checkers", func() {
			Expect(registry.Checkers()).To(HaveLen(4))
			Expect(registry.CheckerCount()).To(Equal(4))
		})
	})

	Describe("CheckersForCategories", func() {
		It("returns checkers for specified categories", func() {
			checkers := registry.CheckersForCategories([]doctor.Category{doctor.CategoryInstall})
			Expect(checkers).To(HaveLen(2))

			for _, c := range checkers {
				Expect(c.Category()).To(Equal(doctor.CategoryInstall))
			}
		})

		It("returns checkers for multiple categories", func() {
			checkers := registry.CheckersForCategories([]doctor.Category{
				doctor.CategoryInstall,
				doctor.CategoryLauncher,
			})
			Expect(checkers).To(HaveLen(3))
		})

		It("returns all checkers when categories is empty", func() {
			Expect(registry.CheckersForCategories(nil)).To(HaveLen(4))
		})

		It("returns empty slice for unknown category", func() {
			Expect(registry.CheckersForCategories([]doctor.Category{"nonexistent"})).To(BeEmpty())
		})
	})

	Describe("RunAll", func() {
		It("keeps registration order and stamps categories", func() {
			results := registry.RunAll(context.Background())
			Expect(results).To(HaveLen(4))
			Expect(results[0].Name).To(Equal("folder"))
			Expect(results[2].Name).To(Equal("writable"))
			Expect(results[2].Category).To(Equal(doctor.CategoryLauncher))
		})
	})

	Describe("fixers", func() {
		It("looks fixers up by ID", func() {
			registry.RegisterFixer(&stubFixer{id: "clean"})

			fixer, ok := registry.GetFixer("clean")
			Expect(ok).To(BeTrue())
			Expect(fixer.ID()).To(Equal("clean"))

			_, ok = registry.GetFixer("missing")
			Expect(ok).To(BeFalse())
			Expect(registry.GetFixers()).To(HaveKey("clean"))
			Expect(registry.FixerCount()).To(Equal(1))
		})
	})
})
