// Package reporters provides output formatting for doctor check results
package reporters

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
)

// categoryOrder defines the display order for categories
var categoryOrder = []doctor.Category{
	doctor.CategoryInstall,
	doctor.CategoryLauncher,
	doctor.CategoryStaging,
	doctor.CategoryConfig,
	doctor.CategoryTools,
	doctor.CategoryNetwork,
}

// categoryNames maps categories to display names
var categoryNames = map[doctor.Category]string{
	doctor.CategoryInstall:  "Install",
	doctor.CategoryLauncher: "Launcher",
	doctor.CategoryStaging:  "Staging",
	doctor.CategoryConfig:   "Configuration",
	doctor.CategoryTools:    "Update Helpers",
	doctor.CategoryNetwork:  "Network",
}

// SimpleReporter provides simple checklist-style output
type SimpleReporter struct {
	out io.Writer
}

// NewSimpleReporter creates a new SimpleReporter writing to out
func NewSimpleReporter(out io.Writer) *SimpleReporter {
	return &SimpleReporter{out: out}
}

// Report outputs the results in a simple checklist format
func (r *SimpleReporter) Report(results []doctor.CheckResult, verbose bool) {
	fmt.Fprintln(r.out, "Checking realms-launcher health...")
	fmt.Fprintln(r.out)

	r.printCategories(groupByCategory(results), verbose)
	r.printSummary(results)
}

// groupByCategory groups results by their category
func groupByCategory(results []doctor.CheckResult) map[doctor.Category][]doctor.CheckResult {
	categoryMap := make(map[doctor.Category][]doctor.CheckResult)

	for _, result := range results {
		categoryMap[result.Category] = append(categoryMap[result.Category], result)
	}

	return categoryMap
}

// getCategoryName returns the display name for a category
func getCategoryName(category doctor.Category) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}

	// Fallback: capitalize first letter manually for unknown categories
	s := string(category)
	if len(s) == 0 {
		return "Other"
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

// printCategories prints results grouped by category in defined order
func (r *SimpleReporter) printCategories(categoryMap map[doctor.Category][]doctor.CheckResult, verbose bool) {
	// Print categories in defined order
	for _, category := range categoryOrder {
		categoryResults, ok := categoryMap[category]
		if !ok || len(categoryResults) == 0 {
			continue
		}

		fmt.Fprintf(r.out, "%s:\n", getCategoryName(category))

		for _, result := range categoryResults {
			r.printResult(result, verbose)
		}

		fmt.Fprintln(r.out)
	}

	// Print any unknown categories
	for category, categoryResults := range categoryMap {
		if slices.Contains(categoryOrder, category) {
			continue
		}

		fmt.Fprintf(r.out, "%s:\n", getCategoryName(category))

		for _, result := range categoryResults {
			r.printResult(result, verbose)
		}

		fmt.Fprintln(r.out)
	}
}

// printResult prints a single check result
func (r *SimpleReporter) printResult(result doctor.CheckResult, verbose bool) {
	icon := getStatusIcon(result)

	// Print status line
	fmt.Fprintf(r.out, "  %s %s", icon, result.Name)

	if result.Message != "" {
		fmt.Fprintf(r.out, " - %s", result.Message)
	}

	fmt.Fprintln(r.out)

	// Print details in verbose mode
	if verbose && len(result.Details) > 0 {
		r.printDetails(result.Details)
	}

	// Print fix suggestion
	if result.HasFix() && result.Status == doctor.StatusFail {
		fmt.Fprintln(r.out, "     → Run: realms-launcher doctor --fix")
	}
}

// printDetails prints detail lines
func (r *SimpleReporter) printDetails(details []string) {
	for _, detail := range details {
		fmt.Fprintf(r.out, "     %s\n", detail)
	}
}

// printSummary prints the summary line
func (r *SimpleReporter) printSummary(results []doctor.CheckResult) {
	errorCount, warningCount, passedCount := countResults(results)

	fmt.Fprintf(r.out, "Summary: %d error(s), %d warning(s), %d passed\n",
		errorCount, warningCount, passedCount)
}

// getStatusIcon returns the appropriate icon for a check result
func getStatusIcon(result doctor.CheckResult) string {
	switch result.Status {
	case doctor.StatusPass:
		return "✅"
	case doctor.StatusFail:
		switch result.Severity {
		case doctor.SeverityError:
			return "❌"
		case doctor.SeverityWarning:
			return "⚠️"
		default:
			return "ℹ️"
		}
	case doctor.StatusSkipped:
		return "⊘"
	default:
		return "?"
	}
}

// countResults counts errors, warnings, and passed checks
func countResults(results []doctor.CheckResult) (errors, warnings, passed int) {
	for _, result := range results {
		switch {
		case result.IsPassed():
			passed++
		case result.IsError():
			errors++
		case result.IsWarning():
			warnings++
		}
	}

	return errors, warnings, passed
}
