package reporters

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/smykla-skalski/realms-launcher/internal/color"
	"github.com/smykla-skalski/realms-launcher/internal/doctor"
)

const (
	headerCheck   = "Check"
	headerResult  = "Result"
	headerFix     = "Fix"
	headerDetails = "Details"

	fixHint = "--fix"

	minTableWidth  = 40
	minResultWidth = 20
	maxCheckWidth  = 28
	cellPadding    = 2 // one space on each side
	cellOverhead   = 3 // border plus padding
)

// TableReporter renders results as a bordered table with one block per
// category, colored by its theme.
type TableReporter struct {
	out   io.Writer
	theme color.Theme
	width int
	home  string
}

// TableOption configures a TableReporter.
type TableOption func(*TableReporter)

// WithWidth sets the terminal width the table is laid out for. Zero lets
// columns size to their content.
func WithWidth(width int) TableOption {
	return func(r *TableReporter) {
		r.width = width
	}
}

// WithHome sets the folder shown as ~ in messages.
func WithHome(dir string) TableOption {
	return func(r *TableReporter) {
		r.home = dir
	}
}

// NewTableReporter creates a TableReporter writing to out.
func NewTableReporter(out io.Writer, theme color.Theme, opts ...TableOption) *TableReporter {
	home, _ := os.UserHomeDir()

	r := &TableReporter{out: out, theme: theme, home: home}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Report renders results as a table followed by a summary line.
func (r *TableReporter) Report(results []doctor.CheckResult, verbose bool) {
	fmt.Fprintln(r.out, "Checking realms-launcher health...")
	fmt.Fprintln(r.out)

	if tbl := r.Render(results, verbose); tbl != "" {
		fmt.Fprintln(r.out, tbl)
		fmt.Fprintln(r.out)
	}

	fmt.Fprintln(r.out, Summary(results, r.theme))
}

// Render returns the table for results, or "" when there are none. The Fix
// column appears only when a failed check can be repaired by doctor --fix,
// and the Details column only in verbose mode.
func (r *TableReporter) Render(results []doctor.CheckResult, verbose bool) string {
	if len(results) == 0 {
		return ""
	}

	headers := tableHeaders(results, verbose)
	widths := columnWidths(r.width, results, headers)

	var buf bytes.Buffer

	opts := []tablewriter.Option{
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleRounded),
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenRows: tw.On},
			},
		})),
		tablewriter.WithPadding(tw.Padding{Left: " ", Right: " "}),
		tablewriter.WithConfig(tablewriter.NewConfigBuilder().
			WithTrimSpace(tw.Off).
			Row().Merging().WithMode(tw.MergeHorizontal).Build().
			Formatting().WithAutoWrap(tw.WrapNormal).Build().
			Build().Build()),
	}

	if widths != nil {
		cells := make(tw.Mapper[int, int], len(widths))
		for col, w := range widths {
			cells[col] = w + cellPadding
		}

		opts = append(opts, tablewriter.WithColumnWidths(cells))
	}

	t := tablewriter.NewTable(&buf, opts...)
	t.Header(headers)

	for _, g := range GroupResultsByCategory(results) {
		_ = t.Append(categoryRow(g, len(headers), r.theme))

		for _, res := range sortedBySeverity(g.Results) {
			_ = t.Append(r.resultRow(res, headers, widths))
		}
	}

	_ = t.Render()

	return strings.TrimRight(buf.String(), "\n")
}

func tableHeaders(results []doctor.CheckResult, verbose bool) []string {
	headers := []string{"", headerCheck, headerResult}

	if slices.ContainsFunc(results, doctor.CheckResult.IsFixable) {
		headers = append(headers, headerFix)
	}

	if verbose {
		headers = append(headers, headerDetails)
	}

	return headers
}

// categoryRow spans every column but the icon with the category name and how
// many of its checks passed.
func categoryRow(g categoryGroup, columns int, theme color.Theme) []string {
	_, _, passed := countResults(g.Results)

	label := theme.Header.Render(getCategoryName(g.Category)) +
		theme.Muted.Render(fmt.Sprintf(" (%d/%d ok)", passed, len(g.Results)))

	row := make([]string, columns)
	for i := 1; i < columns; i++ {
		row[i] = label
	}

	return row
}

func (r *TableReporter) resultRow(res doctor.CheckResult, headers []string, widths map[int]int) []string {
	row := make([]string, len(headers))

	for i, h := range headers {
		switch h {
		case "":
			row[i] = StyledIcon(res, r.theme)
		case headerCheck:
			name := res.Name
			if w, ok := widths[i]; ok {
				name = runewidth.Truncate(name, w, "…")
			}

			row[i] = r.theme.CheckName.Render(name)
		case headerResult:
			row[i] = r.shortenHome(res.Message)
		case headerFix:
			if res.IsFixable() {
				row[i] = r.theme.Info.Render(fixHint)
			}
		case headerDetails:
			row[i] = r.shortenHome(strings.Join(res.Details, "\n"))
		}

		if w, ok := widths[i]; ok && h != headerDetails {
			row[i] = padToWidth(row[i], w)
		}
	}

	return row
}

// columnWidths splits width between the columns named by headers. Returns
// nil when width is too small for a table, so columns size to content.
func columnWidths(width int, results []doctor.CheckResult, headers []string) map[int]int {
	if width < minTableWidth {
		return nil
	}

	checkW := runewidth.StringWidth(headerCheck)
	for _, res := range results {
		checkW = max(checkW, runewidth.StringWidth(res.Name))
	}

	checkW = min(checkW, maxCheckWidth)

	widths := map[int]int{0: 1, 1: checkW}
	available := width - len(headers)*cellOverhead - 1 - 1 - checkW

	resultCol, detailsCol := -1, -1

	for i, h := range headers {
		switch h {
		case headerResult:
			resultCol = i
		case headerFix:
			widths[i] = len(fixHint)
			available -= len(fixHint)
		case headerDetails:
			detailsCol = i
		}
	}

	if available < minResultWidth {
		return nil
	}

	if detailsCol < 0 {
		widths[resultCol] = available

		return widths
	}

	widths[resultCol] = max(minResultWidth, available/2)
	widths[detailsCol] = max(1, available-widths[resultCol])

	return widths
}

// padToWidth right-pads s with spaces so its visible width reaches w.
func padToWidth(s string, w int) string {
	visible := runewidth.StringWidth(ansi.Strip(s))
	if visible >= w {
		return s
	}

	return s + strings.Repeat(" ", w-visible)
}

func (r *TableReporter) shortenHome(s string) string {
	if r.home == "" {
		return s
	}

	return strings.ReplaceAll(s, r.home, "~")
}

// Summary returns the colored summary line, including how many failures
// doctor --fix can repair.
func Summary(results []doctor.CheckResult, theme color.Theme) string {
	errs, warnings, passed := countResults(results)

	skipped, fixes := 0, 0

	for _, r := range results {
		if r.IsSkipped() {
			skipped++
		}

		if r.IsFixable() {
			fixes++
		}
	}

	parts := []string{
		summaryPart(fmt.Sprintf("%d error(s)", errs), errs > 0, theme.Fail),
		summaryPart(fmt.Sprintf("%d warning(s)", warnings), warnings > 0, theme.Warning),
		theme.Pass.Render(fmt.Sprintf("%d passed", passed)),
	}

	if skipped > 0 {
		parts = append(parts, theme.Skip.Render(fmt.Sprintf("%d skipped", skipped)))
	}

	line := "Summary: " + strings.Join(parts, ", ")
	if fixes > 0 {
		line += theme.Muted.Render(fmt.Sprintf(" (%d fixable with realms-launcher doctor --fix)", fixes))
	}

	return line
}

func summaryPart(text string, active bool, style lipgloss.Style) string {
	if active {
		return style.Render(text)
	}

	return text
}

// StatusIcon returns a single-width icon for a check result. Emoji would
// break column alignment inside the table.
func StatusIcon(result doctor.CheckResult) string {
	switch {
	case result.IsPassed():
		return "✓"
	case result.IsError():
		return "✗"
	case result.IsWarning():
		return "!"
	case result.IsSkipped():
		return "-"
	case result.Status == doctor.StatusFail:
		return "i"
	default:
		return "?"
	}
}

// StyledIcon returns a StatusIcon colored by the theme.
func StyledIcon(result doctor.CheckResult, theme color.Theme) string {
	icon := StatusIcon(result)

	switch {
	case result.IsPassed():
		return theme.Pass.Render(icon)
	case result.IsError():
		return theme.Fail.Render(icon)
	case result.Status == doctor.StatusFail:
		return theme.Warning.Render(icon)
	case result.IsSkipped():
		return theme.Skip.Render(icon)
	default:
		return icon
	}
}

type categoryGroup struct {
	Category doctor.Category
	Results  []doctor.CheckResult
}

// GroupResultsByCategory groups results in display order. Unknown
// categories follow, sorted by name.
func GroupResultsByCategory(results []doctor.CheckResult) []categoryGroup {
	byCategory := groupByCategory(results)

	var groups []categoryGroup

	for _, cat := range categoryOrder {
		if rs, ok := byCategory[cat]; ok {
			groups = append(groups, categoryGroup{Category: cat, Results: rs})
			delete(byCategory, cat)
		}
	}

	for _, cat := range slices.Sorted(maps.Keys(byCategory)) {
		groups = append(groups, categoryGroup{Category: cat, Results: byCategory[cat]})
	}

	return groups
}

// sortedBySeverity orders errors first, then warnings, passes and skips,
// keeping registration order within each.
func sortedBySeverity(results []doctor.CheckResult) []doctor.CheckResult {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b doctor.CheckResult) int {
		return cmp.Compare(severityRank(a), severityRank(b))
	})

	return sorted
}

func severityRank(r doctor.CheckResult) int {
	switch {
	case r.IsError():
		return 0
	case r.IsWarning():
		return 1
	case r.IsSkipped():
		return 3
	default:
		return 2
	}
}
