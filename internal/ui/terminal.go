package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"

	"github.com/smykla-skalski/realms-launcher/internal/color"
)

const progressBarWidth = 30

// Terminal prints status lines and a progress bar to a writer. On a TTY the
// bar is redrawn in place; otherwise only every tenth percent is printed.
type Terminal struct {
	out   io.Writer
	tty   bool
	theme color.Theme

	mu       sync.Mutex
	started  time.Time
	lastStep int
	inBar    bool
}

// NewTerminal creates a Terminal writing to out.
func NewTerminal(out io.Writer, tty bool, theme color.Theme) *Terminal {
	return &Terminal{
		out:      out,
		tty:      tty,
		theme:    theme,
		started:  time.Now(),
		lastStep: -1,
	}
}

// Status prints a status line, colored by its wording.
func (t *Terminal) Status(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.endBar()
	t.lastStep = -1

	_, _ = fmt.Fprintln(t.out, t.styleFor(text).Render(text))
}

// Progress draws the progress bar for percent.
func (t *Terminal) Progress(percent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if percent < 0 {
		percent = 0
	}

	if percent > 100 {
		percent = 100
	}

	if !t.tty {
		step := int(percent) / 10
		if step == t.lastStep {
			return
		}

		t.lastStep = step
		_, _ = fmt.Fprintf(t.out, "  %3.0f%%\n", percent)

		return
	}

	filled := int(percent / 100 * progressBarWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", progressBarWidth-filled)

	_, _ = fmt.Fprintf(t.out, "\r  [%s] %5.1f%%", t.theme.Progress.Render(bar), percent)
	t.inBar = true

	if percent >= 100 {
		t.endBar()
	}
}

// Done prints a closing line with the elapsed time.
func (t *Terminal) Done(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.endBar()

	elapsed := durafmt.Parse(time.Since(t.started).Round(time.Second)).LimitFirstN(2)
	_, _ = fmt.Fprintf(t.out, "%s %s\n", text, t.theme.Muted.Render("("+elapsed.String()+")"))
}

// StatusFunc returns t as a StatusFunc.
func (t *Terminal) StatusFunc() StatusFunc {
	return t.Status
}

// ProgressFunc returns t as a ProgressFunc.
func (t *Terminal) ProgressFunc() ProgressFunc {
	return t.Progress
}

func (t *Terminal) endBar() {
	if t.inBar {
		_, _ = fmt.Fprintln(t.out)
		t.inBar = false
	}
}

func (t *Terminal) styleFor(text string) lipgloss.Style {
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, "error") || strings.Contains(lower, "failed"):
		return t.theme.Fail
	case strings.HasPrefix(lower, "warning"):
		return t.theme.Warning
	case strings.Contains(lower, "success") || strings.Contains(lower, "up-to-date"):
		return t.theme.Pass
	default:
		return t.theme.Info
	}
}
