package shortcut

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	desktopEntryExt = ".desktop"

	// Characters that force an Exec argument into double quotes.
	execReserved = " \t\n\"'\\><~|&;$*?#()`"
)

var (
	execQuoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	valueReplacer     = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
)

// DesktopEntryWriter writes freedesktop.org .desktop launchers.
type DesktopEntryWriter struct{}

// Ext implements Writer.
func (DesktopEntryWriter) Ext() string {
	return desktopEntryExt
}

// Write implements Writer.
func (DesktopEntryWriter) Write(path string, link Link) error {
	//nolint:gosec // G306: desktop launchers must be executable to be trusted
	if err := os.WriteFile(path, []byte(DesktopEntry(link)), 0o755); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}

// DesktopEntry renders link as a .desktop file.
func DesktopEntry(link Link) string {
	var b strings.Builder

	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Version=1.0\n")
	b.WriteString("Name=" + valueReplacer.Replace(link.Name) + "\n")

	if link.Description != "" {
		b.WriteString("Comment=" + valueReplacer.Replace(link.Description) + "\n")
	}

	b.WriteString("Exec=" + ExecLine(link.Target, link.Args) + "\n")

	if link.WorkingDir != "" {
		b.WriteString("Path=" + valueReplacer.Replace(link.WorkingDir) + "\n")
	}

	if link.Icon != "" {
		b.WriteString("Icon=" + valueReplacer.Replace(link.Icon) + "\n")
	}

	b.WriteString("Terminal=false\n")
	b.WriteString("Categories=Game;\n")

	return b.String()
}

// ExecLine renders target and args as the value of an Exec key, quoting
// arguments with reserved characters and escaping field codes.
func ExecLine(target string, args []string) string {
	words := make([]string, 0, len(args)+1)
	for _, a := range append([]string{target}, args...) {
		words = append(words, quoteExecArg(a))
	}

	line := valueReplacer.Replace(strings.Join(words, " "))

	return strings.ReplaceAll(line, "%", "%%")
}

func quoteExecArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, execReserved) {
		return arg
	}

	return `"` + execQuoteReplacer.Replace(arg) + `"`
}
