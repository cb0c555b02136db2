// Package helperscript renders the update helper scripts that replace the
// launcher's files after it exits.
//
// Every dialect takes the same seven positional arguments:
//
//	targetDir stagedDir mainPid relaunchPath relaunchArgs relaunchCwd logPath
//
// and runs wait-for-pid, wait-for-unlock, copy loop, staging cleanup and
// relaunch, logging each step to logPath.
package helperscript

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"mvdan.cc/sh/v3/syntax"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Dialect is a helper script flavour.
type Dialect int

const (
	// PowerShell is the preferred Windows dialect.
	PowerShell Dialect = iota
	// Cmd runs where PowerShell scripts are blocked by policy.
	Cmd
	// Shell is the POSIX sh dialect for non-Windows hosts.
	Shell
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case PowerShell:
		return "powershell"
	case Cmd:
		return "cmd"
	default:
		return "sh"
	}
}

// FileName returns the script file name for the dialect.
func (d Dialect) FileName() string {
	switch d {
	case PowerShell:
		return "do_update.ps1"
	case Cmd:
		return "do_update.cmd"
	default:
		return "do_update.sh"
	}
}

// Interpreter returns the program that runs the dialect.
func (d Dialect) Interpreter() string {
	switch d {
	case PowerShell:
		return "powershell.exe"
	case Cmd:
		return "cmd.exe"
	default:
		return "/bin/sh"
	}
}

// ProbeArgs returns interpreter arguments that start it and exit 0 at once.
func (d Dialect) ProbeArgs() []string {
	switch d {
	case PowerShell:
		return []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", "exit 0"}
	case Cmd:
		return []string{"/d", "/c", "exit 0"}
	default:
		return []string{"-c", "exit 0"}
	}
}

func (d Dialect) crlf() bool {
	return d == PowerShell || d == Cmd
}

// Dialects returns the dialects for goos, most preferred first.
func Dialects(goos string) []Dialect {
	if goos == "windows" {
		return []Dialect{PowerShell, Cmd}
	}

	return []Dialect{Shell}
}

// Params are the timing constants baked into the scripts.
type Params struct {
	CopyAttempts    int
	BackoffStepMs   int
	PidWaitSeconds  int
	SettleMs        int
	UnlockTimeoutMs int
	UnlockBaseMs    int
	UnlockStepMs    int
	UnlockPollMs    int
	BenignExitMax   int
}

// DefaultParams returns the standard helper timings.
func DefaultParams() Params {
	return Params{
		CopyAttempts:    10,
		BackoffStepMs:   500,
		PidWaitSeconds:  30,
		SettleMs:        500,
		UnlockTimeoutMs: 15000,
		UnlockBaseMs:    2000,
		UnlockStepMs:    300,
		UnlockPollMs:    200,
		BenignExitMax:   7,
	}
}

// Render returns the script text for d. Windows dialects use CRLF endings.
func Render(d Dialect, params Params) ([]byte, error) {
	name := "templates/" + d.FileName() + ".tmpl"

	tmpl, err := template.ParseFS(templatesFS, name)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return nil, errors.Wrapf(err, "rendering %s", d.FileName())
	}

	if !d.crlf() {
		return buf.Bytes(), nil
	}

	text := strings.ReplaceAll(buf.String(), "\r\n", "\n")

	return []byte(strings.ReplaceAll(text, "\n", "\r\n")), nil
}

// Write renders d into dir and returns the script path.
func Write(dir string, d Dialect, params Params) (string, error) {
	data, err := Render(d, params)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, d.FileName())

	//nolint:gosec // G306: the script must be executable by the helper process
	if err := os.WriteFile(path, data, 0o755); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}

	return path, nil
}

// Command returns the program and argument vector that run scriptPath with
// the helper arguments.
func Command(d Dialect, scriptPath string, args []string) (string, []string) {
	var argv []string

	switch d {
	case PowerShell:
		argv = []string{
			"-NoProfile",
			"-ExecutionPolicy", "Bypass",
			"-WindowStyle", "Hidden",
			"-File", scriptPath,
		}
	case Cmd:
		argv = []string{"/c", scriptPath}
	default:
		argv = []string{scriptPath}
	}

	return d.Interpreter(), append(argv, args...)
}

// QuoteWindows joins args into one command line for ShellExecute, parsed
// back by CommandLineToArgvW rules. Every argument is double-quoted so empty
// arguments keep their position.
func QuoteWindows(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteWindowsArg(a)
	}

	return strings.Join(quoted, " ")
}

// quoteWindowsArg doubles every backslash run that precedes a quote or the
// closing quote, and escapes embedded quotes as \".
func quoteWindowsArg(arg string) string {
	var b strings.Builder

	b.Grow(len(arg) + 2)
	b.WriteByte('"')

	slashes := 0

	for i := range len(arg) {
		c := arg[i]

		switch c {
		case '\\':
			slashes++
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes+1))

			slashes = 0
		default:
			slashes = 0
		}

		b.WriteByte(c)
	}

	b.WriteString(strings.Repeat(`\`, slashes))
	b.WriteByte('"')

	return b.String()
}

// QuotePOSIX joins args into one POSIX shell command line.
func QuotePOSIX(args []string) (string, error) {
	quoted := make([]string, len(args))

	for i, a := range args {
		if a == "" {
			quoted[i] = "''"

			continue
		}

		q, err := syntax.Quote(a, syntax.LangPOSIX)
		if err != nil {
			return "", errors.Wrapf(err, "quoting argument %d", i)
		}

		quoted[i] = q
	}

	return strings.Join(quoted, " "), nil
}
