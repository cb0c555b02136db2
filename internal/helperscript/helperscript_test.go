package helperscript_test

import (
	"bytes"
	"os"
	osexec "os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	"github.com/smykla-skalski/realms-launcher/internal/helperscript"
)

var _ = Describe("Render", func() {
	params := helperscript.DefaultParams()

	It("renders a POSIX script that parses", func() {
		data, err := helperscript.Render(helperscript.Shell, params)
		Expect(err).NotTo(HaveOccurred())

		parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
		_, err = parser.Parse(bytes.NewReader(data), "do_update.sh")
		Expect(err).NotTo(HaveOccurred())

		script := string(data)
		Expect(script).To(HavePrefix("#!/bin/sh\n"))
		Expect(script).To(ContainSubstring(`while [ "$i" -le 10 ]`))
		Expect(script).To(ContainSubstring("sleep_ms $((500 * i))"))
		Expect(script).To(ContainSubstring("wait_unlocked $((2000 + 300 * i))"))
		Expect(script).NotTo(ContainSubstring("{{"))
		Expect(script).NotTo(ContainSubstring("\r\n"))
	})

	It("renders PowerShell with CRLF endings and an additive robocopy", func() {
		data, err := helperscript.Render(helperscript.PowerShell, params)
		Expect(err).NotTo(HaveOccurred())

		script := string(data)
		Expect(script).To(HavePrefix("param(\r\n"))
		Expect(strings.Count(script, "\n")).To(Equal(strings.Count(script, "\r\n")))
		Expect(script).To(ContainSubstring(`robocopy "$src" "$dst" /E `))
		Expect(script).NotTo(ContainSubstring("/MIR"))
		Expect(script).To(ContainSubstring("if ($code -le 7)"))
		Expect(script).To(ContainSubstring("Wait-Process -Id $pidInt -Timeout 30"))
		Expect(script).To(ContainSubstring("Copy-Item"))
	})

	It("renders cmd with the same positional arguments", func() {
		data, err := helperscript.Render(helperscript.Cmd, params)
		Expect(err).NotTo(HaveOccurred())

		script := string(data)
		for i, name := range []string{
			"TargetDir", "StagedDir", "MainPid", "RelaunchPath",
			"RelaunchArgs", "RelaunchCwd", "LogPath",
		} {
			Expect(script).To(ContainSubstring(`set "%s=%%~%d"`, name, i+1))
		}

		Expect(script).To(ContainSubstring("if %rc% LEQ 7 goto :copy_ok"))
		Expect(script).To(ContainSubstring("xcopy "))
		Expect(script).To(ContainSubstring("/E /I /Y"))
	})

	It("renders cmd without delayed expansion so paths may contain exclamation marks", func() {
		data, err := helperscript.Render(helperscript.Cmd, params)
		Expect(err).NotTo(HaveOccurred())

		script := string(data)
		Expect(strings.ToLower(script)).NotTo(ContainSubstring("enabledelayedexpansion"))
		Expect(script).To(ContainSubstring("setlocal enableextensions\r\n"))
		Expect(script).NotTo(MatchRegexp(`![A-Za-z]+!`))
		Expect(script).To(ContainSubstring("call :wait_unlocked %unlockMs%"))
	})

	It("writes the script into a directory", func() {
		dir := GinkgoT().TempDir()

		path, err := helperscript.Write(dir, helperscript.Shell, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, "do_update.sh")))
		Expect(path).To(BeARegularFile())
	})
})

var _ = Describe("Dialects", func() {
	It("prefers PowerShell on Windows", func() {
		Expect(helperscript.Dialects("windows")).To(Equal([]helperscript.Dialect{
			helperscript.PowerShell, helperscript.Cmd,
		}))
	})

	It("uses sh elsewhere", func() {
		Expect(helperscript.Dialects("linux")).To(Equal([]helperscript.Dialect{helperscript.Shell}))
	})

	It("builds interpreter command lines", func() {
		name, argv := helperscript.Command(helperscript.Cmd, `C:\t\do_update.cmd`, []string{"a", "b"})
		Expect(name).To(Equal("cmd.exe"))
		Expect(argv).To(Equal([]string{"/c", `C:\t\do_update.cmd`, "a", "b"}))

		name, argv = helperscript.Command(helperscript.PowerShell, "x.ps1", []string{"a"})
		Expect(name).To(Equal("powershell.exe"))
		Expect(argv).To(ContainElements("-File", "x.ps1"))
		Expect(argv[len(argv)-1]).To(Equal("a"))
	})
})

var _ = Describe("quoting", func() {
	args := []string{
		`C:\Program Files\Realms Launcher`,
		"",
		"4242",
		`say "hi"`,
		"it's $HOME `date`",
	}

	It("escapes embedded quotes for Windows", func() {
		Expect(helperscript.QuoteWindows([]string{`a b`, "", `say "hi"`})).
			To(Equal(`"a b" "" "say \"hi\""`))
	})

	It("doubles backslashes before a closing quote", func() {
		Expect(helperscript.QuoteWindows([]string{`C:\`, `C:\Temp\staged`})).
			To(Equal(`"C:\\" "C:\Temp\staged"`))
	})

	DescribeTable("produces a Windows command line that splits back to the original arguments",
		func(in []string) {
			Expect(splitWindowsCommandLine(helperscript.QuoteWindows(in))).To(Equal(in))
		},
		Entry("launcher at a drive root", []string{
			`C:\`, `C:\Temp\staged`, "42", `C:\launcher.exe`, "", `C:\`, `C:\Temp\u.log`,
		}),
		Entry("quotes next to backslashes", []string{`a\"b`, `a\\"b`, `"`, `\\`}),
		Entry("relaunch arguments ending in a backslash", []string{`--dir D:\Games\`, "x"}),
		Entry("only empty arguments", []string{"", ""}),
		Entry("the shared argument set", args),
	)

	It("produces POSIX words that parse back to the original arguments", func() {
		line, err := helperscript.QuotePOSIX(args)
		Expect(err).NotTo(HaveOccurred())

		file, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).
			Parse(strings.NewReader("helper "+line), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(file.Stmts).To(HaveLen(1))

		call, ok := file.Stmts[0].Cmd.(*syntax.CallExpr)
		Expect(ok).To(BeTrue())
		Expect(call.Args).To(HaveLen(len(args) + 1))

		for i, word := range call.Args[1:] {
			got, err := expand.Literal(nil, word)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(args[i]))
		}
	})
})

var _ = Describe("POSIX helper run", func() {
	var (
		root      string
		targetDir string
		stagedDir string
		logPath   string
	)

	BeforeEach(func() {
		if runtime.GOOS == "windows" {
			Skip("POSIX helper")
		}

		root = GinkgoT().TempDir()
		targetDir = filepath.Join(root, "app")
		stagedDir = filepath.Join(root, "update", "staged")
		logPath = filepath.Join(root, "update.log")

		Expect(os.MkdirAll(filepath.Join(targetDir, "data"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(targetDir, "launcher"), []byte("old"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(targetDir, "data", "user.cfg"), []byte("mine"), 0o644)).To(Succeed())

		Expect(os.MkdirAll(filepath.Join(stagedDir, "lib"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(stagedDir, "launcher"), []byte("new"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(stagedDir, "lib", "x.so"), []byte("lib"), 0o644)).To(Succeed())
	})

	runHelper := func(relaunchPath, relaunchArgs string) {
		script, err := helperscript.Write(filepath.Join(root, "update"), helperscript.Shell, helperscript.DefaultParams())
		Expect(err).NotTo(HaveOccurred())

		name, argv := helperscript.Command(helperscript.Shell, script, []string{
			targetDir, stagedDir, "0", relaunchPath, relaunchArgs, targetDir, logPath,
		})

		out, err := osexec.Command(name, argv...).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), string(out))
	}

	It("copies additively, removes staging and logs", func() {
		runHelper("", "")

		Expect(os.ReadFile(filepath.Join(targetDir, "launcher"))).To(BeEquivalentTo("new"))
		Expect(os.ReadFile(filepath.Join(targetDir, "lib", "x.so"))).To(BeEquivalentTo("lib"))
		Expect(os.ReadFile(filepath.Join(targetDir, "data", "user.cfg"))).To(BeEquivalentTo("mine"))
		Expect(stagedDir).NotTo(BeADirectory())

		logData, err := os.ReadFile(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(logData)).To(ContainSubstring("cp exit code = 0"))
		Expect(string(logData)).To(ContainSubstring("Relaunch skipped"))
		Expect(string(logData)).To(ContainSubstring("==== Update helper finished ===="))
	})

	It("relaunches from the working directory", func() {
		relaunch := filepath.Join(stagedDir, "relaunch.sh")
		Expect(os.WriteFile(relaunch, []byte("#!/bin/sh\npwd > relaunched.txt\necho \"$1\" >> relaunched.txt\n"), 0o755)).
			To(Succeed())

		runHelper(filepath.Join(targetDir, "relaunch.sh"), "--from-update")

		marker := filepath.Join(targetDir, "relaunched.txt")
		Eventually(func() string {
			data, _ := os.ReadFile(marker)

			return string(data)
		}).WithTimeout(10 * time.Second).Should(ContainSubstring("--from-update"))
	})
})

var _ = Describe("Dialect", func() {
	It("probes every interpreter with a command that exits at once", func() {
		Expect(helperscript.Shell.ProbeArgs()).To(Equal([]string{"-c", "exit 0"}))
		Expect(helperscript.Cmd.ProbeArgs()).To(Equal([]string{"/d", "/c", "exit 0"}))
		Expect(helperscript.PowerShell.ProbeArgs()).To(ContainElements("-NoProfile", "exit 0"))
	})
})

// splitWindowsCommandLine splits line the way CommandLineToArgvW does.
func splitWindowsCommandLine(line string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		inArg   bool
	)

	for i := 0; i < len(line); {
		c := line[i]

		switch {
		case c == '\\':
			n := 0
			for i < len(line) && line[i] == '\\' {
				n++
				i++
			}

			if i < len(line) && line[i] == '"' {
				cur.WriteString(strings.Repeat(`\`, n/2))

				if n%2 == 1 {
					cur.WriteByte('"')
					i++
				}
			} else {
				cur.WriteString(strings.Repeat(`\`, n))
			}

			inArg = true

			continue
		case c == '"':
			if inQuote && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')

				i += 2
				inArg = true

				continue
			}

			inQuote = !inQuote
			inArg = true
		case (c == ' ' || c == '\t') && !inQuote:
			if inArg {
				out = append(out, cur.String())
				cur.Reset()

				inArg = false
			}
		default:
			cur.WriteByte(c)

			inArg = true
		}

		i++
	}

	if inArg {
		out = append(out, cur.String())
	}

	return out
}
