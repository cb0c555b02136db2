package shortcut

import (
	"strings"

	"github.com/smykla-skalski/realms-launcher/internal/helperscript"
)

// WindowsArguments renders args for a .lnk Arguments field. Only arguments
// that need it are quoted, so flags stay bare as in -mod "C:\Games\realms".
func WindowsArguments(args []string) string {
	words := make([]string, len(args))

	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\"") {
			words[i] = a

			continue
		}

		words[i] = helperscript.QuoteWindows([]string{a})
	}

	return strings.Join(words, " ")
}
