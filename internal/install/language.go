package install

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/realms-launcher/internal/merge"
)

var (
	// ErrUnsupportedLanguage is returned for a language without a translation.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrLanguageFileMissing is returned when the translation is not installed.
	ErrLanguageFileMissing = errors.New("language file not found")
)

// languages maps display names to translation folder codes.
var languages = map[string]string{
	"English":   "en",
	"Português": "pt-br",
}

// Languages returns the supported display names, sorted.
func Languages() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// LanguageCode resolves a display name or translation code, case-insensitively.
func LanguageCode(name string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(name))

	for display, code := range languages {
		if lower == strings.ToLower(display) || lower == code {
			return code, nil
		}
	}

	switch {
	case strings.Contains(lower, "english"):
		return "en", nil
	case strings.Contains(lower, "portug"):
		return "pt-br", nil
	}

	return "", errors.Wrapf(ErrUnsupportedLanguage, "%q", name)
}

// ChangeLanguage activates the translation for lang by copying
// data/translations/<code>/lotr.str over data/lotr.str in managedDir.
func ChangeLanguage(managedDir, lang string) error {
	code, err := LanguageCode(lang)
	if err != nil {
		return err
	}

	dataDir := filepath.Join(managedDir, "data")
	src := filepath.Join(dataDir, "translations", code, baseStringsFile)

	if _, err := os.Stat(src); err != nil {
		return errors.Wrapf(ErrLanguageFileMissing, "%s", src)
	}

	if err := merge.CopyFile(src, filepath.Join(dataDir, baseStringsFile)); err != nil {
		return errors.Wrap(err, "failed to change language")
	}

	return nil
}
