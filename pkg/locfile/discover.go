package locfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

const resourceExt = ".ini"

// Languages lists the languages for which a resource file with the given base
// name exists in dir. The language is the final underscore-delimited segment
// of the file name; base names may themselves contain underscores, so
// my_app_french.ini lists "french" for base "my_app" but nothing for base
// "my".
func Languages(dir, baseName string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing resource directory %s: %w", dir, err)
	}

	prefix := baseName + "_"
	var languages []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, resourceExt) || !strings.HasPrefix(name, prefix) {
			continue
		}
		lang := strings.TrimSuffix(name[len(prefix):], resourceExt)
		// A remaining underscore means the file belongs to a longer base name.
		if lang == "" || strings.Contains(lang, "_") {
			continue
		}
		languages = append(languages, lang)
	}

	sort.Strings(languages)
	return languages, nil
}

// Lint parses a single resource file and reports contract violations
// directly, without the missing≈malformed leniency New applies. Intended for
// authoring-time checks on translation files.
func Lint(path string) error {
	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrResourceNotFound)
		}
		return fmt.Errorf("stat resource file: %w", statErr)
	}

	_, _, err := loadFile(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMalformedResource):
		return err
	default:
		// I/O failures keep their own error chain; only parse failures are
		// contract violations.
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return err
		}
		return fmt.Errorf("%v: %w", err, ErrMalformedResource)
	}
}
