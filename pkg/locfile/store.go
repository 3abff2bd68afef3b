// Package locfile loads localized resource files that map error codes and
// message keys to template strings.
//
// A resource file is an ini file named {base}_{language}.ini with two
// sections:
//
//	[error_codes]
//	101=This is error 101
//
//	[messages]
//	hello=Hello world.
//
// Template strings may carry {{COLOR_*}} markers and {name} placeholders.
// Both pass through lookups untouched; rendering and substitution are the
// caller's job (see pkg/ansi for the marker side).
package locfile

import (
	"fmt"
	"path/filepath"
	"strconv"

	"gopkg.in/ini.v1"
)

const (
	// DefaultLanguage is the fallback language when no resource file exists
	// for the requested language.
	DefaultLanguage = "english"

	errorCodesSection = "error_codes"
	messagesSection   = "messages"
)

// Store holds the error code and message tables for one (base name, language)
// pair. It is populated once at construction and read-only afterwards, so it
// is safe for concurrent use without locking.
type Store struct {
	baseName          string
	requestedLanguage string
	resolvedLanguage  string
	path              string
	errorCodes        map[int]string
	messages          map[string]string
}

// New loads the resource file for the requested language from dir. If that
// file is absent or malformed the store falls back to DefaultLanguage; if
// neither file loads, New returns ErrResourceNotFound and no store.
func New(dir, baseName, language string) (*Store, error) {
	if baseName == "" || language == "" {
		return nil, fmt.Errorf("base name and language must be non-empty")
	}

	s := &Store{
		baseName:          baseName,
		requestedLanguage: language,
	}

	for _, lang := range candidateLanguages(language) {
		path := ResourcePath(dir, baseName, lang)
		errorCodes, messages, err := loadFile(path)
		if err != nil {
			// Malformed files are treated the same as missing ones so a
			// broken translation does not take the application down.
			continue
		}
		s.resolvedLanguage = lang
		s.path = path
		s.errorCodes = errorCodes
		s.messages = messages
		return s, nil
	}

	return nil, fmt.Errorf("no resource file for base %q in %s (languages tried: %v): %w",
		baseName, dir, candidateLanguages(language), ErrResourceNotFound)
}

// ResourcePath returns the expected file path for one (base name, language)
// pair, following the {base}_{language}.ini naming convention.
func ResourcePath(dir, baseName, language string) string {
	return filepath.Join(dir, baseName+"_"+language+".ini")
}

func candidateLanguages(requested string) []string {
	if requested == DefaultLanguage {
		return []string{DefaultLanguage}
	}
	return []string{requested, DefaultLanguage}
}

// loadFile parses one resource file into its two tables. Either section may
// be absent, in which case its table is empty.
func loadFile(path string) (map[int]string, map[string]string, error) {
	// Inline ; and # must stay part of the template text, and quotes are
	// template text too, matching configparser's reading of these files.
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:        true,
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	errorCodes := make(map[int]string)
	if sec, secErr := f.GetSection(errorCodesSection); secErr == nil {
		for _, key := range sec.Keys() {
			code, convErr := strconv.Atoi(key.Name())
			if convErr != nil {
				return nil, nil, fmt.Errorf("%s: error_codes key %q is not an integer: %w",
					path, key.Name(), ErrMalformedResource)
			}
			errorCodes[code] = key.Value()
		}
	}

	messages := make(map[string]string)
	if sec, secErr := f.GetSection(messagesSection); secErr == nil {
		for _, key := range sec.Keys() {
			messages[key.Name()] = key.Value()
		}
	}

	return errorCodes, messages, nil
}

// GetErrorMsg returns the raw template registered for code. The template is
// returned exactly as authored; no fallback string is synthesized.
func (s *Store) GetErrorMsg(code int) (string, error) {
	msg, ok := s.errorCodes[code]
	if !ok {
		return "", fmt.Errorf("%s: error code %d: %w", s.path, code, ErrUnknownErrorCode)
	}
	return msg, nil
}

// GetMsg returns the raw template registered for the message key.
func (s *Store) GetMsg(key string) (string, error) {
	msg, ok := s.messages[key]
	if !ok {
		return "", fmt.Errorf("%s: message key %q: %w", s.path, key, ErrUnknownMessageKey)
	}
	return msg, nil
}

// ResolvedLanguage returns the language that was actually loaded. It differs
// from RequestedLanguage when construction fell back to DefaultLanguage, so
// callers can detect and log silent fallbacks.
func (s *Store) ResolvedLanguage() string {
	return s.resolvedLanguage
}

// RequestedLanguage returns the language the store was asked for.
func (s *Store) RequestedLanguage() string {
	return s.requestedLanguage
}

// BaseName returns the resource file family prefix.
func (s *Store) BaseName() string {
	return s.baseName
}

// Path returns the path of the resource file that was loaded.
func (s *Store) Path() string {
	return s.path
}

// ErrorCodeCount returns the number of error code entries.
func (s *Store) ErrorCodeCount() int {
	return len(s.errorCodes)
}

// MessageCount returns the number of message entries.
func (s *Store) MessageCount() int {
	return len(s.messages)
}
