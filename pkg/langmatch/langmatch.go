// Package langmatch selects a resource language from caller preferences.
//
// Resource languages are file-name segments, not necessarily BCP 47 tags:
// "english" and "en-US" are both valid. Exact name matches always win; names
// that do parse as tags additionally match related tags ("en-GB" request
// against an "en" file).
package langmatch

import "golang.org/x/text/language"

// FromHeader parses an Accept-Language header into language names in
// preference order. Malformed headers yield nil.
func FromHeader(header string) []string {
	if header == "" {
		return nil
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.String())
	}
	return names
}

// Pick returns the best available language for the requested preferences, in
// order. The second return is false when nothing matches.
func Pick(available []string, requested ...string) (string, bool) {
	if len(available) == 0 {
		return "", false
	}

	availableSet := make(map[string]struct{}, len(available))
	for _, name := range available {
		availableSet[name] = struct{}{}
	}
	for _, want := range requested {
		if _, ok := availableSet[want]; ok {
			return want, true
		}
	}

	// Tag-based matching for the BCP 47 shaped names.
	var tags []language.Tag
	var names []string
	for _, name := range available {
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, name)
	}
	if len(tags) == 0 {
		return "", false
	}

	matcher := language.NewMatcher(tags)
	for _, want := range requested {
		tag, err := language.Parse(want)
		if err != nil {
			continue
		}
		if _, index, conf := matcher.Match(tag); conf > language.No {
			return names[index], true
		}
	}

	return "", false
}
