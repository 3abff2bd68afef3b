// Package ansi turns the {{COLOR_*}} markers embedded in localized template
// strings into terminal escape sequences. It is the display side of the
// locfile contract: stores return templates verbatim, and callers decide here
// whether markers become colors (Render) or disappear (Strip).
package ansi

import "strings"

// SGR escape sequences for the supported color markers.
const (
	Black         = "\033[30m"
	Red           = "\033[31m"
	Green         = "\033[32m"
	Yellow        = "\033[33m"
	Blue          = "\033[34m"
	Magenta       = "\033[35m"
	Cyan          = "\033[36m"
	White         = "\033[37m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
	Reset         = "\033[0m"
)

// tokens maps marker names to their escape sequences. COLOR_NONE is the
// reset marker; templates are expected to end colored runs with it.
var tokens = map[string]string{
	"COLOR_BLACK":          Black,
	"COLOR_RED":            Red,
	"COLOR_GREEN":          Green,
	"COLOR_YELLOW":         Yellow,
	"COLOR_BLUE":           Blue,
	"COLOR_MAGENTA":        Magenta,
	"COLOR_CYAN":           Cyan,
	"COLOR_WHITE":          White,
	"COLOR_BRIGHT_RED":     BrightRed,
	"COLOR_BRIGHT_GREEN":   BrightGreen,
	"COLOR_BRIGHT_YELLOW":  BrightYellow,
	"COLOR_BRIGHT_BLUE":    BrightBlue,
	"COLOR_BRIGHT_MAGENTA": BrightMagenta,
	"COLOR_BRIGHT_CYAN":    BrightCyan,
	"COLOR_BRIGHT_WHITE":   BrightWhite,
	"COLOR_NONE":           Reset,
}

// Render expands known color markers into escape sequences and converts
// literal \n character pairs into newlines. Unknown {{...}} markers and
// {name} variable placeholders are left untouched.
func Render(s string) string {
	return replaceTokens(s, func(escape string) string { return escape })
}

// Strip removes known color markers and converts literal \n pairs into
// newlines, for output that should stay plain (files, pipes, logs).
func Strip(s string) string {
	return replaceTokens(s, func(string) string { return "" })
}

func replaceTokens(s string, expand func(escape string) string) string {
	out := strings.ReplaceAll(s, `\n`, "\n")
	for name, escape := range tokens {
		out = strings.ReplaceAll(out, "{{"+name+"}}", expand(escape))
	}
	return out
}
