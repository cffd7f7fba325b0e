package label

import "strings"

const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"

	DefaultLocale = LocaleZhCN
)

// NormalizeLocale maps a user or system locale tag onto one of the supported
// locales. Unknown tags fall back to DefaultLocale.
func NormalizeLocale(raw string) string {
	switch raw {
	case LocaleZhCN, "zh", "zh-cn":
		return LocaleZhCN
	case LocaleEnUS, "en", "en-us":
		return LocaleEnUS
	}

	s := strings.ToLower(strings.TrimSpace(raw))
	// Accept POSIX style tags too, e.g. en_US.UTF-8
	switch {
	case strings.HasPrefix(s, "zh"):
		return LocaleZhCN
	case strings.HasPrefix(s, "en"):
		return LocaleEnUS
	}
	return DefaultLocale
}
