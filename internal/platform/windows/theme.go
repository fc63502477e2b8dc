// Package windows provides Windows-specific platform implementations.
package windows

import "github.com/darkawower/reagentry/internal/theme"

const (
	personalizeKey   = `Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`
	appsUseLightName = "AppsUseLightTheme"
)

// themeFromAppsUseLight maps the AppsUseLightTheme DWORD to a theme.
func themeFromAppsUseLight(v uint64) theme.Theme {
	if v == 0 {
		return theme.Dark
	}
	return theme.Light
}
