package render

import "strings"

// Markdown style names accepted in the markdown.style setting
const (
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeTokyoNight = "tokyonight"
	ThemeDracula    = "dracula"
	ThemePink       = "pink"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// glamourStyles maps our style names to glamour's standard style names
var glamourStyles = map[string]string{
	ThemeDark:       "dark",
	ThemeLight:      "light",
	ThemeTokyoNight: "tokyo-night",
	"tokyo-night":   "tokyo-night",
	ThemeDracula:    "dracula",
	ThemePink:       "pink",
	ThemeNoTTY:      "notty",
	ThemeASCII:      "ascii",
}

// ResolveStyle returns the glamour style name for a bundled style, or style
// unchanged when it is a path to a JSON theme.
func ResolveStyle(style string) string {
	if name, ok := glamourStyles[strings.ToLower(style)]; ok {
		return name
	}
	return style
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the bundled markdown styles
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemePink, Description: "Pink accents"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}
