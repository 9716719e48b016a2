package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/phroun/debugconsole/pkg/config"
)

// consoleTheme is the default fyne theme with an optional forced variant
// and text size.
type consoleTheme struct {
	mode     config.ThemeMode
	fontSize float32
}

func newConsoleTheme(mode config.ThemeMode, fontSize float32) fyne.Theme {
	return &consoleTheme{mode: mode, fontSize: fontSize}
}

func (t *consoleTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch t.mode {
	case config.ThemeDark:
		variant = theme.VariantDark
	case config.ThemeLight:
		variant = theme.VariantLight
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *consoleTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *consoleTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *consoleTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText && t.fontSize > 0 {
		return t.fontSize
	}
	return theme.DefaultTheme().Size(name)
}
