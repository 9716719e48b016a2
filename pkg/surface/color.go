package surface

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// Color is an index into the standard 16 color ANSI palette, or Default.
type Color int

// Palette names follow the classic 16 color names, in ANSI order.
const (
	Black Color = iota
	Maroon
	Green
	Olive
	Navy
	Purple
	Teal
	Silver
	Grey
	Red
	Lime
	Yellow
	Blue
	Fuchsia
	Aqua
	White

	Default Color = -1
)

var colorNames = []string{
	"black", "maroon", "green", "olive", "navy", "purple", "teal", "silver",
	"grey", "red", "lime", "yellow", "blue", "fuchsia", "aqua", "white",
}

func (c Color) String() string {
	if c >= 0 && int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "default"
}

// ParseColor converts a palette name to a Color. Returns Default and false
// for unknown names.
func ParseColor(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range colorNames {
		if n == name {
			return Color(i), true
		}
	}
	// Common aliases
	switch name {
	case "dark red":
		return Maroon, true
	case "gray":
		return Grey, true
	case "magenta", "bright magenta":
		return Fuchsia, true
	case "cyan", "bright cyan":
		return Aqua, true
	}
	return Default, false
}

// fgCode converts a palette index to its SGR foreground code.
// 0-7 map to 30-37, bright colors 8-15 map to 90-97.
func fgCode(c Color) int {
	if c < 0 || c > 15 {
		return 39
	}
	if c < 8 {
		return 30 + int(c)
	}
	return 90 + int(c-8)
}

// DetectColor reports whether output to f should carry ANSI color.
// Piped output gets no color, and NO_COLOR and TERM=dumb are respected.
func DetectColor(f *os.File) bool {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if t := os.Getenv("TERM"); t == "dumb" {
		return false
	}
	return true
}
