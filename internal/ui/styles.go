package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // medium gray
	colorSuccess = 114 // green
	colorWarning = 179 // amber
	colorError   = 203 // red
)

// Styler applies ANSI colors when enabled and passes text through otherwise.
type Styler struct {
	Enabled bool
}

// Plain is a Styler that never colors.
var Plain = Styler{}

func (s Styler) paint(code int, text string) string {
	if !s.Enabled || text == "" {
		return text
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, text)
}

// Accent returns text in the accent (blue) color.
func (s Styler) Accent(text string) string { return s.paint(colorAccent, text) }

// Muted returns text in the muted (gray) color.
func (s Styler) Muted(text string) string { return s.paint(colorMuted, text) }

// Success returns text in green.
func (s Styler) Success(text string) string { return s.paint(colorSuccess, text) }

// Warning returns text in amber.
func (s Styler) Warning(text string) string { return s.paint(colorWarning, text) }

// Error returns text in red.
func (s Styler) Error(text string) string { return s.paint(colorError, text) }

// Bold returns text in bold.
func (s Styler) Bold(text string) string {
	if !s.Enabled || text == "" {
		return text
	}
	return "\x1b[1m" + text + "\x1b[0m"
}

// Tone colors text by a tone name: "success", "warning" or "error".
// Any other tone is returned unstyled.
func (s Styler) Tone(tone, text string) string {
	switch tone {
	case "success":
		return s.Success(text)
	case "warning":
		return s.Warning(text)
	case "error":
		return s.Error(text)
	}
	return text
}
