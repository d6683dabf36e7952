package common

// ANSI escapes for terminal output.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Colorize wraps s in color when enabled is true.
func Colorize(enabled bool, color, s string) string {
	if !enabled || s == "" {
		return s
	}
	return color + s + ColorReset
}
