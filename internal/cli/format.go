package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatError formats an error message for CLI output.
func FormatError(err error) string {
	return text.FgRed.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output.
func FormatSuccess(msg string) string {
	return text.FgGreen.Sprint("✓ ") + msg
}

// FormatWarning formats a warning message for CLI output.
func FormatWarning(msg string) string {
	return text.FgYellow.Sprint("⚠ ") + msg
}

// FormatBool renders a yes/no cell.
func FormatBool(v bool) string {
	if v {
		return text.FgGreen.Sprint("yes")
	}
	return text.FgRed.Sprint("no")
}

// FormatOptional renders s, or a dimmed placeholder when s is empty.
func FormatOptional(s string) string {
	if s == "" {
		return text.Faint.Sprint("-")
	}
	return s
}

// FormatTokens renders a token count, leaving unknown counts empty.
func FormatTokens(n int64) string {
	if n <= 0 {
		return FormatOptional("")
	}
	return fmt.Sprintf("%d", n)
}
