package logger

import (
	"fmt"
	"strings"
)

// SanitizeForLog escapes control characters so engine stderr and remote URLs
// cannot inject fake log entries or terminal escapes. Unicode is preserved;
// newlines, tabs, null bytes, ANSI escapes and other control characters
// (< 32, 127) become escapes.
func SanitizeForLog(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		case '\x00':
			result.WriteString("\\x00")
		default:
			if r < 32 || r == 127 || r == '\x1b' {
				result.WriteString(fmt.Sprintf("\\x%02x", r))
			} else {
				result.WriteRune(r)
			}
		}
	}
	return result.String()
}

// Truncate caps a message at max runes, appending an ellipsis when cut.
// ffmpeg stderr dumps can run to many kilobytes; stored and logged error
// messages keep only the head.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
