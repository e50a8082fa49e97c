// Package timeutil provides time and filename formatting helpers shared by
// the ffmpeg command builders and the run workspace.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// FormatSeconds converts seconds to HH:MM:SS.MS format for ffmpeg time
// parameters like -ss. Supports fractional seconds for precise seeking.
//
// Example:
//
//	FormatSeconds(90)    // "00:01:30.00"
//	FormatSeconds(30.53) // "00:00:30.53"
func FormatSeconds(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
}

// Timestamp formats t for use in generated filenames, e.g. "20260825_143005".
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// SafeName reduces s to a filesystem-safe slug: lower-case ASCII letters,
// digits, '-' and '_'. Runs of other characters collapse to a single
// underscore and the result is capped at 60 characters.
func SafeName(s string) string {
	var b strings.Builder
	lastUnder := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnder = false
		default:
			if !lastUnder {
				b.WriteByte('_')
				lastUnder = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > 60 {
		out = strings.Trim(out[:60], "_")
	}
	if out == "" {
		return "untitled"
	}
	return out
}
