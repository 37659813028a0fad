package utils

import (
	"strings"
	"time"

	"github.com/slinkshare/slink/internal/ui"
)

const timestampLayout = "2006-01-02 15:04:05"

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTimestamp renders t in loc, or "-" for the zero time.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timestampLayout)
}

// RedactSecret keeps the first and last two characters of secret.
func RedactSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:2] + strings.Repeat("*", len(secret)-4) + secret[len(secret)-2:]
}
