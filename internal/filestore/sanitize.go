package filestore

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	serrors "github.com/slinkshare/slink/internal/errors"
)

// SanitizeFilename trims surrounding whitespace from name and rejects names
// that cannot be stored as a single file inside an entry directory.
func SanitizeFilename(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: %q is not valid UTF-8", serrors.ErrInvalidFilename, name)
	}

	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return "", fmt.Errorf("%w: name is empty", serrors.ErrInvalidFilename)
	case strings.ContainsAny(trimmed, `/\`):
		return "", fmt.Errorf("%w: %q contains a path separator", serrors.ErrInvalidFilename, trimmed)
	case strings.Contains(trimmed, ".."):
		return "", fmt.Errorf("%w: %q contains '..'", serrors.ErrInvalidFilename, trimmed)
	case strings.HasPrefix(trimmed, "."):
		return "", fmt.Errorf("%w: %q is a hidden file name", serrors.ErrInvalidFilename, trimmed)
	}

	if strings.IndexFunc(trimmed, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: %q contains control characters", serrors.ErrInvalidFilename, trimmed)
	}
	return trimmed, nil
}
