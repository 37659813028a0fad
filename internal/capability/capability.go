// Package capability manages the symbolic links that turn a link token into
// a reachable URL path.
//
// A capability link lives directly in the store's base directory, is named
// by its token, and points at an identifier directory with a relative
// target so the base directory can be mounted elsewhere. Links carry no
// back-reference, so finding every link to an identifier means scanning the
// base directory (see SweepByTarget).
package capability

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	serrors "github.com/slinkshare/slink/internal/errors"
)

// Link is a capability link found in the base directory.
type Link struct {
	// Token is the link name.
	Token string

	// Target is the identifier the link points at.
	Target string

	// Dangling is true when the target does not exist in the base directory.
	Dangling bool
}

// Publish creates base/token as a relative symlink to identifier. Anything
// already at base/token is removed first, so re-sharing replaces the link.
func Publish(baseDir, token, identifier string) error {
	if err := validateName("token", token); err != nil {
		return err
	}
	if err := validateName("identifier", identifier); err != nil {
		return err
	}

	linkPath := filepath.Join(baseDir, token)
	if err := removeIfPresent(linkPath); err != nil {
		return err
	}
	if err := os.Symlink(identifier, linkPath); err != nil {
		return fmt.Errorf("linking %s -> %s: %w: %w", linkPath, identifier, serrors.ErrFilesystem, err)
	}
	return nil
}

// Withdraw removes base/token. A missing link is not an error.
func Withdraw(baseDir, token string) error {
	if err := validateName("token", token); err != nil {
		return err
	}
	return removeIfPresent(filepath.Join(baseDir, token))
}

// Target returns the identifier that base/token points at.
func Target(baseDir, token string) (string, error) {
	if err := validateName("token", token); err != nil {
		return "", err
	}
	target, err := os.Readlink(filepath.Join(baseDir, token))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("link %s: %w", token, serrors.ErrNotFound)
		}
		return "", fmt.Errorf("reading link %s: %w: %w", token, serrors.ErrFilesystem, err)
	}
	identifier, ok := targetIdentifier(target)
	if !ok {
		return "", fmt.Errorf("link %s points at %q, not an identifier: %w", token, target, serrors.ErrNotFound)
	}
	return identifier, nil
}

// List returns every capability link directly inside baseDir. Symlinks
// whose target is not an identifier in baseDir belong to someone else and
// are skipped.
func List(baseDir string) ([]Link, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w: %w", baseDir, serrors.ErrFilesystem, err)
	}

	var links []Link
	for _, entry := range entries {
		if entry.Type()&fs.ModeSymlink == 0 {
			continue
		}
		target, err := os.Readlink(filepath.Join(baseDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading link %s: %w: %w", entry.Name(), serrors.ErrFilesystem, err)
		}

		identifier, ok := targetIdentifier(target)
		if !ok {
			continue
		}
		link := Link{Token: entry.Name(), Target: identifier}
		if _, err := os.Lstat(filepath.Join(baseDir, link.Target)); errors.Is(err, fs.ErrNotExist) {
			link.Dangling = true
		}
		links = append(links, link)
	}
	return links, nil
}

// SweepByTarget removes every link in baseDir that points at identifier and
// returns how many were removed. It is O(entries in baseDir).
func SweepByTarget(baseDir, identifier string) (int, error) {
	if err := validateName("identifier", identifier); err != nil {
		return 0, err
	}

	links, err := List(baseDir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, link := range links {
		if link.Target != identifier {
			continue
		}
		if err := removeIfPresent(filepath.Join(baseDir, link.Token)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// targetIdentifier reduces a link target to the identifier it names.
// Published links are bare identifiers; a hand-made "./<id>" or "<id>/" is
// accepted too. Anything that leaves the base directory or does not name a
// canonical UUID is not a capability link.
func targetIdentifier(target string) (string, bool) {
	clean := filepath.Clean(target)
	if strings.ContainsAny(clean, `/\`) || len(clean) != 36 {
		return "", false
	}
	if _, err := uuid.Parse(clean); err != nil {
		return "", false
	}
	return clean, true
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w: %w", path, serrors.ErrFilesystem, err)
	}
	return nil
}

// validateName ensures a link name or target is a single path segment.
func validateName(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid %s %q: %w", kind, name, serrors.ErrFilesystem)
	}
	return nil
}
