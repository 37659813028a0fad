package filestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	serrors "github.com/slinkshare/slink/internal/errors"
)

// Match is one candidate of an ambiguous file specifier.
type Match struct {
	// Index is 1-based, in order of date added.
	Index      int
	Identifier string
	DateAdded  time.Time
}

// AmbiguousError is returned by Resolve when a name matches several files
// and no index was given.
type AmbiguousError struct {
	Name    string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches %d files; use %s/<index>", e.Name, len(e.Matches), e.Name)
}

func (e *AmbiguousError) Unwrap() error {
	return serrors.ErrAmbiguousSpecifier
}

// Resolve turns a file specifier into an identifier. A canonical UUID the
// ledger knows is returned as is. Otherwise the specifier is a filename,
// optionally followed by "/<index>" to pick one of several files with that
// name. A UUID that is neither a known identifier nor a stored name is
// returned unchanged so an entry without a ledger row can still be removed.
func (s *Store) Resolve(ctx context.Context, specifier string) (string, error) {
	if isIdentifier(specifier) {
		_, err := s.ledger.GetFile(ctx, specifier)
		if err == nil {
			return specifier, nil
		}
		if !errors.Is(err, serrors.ErrNotFound) {
			return "", err
		}
		files, err := s.ledger.FindByName(ctx, specifier)
		if err != nil {
			return "", err
		}
		if len(files) == 0 {
			return specifier, nil
		}
	}

	name, index, err := splitSpecifier(specifier)
	if err != nil {
		return "", err
	}

	files, err := s.ledger.FindByName(ctx, name)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%q: %w", name, serrors.ErrNotFound)
	}

	if index == 0 {
		if len(files) == 1 {
			return files[0].Identifier, nil
		}
		amb := &AmbiguousError{Name: name}
		for i, f := range files {
			amb.Matches = append(amb.Matches, Match{Index: i + 1, Identifier: f.Identifier, DateAdded: f.DateAdded})
		}
		return "", amb
	}

	if index > len(files) {
		return "", fmt.Errorf("%q has %d matches, no index %d: %w", name, len(files), index, serrors.ErrNotFound)
	}
	return files[index-1].Identifier, nil
}

// splitSpecifier returns the name and the 1-based index, or 0 when no
// index was given.
func splitSpecifier(specifier string) (string, int, error) {
	name, suffix, found := strings.Cut(specifier, "/")
	if name == "" {
		return "", 0, fmt.Errorf("%q: %w", specifier, serrors.ErrNotFound)
	}
	if !found {
		return name, 0, nil
	}

	index, err := strconv.Atoi(suffix)
	if err != nil || index < 1 {
		return "", 0, fmt.Errorf("invalid index %q in %q: %w", suffix, specifier, serrors.ErrNotFound)
	}
	return name, index, nil
}
