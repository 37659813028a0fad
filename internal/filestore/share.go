package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/slinkshare/slink/internal/capability"
	serrors "github.com/slinkshare/slink/internal/errors"
	"github.com/slinkshare/slink/internal/ledger"
	"github.com/slinkshare/slink/internal/linkhash"
)

// Share publishes a capability link for recipient and records the grant.
// Sharing again with the same recipient yields the same token and replaces
// the earlier grant.
func (s *Store) Share(ctx context.Context, identifier, recipient string) (string, error) {
	if err := validateRecipient(recipient); err != nil {
		return "", err
	}
	if err := validateIdentifier(identifier); err != nil {
		return "", err
	}
	if _, err := s.ledger.GetFile(ctx, identifier); err != nil {
		return "", err
	}
	if _, err := os.Lstat(s.entryPath(identifier)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("entry %s is missing: %w", identifier, serrors.ErrNotFound)
		}
		return "", fmt.Errorf("inspecting %s: %w: %w", identifier, serrors.ErrFilesystem, err)
	}

	previous, err := s.activeGrant(ctx, identifier, recipient)
	if err != nil {
		return "", err
	}
	token, err := s.Token(identifier, recipient)
	if err != nil {
		return "", err
	}
	if err := capability.Publish(s.baseDir, token, identifier); err != nil {
		return "", err
	}
	if err := s.ledger.UpsertShare(ctx, identifier, recipient, token, s.now()); err != nil {
		return "", err
	}
	// A grant issued under another secret or hash length has a different
	// token; its link must not outlive the replaced row.
	if previous != nil && previous.LinkToken != token {
		if err := s.withdrawOwned(previous.LinkToken, identifier); err != nil {
			return "", err
		}
	}

	s.log.Infof("Shared %s with %q as %s", identifier, recipient, token)
	return token, nil
}

// Unshare withdraws recipient's link and marks the grant inactive. It
// reports whether an active grant existed; unsharing twice is not an error.
func (s *Store) Unshare(ctx context.Context, identifier, recipient string) (bool, error) {
	if err := validateRecipient(recipient); err != nil {
		return false, err
	}
	if err := validateIdentifier(identifier); err != nil {
		return false, err
	}

	grant, err := s.activeGrant(ctx, identifier, recipient)
	if err != nil {
		return false, err
	}
	token, err := s.Token(identifier, recipient)
	if err != nil {
		return false, err
	}
	if err := capability.Withdraw(s.baseDir, token); err != nil {
		return false, err
	}
	if grant != nil && grant.LinkToken != token {
		if err := s.withdrawOwned(grant.LinkToken, identifier); err != nil {
			return false, err
		}
	}

	active, err := s.ledger.DeactivateShare(ctx, identifier, recipient, s.now())
	if err != nil {
		return false, err
	}
	if active {
		s.log.Infof("Unshared %s from %q", identifier, recipient)
	} else {
		s.log.Debugf("No active share of %s for %q", identifier, recipient)
	}
	return active, nil
}

// Token derives the link token for identifier and recipient.
func (s *Store) Token(identifier, recipient string) (string, error) {
	return linkhash.Derive(identifier, recipient, s.secret, s.hashLength)
}

// activeGrant returns the active grant of identifier to recipient, or nil.
func (s *Store) activeGrant(ctx context.Context, identifier, recipient string) (*ledger.Share, error) {
	shares, err := s.ledger.Shares(ctx, identifier)
	if err != nil {
		return nil, err
	}
	for i := range shares {
		if shares[i].Active && shares[i].Recipient == recipient {
			return &shares[i], nil
		}
	}
	return nil, nil
}

// withdrawOwned removes base/token only while it still points at
// identifier.
func (s *Store) withdrawOwned(token, identifier string) error {
	target, err := capability.Target(s.baseDir, token)
	if errors.Is(err, serrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if target != identifier {
		s.log.Warnf("Link %s now points at %s; leaving it", token, target)
		return nil
	}
	s.log.Debugf("Withdrawing superseded link %s", token)
	return capability.Withdraw(s.baseDir, token)
}

// Shares returns every grant recorded for identifier, oldest first.
func (s *Store) Shares(ctx context.Context, identifier string) ([]ledger.Share, error) {
	return s.ledger.Shares(ctx, identifier)
}

// StrayLink is a capability link that no active grant accounts for.
type StrayLink struct {
	capability.Link
	// Reason is "dangling" when the target entry is gone and "inactive"
	// when the ledger has no active grant with this token.
	Reason string
}

// StrayLinks compares the links in the base directory with the ledger's
// active grants.
func (s *Store) StrayLinks(ctx context.Context) ([]StrayLink, error) {
	links, err := capability.List(s.baseDir)
	if err != nil {
		return nil, err
	}
	active, err := s.ledger.ActiveTokens(ctx)
	if err != nil {
		return nil, err
	}

	var stray []StrayLink
	for _, link := range links {
		switch identifier, ok := active[link.Token]; {
		case link.Dangling:
			stray = append(stray, StrayLink{Link: link, Reason: "dangling"})
		case !ok || identifier != link.Target:
			stray = append(stray, StrayLink{Link: link, Reason: "inactive"})
		}
	}
	return stray, nil
}

// DropLink removes a single capability link.
func (s *Store) DropLink(token string) error {
	return capability.Withdraw(s.baseDir, token)
}

func (s *Store) sweep(identifier string) (int, error) {
	n, err := capability.SweepByTarget(s.baseDir, identifier)
	if err != nil {
		return n, err
	}
	s.log.Debugf("Swept %d links to %s", n, identifier)
	return n, nil
}

func validateRecipient(recipient string) error {
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("%w: recipient is empty", serrors.ErrInvalidRecipient)
	}
	return nil
}

// PrivateURL is the operator's own URL for a stored file.
func PrivateURL(baseURL, identifier, filename string) string {
	return joinURL(baseURL, identifier, filename)
}

// ShareURL is the URL handed to a recipient.
func ShareURL(baseURL, token, filename string) string {
	return joinURL(baseURL, token, filename)
}

func joinURL(baseURL, segment, filename string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(segment) + "/" + url.PathEscape(filename)
}
