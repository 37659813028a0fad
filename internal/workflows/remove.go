package workflows

import (
	"context"
	"errors"

	"github.com/slinkshare/slink/internal/audit"
	serrors "github.com/slinkshare/slink/internal/errors"
	"github.com/slinkshare/slink/internal/filestore"
)

// RemoveOptions configures the remove workflow.
type RemoveOptions struct {
	// Spec is an identifier, a file name, or name/index.
	Spec string

	// Force skips confirmation.
	Force bool

	// Confirm asks the operator. A nil Confirm without Force declines.
	Confirm func(filestore.FileIdentity) bool
}

// RemoveResult contains the outcome of a remove operation.
type RemoveResult struct {
	Identity filestore.FileIdentity

	// Declined is true when the operator did not confirm; nothing changed.
	Declined bool

	LinksRemoved  int
	SharesRevoked int
}

// Remove deletes a stored file, every capability link pointing at it and
// its ledger record. Grants stay in the ledger as inactive history.
//
// A specifier that resolves to an identifier the ledger no longer knows is
// still removed from disk, so a partially removed entry can be finished.
func Remove(ctx context.Context, env *Env, opts RemoveOptions) (*RemoveResult, error) {
	store, done, err := env.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	id, err := store.Resolve(ctx, opts.Spec)
	if err != nil {
		return nil, err
	}

	res, err := store.Remove(ctx, id, filestore.RemoveOptions{
		Confirmed: opts.Force,
		Confirm:   opts.Confirm,
	})
	if err != nil {
		if errors.Is(err, serrors.ErrNotFound) {
			env.Logger.Debugf("No entry directory for %s", id)
		}
		return nil, err
	}

	result := &RemoveResult{
		Identity:      res.Identity,
		Declined:      res.Declined,
		LinksRemoved:  res.LinksRemoved,
		SharesRevoked: res.SharesRevoked,
	}
	if result.Declined {
		return result, nil
	}

	entry := audit.New("remove")
	entry.Identifier = res.Identity.Identifier
	entry.Filename = res.Identity.Filename
	entry.RemovedCount = res.LinksRemoved
	audit.Log(env.auditPath(), entry)

	return result, nil
}
