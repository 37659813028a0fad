package workflows

import (
	"context"

	"github.com/slinkshare/slink/internal/audit"
	"github.com/slinkshare/slink/internal/filestore"
)

// CleanOptions configures the clean workflow.
type CleanOptions struct {
	// DryRun previews what would be removed without making changes.
	DryRun bool

	// Force skips the confirmation prompt (handled by caller).
	Force bool
}

// CleanResult contains the outcome of a clean operation.
type CleanResult struct {
	// Stray is the list of links found.
	Stray []filestore.StrayLink

	// RemovedCount is the number of links removed (0 if dry-run).
	RemovedCount int

	// DryRun indicates whether this was a dry-run.
	DryRun bool
}

// Clean removes capability links that no active grant accounts for.
//
// A stray link is a symlink in the base directory that either:
//   - points at an entry that no longer exists (dangling), or
//   - carries a token the ledger does not list as active for its target
//
// This happens when a remove or unshare was interrupted, or when the
// ledger was restored from an older copy.
func Clean(ctx context.Context, env *Env, opts CleanOptions) (*CleanResult, error) {
	store, done, err := env.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	stray, err := store.StrayLinks(ctx)
	if err != nil {
		return nil, err
	}

	result := &CleanResult{
		Stray:  stray,
		DryRun: opts.DryRun,
	}
	if len(stray) == 0 || opts.DryRun {
		return result, nil
	}

	for _, link := range stray {
		if err := store.DropLink(link.Token); err != nil {
			return nil, err
		}
		env.Logger.Debugf("Removed %s link %s -> %s", link.Reason, link.Token, link.Target)
		result.RemovedCount++
	}

	entry := audit.New("clean")
	entry.RemovedCount = result.RemovedCount
	audit.Log(env.auditPath(), entry)

	return result, nil
}
