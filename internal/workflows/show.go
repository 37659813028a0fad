package workflows

import (
	"context"

	"github.com/slinkshare/slink/internal/filestore"
	"github.com/slinkshare/slink/internal/ledger"
)

// Grant is a ledger share with the URL it is reachable at.
type Grant struct {
	ledger.Share
	URL string
}

// ShowResult describes one stored file.
type ShowResult struct {
	Identity   *filestore.FileIdentity
	PrivateURL string
	Grants     []Grant
}

// Show returns a file's identity and every grant recorded for it.
func Show(ctx context.Context, env *Env, spec string) (*ShowResult, error) {
	store, done, err := env.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	identity, err := resolve(ctx, store, spec)
	if err != nil {
		return nil, err
	}

	shares, err := store.Shares(ctx, identity.Identifier)
	if err != nil {
		return nil, err
	}

	result := &ShowResult{
		Identity:   identity,
		PrivateURL: filestore.PrivateURL(env.Config.BaseURL, identity.Identifier, identity.Filename),
	}
	for _, s := range shares {
		result.Grants = append(result.Grants, Grant{
			Share: s,
			URL:   filestore.ShareURL(env.Config.BaseURL, s.LinkToken, identity.Filename),
		})
	}
	return result, nil
}

// ListResult contains every stored file, newest first.
type ListResult struct {
	Files []filestore.Summary
}

// List returns every stored file with its active share count.
func List(ctx context.Context, env *Env) (*ListResult, error) {
	store, done, err := env.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	files, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResult{Files: files}, nil
}
