package workflows

import (
	"context"

	"github.com/slinkshare/slink/internal/audit"
	"github.com/slinkshare/slink/internal/filestore"
)

// ShareOptions configures the share and unshare workflows.
type ShareOptions struct {
	// Recipient is the operator-chosen label for the person receiving the link.
	Recipient string

	// Spec is an identifier, a file name, or name/index.
	Spec string
}

// ShareResult contains the outcome of a share operation.
type ShareResult struct {
	Identity  *filestore.FileIdentity
	Recipient string
	Token     string
	URL       string
}

// Share grants a recipient access to a file through a capability link.
// Sharing the same file with the same recipient again returns the same URL.
//
// Returns ErrNotFound or ErrAmbiguousSpecifier if Spec does not name
// exactly one file, and ErrInvalidRecipient for an empty recipient.
func Share(ctx context.Context, env *Env, opts ShareOptions) (*ShareResult, error) {
	store, done, err := env.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	identity, err := resolve(ctx, store, opts.Spec)
	if err != nil {
		return nil, err
	}

	token, err := store.Share(ctx, identity.Identifier, opts.Recipient)
	if err != nil {
		return nil, err
	}

	entry := audit.New("share")
	entry.Identifier = identity.Identifier
	entry.Filename = identity.Filename
	entry.Recipient = opts.Recipient
	entry.Token = token
	audit.Log(env.auditPath(), entry)

	return &ShareResult{
		Identity:  identity,
		Recipient: opts.Recipient,
		Token:     token,
		URL:       filestore.ShareURL(env.Config.BaseURL, token, identity.Filename),
	}, nil
}

// UnshareResult contains the outcome of an unshare operation.
type UnshareResult struct {
	Identity  *filestore.FileIdentity
	Recipient string

	// WasActive is false when the recipient had no active grant.
	WasActive bool
}

// Unshare withdraws a recipient's capability link. Unsharing a recipient
// without an active grant succeeds with WasActive false.
func Unshare(ctx context.Context, env *Env, opts ShareOptions) (*UnshareResult, error) {
	store, done, err := env.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	identity, err := resolve(ctx, store, opts.Spec)
	if err != nil {
		return nil, err
	}

	active, err := store.Unshare(ctx, identity.Identifier, opts.Recipient)
	if err != nil {
		return nil, err
	}

	if active {
		entry := audit.New("unshare")
		entry.Identifier = identity.Identifier
		entry.Filename = identity.Filename
		entry.Recipient = opts.Recipient
		audit.Log(env.auditPath(), entry)
	}

	return &UnshareResult{Identity: identity, Recipient: opts.Recipient, WasActive: active}, nil
}

// resolve turns a specifier into the file's identity.
func resolve(ctx context.Context, store *filestore.Store, spec string) (*filestore.FileIdentity, error) {
	id, err := store.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}
