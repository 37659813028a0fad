package workflows

import (
	"context"
	"io"

	"github.com/slinkshare/slink/internal/audit"
	"github.com/slinkshare/slink/internal/filestore"
)

// AddOptions configures the add workflow.
type AddOptions struct {
	// Path is the file to store. Ignored when Reader is set.
	Path string

	// Reader supplies the content instead of Path, e.g. stdin.
	Reader io.Reader

	// Name overrides the stored file name. Required with Reader.
	Name string
}

// AddResult contains the outcome of an add operation.
type AddResult struct {
	Identity   *filestore.FileIdentity
	PrivateURL string
}

// Add stores a file and returns its identity and private URL.
//
// Returns ErrInvalidFilename if the name cannot be stored.
// Returns ErrSourceUnreadable if the source cannot be read.
// Returns ErrPermissionChange if the entry cannot be handed to the web user.
func Add(ctx context.Context, env *Env, opts AddOptions) (*AddResult, error) {
	store, done, err := env.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	identity, err := store.Add(ctx, filestore.AddRequest{
		Path:   opts.Path,
		Reader: opts.Reader,
		Name:   opts.Name,
	})
	if err != nil {
		return nil, err
	}

	entry := audit.New("add")
	entry.Identifier = identity.Identifier
	entry.Filename = identity.Filename
	entry.Digest = identity.Digest
	audit.Log(env.auditPath(), entry)

	return &AddResult{
		Identity:   identity,
		PrivateURL: filestore.PrivateURL(env.Config.BaseURL, identity.Identifier, identity.Filename),
	}, nil
}
