package workflows

import (
	"context"

	"github.com/slinkshare/slink/internal/configs"
	"github.com/slinkshare/slink/internal/ledger"
	"github.com/slinkshare/slink/internal/linkhash"
	"github.com/slinkshare/slink/internal/privilege"
)

// InfoResult reports the configuration and ledger state.
type InfoResult struct {
	ConfigPath string
	Config     configs.Config

	// Service is the resolved web principal.
	Service privilege.Principal

	// TokenLength is the number of characters in a link token.
	TokenLength int

	// EntropyBits is the number of hash bits kept in a link token.
	EntropyBits int

	Stats *ledger.Stats
}

// Info gathers configuration details and ledger statistics.
func Info(ctx context.Context, env *Env) (*InfoResult, error) {
	store, done, err := env.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &InfoResult{
		ConfigPath:  env.ConfigPath,
		Config:      *env.Config,
		Service:     store.Service(),
		TokenLength: linkhash.EncodedLen(store.HashLength()),
		EntropyBits: store.HashLength() * 8,
		Stats:       stats,
	}, nil
}
