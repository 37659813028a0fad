package workflows

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/slinkshare/slink/internal/audit"
	"github.com/slinkshare/slink/internal/configs"
	serrors "github.com/slinkshare/slink/internal/errors"
	"github.com/slinkshare/slink/internal/ledger"
	"github.com/slinkshare/slink/internal/privilege"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// ConfigPath is where the configuration is written.
	ConfigPath string

	// Config is the configuration to write, usually built from prompts.
	Config *configs.Config

	// Force replaces an existing configuration file.
	Force bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	ConfigPath string
	LedgerPath string
	Service    privilege.Principal
}

// Init validates a configuration, checks that the web user and group
// exist, writes the configuration file and creates the ledger.
//
// Returns ErrConfigExists if a configuration file is present and Force is
// not set, ErrConfiguration for invalid values and ErrIdentityResolution
// for an unknown web user or group.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration given", serrors.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	service, err := privilege.ResolvePrincipal(cfg.WebUser, cfg.WebGroup)
	if err != nil {
		return nil, err
	}

	if err := cfg.Save(opts.ConfigPath, opts.Force); err != nil {
		return nil, err
	}

	l, err := ledger.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := l.Close(); err != nil {
		return nil, err
	}

	entry := audit.New("init")
	entry.Filename = filepath.Base(opts.ConfigPath)
	audit.Log(configs.AuditLogPath(cfg), entry)

	return &InitResult{
		ConfigPath: opts.ConfigPath,
		LedgerPath: cfg.DBPath,
		Service:    service,
	}, nil
}
