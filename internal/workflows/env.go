package workflows

import (
	"context"
	"fmt"

	"github.com/slinkshare/slink/internal/configs"
	serrors "github.com/slinkshare/slink/internal/errors"
	"github.com/slinkshare/slink/internal/filestore"
	"github.com/slinkshare/slink/internal/ledger"
	logger "github.com/slinkshare/slink/internal/logging"
)

// Env carries the loaded configuration into a workflow.
type Env struct {
	Config     *configs.Config
	ConfigPath string
	Logger     logger.Logger

	// StoreOptions are appended when the file store is opened.
	StoreOptions []filestore.Option
}

// auditPath returns where audit entries are written.
func (e *Env) auditPath() string {
	return configs.AuditLogPath(e.Config)
}

// openStore opens the ledger and the file store. The returned function
// closes the ledger.
func (e *Env) openStore(ctx context.Context) (*filestore.Store, func(), error) {
	if e == nil || e.Config == nil {
		return nil, nil, fmt.Errorf("%w: no configuration loaded", serrors.ErrConfiguration)
	}
	cfg := e.Config

	e.Logger.Debugf("Opening ledger at %s", cfg.DBPath)
	l, err := ledger.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	closeLedger := func() {
		if err := l.Close(); err != nil {
			e.Logger.Warnf("Closing ledger: %v", err)
		}
	}

	opts := append([]filestore.Option{filestore.WithLogger(e.Logger)}, e.StoreOptions...)
	store, err := filestore.New(filestore.Options{
		BaseDir:      cfg.BaseDir,
		Secret:       cfg.HashSecret,
		HashLength:   cfg.HashBytes,
		ServiceUser:  cfg.WebUser,
		ServiceGroup: cfg.WebGroup,
		DirMode:      cfg.DirMode.FileMode(),
		FileMode:     cfg.FileMode.FileMode(),
	}, l, opts...)
	if err != nil {
		closeLedger()
		return nil, nil, err
	}
	return store, closeLedger, nil
}
