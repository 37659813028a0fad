package configs

import (
	"fmt"
	"os"
	"path/filepath"

	serrors "github.com/slinkshare/slink/internal/errors"
)

// ConfigEnv overrides the default configuration path.
const ConfigEnv = "SLINK_CONFIG"

// DefaultConfigPath returns $XDG_CONFIG_HOME/slink/slink.conf.
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: locating config directory: %w", serrors.ErrConfiguration, err)
	}
	return filepath.Join(configDir, "slink", "slink.conf"), nil
}

// DefaultLedgerPath returns $XDG_DATA_HOME/slink/shares.db.
func DefaultLedgerPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: locating home directory: %w", serrors.ErrConfiguration, err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "slink", "shares.db"), nil
}

// ResolveConfigPath picks the configuration path: an explicit flag value,
// then $SLINK_CONFIG, then the default.
func ResolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(ConfigEnv); env != "" {
		return env, nil
	}
	return DefaultConfigPath()
}

// AuditLogPath returns the audit log location, next to the ledger.
func AuditLogPath(cfg *Config) string {
	return filepath.Join(filepath.Dir(cfg.DBPath), "audit.jsonl")
}
