package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	serrors "github.com/slinkshare/slink/internal/errors"
	"github.com/slinkshare/slink/internal/linkhash"
)

const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultBaseDir  = "/var/www"
	DefaultWebUser  = "www-data"
	DefaultWebGroup = "www-data"
)

// Mode is a permission mode written as an octal string in TOML.
type Mode os.FileMode

func (m Mode) String() string {
	return fmt.Sprintf("%04o", uint32(m))
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(strings.TrimPrefix(string(text), "0o"), 8, 32)
	if err != nil {
		return fmt.Errorf("mode %q is not octal", text)
	}
	*m = Mode(v)
	return nil
}

// FileMode returns m as an os.FileMode.
func (m Mode) FileMode() os.FileMode {
	return os.FileMode(m)
}

type Config struct {
	BaseURL    string `toml:"base_url"`
	BaseDir    string `toml:"base_dir"`
	DBPath     string `toml:"db_path"`
	HashSecret string `toml:"hash_secret"`
	WebUser    string `toml:"web_user"`
	WebGroup   string `toml:"web_group"`
	HashBytes  int    `toml:"hash_bytes"`
	DirMode    Mode   `toml:"dir_mode"`
	FileMode   Mode   `toml:"file_mode"`
}

// Default returns a configuration with a freshly generated hash secret.
func Default() (*Config, error) {
	dbPath, err := DefaultLedgerPath()
	if err != nil {
		return nil, err
	}
	return &Config{
		BaseURL:    DefaultBaseURL,
		BaseDir:    DefaultBaseDir,
		DBPath:     dbPath,
		HashSecret: GenerateSecret(),
		WebUser:    DefaultWebUser,
		WebGroup:   DefaultWebGroup,
		HashBytes:  linkhash.DefaultLength,
		DirMode:    0o750,
		FileMode:   0o640,
	}, nil
}

// GenerateSecret returns a new random hash secret.
func GenerateSecret() string {
	return uuid.New().String()
}

// Load reads the configuration at path, fills in defaults for optional
// fields and validates it.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, serrors.ErrConfigNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w: %w", path, serrors.ErrConfiguration, err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return nil, fmt.Errorf("%s has mode %04o: %w", path, info.Mode().Perm(), serrors.ErrConfigPermissions)
	}

	cfg := &Config{}
	md, err := LoadTOML(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %w", path, serrors.ErrConfiguration, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: %w: unknown key %q", path, serrors.ErrConfiguration, undecoded[0].String())
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.WebUser == "" {
		c.WebUser = DefaultWebUser
	}
	if c.WebGroup == "" {
		c.WebGroup = DefaultWebGroup
	}
	if c.HashBytes == 0 {
		c.HashBytes = linkhash.DefaultLength
	}
	if c.DirMode == 0 {
		c.DirMode = 0o750
	}
	if c.FileMode == 0 {
		c.FileMode = 0o640
	}
	if c.DBPath == "" {
		path, err := DefaultLedgerPath()
		if err != nil {
			return err
		}
		c.DBPath = path
	}
	return nil
}

// Validate checks every field. The web user and group are only checked for
// presence; resolving them is left to the file store.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an http or https URL", serrors.ErrConfiguration, c.BaseURL)
	}

	if c.BaseDir == "" {
		return fmt.Errorf("%w: base_dir is empty", serrors.ErrConfiguration)
	}
	info, err := os.Stat(c.BaseDir)
	if err != nil {
		return fmt.Errorf("%w: base_dir %s: %w", serrors.ErrConfiguration, c.BaseDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: base_dir %s is not a directory", serrors.ErrConfiguration, c.BaseDir)
	}

	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path is empty", serrors.ErrConfiguration)
	}
	if c.HashSecret == "" {
		return fmt.Errorf("%w: hash_secret is empty", serrors.ErrConfiguration)
	}
	if c.WebUser == "" || c.WebGroup == "" {
		return fmt.Errorf("%w: web_user and web_group are required", serrors.ErrConfiguration)
	}
	if err := linkhash.ValidateLength(c.HashBytes); err != nil {
		return err
	}
	for name, m := range map[string]Mode{"dir_mode": c.DirMode, "file_mode": c.FileMode} {
		if m&^0o777 != 0 {
			return fmt.Errorf("%w: %s %s has bits outside 0777", serrors.ErrConfiguration, name, m)
		}
	}
	return nil
}

// Save writes the configuration to path. An existing file is only
// replaced when force is set.
func (c *Config) Save(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w", path, serrors.ErrConfigExists)
	}
	if err := SaveTOML(path, c); err != nil {
		return fmt.Errorf("writing %s: %w: %w", path, serrors.ErrConfiguration, err)
	}
	return nil
}
