package configs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	serrors "github.com/slinkshare/slink/internal/errors"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		BaseURL:    "https://files.example.com",
		BaseDir:    t.TempDir(),
		DBPath:     filepath.Join(t.TempDir(), "shares.db"),
		HashSecret: "s3cret",
		WebUser:    "www-data",
		WebGroup:   "www-data",
		HashBytes:  7,
		DirMode:    0o750,
		FileMode:   0o640,
	}
}

func writeConfig(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slink.conf")
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("Failed to chmod config: %v", err)
	}
	return path
}

func TestSaveAndLoad(t *testing.T) {
	cfg := validConfig(t)
	path := filepath.Join(t.TempDir(), "slink", "slink.conf")

	if err := cfg.Save(path, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Expected %+v, got %+v", cfg, loaded)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	if !strings.Contains(string(data), `dir_mode = "0750"`) {
		t.Errorf("Expected octal dir_mode in file, got:\n%s", data)
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	cfg := validConfig(t)
	path := filepath.Join(t.TempDir(), "slink.conf")

	if err := cfg.Save(path, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := cfg.Save(path, false); !errors.Is(err, serrors.ErrConfigExists) {
		t.Errorf("Expected ErrConfigExists, got %v", err)
	}
	if err := cfg.Save(path, true); err != nil {
		t.Errorf("Forced save failed: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	if !errors.Is(err, serrors.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadRejectsLoosePermissions(t *testing.T) {
	path := writeConfig(t, `hash_secret = "x"`, 0644)

	_, err := Load(path)
	if !errors.Is(err, serrors.ErrConfigPermissions) {
		t.Errorf("Expected ErrConfigPermissions, got %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	base := t.TempDir()
	path := writeConfig(t, "base_dir = \""+base+"\"\nhash_secret = \"abc\"\n", 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("Expected base_url %q, got %q", DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.HashBytes != 7 {
		t.Errorf("Expected hash_bytes 7, got %d", cfg.HashBytes)
	}
	if cfg.DirMode != 0o750 || cfg.FileMode != 0o640 {
		t.Errorf("Expected modes 0750/0640, got %s/%s", cfg.DirMode, cfg.FileMode)
	}
	if filepath.Base(cfg.DBPath) != "shares.db" {
		t.Errorf("Expected default ledger path, got %s", cfg.DBPath)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "hash_secret = \"abc\"\nbase_dri = \"/tmp\"\n", 0600)

	_, err := Load(path)
	if !errors.Is(err, serrors.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	path := writeConfig(t, "hash_secret = \"abc\"\ndir_mode = \"0789\"\n", 0600)

	_, err := Load(path)
	if !errors.Is(err, serrors.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"relative url":    func(c *Config) { c.BaseURL = "files.example.com" },
		"ftp url":         func(c *Config) { c.BaseURL = "ftp://files.example.com" },
		"missing basedir": func(c *Config) { c.BaseDir = filepath.Join(c.BaseDir, "missing") },
		"empty secret":    func(c *Config) { c.HashSecret = "" },
		"short hash":      func(c *Config) { c.HashBytes = 1 },
		"long hash":       func(c *Config) { c.HashBytes = 33 },
		"setuid mode":     func(c *Config) { c.FileMode = 0o4640 },
		"empty user":      func(c *Config) { c.WebUser = "" },
	}

	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	for name, mutate := range tests {
		cfg := validConfig(t)
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, serrors.ErrConfiguration) {
			t.Errorf("%s: expected ErrConfiguration, got %v", name, err)
		}
	}
}

func TestValidateBaseDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(cfg.BaseDir, "file")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	cfg.BaseDir = file

	if err := cfg.Validate(); !errors.Is(err, serrors.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	a, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	b, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	if len(a.HashSecret) != 36 {
		t.Errorf("Expected UUID secret, got %q", a.HashSecret)
	}
	if a.HashSecret == b.HashSecret {
		t.Error("Expected a fresh secret for each default config")
	}
	if a.DBPath != "/data/slink/shares.db" {
		t.Errorf("Expected /data/slink/shares.db, got %s", a.DBPath)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv(ConfigEnv, "")

	path, err := ResolveConfigPath("")
	if err != nil {
		t.Fatalf("ResolveConfigPath failed: %v", err)
	}
	if path != "/cfg/slink/slink.conf" {
		t.Errorf("Expected /cfg/slink/slink.conf, got %s", path)
	}

	t.Setenv(ConfigEnv, "/env/slink.conf")
	if path, _ := ResolveConfigPath(""); path != "/env/slink.conf" {
		t.Errorf("Expected env override, got %s", path)
	}
	if path, _ := ResolveConfigPath("/flag.conf"); path != "/flag.conf" {
		t.Errorf("Expected flag override, got %s", path)
	}
}

func TestModeText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("0o640")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if m != 0o640 {
		t.Errorf("Expected 0640, got %s", m)
	}
	if m.String() != "0640" {
		t.Errorf("Expected \"0640\", got %q", m.String())
	}
}
