// Package config holds the server settings and reads the optional TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"mediabrowser/internal/catalog"
	"mediabrowser/internal/identity"
	"mediabrowser/internal/library"
	"mediabrowser/internal/session"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"

	DefaultPort        = 3000
	DefaultUploadLimit = 1 << 30
)

type Config struct {
	Port             int           `toml:"port"`
	MediaRoot        string        `toml:"media_root"`
	DataDirectory    string        `toml:"data_directory"`
	StaticDirectory  string        `toml:"static_directory"`
	Deny             []string      `toml:"deny"`
	HideDotfiles     bool          `toml:"hide_dotfiles"`
	SearchLimit      int           `toml:"search_limit"`
	HistoryLimit     int           `toml:"history_limit"`
	UploadLimit      int64         `toml:"upload_limit"`
	SessionSecret    string        `toml:"session_secret"`
	SessionMaxAge    time.Duration `toml:"session_max_age"`
	SecureCookies    bool          `toml:"secure_cookies"`
	AdminPassword    string        `toml:"admin_password"`
	CredentialScheme string        `toml:"credential_scheme"`
	Store            string        `toml:"store"`
	RedisURL         string        `toml:"redis_url"`
	LogLevel         string        `toml:"log_level"`
	LogFormat        string        `toml:"log_format"`
}

func Default() Config {
	deny := catalog.DefaultDenylist()
	return Config{
		Port:             DefaultPort,
		MediaRoot:        "..",
		DataDirectory:    "data",
		StaticDirectory:  "dist",
		Deny:             deny.Names,
		HideDotfiles:     deny.Dotfiles,
		SearchLimit:      catalog.DefaultSearchLimit,
		HistoryLimit:     library.DefaultHistoryLimit,
		UploadLimit:      DefaultUploadLimit,
		SessionMaxAge:    session.DefaultMaxAge,
		AdminPassword:    identity.DefaultAdminPassword,
		CredentialScheme: string(identity.SchemeLegacy),
		Store:            StoreFile,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Config{}, err
	}
	if info.IsDir() {
		return Config{}, errors.New("config path is a directory")
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.MediaRoot) == "" {
		return errors.New("media root is required")
	}
	if strings.TrimSpace(c.DataDirectory) == "" {
		return errors.New("data directory is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Store != StoreFile && c.Store != StoreSQLite {
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if _, err := identity.ParseScheme(c.CredentialScheme); err != nil {
		return err
	}
	if c.SearchLimit <= 0 {
		return errors.New("search limit must be positive")
	}
	if c.HistoryLimit <= 0 {
		return errors.New("history limit must be positive")
	}
	if c.UploadLimit <= 0 {
		return errors.New("upload limit must be positive")
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("session max age must be positive")
	}
	return nil
}

// Denylist returns the catalog exclusion rules.
func (c Config) Denylist() catalog.Denylist {
	return catalog.Denylist{Names: c.Deny, Dotfiles: c.HideDotfiles}
}
