// Package config loads and persists dbshell settings as YAML under the
// user's config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFile = "config.yaml"

// Config holds all application configuration.
type Config struct {
	Theme       string            `yaml:"theme"`
	Editor      EditorConfig      `yaml:"editor"`
	Suggest     SuggestConfig     `yaml:"suggest"`
	Results     ResultsConfig     `yaml:"results"`
	Audit       AuditConfig       `yaml:"audit"`
	Connections []SavedConnection `yaml:"connections"`
}

// EditorConfig holds editor-related settings.
type EditorConfig struct {
	TabSize         int  `yaml:"tab_size"`
	ShowLineNumbers bool `yaml:"show_line_numbers"`
}

// SuggestConfig controls the completion popup.
type SuggestConfig struct {
	Enabled       bool `yaml:"enabled"`
	MaxCandidates int  `yaml:"max_candidates"`
}

// ResultsConfig holds result display settings.
type ResultsConfig struct {
	MaxColumnWidth int `yaml:"max_column_width"`
}

// AuditConfig controls the JSON Lines audit log. When Path is empty the log
// is written to ConfigDir()/audit.log.
type AuditConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// SavedConnection holds parameters for a saved database connection. Either
// DSN is set directly, or the individual fields are combined on demand.
type SavedConnection struct {
	Name     string `yaml:"name"`
	Engine   string `yaml:"engine"`
	DSN      string `yaml:"dsn,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
	File     string `yaml:"file,omitempty"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme: "default",
		Editor: EditorConfig{
			TabSize:         4,
			ShowLineNumbers: true,
		},
		Suggest: SuggestConfig{
			Enabled:       true,
			MaxCandidates: 12,
		},
		Results: ResultsConfig{
			MaxColumnWidth: 50,
		},
		Audit: AuditConfig{
			MaxSizeMB: 10,
		},
	}
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// ConfigDir returns the dbshell configuration directory, os.UserConfigDir
// plus "dbshell". On Linux with XDG that is ~/.config/dbshell.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "dbshell"), nil
}

// Load reads a Config from the YAML file at path. A missing file is not an
// error; it yields the defaults. Values absent from the file keep their
// default too.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from ConfigDir()/config.yaml.
func LoadDefault() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(dir, configFile))
}

// Save writes the Config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveDefault writes the Config to ConfigDir()/config.yaml.
func (c *Config) SaveDefault() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return c.Save(filepath.Join(dir, configFile))
}

// FindConnection returns the saved connection with the given name, or nil.
func (c *Config) FindConnection(name string) *SavedConnection {
	for i := range c.Connections {
		if c.Connections[i].Name == name {
			return &c.Connections[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Connection strings
// ---------------------------------------------------------------------------

// isFileEngine reports whether the engine stores its data in a local file
// rather than behind a network listener.
func isFileEngine(engine string) bool {
	switch strings.ToLower(engine) {
	case "sqlite", "duckdb":
		return true
	}
	return false
}

// hostPort renders the network location, defaulting the host to localhost
// and omitting an unset port.
func (sc *SavedConnection) hostPort() string {
	host := sc.Host
	if host == "" {
		host = "localhost"
	}
	if sc.Port > 0 {
		return fmt.Sprintf("%s:%d", host, sc.Port)
	}
	return host
}

// BuildDSN constructs a connection string from the individual fields. An
// explicit DSN wins. File engines connect straight to the File path; network
// engines get "user:password@host:port/database".
func (sc *SavedConnection) BuildDSN() string {
	if sc.DSN != "" {
		return sc.DSN
	}
	if isFileEngine(sc.Engine) {
		return sc.File
	}

	var creds string
	switch {
	case sc.User != "" && sc.Password != "":
		creds = sc.User + ":" + sc.Password + "@"
	case sc.User != "":
		creds = sc.User + "@"
	}

	dsn := creds + sc.hostPort()
	if sc.Database != "" {
		dsn += "/" + sc.Database
	}
	return dsn
}

// DisplayString renders the connection for lists and status lines, as
// "engine://host:port/database" or "engine://file". Passwords are never
// included.
func (sc *SavedConnection) DisplayString() string {
	if isFileEngine(sc.Engine) {
		file := sc.File
		if file == "" {
			file = sc.DSN
		}
		return sc.Engine + "://" + file
	}

	s := sc.Engine + "://" + sc.hostPort()
	if sc.Database != "" {
		s += "/" + sc.Database
	}
	return s
}
