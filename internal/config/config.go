// Package config loads wingman settings from a TOML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".wingman.toml"

// Environment variables read by Load.
const (
	EnvConfig    = "WINGMAN_CONFIG"
	EnvZoteroKey = "WINGMAN_ZOTERO_API_KEY"
)

// Config holds every wingman setting.
type Config struct {
	// Palette lists the colors handed out to highlighted names, in order
	Palette []string `toml:"palette"`

	Zotero   Zotero   `toml:"zotero"`
	Backends Backends `toml:"backends"`

	// TerminalDelayMs is how long a new terminal interpreter gets before code is typed into it
	TerminalDelayMs int `toml:"terminal_delay_ms"`

	// Timeout in seconds for one block execution (default: 30)
	Timeout int `toml:"timeout"`

	// HistoryDir is where run history is written (default: .wingman)
	HistoryDir string `toml:"history_dir"`
}

// Zotero configures the citation picker.
type Zotero struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	BibFile string `toml:"bib_file"`

	// LibraryType is "user" or "group" for the web API fallback
	LibraryType string `toml:"library_type"`
	LibraryID   string `toml:"library_id"`
	APIKey      string `toml:"api_key"`
}

// Backends holds interpreter command lines. Empty values use the built-in defaults.
type Backends struct {
	Python   string            `toml:"python"`
	R        string            `toml:"r"`
	Terminal map[string]string `toml:"terminal"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Palette: []string{"#4EC9B0", "#C586C0", "#DCDCAA", "#9CDCFE", "#CE9178", "#569CD6"},
		Zotero: Zotero{
			Host:        "127.0.0.1",
			Port:        23119,
			BibFile:     "references.bib",
			LibraryType: "user",
		},
		TerminalDelayMs: 1000,
		Timeout:         30,
		HistoryDir:      ".wingman",
	}
}

// Load reads the config file at path. An empty path falls back to
// $WINGMAN_CONFIG and then to ./.wingman.toml; a missing default file is not
// an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultFile
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", expanded, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv(EnvZoteroKey); key != "" {
		c.Zotero.APIKey = key
	}
}

// fillDefaults restores defaults the file zeroed out.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if len(c.Palette) == 0 {
		c.Palette = def.Palette
	}
	if c.Zotero.Host == "" {
		c.Zotero.Host = def.Zotero.Host
	}
	if c.Zotero.Port == 0 {
		c.Zotero.Port = def.Zotero.Port
	}
	if c.Zotero.BibFile == "" {
		c.Zotero.BibFile = def.Zotero.BibFile
	}
	c.Zotero.LibraryType = strings.ToLower(c.Zotero.LibraryType)
	if c.Zotero.LibraryType == "" {
		c.Zotero.LibraryType = def.Zotero.LibraryType
	}
	if c.TerminalDelayMs < 0 {
		c.TerminalDelayMs = def.TerminalDelayMs
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.HistoryDir == "" {
		c.HistoryDir = def.HistoryDir
	}
}

// TerminalDelay returns the terminal start delay as a duration.
func (c Config) TerminalDelay() time.Duration {
	return time.Duration(c.TerminalDelayMs) * time.Millisecond
}

// ExecTimeout returns the per-block execution timeout.
func (c Config) ExecTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// BibPath returns the bibliography path with a leading ~ expanded.
func (c Config) BibPath() (string, error) {
	return homedir.Expand(c.Zotero.BibFile)
}

// Marshal renders the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
