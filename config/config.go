package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour/styles"

	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/log"
)

const (
	configFileName = "config.json"
	// HomeEnv overrides the config directory. Tests point it at t.TempDir().
	HomeEnv = "GITCOACH_HOME"
)

// Config holds user preferences.
type Config struct {
	// DefaultBranch is the branch every new practice repository starts on.
	DefaultBranch string `json:"default_branch"`
	// LessonsDir holds user lessons. Relative paths and "~/" are resolved
	// against the config dir and the home dir respectively.
	LessonsDir string `json:"lessons_dir"`
	// PlaybackDelayMs is the pause between demo steps.
	PlaybackDelayMs int `json:"playback_delay_ms"`
	// ShowHints controls whether step hints are shown without asking.
	// nil means the default (true).
	ShowHints *bool `json:"show_hints,omitempty"`
	// MarkdownStyle is the glamour style used for lesson text ("dark",
	// "light", "notty", ...).
	MarkdownStyle string `json:"markdown_style"`
	// HistoryEnabled records finished sessions in history.db.
	HistoryEnabled bool `json:"history_enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultBranch:   "main",
		LessonsDir:      "lessons",
		PlaybackDelayMs: 800,
		MarkdownStyle:   styles.DarkStyle,
		HistoryEnabled:  true,
	}
}

// AreHintsShown returns whether hints are shown, defaulting to true.
func (c *Config) AreHintsShown() bool {
	if c.ShowHints == nil {
		return true
	}
	return *c.ShowHints
}

// SetShowHints stores an explicit hint preference.
func (c *Config) SetShowHints(v bool) {
	c.ShowHints = &v
}

// GetConfigDir returns the directory for gitcoach's files (~/.gitcoach).
func GetConfigDir() (string, error) {
	if override := os.Getenv(HomeEnv); override != "" {
		return override, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gitcoach"), nil
}

// ResolveLessonsDir returns the absolute lessons directory.
func (c *Config) ResolveLessonsDir() (string, error) {
	dir := c.LessonsDir
	if dir == "" {
		dir = DefaultConfig().LessonsDir
	}
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %s: %w", dir, err)
		}
		return filepath.Join(home, dir[2:]), nil
	}
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, dir), nil
}

// normalize fills zero fields with defaults so older config files keep working.
func (c *Config) normalize() {
	def := DefaultConfig()
	if !gitsim.ValidBranchName(c.DefaultBranch) {
		if c.DefaultBranch != "" {
			log.WarningLog.Printf("config: %q is not a valid branch name, using %s", c.DefaultBranch, def.DefaultBranch)
		}
		c.DefaultBranch = def.DefaultBranch
	}
	if c.LessonsDir == "" {
		c.LessonsDir = def.LessonsDir
	}
	if c.PlaybackDelayMs <= 0 {
		c.PlaybackDelayMs = def.PlaybackDelayMs
	}
	if c.MarkdownStyle == "" {
		c.MarkdownStyle = def.MarkdownStyle
	}
}

// LoadConfig loads the configuration from disk. A missing file is created
// with defaults; an unreadable one is logged and replaced by defaults in
// memory only.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}
	path := filepath.Join(configDir, configFileName)

	var cfg Config
	found, err := readJSON(path, &cfg)
	if err != nil {
		log.WarningLog.Printf("using default config: %v", err)
		return DefaultConfig()
	}
	if !found {
		def := DefaultConfig()
		if err := SaveConfig(def); err != nil {
			log.WarningLog.Printf("failed to save default config: %v", err)
		}
		return def
	}
	cfg.normalize()
	return &cfg
}

// SaveConfig writes cfg to config.json.
func SaveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	return writeJSON(filepath.Join(configDir, configFileName), cfg)
}
