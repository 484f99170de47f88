// Package config handles configuration loading and validation for carryover.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/carryover/internal/notes"
	"github.com/amirbrooks/carryover/internal/todo"
)

const (
	DefaultQuotesURL  = "https://stoicquotesapi.com/v1/api/quotes"
	defaultConfigName = "config.yaml"
)

// Config holds the application configuration.
type Config struct {
	Vault            string       `yaml:"vault" toml:"vault" json:"vault"`
	DailyDir         string       `yaml:"daily_dir" toml:"daily_dir" json:"daily_dir"`
	TemplatesDir     string       `yaml:"templates_dir" toml:"templates_dir" json:"templates_dir"`
	ArchiveNote      string       `yaml:"archive_note" toml:"archive_note" json:"archive_note"`
	NoteFormat       string       `yaml:"note_format" toml:"note_format" json:"note_format"`
	ShameGlyph       string       `yaml:"shame_glyph" toml:"shame_glyph" json:"shame_glyph"`
	ShameThreshold   int          `yaml:"shame_threshold" toml:"shame_threshold" json:"shame_threshold"`
	StickyToken      string       `yaml:"sticky_token" toml:"sticky_token" json:"sticky_token"`
	HideFuture       *bool        `yaml:"hide_future" toml:"hide_future" json:"hide_future"`
	AnnotationPolicy string       `yaml:"annotation_policy" toml:"annotation_policy" json:"annotation_policy"`
	Ignore           []string     `yaml:"ignore" toml:"ignore" json:"ignore"`
	Templates        Templates    `yaml:"templates" toml:"templates" json:"templates"`
	Quotes           QuotesConfig `yaml:"quotes" toml:"quotes" json:"quotes"`
}

// Templates names the template files, relative to TemplatesDir, that override
// the built-in ones when present.
type Templates struct {
	Daily   string `yaml:"daily" toml:"daily" json:"daily"`
	Archive string `yaml:"archive" toml:"archive" json:"archive"`
}

// QuotesConfig controls the quote of the day.
type QuotesConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	CacheFile string `yaml:"cache_file" toml:"cache_file" json:"cache_file"` // relative to the vault
	URL       string `yaml:"url" toml:"url" json:"url"`
	Pages     int    `yaml:"pages" toml:"pages" json:"pages"`
	Timeout   int    `yaml:"timeout" toml:"timeout" json:"timeout"` // seconds per request
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	hide := true
	return Config{
		Vault:            DefaultVault(),
		DailyDir:         "Dailies",
		TemplatesDir:     "Templates",
		ArchiveNote:      "Archive",
		NoteFormat:       notes.DefaultFormat,
		ShameGlyph:       "!",
		ShameThreshold:   5,
		StickyToken:      "#sticky",
		HideFuture:       &hide,
		AnnotationPolicy: string(todo.AnnotationLast),
		Ignore:           []string{},
		Templates: Templates{
			Daily:   "daily.md",
			Archive: "archive.md",
		},
		Quotes: QuotesConfig{
			Enabled:   false,
			CacheFile: "Scripts/quotes.json",
			URL:       DefaultQuotesURL,
			Pages:     7,
			Timeout:   10,
		},
	}
}

// DefaultVault is the vault used when neither the config file nor the
// environment names one.
func DefaultVault() string {
	if v := strings.TrimSpace(os.Getenv("CARRYOVER_VAULT")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "notes"
	}
	return filepath.Join(home, "notes")
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/carryover/config.yaml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "carryover", defaultConfigName)
}

// Load reads the config at configPath. A missing file yields the defaults.
// A non-empty vault overrides the one in the file.
func Load(configPath, vault string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := decodeFile(configPath, &cfg); err != nil {
				return nil, err
			}
		}
	}

	if v := strings.TrimSpace(vault); v != "" {
		cfg.Vault = v
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if strings.TrimSpace(c.Vault) == "" {
		c.Vault = d.Vault
	}
	c.Vault = expandHome(c.Vault)
	if c.DailyDir == "" {
		c.DailyDir = d.DailyDir
	}
	if c.TemplatesDir == "" {
		c.TemplatesDir = d.TemplatesDir
	}
	if c.ArchiveNote == "" {
		c.ArchiveNote = d.ArchiveNote
	}
	if c.NoteFormat == "" {
		c.NoteFormat = d.NoteFormat
	}
	if c.ShameGlyph == "" {
		c.ShameGlyph = d.ShameGlyph
	}
	if c.ShameThreshold == 0 {
		c.ShameThreshold = d.ShameThreshold
	}
	if c.StickyToken == "" {
		c.StickyToken = d.StickyToken
	}
	if c.HideFuture == nil {
		c.HideFuture = d.HideFuture
	}
	if c.AnnotationPolicy == "" {
		c.AnnotationPolicy = d.AnnotationPolicy
	}
	if c.Ignore == nil {
		c.Ignore = d.Ignore
	}
	if c.Templates.Daily == "" {
		c.Templates.Daily = d.Templates.Daily
	}
	if c.Templates.Archive == "" {
		c.Templates.Archive = d.Templates.Archive
	}
	if c.Quotes.CacheFile == "" {
		c.Quotes.CacheFile = d.Quotes.CacheFile
	}
	if c.Quotes.URL == "" {
		c.Quotes.URL = d.Quotes.URL
	}
	if c.Quotes.Pages == 0 {
		c.Quotes.Pages = d.Quotes.Pages
	}
	if c.Quotes.Timeout == 0 {
		c.Quotes.Timeout = d.Quotes.Timeout
	}
}

// HidesFuture reports whether future items stay out of the daily note.
func (c *Config) HidesFuture() bool {
	return c.HideFuture == nil || *c.HideFuture
}

// Rules projects the planner rules.
func (c *Config) Rules() todo.Rules {
	return todo.Rules{
		Glyph:       c.ShameGlyph,
		Threshold:   c.ShameThreshold,
		StickyToken: c.StickyToken,
		ArchiveNote: c.ArchiveNote,
	}
}

// Policy returns the parsed annotation policy. Validate guarantees it parses.
func (c *Config) Policy() todo.AnnotationPolicy {
	p, err := todo.ParseAnnotationPolicy(c.AnnotationPolicy)
	if err != nil {
		return todo.AnnotationLast
	}
	return p
}

// DailyPath is the absolute directory holding daily notes.
func (c *Config) DailyPath() string {
	return c.resolve(c.DailyDir)
}

// TemplatesPath is the absolute directory holding template overrides.
func (c *Config) TemplatesPath() string {
	return c.resolve(c.TemplatesDir)
}

// QuotesCachePath is the absolute path of the quotes cache file.
func (c *Config) QuotesCachePath() string {
	return c.resolve(c.Quotes.CacheFile)
}

func (c *Config) resolve(p string) string {
	p = expandHome(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Vault, p)
}

// Encode writes the config as YAML, the format init creates by default.
func (c *Config) Encode() ([]byte, error) {
	return yaml.Marshal(c)
}

// EncodeFor encodes the config in the format Load expects for path.
func (c *Config) EncodeFor(path string) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(path), ".toml") {
		return c.Encode()
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
