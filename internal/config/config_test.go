package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/carryover/internal/notes"
	"github.com/amirbrooks/carryover/internal/todo"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	vault := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), vault)
	require.NoError(t, err)

	assert.Equal(t, vault, cfg.Vault)
	assert.Equal(t, "Dailies", cfg.DailyDir)
	assert.Equal(t, notes.DefaultFormat, cfg.NoteFormat)
	assert.Equal(t, todo.DefaultRules(), cfg.Rules())
	assert.True(t, cfg.HidesFuture())
	assert.Equal(t, todo.AnnotationLast, cfg.Policy())
	assert.Equal(t, filepath.Join(vault, "Dailies"), cfg.DailyPath())
	assert.Equal(t, filepath.Join(vault, "Scripts", "quotes.json"), cfg.QuotesCachePath())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
vault: /tmp/vault
daily_dir: Journal
note_format: YYYY-MM-DD
shame_glyph: "*"
shame_threshold: 3
hide_future: false
annotation_policy: first
ignore:
  - ".trash/**"
quotes:
  enabled: true
  pages: 2
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/vault", cfg.Vault)
	assert.Equal(t, "Journal", cfg.DailyDir)
	assert.Equal(t, "YYYY-MM-DD", cfg.NoteFormat)
	assert.Equal(t, todo.Rules{Glyph: "*", Threshold: 3, StickyToken: "#sticky", ArchiveNote: "Archive"}, cfg.Rules())
	assert.False(t, cfg.HidesFuture())
	assert.Equal(t, todo.AnnotationFirst, cfg.Policy())
	assert.Equal(t, []string{".trash/**"}, cfg.Ignore)
	assert.True(t, cfg.Quotes.Enabled)
	assert.Equal(t, 2, cfg.Quotes.Pages)
	assert.Equal(t, DefaultQuotesURL, cfg.Quotes.URL)
	assert.Equal(t, 10, cfg.Quotes.Timeout)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
vault = "/srv/notes"
archive_note = "Someday"
sticky_token = "@keep"

[templates]
daily = "my-daily.md"
`)

	cfg, err := Load(path, "/override")
	require.NoError(t, err)

	assert.Equal(t, "/override", cfg.Vault)
	assert.Equal(t, "Someday", cfg.ArchiveNote)
	assert.Equal(t, "@keep", cfg.StickyToken)
	assert.Equal(t, "my-daily.md", cfg.Templates.Daily)
	assert.Equal(t, "archive.md", cfg.Templates.Archive)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeFile(t, "config.yaml", "vault: [unclosed")
	_, err := Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidFormat(t *testing.T) {
	path := writeFile(t, "config.yaml", "note_format: \"%d/%m\"\n")
	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, notes.ErrUnsupportedDateFormat.Error())

	var fieldErrs criterio.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, "note_format", fieldErrs[0].Field)
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vault = t.TempDir()
	cfg.ShameThreshold = -1
	cfg.AnnotationPolicy = "middle"
	cfg.ArchiveNote = "D20250101"
	cfg.Ignore = []string{"[unterminated"}

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"archive_note", "annotation_policy", "shame_threshold", "ignore[0]"}, fields)
}

func TestValidate_Quotes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quotes = QuotesConfig{Enabled: true, URL: "not a url", CacheFile: "q.json"}

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 3)

	cfg.Quotes.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "carryover", "config.yaml"), DefaultConfigPath())
}

func TestDefaultVault_Env(t *testing.T) {
	t.Setenv("CARRYOVER_VAULT", "/env/vault")
	assert.Equal(t, "/env/vault", DefaultVault())
}

func TestEncode_RoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vault = "/v"
	b, err := cfg.Encode()
	require.NoError(t, err)

	path := writeFile(t, "config.yaml", string(b))
	loaded, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}

func TestEncodeFor_TOML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vault = "/v"
	cfg.ShameThreshold = 3
	b, err := cfg.EncodeFor("config.toml")
	require.NoError(t, err)
	assert.Contains(t, string(b), "shame_threshold = 3")

	path := writeFile(t, "config.toml", string(b))
	loaded, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}
