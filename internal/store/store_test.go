package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/carryover/internal/config"
)

func newVault(t *testing.T, mutate ...func(*config.Config)) (*Vault, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Vault = root
	for _, m := range mutate {
		m(&cfg)
	}
	v, err := Open(&cfg, zerolog.Nop())
	require.NoError(t, err)
	return v, root
}

func put(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOpen_UnknownFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NoteFormat = "nope"
	_, err := Open(&cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestInit_DoesNotOverwrite(t *testing.T) {
	v, root := newVault(t)
	put(t, root, "Templates/daily.md", "mine")

	created, err := v.Init(map[string][]byte{
		"Templates/daily.md":   []byte("default daily"),
		"Templates/archive.md": []byte("default archive"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "Templates", "archive.md")}, created)
	assert.DirExists(t, filepath.Join(root, "Dailies"))

	b, err := os.ReadFile(filepath.Join(root, "Templates", "daily.md"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(b))
}

func TestReadNote_DailyDirThenVault(t *testing.T) {
	v, root := newVault(t)
	put(t, root, "Dailies/D20250228.md", "daily")
	put(t, root, "Projects/Reading.md", "reading")

	got, err := v.ReadNote("D20250228")
	require.NoError(t, err)
	assert.Equal(t, "daily", got)

	got, err = v.ReadNote("Reading")
	require.NoError(t, err)
	assert.Equal(t, "reading", got)
}

func TestReadNote_Missing(t *testing.T) {
	v, _ := newVault(t)

	_, err := v.ReadNote("D20250228")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))

	var sue *SourceUnavailableError
	require.ErrorAs(t, err, &sue)
	assert.Equal(t, "D20250228", sue.Name)

	content, ok, err := v.ReadOptional("Archive")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, content)
}

func TestWriteNote(t *testing.T) {
	v, root := newVault(t)

	path, err := v.WriteNote("D20250301", "hello")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Dailies", "D20250301.md"), path)
	assert.True(t, v.HasNote("D20250301"))

	_, err = v.WriteNote("D20250301", "again")
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "again", string(b))

	entries, err := os.ReadDir(filepath.Join(root, "Dailies"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteNote_DryRunOverlay(t *testing.T) {
	v, root := newVault(t)
	v.SetDryRun(true)
	require.True(t, v.DryRun())

	_, err := v.WriteNote("D20250301", "preview")
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(root, "Dailies", "D20250301.md"))
	assert.True(t, v.HasNote("D20250301"))

	got, err := v.ReadNote("D20250301")
	require.NoError(t, err)
	assert.Equal(t, "preview", got)

	names, err := v.NoteNames()
	require.NoError(t, err)
	assert.Contains(t, names, "D20250301")
	assert.Equal(t, map[string]string{v.NotePath("D20250301"): "preview"}, v.Pending())
}

func TestNoteNames_SkipsHiddenAndIgnored(t *testing.T) {
	v, root := newVault(t, func(c *config.Config) {
		c.Ignore = []string{"Attachments/**", "**/*.draft.md"}
	})
	put(t, root, "Dailies/D20250228.md", "")
	put(t, root, "Projects/Plan.md", "")
	put(t, root, "Projects/Idea.draft.md", "")
	put(t, root, "Attachments/Scan.md", "")
	put(t, root, ".obsidian/workspace.md", "")
	put(t, root, ".hidden.md", "")
	put(t, root, "Projects/image.png", "")

	names, err := v.NoteNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"D20250228", "Plan"}, names)
}

func TestNoteNames_DailyDirWins(t *testing.T) {
	v, root := newVault(t)
	put(t, root, "Aaa/D20250228.md", "elsewhere")
	put(t, root, "Dailies/D20250228.md", "daily")
	put(t, root, "Aaa/Dup.md", "first")
	put(t, root, "Zzz/Dup.md", "second")

	_, err := v.NoteNames()
	require.NoError(t, err)

	got, err := v.ReadNote("Dup")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
	assert.Equal(t, filepath.Join(root, "Dailies", "D20250228.md"), v.index["D20250228"])
}

func TestLatestDailyBefore(t *testing.T) {
	v, root := newVault(t)
	put(t, root, "Dailies/D20250220.md", "")
	put(t, root, "Dailies/D20250225.md", "")
	put(t, root, "Dailies/D20250301.md", "")
	put(t, root, "Dailies/Archive.md", "")
	put(t, root, "Dailies/xD20250227.md", "")

	got, ok, err := v.LatestDailyBefore(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC), got)

	_, ok, err = v.LatestDailyBefore(time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, ok)

	v.SetDryRun(true)
	_, err = v.WriteNote("D20250228", "")
	require.NoError(t, err)
	got, ok, err = v.LatestDailyBefore(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), got)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
