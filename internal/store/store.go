// Package store reads and writes the markdown notes of a vault.
package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/amirbrooks/carryover/internal/config"
	"github.com/amirbrooks/carryover/internal/notes"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

const noteExt = ".md"

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	timeNow              = func() time.Time { return time.Now().UTC() }
)

// SourceUnavailableError names a note that could not be found anywhere in the
// vault. It still satisfies errors.Is(err, ErrSourceUnavailable).
type SourceUnavailableError struct {
	Name  string
	Vault string
}

func (e *SourceUnavailableError) Error() string {
	if e == nil || e.Name == "" {
		return "source unavailable"
	}
	return fmt.Sprintf("source unavailable: note %q not found in %s", e.Name, e.Vault)
}

func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// Vault is a directory tree of markdown notes. Daily notes and the archive
// note live in the daily directory; any other note may be found anywhere.
//
// In dry run, writes land in an in-memory overlay that later reads see, so a
// multi-day run can be previewed without touching disk.
type Vault struct {
	Root     string
	DailyDir string

	namer   *notes.Namer
	ignore  []string
	log     zerolog.Logger
	dryRun  bool
	overlay map[string]string // absolute path -> content
	index   map[string]string // note name -> absolute path
}

// Open opens the vault described by cfg. Nothing is created until Init.
func Open(cfg *config.Config, log zerolog.Logger) (*Vault, error) {
	namer, err := notes.NewNamer(cfg.NoteFormat)
	if err != nil {
		return nil, err
	}
	return &Vault{
		Root:     filepath.Clean(cfg.Vault),
		DailyDir: filepath.Clean(cfg.DailyPath()),
		namer:    namer,
		ignore:   cfg.Ignore,
		log:      log.With().Str("cmp", "store").Logger(),
		overlay:  map[string]string{},
	}, nil
}

// SetDryRun switches writes to the in-memory overlay.
func (v *Vault) SetDryRun(on bool) { v.dryRun = on }

func (v *Vault) DryRun() bool { return v.dryRun }

func (v *Vault) Namer() *notes.Namer { return v.namer }

// Init creates the vault layout and writes each file in files, keyed by path
// relative to the vault root, unless it already exists. It returns the paths
// it created.
func (v *Vault) Init(files map[string][]byte) ([]string, error) {
	for _, dir := range []string{v.Root, v.DailyDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	var created []string
	for _, rel := range rels {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(v.Root, rel)
		}
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := WriteFileAtomic(path, files[rel], 0o644); err != nil {
			return created, fmt.Errorf("write %s: %w", rel, err)
		}
		created = append(created, path)
	}
	return created, nil
}

// NotePath is where the daily directory keeps note name.
func (v *Vault) NotePath(name string) string {
	return filepath.Join(v.DailyDir, name+noteExt)
}

// HasNote reports whether note name exists in the daily directory.
func (v *Vault) HasNote(name string) bool {
	path := v.NotePath(name)
	if _, ok := v.overlay[path]; ok {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

// ReadNote returns the content of note name, looking in the dry run overlay,
// then the daily directory, then anywhere in the vault.
func (v *Vault) ReadNote(name string) (string, error) {
	path := v.NotePath(name)
	if content, ok := v.overlay[path]; ok {
		return content, nil
	}
	b, err := os.ReadFile(path)
	if err == nil {
		return string(b), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	path, err = v.locate(name)
	if err != nil {
		return "", err
	}
	if content, ok := v.overlay[path]; ok {
		return content, nil
	}
	b, err = os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(b), nil
}

// ReadOptional is ReadNote for notes that may legitimately not exist yet.
func (v *Vault) ReadOptional(name string) (string, bool, error) {
	content, err := v.ReadNote(name)
	if errors.Is(err, ErrSourceUnavailable) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

// WriteNote writes note name into the daily directory and returns its path.
func (v *Vault) WriteNote(name, content string) (string, error) {
	path := v.NotePath(name)
	_, existed := v.overlay[path]
	if !existed {
		_, err := os.Stat(path)
		existed = err == nil
	}

	if v.dryRun {
		v.overlay[path] = content
		v.log.Debug().Str("note", name).Bool("existed", existed).Msg("dry run write")
		return path, nil
	}

	if existed {
		v.log.Info().Str("note", name).Str("path", path).Msg("overwriting existing note")
	}
	if err := WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if v.index != nil {
		v.index[name] = path
	}
	return path, nil
}

// Pending returns the dry run writes keyed by path.
func (v *Vault) Pending() map[string]string {
	out := make(map[string]string, len(v.overlay))
	for k, c := range v.overlay {
		out[k] = c
	}
	return out
}

// NoteNames lists every visible note in the vault. Hidden files and
// directories and paths matching an ignore glob are skipped. When a name
// occurs more than once the daily directory copy wins, then the first in
// lexical walk order.
func (v *Vault) NoteNames() ([]string, error) {
	index := map[string]string{}
	err := filepath.WalkDir(v.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == v.Root {
				return err
			}
			v.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == v.Root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || v.ignored(path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), noteExt) {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), noteExt)
		if _, seen := index[name]; !seen || filepath.Dir(path) == v.DailyDir {
			index[name] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault %s: %w", v.Root, err)
	}
	for path := range v.overlay {
		name := strings.TrimSuffix(filepath.Base(path), noteExt)
		index[name] = path
	}
	v.index = index

	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LatestDailyBefore returns the date of the newest daily note dated strictly
// before day.
func (v *Vault) LatestDailyBefore(day time.Time) (time.Time, bool, error) {
	day = notes.Day(day)
	var names []string
	entries, err := os.ReadDir(v.DailyDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, fmt.Errorf("list %s: %w", v.DailyDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), noteExt) {
			names = append(names, strings.TrimSuffix(e.Name(), noteExt))
		}
	}
	for path := range v.overlay {
		if filepath.Dir(path) == v.DailyDir {
			names = append(names, strings.TrimSuffix(filepath.Base(path), noteExt))
		}
	}

	var latest time.Time
	found := false
	for _, name := range names {
		if !v.namer.IsNote(name) {
			continue
		}
		d, err := v.namer.Date(name)
		if err != nil || !d.Before(day) {
			continue
		}
		if !found || d.After(latest) {
			latest, found = d, true
		}
	}
	return latest, found, nil
}

func (v *Vault) locate(name string) (string, error) {
	if v.index == nil {
		if _, err := v.NoteNames(); err != nil {
			return "", err
		}
	}
	if path, ok := v.index[name]; ok {
		return path, nil
	}
	return "", &SourceUnavailableError{Name: name, Vault: v.Root}
}

func (v *Vault) ignored(path string) bool {
	if len(v.ignore) == 0 {
		return false
	}
	rel, err := filepath.Rel(v.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range v.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// NewID returns a new upper-case ULID.
func NewID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".tmp-"+NewID())
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
