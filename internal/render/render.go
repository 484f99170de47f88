// Package render builds daily and archive notes from text/template templates.
// Built-in templates are embedded; files of the same name in the vault's
// templates directory take precedence.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/amirbrooks/carryover/internal/quotes"
)

//go:embed templates/*.md
var builtin embed.FS

const (
	dailyTemplate   = "daily.md"
	archiveTemplate = "archive.md"
)

// DailyData is the data available to the daily note template.
type DailyData struct {
	NoteName          string
	Date              time.Time
	YesterdayNoteName string
	TomorrowNoteName  string
	DailyDir          string
	Tasks             []string
	Quote             *quotes.Quote
}

// ArchiveData is the data available to the archive note template.
type ArchiveData struct {
	NoteName string
	Tasks    []string
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"date": func(layout string, t time.Time) string { return t.Format(layout) },
}

// Renderer executes the daily and archive templates.
type Renderer struct {
	daily   *template.Template
	archive *template.Template
}

// New loads the templates, preferring dir/dailyName and dir/archiveName when
// they exist. An empty dir uses the built-ins only.
func New(dir, dailyName, archiveName string) (*Renderer, error) {
	daily, err := load(dir, dailyName, dailyTemplate)
	if err != nil {
		return nil, err
	}
	archive, err := load(dir, archiveName, archiveTemplate)
	if err != nil {
		return nil, err
	}
	return &Renderer{daily: daily, archive: archive}, nil
}

// Defaults returns the built-in templates keyed by file name, for init.
func Defaults() map[string][]byte {
	out := map[string][]byte{}
	for _, name := range []string{dailyTemplate, archiveTemplate} {
		b, err := builtin.ReadFile("templates/" + name)
		if err != nil {
			panic(fmt.Sprintf("embedded template %s: %v", name, err))
		}
		out[name] = b
	}
	return out
}

func (r *Renderer) Daily(d DailyData) (string, error) {
	return execute(r.daily, d)
}

func (r *Renderer) Archive(d ArchiveData) (string, error) {
	return execute(r.archive, d)
}

func load(dir, name, fallback string) (*template.Template, error) {
	if name == "" {
		name = fallback
	}
	if dir != "" {
		path := filepath.Join(dir, name)
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			return parse(name, string(b))
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read template %s: %w", path, err)
		}
	}
	b, err := builtin.ReadFile("templates/" + fallback)
	if err != nil {
		return nil, err
	}
	return parse(fallback, string(b))
}

func parse(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return t, nil
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
