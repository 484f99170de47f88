package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/amirbrooks/carryover/internal/notes"
	"github.com/amirbrooks/carryover/internal/todo"
)

// Validate checks that the configuration is valid. All field problems are
// reported together as criterio.FieldErrors.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("vault", c.Vault, required),
		criterio.Run("daily_dir", c.DailyDir, required),
		criterio.Run("note_format", c.NoteFormat, notes.ValidFormat),
		criterio.Run("shame_glyph", c.ShameGlyph, glyph),
		criterio.Run("sticky_token", c.StickyToken, noWhitespace),
		criterio.Run("archive_note", c.ArchiveNote, archiveNote(c)),
		criterio.Run("annotation_policy", c.AnnotationPolicy, annotationPolicy),
		c.validateThreshold(),
		c.validateIgnore(),
		c.validateQuotes(),
	)
}

func (c *Config) validateThreshold() error {
	if c.ShameThreshold < 1 {
		return criterio.NewFieldErrors("shame_threshold", fmt.Errorf("must be at least 1, got %d", c.ShameThreshold))
	}
	return nil
}

func (c *Config) validateIgnore() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Ignore {
		if strings.TrimSpace(pattern) == "" || !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("ignore[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}

func (c *Config) validateQuotes() error {
	if !c.Quotes.Enabled {
		return nil
	}
	var errs criterio.FieldErrorsBuilder
	if c.Quotes.Pages < 1 {
		errs = errs.Append("quotes.pages", fmt.Errorf("must be at least 1, got %d", c.Quotes.Pages))
	}
	if c.Quotes.Timeout < 1 {
		errs = errs.Append("quotes.timeout", fmt.Errorf("must be at least 1 second, got %d", c.Quotes.Timeout))
	}
	if u, err := url.Parse(c.Quotes.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = errs.Append("quotes.url", fmt.Errorf("not an absolute url: %q", c.Quotes.URL))
	}
	if strings.TrimSpace(c.Quotes.CacheFile) == "" {
		errs = errs.Append("quotes.cache_file", errors.New("cannot be empty"))
	}
	return errs.ToError()
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func glyph(s string) error {
	if err := required(s); err != nil {
		return err
	}
	if strings.ContainsAny(s, " \t[]") {
		return fmt.Errorf("%q cannot contain whitespace or brackets", s)
	}
	return nil
}

func noWhitespace(s string) error {
	if err := required(s); err != nil {
		return err
	}
	if strings.ContainsAny(s, " \t") {
		return fmt.Errorf("%q cannot contain whitespace", s)
	}
	return nil
}

// archiveNote rejects archive names that would decode as a daily note.
func archiveNote(c *Config) func(string) error {
	return func(s string) error {
		if err := required(s); err != nil {
			return err
		}
		if strings.ContainsAny(s, "[]|/") {
			return fmt.Errorf("%q cannot contain brackets, pipes or slashes", s)
		}
		if n, err := notes.NewNamer(c.NoteFormat); err == nil && n.IsNote(s) {
			return fmt.Errorf("%q collides with a daily note name", s)
		}
		return nil
	}
}

func annotationPolicy(s string) error {
	_, err := todo.ParseAnnotationPolicy(s)
	return err
}
