// Package notes maps daily note identifiers to calendar dates and back.
//
// A note identifier is a date-bearing name such as "D20250301". The grammar is
// selected by a note format key; identifiers are only ever compared through
// their decoded dates.
package notes

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnsupportedDateFormat  = errors.New("unsupported date format")
	ErrDateNotFoundInName     = errors.New("date not found in name")
	ErrUnsupportedRelativeDay = errors.New("unsupported relative day")
)

// DefaultFormat is the note format used when none is configured.
const DefaultFormat = "D%Y%m%d"

// DateNotFoundError reports an identifier without a decodable date.
// It still satisfies errors.Is(err, ErrDateNotFoundInName).
type DateNotFoundError struct {
	Name   string
	Format string
	Err    error
}

func (e *DateNotFoundError) Error() string {
	msg := fmt.Sprintf("nothing inside %q looks like a %s date", e.Name, e.Format)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DateNotFoundError) Is(target error) bool {
	return target == ErrDateNotFoundInName
}

func (e *DateNotFoundError) Unwrap() error { return e.Err }

type grammar struct {
	name    string // layout of a full note name
	date    string // layout of the date text matched by pattern
	pattern *regexp.Regexp
}

var grammars = map[string]grammar{
	"D%Y%m%d": {
		name:    "D20060102",
		date:    "20060102",
		pattern: regexp.MustCompile(`\d{8}`),
	},
	"YYYY-MM-DD": {
		name:    "2006-01-02",
		date:    "2006-01-02",
		pattern: regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	},
	"DD-MM-YYYY": {
		name:    "02-01-2006",
		date:    "02-01-2006",
		pattern: regexp.MustCompile(`\d{2}-\d{2}-\d{4}`),
	},
	"MM-DD-YYYY": {
		name:    "01-02-2006",
		date:    "01-02-2006",
		pattern: regexp.MustCompile(`\d{2}-\d{2}-\d{4}`),
	},
}

// Formats lists the supported note format keys.
func Formats() []string {
	out := make([]string, 0, len(grammars))
	for k := range grammars {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidFormat reports whether format has a known date grammar.
func ValidFormat(format string) error {
	if _, ok := grammars[format]; !ok {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedDateFormat, format, strings.Join(Formats(), ", "))
	}
	return nil
}

// Namer converts between dates and note identifiers for one note format.
type Namer struct {
	format string
	g      grammar
}

func NewNamer(format string) (*Namer, error) {
	if err := ValidFormat(format); err != nil {
		return nil, err
	}
	return &Namer{format: format, g: grammars[format]}, nil
}

func (n *Namer) Format() string { return n.format }

// Name returns the identifier of the note for the calendar day of t.
func (n *Namer) Name(t time.Time) string {
	return Day(t).Format(n.g.name)
}

// Date decodes the first date substring found in name.
func (n *Namer) Date(name string) (time.Time, error) {
	text := n.g.pattern.FindString(name)
	if text == "" {
		return time.Time{}, &DateNotFoundError{Name: name, Format: n.format}
	}
	d, err := time.Parse(n.g.date, text)
	if err != nil {
		return time.Time{}, &DateNotFoundError{Name: name, Format: n.format, Err: err}
	}
	return d, nil
}

// IsNote reports whether name is exactly the identifier of some day, i.e.
// decoding and re-encoding it is lossless.
func (n *Namer) IsNote(name string) bool {
	d, err := n.Date(name)
	if err != nil {
		return false
	}
	return n.Name(d) == name
}

// ParseTarget resolves a user supplied target: a relative keyword, an ISO
// date (YYYY-MM-DD) or a note identifier.
func (n *Namer) ParseTarget(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Relative("tomorrow", today)
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	if d, err := n.Date(s); err == nil {
		return d, nil
	}
	if isWord(s) {
		return Relative(s, today)
	}
	return n.Date(s)
}

// Relative resolves today, tomorrow or yesterday against today.
func Relative(keyword string, today time.Time) (time.Time, error) {
	today = Day(today)
	switch strings.ToLower(strings.TrimSpace(keyword)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q (use today, tomorrow or yesterday)", ErrUnsupportedRelativeDay, keyword)
	}
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isWord(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return s != ""
}
