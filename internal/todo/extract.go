package todo

import (
	"fmt"
	"regexp"
	"strings"
)

// AnnotationPolicy picks the deferral target when a line ends with more than
// one [[Note]] annotation.
type AnnotationPolicy string

const (
	AnnotationFirst AnnotationPolicy = "first"
	AnnotationLast  AnnotationPolicy = "last"
)

func ParseAnnotationPolicy(s string) (AnnotationPolicy, error) {
	switch p := AnnotationPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case AnnotationFirst, AnnotationLast:
		return p, nil
	case "":
		return AnnotationLast, nil
	default:
		return "", fmt.Errorf("unknown annotation policy %q (use first or last)", s)
	}
}

// Extractor turns note text into todos.
type Extractor struct {
	line   *regexp.Regexp
	policy AnnotationPolicy
}

func NewExtractor(glyph string, policy AnnotationPolicy) *Extractor {
	if glyph == "" {
		glyph = "!"
	}
	if policy == "" {
		policy = AnnotationLast
	}
	pattern := `^(\s*)-\s+\[( |x|X|>)\]\s*((?:` + regexp.QuoteMeta(glyph) + `)*)\s*(.*)$`
	return &Extractor{
		line:   regexp.MustCompile(pattern),
		policy: policy,
	}
}

// Extract returns one Todo per checklist line in content, top to bottom.
// Lines that are not checklist items, and items with an empty body, are skipped.
func (e *Extractor) Extract(note, content string) []Todo {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []Todo
	for _, line := range strings.Split(content, "\n") {
		t, ok := e.ParseLine(note, line)
		if !ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ParseLine parses a single line found in note.
func (e *Extractor) ParseLine(note, line string) (Todo, bool) {
	m := e.line.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return Todo{}, false
	}
	body, targets := splitAnnotations(m[4])
	t := Todo{
		RawText:     m[0],
		Indentation: m[1],
		Marker:      markerFromGlyph(m[2]),
		ShameMarks:  m[3],
		Text:        normalizeText(body),
		source:      note,
	}
	if len(targets) > 0 {
		if e.policy == AnnotationFirst {
			t.TargetNote = targets[0]
		} else {
			t.TargetNote = targets[len(targets)-1]
		}
	}
	if t.Text == "" && t.TargetNote == "" {
		return Todo{}, false
	}
	return t, true
}

// MarkMoved rewrites the marker of every open item in content as moved ([>])
// and returns the new content with the number of lines changed. Line endings
// are preserved.
func (e *Extractor) MarkMoved(note, content string) (string, int) {
	lines := strings.Split(content, "\n")
	n := 0
	for i, line := range lines {
		t, ok := e.ParseLine(note, line)
		if !ok || t.Marker != MarkerOpen {
			continue
		}
		idx := e.line.FindStringSubmatchIndex(strings.TrimRight(line, "\r"))
		lines[i] = line[:idx[4]] + ">" + line[idx[5]:]
		n++
	}
	return strings.Join(lines, "\n"), n
}

// splitAnnotations removes the run of [[Note]] annotations at the end of body
// and returns them left to right. Aliased links resolve to the note name.
func splitAnnotations(body string) (string, []string) {
	rest := strings.TrimRight(body, " \t")
	var targets []string
	for strings.HasSuffix(rest, "]]") {
		open := strings.LastIndex(rest, "[[")
		if open < 0 {
			break
		}
		inner := rest[open+2 : len(rest)-2]
		if strings.ContainsAny(inner, "[]") {
			break
		}
		if i := strings.Index(inner, "|"); i >= 0 {
			inner = inner[:i]
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			break
		}
		targets = append([]string{inner}, targets...)
		rest = strings.TrimRight(rest[:open], " \t")
	}
	return rest, targets
}

// stripAnnotations returns line without its trailing annotations.
func stripAnnotations(line string) string {
	rest, _ := splitAnnotations(line)
	return rest
}
