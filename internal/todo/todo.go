// Package todo is the todo lifecycle engine: it extracts checklist items from
// note text, plans what happens to each one on the next day, resolves
// backlinks from other notes, removes duplicates and formats the result.
package todo

import "strings"

// Marker is the checklist state of a line.
type Marker string

const (
	MarkerOpen   Marker = "open"
	MarkerClosed Marker = "closed"
	MarkerMoved  Marker = "moved"
)

func markerFromGlyph(g string) Marker {
	switch g {
	case "x", "X":
		return MarkerClosed
	case ">":
		return MarkerMoved
	default:
		return MarkerOpen
	}
}

// Action is the outcome of planning a todo.
type Action string

const (
	ActionNone    Action = ""
	ActionStart   Action = "start"
	ActionShame   Action = "shame"
	ActionArchive Action = "archive"
	ActionStick   Action = "stick"
	ActionFuture  Action = "future"
	ActionNoop    Action = "noop"
)

// Todo is one checklist line extracted from a note.
type Todo struct {
	RawText            string
	Indentation        string
	Marker             Marker
	ShameMarks         string
	Text               string
	TargetNote         string
	Action             Action
	UpcomingShameMarks string

	source string
}

// Source is the note the line was found in.
func (t Todo) Source() string { return t.source }

// Unfinished reports whether the todo still needs doing.
func (t Todo) Unfinished() bool { return t.Marker != MarkerClosed }

// Unfinished filters out closed todos, keeping order.
func Unfinished(todos []Todo) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if t.Unfinished() {
			out = append(out, t)
		}
	}
	return out
}

// normalizeText collapses whitespace runs so equal wording compares equal.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// shameLevel is the number of escalation glyphs in marks.
func shameLevel(marks, glyph string) int {
	if glyph == "" {
		return 0
	}
	return strings.Count(marks, glyph)
}
