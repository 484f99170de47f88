package todo

import "strings"

// Assembly holds formatted lines grouped by bucket, each bucket in input order.
type Assembly struct {
	Active      []string // shame, start and stick
	Passthrough []string // noop
	Future      []string
	Archive     []string

	Counts map[Action]int

	futureVisible bool
}

// Daily returns the lines surfaced in the daily note: active items first,
// then passthroughs, then future items when they are visible.
func (a Assembly) Daily() []string {
	out := make([]string, 0, len(a.Active)+len(a.Passthrough)+len(a.Future))
	out = append(out, a.Active...)
	out = append(out, a.Passthrough...)
	if a.futureVisible {
		out = append(out, a.Future...)
	}
	return out
}

// FutureVisible reports whether Daily includes future items.
func (a Assembly) FutureVisible() bool { return a.futureVisible }

// Archived returns the lines destined for the archive note.
func (a Assembly) Archived() []string {
	return append([]string(nil), a.Archive...)
}

// Assembler partitions planned todos and renders each to a single line.
type Assembler struct {
	hideFuture bool
}

func NewAssembler(hideFuture bool) *Assembler {
	return &Assembler{hideFuture: hideFuture}
}

func (a *Assembler) Assemble(todos []Todo) Assembly {
	out := Assembly{
		Counts:        map[Action]int{},
		futureVisible: !a.hideFuture,
	}
	for _, t := range todos {
		out.Counts[t.Action]++
		line := a.Line(t)
		switch t.Action {
		case ActionShame, ActionStart, ActionStick:
			out.Active = append(out.Active, line)
		case ActionNoop:
			out.Passthrough = append(out.Passthrough, line)
		case ActionFuture:
			out.Future = append(out.Future, line)
		case ActionArchive:
			out.Archive = append(out.Archive, line)
		default:
			// unplanned todos pass through untouched
			out.Passthrough = append(out.Passthrough, line)
		}
	}
	return out
}

// AssembleArchive renders todos for the archive note. Every item lands in the
// Archive bucket whatever its action.
func (a *Assembler) AssembleArchive(todos []Todo) Assembly {
	out := Assembly{Counts: map[Action]int{}}
	for _, t := range todos {
		out.Counts[t.Action]++
		out.Archive = append(out.Archive, a.ArchiveLine(t))
	}
	return out
}

// ArchiveLine formats t as an archive note entry: an open checkbox with no
// shame marks and no annotation.
func (a *Assembler) ArchiveLine(t Todo) string {
	return checkbox(t.Indentation, "", t.Text)
}

// Line formats t for its action.
func (a *Assembler) Line(t Todo) string {
	switch t.Action {
	case ActionShame, ActionStart:
		return checkbox(t.Indentation, t.UpcomingShameMarks, t.Text)
	case ActionStick, ActionArchive:
		return a.ArchiveLine(t)
	case ActionFuture:
		line := checkbox(t.Indentation, "", t.Text)
		if t.TargetNote != "" {
			line += " [[" + t.TargetNote + "]]"
		}
		return line
	case ActionNoop:
		return reopen(t)
	default:
		return t.RawText
	}
}

func checkbox(indent, marks, text string) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString("- [ ]")
	for _, part := range []string{marks, text} {
		if part == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(part)
	}
	return b.String()
}

// reopen turns a moved marker back into an open one and drops the trailing
// deferral annotation.
func reopen(t Todo) string {
	raw := t.RawText
	if t.Marker == MarkerMoved {
		raw = strings.Replace(raw, "[>]", "[ ]", 1)
	}
	return stripAnnotations(raw)
}
