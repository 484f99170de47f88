package daily

import (
	"fmt"
	"time"

	"github.com/amirbrooks/carryover/internal/notes"
	"github.com/amirbrooks/carryover/internal/todo"
)

// Plan is the outcome of planning one day without rendering or writing.
type Plan struct {
	Note       string    // note being generated
	SourceNote string    // note the todos are carried out of
	Date       time.Time // date of Note

	Todos   []todo.Todo // deduplicated daily set, in planning order
	Archive []todo.Todo // deduplicated archive note set
	Daily   todo.Assembly

	Backlinks int

	assembler     *todo.Assembler
	sourceContent string
}

// ArchiveLines formats the archive note entries.
func (p *Plan) ArchiveLines() []string {
	return p.assembler.AssembleArchive(p.Archive).Archived()
}

// Entry is one planned todo as shown by the plan command.
type Entry struct {
	Action      todo.Action `json:"action"`
	Source      string      `json:"source"`
	Destination string      `json:"destination"` // daily, archive or hidden
	Line        string      `json:"line"`
}

// Entries lists the daily set followed by the archive note set.
func (p *Plan) Entries() []Entry {
	out := make([]Entry, 0, len(p.Todos)+len(p.Archive))
	for _, t := range p.Todos {
		dest := "daily"
		switch {
		case t.Action == todo.ActionArchive:
			continue
		case t.Action == todo.ActionFuture && !p.Daily.FutureVisible():
			dest = "hidden"
		}
		out = append(out, Entry{Action: t.Action, Source: t.Source(), Destination: dest, Line: p.assembler.Line(t)})
	}
	for _, t := range p.Archive {
		out = append(out, Entry{Action: t.Action, Source: t.Source(), Destination: "archive", Line: p.assembler.ArchiveLine(t)})
	}
	return out
}

// Plan extracts, plans, resolves backlinks and deduplicates the todos for the
// note of day. The note of the previous day must exist.
func (g *Generator) Plan(day time.Time) (*Plan, error) {
	day = notes.Day(day)
	prev := day.AddDate(0, 0, -1)
	p := &Plan{
		Note:       g.namer.Name(day),
		SourceNote: g.namer.Name(prev),
		Date:       day,
		assembler:  g.assembler,
	}

	content, err := g.vault.ReadNote(p.SourceNote)
	if err != nil {
		return nil, err
	}
	p.sourceContent = content

	carried, err := g.planner.PlanAll(todo.Unfinished(g.extractor.Extract(p.SourceNote, content)), prev)
	if err != nil {
		return nil, err
	}

	archived, err := g.plannedArchive(prev)
	if err != nil {
		return nil, err
	}

	backlinks, err := g.resolver.Resolve(p.Note)
	if err != nil {
		return nil, fmt.Errorf("resolve backlinks to %s: %w", p.Note, err)
	}
	p.Backlinks = len(backlinks)

	// items stuck inside the archive surface in the daily note as well
	set := append([]todo.Todo{}, carried...)
	for _, t := range archived {
		if t.Action == todo.ActionStick {
			set = append(set, t)
		}
	}
	set = append(set, backlinks...)
	p.Todos = todo.Dedupe(set)
	p.Daily = g.assembler.Assemble(p.Todos)

	archiveBacklinks, err := g.resolver.Resolve(g.cfg.ArchiveNote)
	if err != nil {
		return nil, fmt.Errorf("resolve backlinks to %s: %w", g.cfg.ArchiveNote, err)
	}
	archiveSet := append([]todo.Todo{}, archived...)
	for _, t := range p.Todos {
		if t.Action == todo.ActionArchive {
			archiveSet = append(archiveSet, t)
		}
	}
	for _, t := range archiveBacklinks {
		// a moved line has already been carried out of its note
		if t.Marker == todo.MarkerMoved {
			continue
		}
		archiveSet = append(archiveSet, t)
	}
	p.Archive = todo.Dedupe(archiveSet)

	return p, nil
}

func (g *Generator) plannedArchive(day time.Time) ([]todo.Todo, error) {
	content, ok, err := g.vault.ReadOptional(g.cfg.ArchiveNote)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.log.Debug().Str("archive", g.cfg.ArchiveNote).Msg("no archive note yet")
		return nil, nil
	}
	return g.planner.PlanAll(todo.Unfinished(g.extractor.Extract(g.cfg.ArchiveNote, content)), day)
}
