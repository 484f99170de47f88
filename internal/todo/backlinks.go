package todo

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// NoteSource lists and reads the notes of a vault by identifier.
type NoteSource interface {
	NoteNames() ([]string, error)
	ReadNote(name string) (string, error)
}

// Resolver finds todos in other notes that defer themselves to a given note.
type Resolver struct {
	src       NoteSource
	extractor *Extractor
	log       zerolog.Logger
}

func NewResolver(src NoteSource, ex *Extractor, log zerolog.Logger) *Resolver {
	return &Resolver{src: src, extractor: ex, log: log}
}

// Resolve returns every unfinished todo, anywhere except target itself, whose
// deferral annotation names target. Each keeps its true source note and is
// forced to ActionNoop. Notes that cannot be read are skipped with a warning.
func (r *Resolver) Resolve(target string) ([]Todo, error) {
	names, err := r.src.NoteNames()
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	needle := "[[" + target
	var out []Todo
	for _, name := range names {
		if name == target {
			continue
		}
		content, err := r.src.ReadNote(name)
		if err != nil {
			r.log.Warn().Err(err).Str("note", name).Msg("skipping unreadable note in backlink scan")
			continue
		}
		if !strings.Contains(content, needle) {
			continue
		}
		for _, t := range r.extractor.Extract(name, content) {
			if !t.Unfinished() || t.TargetNote != target {
				continue
			}
			t.Action = ActionNoop
			t.UpcomingShameMarks = ""
			out = append(out, t)
		}
	}

	r.log.Debug().Str("target", target).Int("backlinks", len(out)).Msg("resolved backlinks")
	return out, nil
}
