// Package daily generates daily notes: it carries the open todos of one day's
// note into the next, maintains the archive note and marks carried items as
// moved in their source.
package daily

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirbrooks/carryover/internal/config"
	"github.com/amirbrooks/carryover/internal/notes"
	"github.com/amirbrooks/carryover/internal/quotes"
	"github.com/amirbrooks/carryover/internal/render"
	"github.com/amirbrooks/carryover/internal/store"
	"github.com/amirbrooks/carryover/internal/todo"
)

var ErrConflictingWrites = errors.New("only-write-to-archive and only-write-to-daily-notes are mutually exclusive")

// QuoteSource supplies the quote of the day.
type QuoteSource interface {
	Random(ctx context.Context) (quotes.Quote, error)
}

// Options select what a run generates and writes.
type Options struct {
	Target      time.Time
	CatchUp     bool
	OnlyArchive bool
	OnlyDaily   bool
}

func (o Options) Validate() error {
	if o.OnlyArchive && o.OnlyDaily {
		return ErrConflictingWrites
	}
	if o.CatchUp && o.OnlyArchive {
		return errors.New("catch-up needs each generated daily note as the next day's source; it cannot be combined with only-write-to-archive")
	}
	return nil
}

func (o Options) writesDaily() bool   { return !o.OnlyArchive }
func (o Options) writesArchive() bool { return !o.OnlyDaily }

// Result describes one generated day.
type Result struct {
	Note       string
	SourceNote string
	Date       time.Time

	Counts    map[todo.Action]int
	Backlinks int
	Moved     int

	Daily       string
	Archive     string
	DailyPath   string // empty when the daily note was not written
	ArchivePath string // empty when the archive note was not written
}

// Generator runs the daily pipeline against a vault.
type Generator struct {
	cfg       *config.Config
	vault     *store.Vault
	namer     *notes.Namer
	extractor *todo.Extractor
	planner   *todo.Planner
	resolver  *todo.Resolver
	assembler *todo.Assembler
	renderer  *render.Renderer
	quotes    QuoteSource
	log       zerolog.Logger
}

// New wires a generator. quotes may be nil to leave the quote out.
func New(cfg *config.Config, vault *store.Vault, renderer *render.Renderer, quotes QuoteSource, log zerolog.Logger) *Generator {
	log = log.With().Str("cmp", "daily").Logger()
	ex := todo.NewExtractor(cfg.ShameGlyph, cfg.Policy())
	return &Generator{
		cfg:       cfg,
		vault:     vault,
		namer:     vault.Namer(),
		extractor: ex,
		planner:   todo.NewPlanner(cfg.Rules(), vault.Namer()),
		resolver:  todo.NewResolver(vault, ex, log),
		assembler: todo.NewAssembler(cfg.HidesFuture()),
		renderer:  renderer,
		quotes:    quotes,
		log:       log,
	}
}

// Run generates the note for opts.Target. With CatchUp it first generates
// every missing day after the newest existing daily note, oldest first, each
// day reading the note written for the day before.
func (g *Generator) Run(ctx context.Context, opts Options) ([]Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	target := notes.Day(opts.Target)
	log := g.log.With().Str("run_id", store.NewID()).Logger()

	days := []time.Time{target}
	if opts.CatchUp {
		latest, ok, err := g.vault.LatestDailyBefore(target)
		if err != nil {
			return nil, err
		}
		if ok {
			days = days[:0]
			for d := latest.AddDate(0, 0, 1); !d.After(target); d = d.AddDate(0, 0, 1) {
				days = append(days, d)
			}
		} else {
			log.Warn().Str("target", g.namer.Name(target)).Msg("no earlier daily note to catch up from")
		}
		log.Info().Int("days", len(days)).Str("from", g.namer.Name(days[0])).Str("to", g.namer.Name(target)).Msg("catching up")
	}

	results := make([]Result, 0, len(days))
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := g.generate(ctx, day, opts, log)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Generate builds and writes the note for a single day.
func (g *Generator) Generate(ctx context.Context, day time.Time, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	return g.generate(ctx, notes.Day(day), opts, g.log.With().Str("run_id", store.NewID()).Logger())
}

func (g *Generator) generate(ctx context.Context, day time.Time, opts Options, log zerolog.Logger) (Result, error) {
	p, err := g.Plan(day)
	if err != nil {
		return Result{}, err
	}
	log = log.With().Str("note", p.Note).Str("source", p.SourceNote).Logger()

	res := Result{
		Note:       p.Note,
		SourceNote: p.SourceNote,
		Date:       p.Date,
		Counts:     p.Daily.Counts,
		Backlinks:  p.Backlinks,
	}

	data := render.DailyData{
		NoteName:          p.Note,
		Date:              p.Date,
		YesterdayNoteName: g.namer.Name(p.Date.AddDate(0, 0, -1)),
		TomorrowNoteName:  g.namer.Name(p.Date.AddDate(0, 0, 1)),
		DailyDir:          g.cfg.DailyDir,
		Tasks:             p.Daily.Daily(),
		Quote:             g.quote(ctx, log),
	}
	if res.Daily, err = g.renderer.Daily(data); err != nil {
		return res, err
	}
	if res.Archive, err = g.renderer.Archive(render.ArchiveData{NoteName: g.cfg.ArchiveNote, Tasks: p.ArchiveLines()}); err != nil {
		return res, err
	}

	if opts.writesDaily() {
		if res.DailyPath, err = g.vault.WriteNote(p.Note, res.Daily); err != nil {
			return res, err
		}
		if res.Moved, err = g.markMoved(p); err != nil {
			return res, err
		}
	}
	if opts.writesArchive() {
		if res.ArchivePath, err = g.vault.WriteNote(g.cfg.ArchiveNote, res.Archive); err != nil {
			return res, err
		}
	}

	log.Info().
		Bool("dry_run", g.vault.DryRun()).
		Int("carried", len(p.Daily.Daily())).
		Int("archived", len(p.Archive)).
		Int("backlinks", p.Backlinks).
		Int("moved", res.Moved).
		Msg("generated daily note")
	return res, nil
}

func (g *Generator) markMoved(p *Plan) (int, error) {
	if p.sourceContent == "" || !g.vault.HasNote(p.SourceNote) {
		return 0, nil
	}
	content, n := g.extractor.MarkMoved(p.SourceNote, p.sourceContent)
	if n == 0 {
		return 0, nil
	}
	if _, err := g.vault.WriteNote(p.SourceNote, content); err != nil {
		return 0, fmt.Errorf("mark moved in %s: %w", p.SourceNote, err)
	}
	return n, nil
}

func (g *Generator) quote(ctx context.Context, log zerolog.Logger) *quotes.Quote {
	if g.quotes == nil {
		return nil
	}
	q, err := g.quotes.Random(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("skipping quote of the day")
		return nil
	}
	return &q
}
