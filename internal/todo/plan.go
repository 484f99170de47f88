package todo

import (
	"fmt"
	"strings"
	"time"
)

// Rules is the immutable configuration of the planner.
type Rules struct {
	Glyph       string // escalation glyph, one per day an item stays open
	Threshold   int    // highest shame level before an item is archived
	StickyToken string // in-text marker exempting an item from escalation
	ArchiveNote string // identifier of the archive note
}

func DefaultRules() Rules {
	return Rules{
		Glyph:       "!",
		Threshold:   5,
		StickyToken: "#sticky",
		ArchiveNote: "Archive",
	}
}

// DateDecoder decodes a note identifier into its calendar date.
type DateDecoder interface {
	Date(name string) (time.Time, error)
}

// Planner assigns each todo exactly one Action.
type Planner struct {
	rules   Rules
	dates   DateDecoder
	cascade []rule
}

type planInput struct {
	todo Todo
	day  time.Time // the date whose note the todo is carried out of
	next time.Time // the date of the note being generated
}

// rule is one step of the cascade; the first rule whose predicate holds
// decides the action.
type rule struct {
	name   string
	action Action
	when   func(in planInput) (bool, error)
}

func NewPlanner(rules Rules, dates DateDecoder) *Planner {
	if rules.Glyph == "" {
		rules.Glyph = DefaultRules().Glyph
	}
	if rules.Threshold < 1 {
		rules.Threshold = DefaultRules().Threshold
	}
	p := &Planner{rules: rules, dates: dates}
	p.cascade = []rule{
		{name: "sticky", action: ActionStick, when: p.isSticky},
		{name: "archive-source", action: ActionArchive, when: p.fromArchive},
		{name: "archive-target", action: ActionArchive, when: p.targetsArchive},
		{name: "deferred", action: ActionFuture, when: p.deferredPastNextDay},
		{name: "due-next-day", action: ActionStart, when: p.dueNextDay},
	}
	return p
}

// Plan returns a copy of t with Action and UpcomingShameMarks set. day is the
// date of the note t is being carried out of. Planning ignores any action t
// already carries, so it is idempotent.
func (p *Planner) Plan(t Todo, day time.Time) (Todo, error) {
	in := planInput{todo: t, day: dayOf(day)}
	in.next = in.day.AddDate(0, 0, 1)

	for _, r := range p.cascade {
		ok, err := r.when(in)
		if err != nil {
			return t, fmt.Errorf("plan %q from %s (%s rule): %w", t.Text, t.Source(), r.name, err)
		}
		if ok {
			t.Action = r.action
			t.UpcomingShameMarks = ""
			return t, nil
		}
	}

	level := shameLevel(t.ShameMarks, p.rules.Glyph) + 1
	if level > p.rules.Threshold {
		t.Action = ActionArchive
		t.UpcomingShameMarks = ""
		return t, nil
	}
	t.Action = ActionShame
	t.UpcomingShameMarks = strings.Repeat(p.rules.Glyph, level)
	return t, nil
}

// PlanAll plans every todo, stopping at the first error.
func (p *Planner) PlanAll(todos []Todo, day time.Time) ([]Todo, error) {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		planned, err := p.Plan(t, day)
		if err != nil {
			return nil, err
		}
		out = append(out, planned)
	}
	return out, nil
}

func (p *Planner) isSticky(in planInput) (bool, error) {
	return p.rules.StickyToken != "" && strings.Contains(in.todo.Text, p.rules.StickyToken), nil
}

func (p *Planner) fromArchive(in planInput) (bool, error) {
	return in.todo.Source() == p.rules.ArchiveNote, nil
}

func (p *Planner) targetsArchive(in planInput) (bool, error) {
	return in.todo.TargetNote != "" && in.todo.TargetNote == p.rules.ArchiveNote, nil
}

func (p *Planner) deferredPastNextDay(in planInput) (bool, error) {
	target, ok, err := p.target(in.todo)
	if err != nil || !ok {
		return false, err
	}
	return target.After(in.next), nil
}

func (p *Planner) dueNextDay(in planInput) (bool, error) {
	target, ok, err := p.target(in.todo)
	if err != nil || !ok {
		return false, err
	}
	return target.Equal(in.next), nil
}

func (p *Planner) target(t Todo) (time.Time, bool, error) {
	if t.TargetNote == "" {
		return time.Time{}, false, nil
	}
	d, err := p.dates.Date(t.TargetNote)
	if err != nil {
		return time.Time{}, false, err
	}
	return dayOf(d), true, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
