package cli

import (
	"fmt"
	"strings"

	"github.com/amirbrooks/carryover/internal/daily"
	"github.com/amirbrooks/carryover/internal/todo"
)

const telegramMaxChars = 3800

func isTelegramFormat(format string) bool {
	return strings.ToLower(strings.TrimSpace(format)) == "telegram"
}

func trimTelegramOutput(s string) string {
	s = strings.TrimRight(s, "\n")
	runes := []rune(s)
	if len(runes) <= telegramMaxChars {
		return s
	}
	suffix := "\n… (truncated)"
	suffixRunes := []rune(suffix)
	limit := telegramMaxChars - len(suffixRunes)
	if limit < 1 {
		return string(runes[:telegramMaxChars])
	}
	return string(runes[:limit]) + suffix
}

// telegramSection is one block of the telegram plan, in display order.
type telegramSection struct {
	label string
	match func(daily.Entry) bool
}

var telegramSections = []telegramSection{
	{"🔥 Overdue", destAction("daily", todo.ActionShame)},
	{"⏰ Start", destAction("daily", todo.ActionStart)},
	{"📌 Sticky", destAction("daily", todo.ActionStick)},
	{"🔗 Linked", destAction("daily", todo.ActionNoop)},
	{"🔮 Upcoming", destAction("daily", todo.ActionFuture)},
	{"🙈 Upcoming (hidden)", destAction("hidden", todo.ActionFuture)},
	{"🗄️ Archive", func(e daily.Entry) bool { return e.Destination == "archive" }},
}

func destAction(dest string, a todo.Action) func(daily.Entry) bool {
	return func(e daily.Entry) bool { return e.Destination == dest && e.Action == a }
}

func cleanTodoLine(line string) string {
	line = strings.TrimSpace(line)
	for _, prefix := range []string{"- [ ]", "- [>]"} {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			line = strings.TrimSpace(rest)
			break
		}
	}
	if line == "" {
		return "(empty)"
	}
	return line
}

func telegramTodoLine(e daily.Entry, from string) string {
	var b strings.Builder
	b.WriteString("• ")
	b.WriteString(cleanTodoLine(e.Line))
	if e.Source != "" && e.Source != from {
		b.WriteString(" — ")
		b.WriteString(e.Source)
	}
	b.WriteString("\n")
	return b.String()
}

func renderTelegramPlan(p *daily.Plan) string {
	entries := p.Entries()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 %s (from %s)\n\n", p.Note, p.SourceNote))

	wrote := false
	for _, s := range telegramSections {
		var lines []string
		for _, e := range entries {
			if s.match(e) {
				lines = append(lines, telegramTodoLine(e, p.SourceNote))
			}
		}
		if len(lines) == 0 {
			continue
		}
		wrote = true
		b.WriteString(fmt.Sprintf("%s (%d)\n", s.label, len(lines)))
		for _, l := range lines {
			b.WriteString(l)
		}
		b.WriteString("\n")
	}

	if !wrote {
		b.WriteString("Nothing to carry over.\n")
	}
	return trimTelegramOutput(b.String())
}
