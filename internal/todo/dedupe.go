package todo

// Dedupe keeps the first todo for each normalized text, preserving order.
func Dedupe(todos []Todo) []Todo {
	seen := make(map[string]bool, len(todos))
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		key := normalizeText(t.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
