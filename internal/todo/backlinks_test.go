package todo

import (
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource struct {
	notes   map[string]string
	broken  map[string]bool
	listErr error
}

func (m memSource) NoteNames() ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	names := make([]string, 0, len(m.notes)+len(m.broken))
	for n := range m.notes {
		names = append(names, n)
	}
	for n := range m.broken {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (m memSource) ReadNote(name string) (string, error) {
	if m.broken[name] {
		return "", errors.New("permission denied")
	}
	return m.notes[name], nil
}

func TestResolve(t *testing.T) {
	src := memSource{
		notes: map[string]string{
			"D20250210": "- [>] !!!!!!! call mom [[D20250301]]\n- [ ] other [[D20250302]]",
			"D20250215": "- [x] done already [[D20250301]]\n- [ ] book flights [[D20250301|March]]",
			"Projects":  "- [ ] draft proposal [[D20250301]]\n- [ ] see [[D20250301]] for context",
			"D20250301": "- [ ] self reference [[D20250301]]",
		},
		broken: map[string]bool{"Locked": true},
	}

	r := NewResolver(src, NewExtractor("!", AnnotationLast), zerolog.Nop())
	got, err := r.Resolve("D20250301")
	require.NoError(t, err)

	texts := make([]string, 0, len(got))
	for _, todo := range got {
		texts = append(texts, todo.Text)
		assert.Equal(t, ActionNoop, todo.Action)
		assert.Empty(t, todo.UpcomingShameMarks)
		assert.Equal(t, "D20250301", todo.TargetNote)
	}
	assert.Equal(t, []string{"call mom", "book flights", "draft proposal"}, texts)
	assert.Equal(t, "D20250210", got[0].Source())
	assert.Equal(t, "Projects", got[2].Source())
}

func TestResolve_ListError(t *testing.T) {
	r := NewResolver(memSource{listErr: errors.New("boom")}, NewExtractor("!", AnnotationLast), zerolog.Nop())
	_, err := r.Resolve("D20250301")
	assert.ErrorContains(t, err, "boom")
}

func TestResolve_NoteFormattedAsPassthrough(t *testing.T) {
	src := memSource{notes: map[string]string{
		"D20250210": "  - [>] !! call mom [[D20250301]]",
	}}
	got, err := NewResolver(src, NewExtractor("!", AnnotationLast), zerolog.Nop()).Resolve("D20250301")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "  - [ ] !! call mom", NewAssembler(true).Line(got[0]))
}
