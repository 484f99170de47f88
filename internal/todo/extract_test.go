package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_ChecklistShapes(t *testing.T) {
	content := "# D20250228\n" +
		"\n" +
		"- [ ] !!! buy milk\n" +
		"  - [x] call the bank\n" +
		"\t- [>] ! water plants [[D20250305]]\n" +
		"* [ ] not a dash bullet\n" +
		"- [?] unknown marker\n" +
		"plain paragraph - [ ] mid line\n" +
		"-  [ ]   spaced   out   \n"

	todos := NewExtractor("!", AnnotationLast).Extract("D20250228", content)
	require.Len(t, todos, 4)

	assert.Equal(t, "", todos[0].Indentation)
	assert.Equal(t, MarkerOpen, todos[0].Marker)
	assert.Equal(t, "!!!", todos[0].ShameMarks)
	assert.Equal(t, "buy milk", todos[0].Text)
	assert.Equal(t, "- [ ] !!! buy milk", todos[0].RawText)
	assert.Equal(t, "D20250228", todos[0].Source())
	assert.Equal(t, ActionNone, todos[0].Action)

	assert.Equal(t, "  ", todos[1].Indentation)
	assert.Equal(t, MarkerClosed, todos[1].Marker)
	assert.Equal(t, "call the bank", todos[1].Text)

	assert.Equal(t, "\t", todos[2].Indentation)
	assert.Equal(t, MarkerMoved, todos[2].Marker)
	assert.Equal(t, "!", todos[2].ShameMarks)
	assert.Equal(t, "water plants", todos[2].Text)
	assert.Equal(t, "D20250305", todos[2].TargetNote)

	assert.Equal(t, "spaced out", todos[3].Text)
}

func TestExtract_AnnotationPolicy(t *testing.T) {
	line := "- [ ] call mom [[D20250301]] [[D20250310]]"

	last := NewExtractor("!", AnnotationLast).Extract("n", line)
	require.Len(t, last, 1)
	assert.Equal(t, "D20250310", last[0].TargetNote)
	assert.Equal(t, "call mom", last[0].Text)

	first := NewExtractor("!", AnnotationFirst).Extract("n", line)
	require.Len(t, first, 1)
	assert.Equal(t, "D20250301", first[0].TargetNote)
	assert.Equal(t, "call mom", first[0].Text)
}

func TestExtract_Annotations(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantText   string
		wantTarget string
	}{
		{
			name:       "alias resolves to note name",
			line:       "- [ ] renew passport [[D20250401|April 1st]]",
			wantText:   "renew passport",
			wantTarget: "D20250401",
		},
		{
			name:     "mid text link is plain text",
			line:     "- [ ] read [[Some Book]] chapter two",
			wantText: "read [[Some Book]] chapter two",
		},
		{
			name:       "trailing whitespace after annotation",
			line:       "- [ ] pay rent [[D20250301]]   ",
			wantText:   "pay rent",
			wantTarget: "D20250301",
		},
		{
			name:     "empty annotation is text",
			line:     "- [ ] odd [[]]",
			wantText: "odd [[]]",
		},
		{
			name:       "annotation only",
			line:       "- [ ] [[D20250301]]",
			wantText:   "",
			wantTarget: "D20250301",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todos := NewExtractor("!", AnnotationLast).Extract("n", tt.line)
			require.Len(t, todos, 1)
			assert.Equal(t, tt.wantText, todos[0].Text)
			assert.Equal(t, tt.wantTarget, todos[0].TargetNote)
		})
	}
}

func TestExtract_SkipsEmptyItemsAndHandlesCRLF(t *testing.T) {
	content := "- [ ] \r\n- [ ] first\r\n- [ ] second\r\n"

	todos := NewExtractor("!", AnnotationLast).Extract("n", content)
	require.Len(t, todos, 2)
	assert.Equal(t, "first", todos[0].Text)
	assert.Equal(t, "- [ ] first", todos[0].RawText)
	assert.Equal(t, "second", todos[1].Text)
}

func TestExtract_EmptyBodies(t *testing.T) {
	content := "- [ ]\n- [ ] !!\n- [ ] [[D20250301]]\n"

	todos := NewExtractor("!", AnnotationLast).Extract("n", content)
	require.Len(t, todos, 1)
	assert.Equal(t, "", todos[0].Text)
	assert.Equal(t, "D20250301", todos[0].TargetNote)
}

func TestExtract_CustomGlyph(t *testing.T) {
	ex := NewExtractor("🔥", AnnotationLast)

	todos := ex.Extract("n", "- [ ] 🔥🔥 ship it\n- [ ] !!! literal bangs")
	require.Len(t, todos, 2)
	assert.Equal(t, "🔥🔥", todos[0].ShameMarks)
	assert.Equal(t, 2, shameLevel(todos[0].ShameMarks, "🔥"))
	assert.Equal(t, "ship it", todos[0].Text)

	assert.Equal(t, "", todos[1].ShameMarks)
	assert.Equal(t, "!!! literal bangs", todos[1].Text)
}

func TestParseAnnotationPolicy(t *testing.T) {
	p, err := ParseAnnotationPolicy("")
	require.NoError(t, err)
	assert.Equal(t, AnnotationLast, p)

	p, err = ParseAnnotationPolicy(" First ")
	require.NoError(t, err)
	assert.Equal(t, AnnotationFirst, p)

	_, err = ParseAnnotationPolicy("middle")
	assert.Error(t, err)
}

func TestUnfinished(t *testing.T) {
	todos := NewExtractor("!", AnnotationLast).Extract("n", "- [x] done\n- [ ] open\n- [>] moved")
	got := Unfinished(todos)
	require.Len(t, got, 2)
	assert.Equal(t, "open", got[0].Text)
	assert.Equal(t, "moved", got[1].Text)
}

func TestMarkMoved(t *testing.T) {
	content := "# D20250228\r\n- [ ] !! buy milk\r\n  - [x] done\r\n- [>] already moved\r\n- [ ] \r\n- [ ] gym #sticky\r\n"

	got, n := NewExtractor("!", AnnotationLast).MarkMoved("D20250228", content)
	assert.Equal(t, 2, n)
	assert.Equal(t, "# D20250228\r\n- [>] !! buy milk\r\n  - [x] done\r\n- [>] already moved\r\n- [ ] \r\n- [>] gym #sticky\r\n", got)

	again, n := NewExtractor("!", AnnotationLast).MarkMoved("D20250228", got)
	assert.Zero(t, n)
	assert.Equal(t, got, again)
}
