package notes

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewNamer_UnsupportedFormat(t *testing.T) {
	_, err := NewNamer("%d/%m/%Y")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDateFormat))
}

func TestNamer_RoundTrip(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{format: "D%Y%m%d", want: "D20250301"},
		{format: "YYYY-MM-DD", want: "2025-03-01"},
		{format: "DD-MM-YYYY", want: "01-03-2025"},
		{format: "MM-DD-YYYY", want: "03-01-2025"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			n, err := NewNamer(tt.format)
			require.NoError(t, err)

			name := n.Name(time.Date(2025, 3, 1, 17, 45, 0, 0, time.Local))
			assert.Equal(t, tt.want, name)

			got, err := n.Date(name)
			require.NoError(t, err)
			assert.Equal(t, date(2025, 3, 1), got)
			assert.True(t, n.IsNote(name))
		})
	}
}

func TestNamer_DateNotFound(t *testing.T) {
	n, err := NewNamer(DefaultFormat)
	require.NoError(t, err)

	for _, name := range []string{"Archive", "D2025", "D20251399"} {
		_, err := n.Date(name)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrDateNotFoundInName), name)

		var dnf *DateNotFoundError
		require.ErrorAs(t, err, &dnf)
		assert.Equal(t, name, dnf.Name)
	}
}

func TestNamer_IsNote(t *testing.T) {
	n, err := NewNamer(DefaultFormat)
	require.NoError(t, err)

	assert.True(t, n.IsNote("D20250301"))
	assert.False(t, n.IsNote("Meeting D20250301"))
	assert.False(t, n.IsNote("Archive"))
}

func TestRelative(t *testing.T) {
	today := time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC)

	got, err := Relative("today", today)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 2, 28), got)

	got, err = Relative("Tomorrow", today)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 3, 1), got)

	got, err = Relative("yesterday", today)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 2, 27), got)

	_, err = Relative("fortnight", today)
	assert.True(t, errors.Is(err, ErrUnsupportedRelativeDay))
}

func TestNamer_ParseTarget(t *testing.T) {
	n, err := NewNamer(DefaultFormat)
	require.NoError(t, err)
	today := date(2025, 2, 28)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr error
	}{
		{name: "empty defaults to tomorrow", input: "", want: date(2025, 3, 1)},
		{name: "iso date", input: "2025-04-01", want: date(2025, 4, 1)},
		{name: "note name", input: "D20250410", want: date(2025, 4, 10)},
		{name: "keyword", input: "yesterday", want: date(2025, 2, 27)},
		{name: "unknown keyword", input: "someday", wantErr: ErrUnsupportedRelativeDay},
		{name: "garbage", input: "2025/04/01", wantErr: ErrDateNotFoundInName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.ParseTarget(tt.input, today)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
