package normalize

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/varcat/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestVariable_LabelAliases(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  string
	}{
		{
			name:  "primary key",
			props: map[string]any{"label": "Age", "labels": "Ignored"},
			want:  "Age",
		},
		{
			name:  "alternate key only",
			props: map[string]any{"labels": "Age in years"},
			want:  "Age in years",
		},
		{
			name:  "empty primary falls through",
			props: map[string]any{"label": "", "labels": "Fallback"},
			want:  "Fallback",
		},
		{
			name:  "neither key falls back to name",
			props: map[string]any{"notes": "x"},
			want:  "age",
		},
		{
			name:  "nil props",
			props: nil,
			want:  "age",
		},
		{
			name:  "list label takes first element",
			props: map[string]any{"labels": []any{"", "Age", "Years"}},
			want:  "Age",
		},
		{
			name:  "mapping label is ignored",
			props: map[string]any{"label": map[string]any{"en": "Age"}},
			want:  "age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Variable("age", tt.props)
			assert.Equal(t, tt.want, v.Label)
		})
	}
}

func TestVariable_AllFields(t *testing.T) {
	v := Variable("dx_code1", map[string]any{
		"colname_silver": "DIAG_1",
		"source":         "ignored",
		"coltypes":       "string",
		"notes":          "Primary diagnosis",
		"category":       "icd10; diagnosis",
		"tags":           []any{"clinical", "clinical", 3},
	})

	assert.Equal(t, "dx_code1", v.Name)
	assert.Equal(t, "dx_code1", v.Label)
	assert.Equal(t, "DIAG_1", v.Source)
	assert.Equal(t, "string", v.Type)
	assert.Equal(t, "Primary diagnosis", v.Notes)
	assert.Equal(t, []string{"diagnosis", "icd10"}, v.Categories)
	assert.Equal(t, []string{"3", "clinical"}, v.Tags)
	assert.False(t, v.IsGroup)
}

func TestVariable_NotesKeptVerbatim(t *testing.T) {
	tests := []struct {
		name     string
		notes    any
		want     string
		wantLong bool
	}{
		{name: "block scalar with trailing newline", notes: "line one\nline two\n", want: "line one\nline two\n", wantLong: true},
		{name: "leading indentation", notes: "  indented", want: "  indented"},
		{name: "blank falls through to alias", notes: "   ", want: "from note"},
		{name: "list yields first element", notes: []any{"", "first", "second"}, want: "first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Variable("x", map[string]any{"notes": tt.notes, "note": "from note"})
			assert.Equal(t, tt.want, v.Notes)
			assert.Equal(t, tt.wantLong, LongNotes(v.Notes, core.DefaultLongNotesPolicy()))
		})
	}
}

func TestVariable_Defaults(t *testing.T) {
	v := Variable("x", map[string]any{"type": 42, "source_name": true})

	assert.Equal(t, "42", v.Type)
	assert.Equal(t, "true", v.Source)
	assert.Empty(t, v.Notes)
	assert.NotNil(t, v.Categories)
	assert.NotNil(t, v.Tags)
	assert.Empty(t, v.Categories)
	assert.Empty(t, v.Tags)
}

func TestToList(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{name: "nil", input: nil, want: nil},
		{name: "comma string", input: "a, b,,c", want: []string{"a", "b", "c"}},
		{name: "comma wins over semicolon", input: "a;b, c", want: []string{"a;b", "c"}},
		{name: "semicolon string", input: "a; b", want: []string{"a", "b"}},
		{name: "whitespace string", input: "a  b\tc", want: []string{"a", "b", "c"}},
		{name: "single word", input: "alpha", want: []string{"alpha"}},
		{name: "scalar number", input: 7, want: []string{"7"}},
		{name: "list with nested list", input: []any{"a", []any{"b"}, nil, "c"}, want: []string{"a", "c"}},
		{name: "mapping", input: map[string]any{"a": 1}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToList(tt.input))
		})
	}
}

func TestSortedSet(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, SortedSet([]string{"C", "A", "B", "A"}))
	assert.Equal(t, []string{}, SortedSet(nil))
}

func TestLongNotes(t *testing.T) {
	policy := core.DefaultLongNotesPolicy()

	tests := []struct {
		name  string
		notes string
		want  bool
	}{
		{name: "empty", notes: "", want: false},
		{name: "short single line", notes: "0123456789", want: false},
		{name: "one line break", notes: "a\nb", want: false},
		{name: "two line breaks", notes: "a\nb\nc", want: true},
		{name: "three line breaks", notes: "a\nb\nc\nd", want: true},
		{name: "at threshold", notes: strings.Repeat("x", core.DefaultLongNotesMaxChars), want: false},
		{name: "over threshold", notes: strings.Repeat("x", core.DefaultLongNotesMaxChars+1), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongNotes(tt.notes, policy))
		})
	}
}

func TestLongNotes_ZeroPolicyUsesDefaults(t *testing.T) {
	assert.True(t, LongNotes("a\nb\nc", core.LongNotesPolicy{}))
	assert.False(t, LongNotes("short", core.LongNotesPolicy{}))
	assert.True(t, LongNotes("0123456789X", core.LongNotesPolicy{MaxChars: 10}))
}
