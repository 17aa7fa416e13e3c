package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/varcat/pkg/core"
)

// LongNotes reports whether notes should be offered with truncation.
// A zero-valued policy field falls back to its default.
func LongNotes(notes string, policy core.LongNotesPolicy) bool {
	if notes == "" {
		return false
	}

	def := core.DefaultLongNotesPolicy()
	if policy.MinLineBreaks <= 0 {
		policy.MinLineBreaks = def.MinLineBreaks
	}
	if policy.MaxChars <= 0 {
		policy.MaxChars = def.MaxChars
	}

	if strings.Count(notes, "\n") >= policy.MinLineBreaks {
		return true
	}
	return utf8.RuneCountInString(notes) > policy.MaxChars
}
