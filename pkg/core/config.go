package core

// BuiltinExcludedTags are always excluded, regardless of configuration.
// Tag comparison is case-insensitive.
var BuiltinExcludedTags = []string{"internal", "identifier"}

// Long-notes defaults.
const (
	DefaultLongNotesMaxChars      = 300
	DefaultLongNotesMinLineBreaks = 2
)

// GroupSpec describes how to detect and render a synthetic group row.
type GroupSpec struct {
	ID       string
	Pattern  string // regular expression, searched in variable names
	Priority int    // lower claims first; ties broken by ID
	Label    string
	Notes    string
	// SourceOverride is copied verbatim to the group's Source.
	SourceOverride   string
	CategoryStrategy CategoryStrategy
	// CategoriesOverride is used only with StrategyOverride.
	CategoriesOverride []string
}

// IgnoreRule describes which variables are excluded from the catalog.
type IgnoreRule struct {
	ExactNames         []string
	NamePatterns       []string // regular expressions; glob syntax as fallback
	ExcludedTags       []string // in addition to BuiltinExcludedTags
	ExcludedCategories []string
}

// LongNotesPolicy decides when notes are long enough to warrant truncation.
type LongNotesPolicy struct {
	MaxChars      int // notes longer than this many characters are long
	MinLineBreaks int // notes with at least this many line breaks are long
}

// DefaultLongNotesPolicy returns the policy used when none is configured.
func DefaultLongNotesPolicy() LongNotesPolicy {
	return LongNotesPolicy{
		MaxChars:      DefaultLongNotesMaxChars,
		MinLineBreaks: DefaultLongNotesMinLineBreaks,
	}
}

// BuildConfig is the immutable configuration of one build run. It is safe to
// share across concurrent dataset assemblies.
type BuildConfig struct {
	Groups    []GroupSpec
	Ignore    IgnoreRule
	LongNotes LongNotesPolicy
}
