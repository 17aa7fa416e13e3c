package core

// CategoryStrategy selects how a group's categories are computed from its members.
type CategoryStrategy string

// Category strategy constants.
const (
	StrategyUnion        CategoryStrategy = "union"
	StrategyIntersection CategoryStrategy = "intersection"
	StrategyOverride     CategoryStrategy = "override"
)

// Valid reports whether s names a known strategy. The empty string is valid
// and means union.
func (s CategoryStrategy) Valid() bool {
	switch s {
	case "", StrategyUnion, StrategyIntersection, StrategyOverride:
		return true
	}
	return false
}

// OrDefault returns s, or StrategyUnion when s is empty or unknown.
func (s CategoryStrategy) OrDefault() CategoryStrategy {
	if s == "" || !s.Valid() {
		return StrategyUnion
	}
	return s
}

// Variable is one row of the catalog. Group rows are Variables with IsGroup set;
// they carry Members and CategoryStrategy in addition to the common fields.
//
// Categories and Tags hold set semantics: they are deduplicated and sorted so
// that serialized output is reproducible.
type Variable struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Notes      string   `json:"notes"`
	Source     string   `json:"source"`
	Type       string   `json:"type"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	IsGroup    bool     `json:"is_group"`
	LongNotes  bool     `json:"long_notes"`

	// Group-only fields.
	Members          []string         `json:"members,omitempty"`
	CategoryStrategy CategoryStrategy `json:"category_strategy,omitempty"`
}
