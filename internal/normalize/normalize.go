// Package normalize maps raw, heterogeneously shaped codebook entries onto the
// canonical Variable schema.
//
// Field resolution is table driven: each canonical field lists the raw keys
// that may carry it, in order of preference. The first key holding a usable
// value wins. Nothing in this package fails; unexpected shapes fall back to
// defaults.
package normalize

import (
	"strings"

	"github.com/leapstack-labs/varcat/pkg/core"
)

// Canonical field names.
const (
	FieldLabel      = "label"
	FieldNotes      = "notes"
	FieldSource     = "source"
	FieldType       = "type"
	FieldCategories = "categories"
	FieldTags       = "tags"
)

// Aliases maps each canonical field to its candidate raw keys, most preferred first.
var Aliases = map[string][]string{
	FieldLabel:      {"label", "labels"},
	FieldNotes:      {"notes", "note"},
	FieldSource:     {"colname_silver", "source", "source_name"},
	FieldType:       {"type", "coltypes"},
	FieldCategories: {"categories", "category"},
	FieldTags:       {"tags", "tag"},
}

// Variable builds the canonical record for one codebook entry.
// LongNotes is left unset; it is a dataset-level policy decision.
func Variable(name string, props map[string]any) core.Variable {
	label := FirstString(props, Aliases[FieldLabel])
	if label == "" {
		label = name
	}

	return core.Variable{
		Name:       name,
		Label:      label,
		Notes:      FirstText(props, Aliases[FieldNotes]),
		Source:     FirstString(props, Aliases[FieldSource]),
		Type:       FirstString(props, Aliases[FieldType]),
		Categories: FirstSet(props, Aliases[FieldCategories]),
		Tags:       FirstSet(props, Aliases[FieldTags]),
	}
}

// FirstString returns the first non-empty string value among keys.
func FirstString(props map[string]any, keys []string) string {
	for _, k := range keys {
		if s := scalarString(props[k]); s != "" {
			return s
		}
	}
	return ""
}

// FirstText is FirstString for free text. Non-blank strings are returned
// verbatim, keeping surrounding whitespace and line breaks.
func FirstText(props map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := props[k].(string); ok {
			if strings.TrimSpace(s) != "" {
				return s
			}
			continue
		}
		if s := scalarString(props[k]); s != "" {
			return s
		}
	}
	return ""
}

// FirstSet returns the first non-empty set value among keys. The result is
// never nil.
func FirstSet(props map[string]any, keys []string) []string {
	for _, k := range keys {
		if set := ToSet(props[k]); len(set) > 0 {
			return set
		}
	}
	return []string{}
}
