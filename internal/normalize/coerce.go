package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// String renders a raw scalar as a display string, with the same rules used
// for single-valued fields.
func String(v any) string {
	return scalarString(v)
}

// scalarString renders v as a display string. Lists yield their first usable
// element; mappings and nil yield "".
func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case bool, int, int64, uint64, float64, float32, int32:
		return fmt.Sprint(x)
	case time.Time:
		// YAML resolves unquoted dates to timestamps.
		if x.Equal(x.Truncate(24 * time.Hour)) {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case []any:
		for _, el := range x {
			if s := scalarString(el); s != "" {
				return s
			}
		}
		return ""
	case []string:
		for _, el := range x {
			if s := strings.TrimSpace(el); s != "" {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}

// ToList coerces a raw value into a list of strings.
//
// Lists keep their scalar elements. Strings are split on commas if any are
// present, else on semicolons, else on whitespace. Other scalars become a
// single element. Mappings and nil yield nothing.
func ToList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return splitString(x)
	case []string:
		out := make([]string, 0, len(x))
		for _, el := range x {
			if s := strings.TrimSpace(el); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(x))
		for _, el := range x {
			if _, isList := el.([]any); isList {
				continue
			}
			if s := scalarString(el); s != "" {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		return nil
	default:
		if s := scalarString(x); s != "" {
			return []string{s}
		}
		return nil
	}
}

// ToSet is ToList with duplicates removed and the result sorted.
func ToSet(v any) []string {
	return SortedSet(ToList(v))
}

// SortedSet deduplicates items and returns them sorted. The result is never nil.
func SortedSet(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

func splitString(s string) []string {
	var parts []string
	switch {
	case strings.Contains(s, ","):
		parts = strings.Split(s, ",")
	case strings.Contains(s, ";"):
		parts = strings.Split(s, ";")
	default:
		return strings.Fields(s)
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
