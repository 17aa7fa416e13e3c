package catalog

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/varcat/internal/normalize"
)

// Meta keys accepted for the dataset header, most preferred first.
var (
	TitleKeys       = []string{"title", "dataset_title", "name"}
	SubtitleKeys    = []string{"subtitle", "sub_title", "short"}
	DescriptionKeys = []string{"info", "description", "about"}
)

// header resolves the title (defaulting to id) and subtitle.
func header(id string, meta map[string]any) (title, subtitle string) {
	title = normalize.FirstString(meta, TitleKeys)
	if title == "" {
		title = id
	}
	return title, normalize.FirstString(meta, SubtitleKeys)
}

// describe picks the description. Pre-rendered long-form text wins; otherwise
// the first usable meta description is flattened to plain text.
func describe(meta map[string]any, rendered string) (text, html string) {
	if strings.TrimSpace(rendered) != "" {
		return "", rendered
	}
	for _, k := range DescriptionKeys {
		if text = flatten(meta[k]); text != "" {
			return text, ""
		}
	}
	return "", ""
}

// flatten renders a description value: strings as-is, lists as "- item"
// lines, mappings as "key: value" lines sorted by key.
func flatten(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case []any:
		var lines []string
		for _, item := range normalize.ToList(x) {
			lines = append(lines, "- "+item)
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var lines []string
		for _, k := range keys {
			if s := normalize.String(x[k]); s != "" {
				lines = append(lines, k+": "+s)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return normalize.String(x)
	}
}
