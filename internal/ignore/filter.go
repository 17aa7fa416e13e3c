// Package ignore decides which normalized variables are excluded from a catalog.
package ignore

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/varcat/pkg/core"
)

// Filter is a compiled IgnoreRule. It is immutable after construction and safe
// for concurrent use.
type Filter struct {
	exact      map[string]struct{}
	patterns   []*regexp.Regexp
	globs      []string
	tags       map[string]struct{}
	categories map[string]struct{}
}

// New compiles rule. Patterns that are not valid regular expressions are
// retried as glob patterns, and dropped if they are not valid globs either.
// A nil logger discards warnings.
func New(rule core.IgnoreRule, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	f := &Filter{
		exact:      make(map[string]struct{}, len(rule.ExactNames)),
		tags:       make(map[string]struct{}, len(core.BuiltinExcludedTags)+len(rule.ExcludedTags)),
		categories: make(map[string]struct{}, len(rule.ExcludedCategories)),
	}

	for _, name := range rule.ExactNames {
		f.exact[name] = struct{}{}
	}
	for _, tag := range core.BuiltinExcludedTags {
		f.tags[foldTag(tag)] = struct{}{}
	}
	for _, tag := range rule.ExcludedTags {
		f.tags[foldTag(tag)] = struct{}{}
	}
	for _, cat := range rule.ExcludedCategories {
		f.categories[cat] = struct{}{}
	}

	for _, pattern := range rule.NamePatterns {
		re, err := regexp.Compile(pattern)
		if err == nil {
			f.patterns = append(f.patterns, re)
			continue
		}
		if _, globErr := filepath.Match(pattern, ""); globErr == nil {
			logger.Warn("ignore pattern is not a valid regular expression, using it as a glob",
				"pattern", pattern, "error", err)
			f.globs = append(f.globs, pattern)
			continue
		}
		logger.Warn("dropping invalid ignore pattern", "pattern", pattern, "error", err)
	}

	return f
}

// ShouldIgnore reports whether v is excluded. It fires when the name is listed
// exactly, any name pattern matches, any tag is excluded, or any category is
// excluded.
func (f *Filter) ShouldIgnore(v core.Variable) bool {
	if _, ok := f.exact[v.Name]; ok {
		return true
	}
	if f.matchesName(v.Name) {
		return true
	}
	for _, tag := range v.Tags {
		if _, ok := f.tags[foldTag(tag)]; ok {
			return true
		}
	}
	for _, cat := range v.Categories {
		if _, ok := f.categories[cat]; ok {
			return true
		}
	}
	return false
}

func (f *Filter) matchesName(name string) bool {
	for _, re := range f.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	for _, g := range f.globs {
		if ok, _ := filepath.Match(g, name); ok {
			return true
		}
	}
	return false
}

func foldTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
