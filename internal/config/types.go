// Package config provides layered configuration for varcat.
//
// Values are merged from defaults, a varcat.yaml file, VARCAT_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"sort"

	"github.com/leapstack-labs/varcat/pkg/core"
)

// Config holds all configuration options.
type Config struct {
	DataDir string `koanf:"data_dir"`
	Output  string `koanf:"output"`
	Title   string `koanf:"title"`
	Verbose bool   `koanf:"verbose"`
	// Format selects CLI output rendering: auto, text, markdown or json.
	Format  string `koanf:"format"`
	Minify  bool   `koanf:"minify"`
	Workers int    `koanf:"workers"`

	LongNotes LongNotesConfig        `koanf:"long_notes"`
	Groups    map[string]GroupConfig `koanf:"groups"`
	Ignore    IgnoreConfig           `koanf:"ignore"`
	Serve     ServeConfig            `koanf:"serve"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// GroupConfig declares one synthesized group, keyed by its id in Config.Groups.
type GroupConfig struct {
	Pattern            string   `koanf:"pattern"`
	Priority           int      `koanf:"priority"`
	Label              string   `koanf:"label"`
	Notes              string   `koanf:"notes"`
	SourceOverride     string   `koanf:"source_override"`
	CategoryStrategy   string   `koanf:"category_strategy"`
	CategoriesOverride []string `koanf:"categories_override"`
}

// PatternList holds regular expressions. Unlike other list settings, a scalar
// string is a single pattern and is never split on commas.
type PatternList []string

// IgnoreConfig lists the rules that hide variables from the catalog.
type IgnoreConfig struct {
	ExactNames         []string    `koanf:"exact_names"`
	NamePatterns       PatternList `koanf:"name_patterns"`
	ExcludedTags       []string    `koanf:"excluded_tags"`
	ExcludedCategories []string    `koanf:"excluded_categories"`
}

// LongNotesConfig holds the thresholds for flagging long notes.
type LongNotesConfig struct {
	MaxChars      int `koanf:"max_chars"`
	MinLineBreaks int `koanf:"min_line_breaks"`
}

// ServeConfig holds configuration for the preview server.
type ServeConfig struct {
	Port int `koanf:"port"`
}

// BuildConfig converts the loaded configuration into the immutable build rules.
// Group specs are emitted in id order.
func (c *Config) BuildConfig() core.BuildConfig {
	ids := make([]string, 0, len(c.Groups))
	for id := range c.Groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	groups := make([]core.GroupSpec, 0, len(ids))
	for _, id := range ids {
		g := c.Groups[id]
		groups = append(groups, core.GroupSpec{
			ID:                 id,
			Pattern:            g.Pattern,
			Priority:           g.Priority,
			Label:              g.Label,
			Notes:              g.Notes,
			SourceOverride:     g.SourceOverride,
			CategoryStrategy:   core.CategoryStrategy(g.CategoryStrategy),
			CategoriesOverride: append([]string(nil), g.CategoriesOverride...),
		})
	}

	return core.BuildConfig{
		Groups: groups,
		Ignore: core.IgnoreRule{
			ExactNames:         append([]string(nil), c.Ignore.ExactNames...),
			NamePatterns:       append([]string(nil), c.Ignore.NamePatterns...),
			ExcludedTags:       append([]string(nil), c.Ignore.ExcludedTags...),
			ExcludedCategories: append([]string(nil), c.Ignore.ExcludedCategories...),
		},
		LongNotes: core.LongNotesPolicy{
			MaxChars:      c.LongNotes.MaxChars,
			MinLineBreaks: c.LongNotes.MinLineBreaks,
		},
	}
}
