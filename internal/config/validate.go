package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/leapstack-labs/varcat/pkg/core"
)

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

var validFormats = map[string]bool{"auto": true, "text": true, "markdown": true, "json": true}

// Validate checks if the configuration is valid.
// Group patterns are not compiled here; invalid ones are dropped at build time.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.DataDir == "" {
		add("data_dir", "is required")
	}
	if c.Output == "" {
		add("output", "is required")
	}
	if c.Workers < 1 {
		add("workers", "must be at least 1, got %d", c.Workers)
	}
	if c.LongNotes.MaxChars <= 0 {
		add("long_notes.max_chars", "must be positive, got %d", c.LongNotes.MaxChars)
	}
	if c.LongNotes.MinLineBreaks <= 0 {
		add("long_notes.min_line_breaks", "must be positive, got %d", c.LongNotes.MinLineBreaks)
	}
	if c.Format != "" && !validFormats[c.Format] {
		add("format", "must be one of auto, text, markdown, json; got %q", c.Format)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		add("serve.port", "must be between 0 and 65535, got %d", c.Serve.Port)
	}

	ids := make([]string, 0, len(c.Groups))
	for id := range c.Groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		g := c.Groups[id]
		if g.Pattern == "" {
			add("groups."+id+".pattern", "is required")
		}
		if !core.CategoryStrategy(g.CategoryStrategy).Valid() {
			add("groups."+id+".category_strategy", "must be union, intersection or override; got %q", g.CategoryStrategy)
		}
	}

	return errors.Join(errs...)
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	info, err := os.Stat(c.DataDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s\nHint: Create the directory or use --data-dir to specify a different path", c.DataDir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path is not a directory: %s", c.DataDir)
	}
	return nil
}
