package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/varcat/internal/testutil"
	"github.com/leapstack-labs/varcat/pkg/core"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("data-dir", "", "")
	flags.StringP("output", "o", "", "")
	flags.String("title", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("format", "", "")
	flags.Bool("minify", true, "")
	flags.Int("workers", 0, "")
	flags.Int("port", 0, "")
	flags.String("db", "", "")
	return flags
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	cwd, err := os.Getwd()
	require.NoError(t, err)
	return cwd
}

func TestLoadConfig_Defaults(t *testing.T) {
	cwd := chdirTemp(t)

	loaded, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, loaded.File)
	assert.Equal(t, cwd, loaded.ProjectRoot)
	assert.Equal(t, filepath.Join(cwd, DefaultDataDir), loaded.DataDir)
	assert.Equal(t, filepath.Join(cwd, DefaultOutput), loaded.Output)
	assert.Equal(t, DefaultTitle, loaded.Title)
	assert.Equal(t, DefaultFormat, loaded.Format)
	assert.True(t, loaded.Minify)
	assert.Equal(t, DefaultWorkers, loaded.Workers)
	assert.Equal(t, core.DefaultLongNotesMaxChars, loaded.LongNotes.MaxChars)
	assert.Equal(t, core.DefaultLongNotesMinLineBreaks, loaded.LongNotes.MinLineBreaks)
	assert.Equal(t, DefaultPort, loaded.Serve.Port)
	assert.Empty(t, loaded.Groups)
}

func TestLoadConfig_File(t *testing.T) {
	cwd := chdirTemp(t)
	testutil.WriteFile(t, cwd, ConfigFileName, `
data_dir: registers
title: Register Catalog
minify: false
long_notes:
  max_chars: 120
groups:
  address:
    pattern: "^addr_"
    priority: 1
    label: Address
    category_strategy: intersection
  income:
    pattern: "^inc_"
    categories_override: "money, tax"
ignore:
  exact_names: [row_id]
  name_patterns: ["*_tmp"]
  excluded_tags: [draft]
`)

	loaded, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, ConfigFileName), loaded.File)
	assert.Equal(t, filepath.Join(cwd, "registers"), loaded.DataDir)
	assert.Equal(t, "Register Catalog", loaded.Title)
	assert.False(t, loaded.Minify)
	assert.Equal(t, 120, loaded.LongNotes.MaxChars)
	assert.Equal(t, core.DefaultLongNotesMinLineBreaks, loaded.LongNotes.MinLineBreaks)

	require.Contains(t, loaded.Groups, "address")
	assert.Equal(t, "^addr_", loaded.Groups["address"].Pattern)
	assert.Equal(t, "intersection", loaded.Groups["address"].CategoryStrategy)
	assert.Equal(t, []string{"money", "tax"}, loaded.Groups["income"].CategoriesOverride)
	assert.Equal(t, []string{"row_id"}, loaded.Ignore.ExactNames)
	assert.Equal(t, PatternList{"*_tmp"}, loaded.Ignore.NamePatterns)
}

func TestLoadConfig_NamePatternsNotSplit(t *testing.T) {
	cwd := chdirTemp(t)
	testutil.WriteFile(t, cwd, ConfigFileName, `
ignore:
  name_patterns: "^x{1,3}$"
  exact_names: "a, b"
`)

	loaded, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, PatternList{"^x{1,3}$"}, loaded.Ignore.NamePatterns)
	assert.Equal(t, []string{"a", "b"}, loaded.Ignore.ExactNames)

	t.Setenv("VARCAT_IGNORE__NAME_PATTERNS", "^tmp_{2,}")
	loaded, err = LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, PatternList{"^tmp_{2,}"}, loaded.Ignore.NamePatterns)
	assert.Equal(t, []string{"^tmp_{2,}"}, loaded.BuildConfig().Ignore.NamePatterns)
}

func TestLoadConfig_UpwardSearch(t *testing.T) {
	cwd := chdirTemp(t)
	testutil.WriteFile(t, cwd, ConfigFileNameAlt, "data_dir: inputs\n")
	nested := filepath.Join(cwd, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	loaded, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, cwd, loaded.ProjectRoot)
	assert.Equal(t, filepath.Join(cwd, "inputs"), loaded.DataDir)
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	chdirTemp(t)
	_, err := LoadConfig("nope.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	cwd := chdirTemp(t)
	testutil.WriteFile(t, cwd, ConfigFileName, "groups: [unclosed\n")

	_, err := LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	cwd := chdirTemp(t)
	testutil.WriteFile(t, cwd, ConfigFileName, "title: From File\nworkers: 2\n")
	t.Setenv("VARCAT_TITLE", "From Env")
	t.Setenv("VARCAT_SERVE__PORT", "9090")
	t.Setenv("VARCAT_IGNORE__EXACT_NAMES", "a, b ,c")

	loaded, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "From Env", loaded.Title)
	assert.Equal(t, 2, loaded.Workers)
	assert.Equal(t, 9090, loaded.Serve.Port)
	assert.Equal(t, []string{"a", "b", "c"}, loaded.Ignore.ExactNames)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	cwd := chdirTemp(t)
	testutil.WriteFile(t, cwd, "project/"+ConfigFileName, "data_dir: registers\noutput: site/index.html\n")
	t.Setenv("VARCAT_WORKERS", "3")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{
		"--workers", "8", "--port", "7000", "--minify=false",
		"--data-dir", "local", "--db", "ignored.db",
	}))

	loaded, err := LoadConfig(filepath.Join("project", ConfigFileName), flags)
	require.NoError(t, err)

	project := filepath.Join(cwd, "project")
	assert.Equal(t, project, loaded.ProjectRoot)
	assert.Equal(t, 8, loaded.Workers)
	assert.Equal(t, 7000, loaded.Serve.Port)
	assert.False(t, loaded.Minify)
	// flag paths are relative to the working directory
	assert.Equal(t, filepath.Join(cwd, "local"), loaded.DataDir)
	// file paths are relative to the config file
	assert.Equal(t, filepath.Join(project, "site", "index.html"), loaded.Output)
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	cwd := chdirTemp(t)
	testutil.WriteFile(t, cwd, ConfigFileName, "workers: 6\n")

	flags := newFlags()
	require.NoError(t, flags.Parse(nil))

	loaded, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.Workers)
	assert.True(t, loaded.Minify)
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	cwd := chdirTemp(t)
	testutil.WriteFile(t, cwd, ConfigFileName, "workers: 0\n")

	_, err := LoadConfig("", nil)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "workers", verr.Field)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, wantField: "data_dir"},
		{name: "empty output", mutate: func(c *Config) { c.Output = "" }, wantField: "output"},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantField: "workers"},
		{name: "zero max chars", mutate: func(c *Config) { c.LongNotes.MaxChars = 0 }, wantField: "long_notes.max_chars"},
		{name: "negative line breaks", mutate: func(c *Config) { c.LongNotes.MinLineBreaks = -1 }, wantField: "long_notes.min_line_breaks"},
		{name: "unknown format", mutate: func(c *Config) { c.Format = "xml" }, wantField: "format"},
		{name: "port out of range", mutate: func(c *Config) { c.Serve.Port = 70000 }, wantField: "serve.port"},
		{
			name: "missing group pattern",
			mutate: func(c *Config) {
				c.Groups = map[string]GroupConfig{"g": {}}
			},
			wantField: "groups.g.pattern",
		},
		{
			name: "unknown strategy",
			mutate: func(c *Config) {
				c.Groups = map[string]GroupConfig{"g": {Pattern: "^g", CategoryStrategy: "mean"}}
			},
			wantField: "groups.g.category_strategy",
		},
		{
			name: "invalid regex is not a config error",
			mutate: func(c *Config) {
				c.Groups = map[string]GroupConfig{"g": {Pattern: "[unclosed"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestConfig_ValidateDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	cfg.DataDir = dir
	assert.NoError(t, cfg.ValidateDirectories())

	cfg.DataDir = filepath.Join(dir, "missing")
	err := cfg.ValidateDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	cfg.DataDir = testutil.WriteFile(t, dir, "file.txt", "x")
	err = cfg.ValidateDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestConfig_BuildConfig(t *testing.T) {
	cfg := Default()
	cfg.Groups = map[string]GroupConfig{
		"zeta":  {Pattern: "^z", Priority: 1},
		"alpha": {Pattern: "^a", Label: "Alpha", CategoryStrategy: "override", CategoriesOverride: []string{"x"}},
	}
	cfg.Ignore = IgnoreConfig{ExactNames: []string{"id"}, ExcludedTags: []string{"draft"}}
	cfg.LongNotes = LongNotesConfig{MaxChars: 50, MinLineBreaks: 3}

	bc := cfg.BuildConfig()
	require.Len(t, bc.Groups, 2)
	assert.Equal(t, "alpha", bc.Groups[0].ID)
	assert.Equal(t, core.StrategyOverride, bc.Groups[0].CategoryStrategy)
	assert.Equal(t, []string{"x"}, bc.Groups[0].CategoriesOverride)
	assert.Equal(t, "zeta", bc.Groups[1].ID)
	assert.Equal(t, 1, bc.Groups[1].Priority)
	assert.Equal(t, []string{"id"}, bc.Ignore.ExactNames)
	assert.Equal(t, []string{"draft"}, bc.Ignore.ExcludedTags)
	assert.Equal(t, core.LongNotesPolicy{MaxChars: 50, MinLineBreaks: 3}, bc.LongNotes)

	// the result does not alias the config
	bc.Groups[0].CategoriesOverride[0] = "changed"
	assert.Equal(t, "x", cfg.Groups["alpha"].CategoriesOverride[0])
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := testutil.NewTestLogger(t)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Same(t, logger, ctx.Value(LoggerKey()))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	cfg := Default()
	cfg.Title = "Custom"
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
