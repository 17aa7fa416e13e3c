package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/varcat/internal/cli/testutil"
	"github.com/leapstack-labs/varcat/internal/config"
	"github.com/leapstack-labs/varcat/internal/testutil"
	"github.com/leapstack-labs/varcat/pkg/core"
)

// projectContext loads the test project's config the way the root command does.
func projectContext(t *testing.T, format string) (context.Context, *config.Config) {
	t.Helper()
	dir := clitestutil.SetupTestProject(t)
	t.Chdir(dir)

	loaded, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	loaded.Format = format

	ctx := config.WithConfig(context.Background(), loaded.Config)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))
	return ctx, loaded.Config
}

func runCommand(ctx context.Context, cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestBuildCommand(t *testing.T) {
	ctx, cfg := projectContext(t, "markdown")

	out, _, err := runCommand(ctx, NewBuildCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Built 2 datasets (4 variables, 1 groups)")
	assert.Contains(t, out, "- **Output**: "+cfg.Output)
	assert.Contains(t, out, "- **Combined SHA-256**: ")
	clitestutil.AssertNoANSI(t, out)
	clitestutil.AssertValidMarkdown(t, out)

	page, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Test Registers</title>")
	assert.NotContains(t, string(page), "tmp_flag")
}

func TestBuildCommand_JSON(t *testing.T) {
	ctx, cfg := projectContext(t, "json")

	out, _, err := runCommand(ctx, NewBuildCommand())
	require.NoError(t, err)

	var got BuildOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.BuildID)
	assert.Equal(t, cfg.Output, got.Output)
	assert.Equal(t, 2, got.Stats.DatasetCount)
	assert.Equal(t, 1, got.Stats.GroupCount)
	assert.Len(t, got.Combined, 64)
}

func TestBuildCommand_EmptyDataDir(t *testing.T) {
	ctx, cfg := projectContext(t, "markdown")
	cfg.DataDir = t.TempDir()

	out, errOut, err := runCommand(ctx, NewBuildCommand())
	require.NoError(t, err)
	assert.Contains(t, errOut, "No datasets found")
	assert.Contains(t, out, "Built 0 datasets")

	_, err = os.Stat(cfg.Output)
	assert.NoError(t, err)
}

func TestBuildCommand_MissingDataDir(t *testing.T) {
	ctx, cfg := projectContext(t, "markdown")
	cfg.DataDir = filepath.Join(t.TempDir(), "missing")

	_, _, err := runCommand(ctx, NewBuildCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory does not exist")
}

func TestListCommand(t *testing.T) {
	t.Run("datasets markdown", func(t *testing.T) {
		ctx, _ := projectContext(t, "markdown")
		out, _, err := runCommand(ctx, NewListCommand())
		require.NoError(t, err)

		assert.Contains(t, out, "# Datasets (2 total)")
		assert.Contains(t, out, "| persons | Persons | Population register | 2 | 3 | 1 |")
		assert.Contains(t, out, "| births | births |")
		clitestutil.AssertValidMarkdown(t, out)
	})

	t.Run("datasets json", func(t *testing.T) {
		ctx, _ := projectContext(t, "json")
		out, _, err := runCommand(ctx, NewListCommand())
		require.NoError(t, err)

		var got []DatasetSummary
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "births", got[0].ID)
		assert.Equal(t, "persons", got[1].ID)
	})

	t.Run("rows", func(t *testing.T) {
		ctx, _ := projectContext(t, "markdown")
		out, _, err := runCommand(ctx, NewListCommand(), "persons")
		require.NoError(t, err)

		assert.Contains(t, out, "# Persons")
		assert.Contains(t, out, "| age | Age | int |")
		assert.Contains(t, out, "address (2 members)")
		assert.NotContains(t, out, "addr_street")
	})

	t.Run("rows json", func(t *testing.T) {
		ctx, _ := projectContext(t, "json")
		out, _, err := runCommand(ctx, NewListCommand(), "persons")
		require.NoError(t, err)

		var ds core.Dataset
		require.NoError(t, json.Unmarshal([]byte(out), &ds))
		require.Len(t, ds.Variables, 2)
		assert.Equal(t, "age", ds.Variables[0].Name)
		assert.Equal(t, "address", ds.Variables[1].Name)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		ctx, _ := projectContext(t, "markdown")
		_, _, err := runCommand(ctx, NewListCommand(), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestExpandCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		ctx, _ := projectContext(t, "json")
		out, _, err := runCommand(ctx, NewExpandCommand(), "persons", "address")
		require.NoError(t, err)

		var members []core.Variable
		require.NoError(t, json.Unmarshal([]byte(out), &members))
		require.Len(t, members, 2)
		assert.Equal(t, "addr_city", members[0].Name)
		assert.Equal(t, "addr_street", members[1].Name)
	})

	t.Run("markdown", func(t *testing.T) {
		ctx, _ := projectContext(t, "markdown")
		out, _, err := runCommand(ctx, NewExpandCommand(), "persons", "address")
		require.NoError(t, err)
		assert.Contains(t, out, "persons / address (2 members)")
		assert.Contains(t, out, "| addr_street | Street |")
	})

	t.Run("not a group", func(t *testing.T) {
		ctx, _ := projectContext(t, "markdown")
		_, _, err := runCommand(ctx, NewExpandCommand(), "persons", "age")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a group")
	})

	t.Run("wrong arg count", func(t *testing.T) {
		ctx, _ := projectContext(t, "markdown")
		_, _, err := runCommand(ctx, NewExpandCommand(), "persons")
		assert.Error(t, err)
	})
}

func TestExportCommand(t *testing.T) {
	ctx, cfg := projectContext(t, "markdown")

	out, _, err := runCommand(ctx, NewExportCommand())
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(cfg.Output), DefaultExportName)
	assert.Contains(t, out, "Exported 2 datasets to "+want)
	_, err = os.Stat(want)
	assert.NoError(t, err)

	custom := filepath.Join(t.TempDir(), "custom.db")
	_, _, err = runCommand(ctx, NewExportCommand(), "--db", custom)
	require.NoError(t, err)
	_, err = os.Stat(custom)
	assert.NoError(t, err)
}

func TestServeCommand_MissingDataDir(t *testing.T) {
	ctx, cfg := projectContext(t, "markdown")
	cfg.DataDir = filepath.Join(t.TempDir(), "missing")

	_, _, err := runCommand(ctx, NewServeCommand())
	assert.Error(t, err)
}

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantOut []string
	}{
		{
			name:    "default version",
			version: "0.1.0",
			wantOut: []string{"varcat v0.1.0", "catalog"},
		},
		{
			name:    "custom version",
			version: "1.2.3",
			wantOut: []string{"varcat v1.2.3"},
		},
		{
			name:    "dev version",
			version: "dev",
			wantOut: []string{"varcat vdev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCommand(context.Background(), NewVersionCommand(tt.version))
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestCommandMetadata(t *testing.T) {
	for _, cmd := range []*cobra.Command{
		NewVersionCommand("test"),
		NewBuildCommand(),
		NewListCommand(),
		NewExpandCommand(),
		NewExportCommand(),
		NewServeCommand(),
	} {
		t.Run(cmd.Name(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Use)
			assert.NotEmpty(t, cmd.Short)
			assert.NotEmpty(t, cmd.Long)
		})
	}
}
