package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varcat/internal/cli/output"
	"github.com/leapstack-labs/varcat/internal/export"
)

// DefaultExportName is the database file written next to the page when --db is not set.
const DefaultExportName = "variables.db"

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog to a SQLite database",
		Long: `Build the catalog and write it to a SQLite database with the tables
datasets, variables and group_members. An existing database at the path is replaced.`,
		Example: `  varcat export
  varcat export --db catalog.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			res, err := buildCatalog(cmd.Context(), cmdCtx)
			if err != nil {
				return err
			}

			path := dbPath
			if path == "" {
				path = filepath.Join(filepath.Dir(cmdCtx.Cfg.Output), DefaultExportName)
			}
			if err := export.SQLite(cmd.Context(), res.Catalog, path); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			cmdCtx.Logger.Info("catalog exported", "build_id", res.BuildID, "path", path)

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]any{"path": path, "stats": res.Catalog.Stats()})
			}
			r.Success(fmt.Sprintf("Exported %d datasets to %s", len(res.Catalog.Datasets), path))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: next to the output page)")
	return cmd
}
