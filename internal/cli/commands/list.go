package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varcat/internal/cli/output"
	"github.com/leapstack-labs/varcat/pkg/core"
)

// DatasetSummary is the JSON form of one dataset in the listing.
type DatasetSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Rows      int    `json:"rows"`
	Variables int    `json:"variables"`
	Groups    int    `json:"groups"`
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dataset]",
		Short: "List datasets or the rows of one dataset",
		Long: `Without arguments, list every dataset in the catalog. With a dataset id, list
its display rows in order; groups appear as a single row.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table (agent-friendly)

Use --format to override: auto, text, markdown, json`,
		Example: `  # List datasets
  varcat list

  # List the rows of one dataset as JSON
  varcat list persons --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args)
		},
	}
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	res, err := buildCatalog(cmd.Context(), cmdCtx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return listDatasets(r, res.Catalog)
	}

	ds, ok := res.Catalog.Dataset(args[0])
	if !ok {
		return fmt.Errorf("dataset %q not found", args[0])
	}
	return listRows(r, ds)
}

func listDatasets(r *output.Renderer, cat *core.Catalog) error {
	summaries := make([]DatasetSummary, 0, len(cat.Datasets))
	for _, ds := range cat.Datasets {
		groups := 0
		for _, v := range ds.Variables {
			if v.IsGroup {
				groups++
			}
		}
		summaries = append(summaries, DatasetSummary{
			ID:        ds.ID,
			Title:     ds.Title,
			Subtitle:  ds.Subtitle,
			Rows:      len(ds.Variables),
			Variables: len(ds.VariableIndex),
			Groups:    groups,
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(summaries)
	}

	r.Header(1, fmt.Sprintf("Datasets (%d total)", len(summaries)))
	if len(summaries) == 0 {
		r.Muted("No datasets found")
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.ID, s.Title, s.Subtitle,
			strconv.Itoa(s.Rows), strconv.Itoa(s.Variables), strconv.Itoa(s.Groups),
		})
	}
	r.Table([]string{"ID", "Title", "Subtitle", "Rows", "Variables", "Groups"}, rows)
	return nil
}

func listRows(r *output.Renderer, ds *core.Dataset) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ds)
	}

	r.Header(1, ds.Title)
	if ds.Subtitle != "" {
		r.Muted(ds.Subtitle)
		r.Println()
	}
	r.Table(variableHeaders, variableRows(r, ds.Variables))
	return nil
}

var variableHeaders = []string{"Name", "Label", "Type", "Source", "Categories", "Notes"}

func variableRows(r *output.Renderer, vars []core.Variable) [][]string {
	rows := make([][]string, 0, len(vars))
	for _, v := range vars {
		name := v.Name
		if v.IsGroup {
			name = fmt.Sprintf("%s (%d members)", v.Name, len(v.Members))
			if r.EffectiveMode() == output.ModeText {
				name = r.Styles.Group.Render(name)
			}
		}
		rows = append(rows, []string{
			name, v.Label, v.Type, v.Source,
			output.FormatList(v.Categories), truncateNotes(v),
		})
	}
	return rows
}

const notesPreviewRunes = 60

func truncateNotes(v core.Variable) string {
	if !v.LongNotes {
		return v.Notes
	}
	runes := []rune(v.Notes)
	if len(runes) > notesPreviewRunes {
		runes = runes[:notesPreviewRunes]
	}
	return string(runes) + "…"
}
