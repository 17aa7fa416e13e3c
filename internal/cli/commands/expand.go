package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varcat/internal/catalog"
	"github.com/leapstack-labs/varcat/internal/cli/output"
)

// NewExpandCommand creates the expand command.
func NewExpandCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <dataset> <group>",
		Short: "Show the member variables of a group",
		Long: `Expand a synthesized group row into the full records of its members,
in member order.`,
		Example: `  varcat expand persons address
  varcat expand persons address --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			res, err := buildCatalog(cmd.Context(), cmdCtx)
			if err != nil {
				return err
			}
			ds, ok := res.Catalog.Dataset(args[0])
			if !ok {
				return fmt.Errorf("dataset %q not found", args[0])
			}
			members, err := catalog.ExpandGroup(ds, args[1])
			if err != nil {
				return err
			}

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(members)
			}
			r.Header(1, fmt.Sprintf("%s / %s (%d members)", ds.ID, args[1], len(members)))
			r.Table(variableHeaders, variableRows(r, members))
			return nil
		},
	}
}
