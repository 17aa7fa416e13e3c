// Package commands implements the varcat subcommands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varcat/internal/cli/output"
	"github.com/leapstack-labs/varcat/internal/config"
	"github.com/leapstack-labs/varcat/internal/site"
)

// CommandContext holds the dependencies shared by every command.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext reads the config and logger stored on the command context
// and builds a renderer for the configured output format.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Format))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Generator returns a pipeline generator for the loaded configuration.
func (c *CommandContext) Generator() *site.Generator {
	return site.NewGenerator(site.Options{
		DataDir: c.Cfg.DataDir,
		Output:  c.Cfg.Output,
		Title:   c.Cfg.Title,
		Minify:  c.Cfg.Minify,
		Workers: c.Cfg.Workers,
		Rules:   c.Cfg.BuildConfig(),
		Logger:  c.Logger,
	})
}
