package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varcat/internal/cli/output"
	"github.com/leapstack-labs/varcat/internal/site"
	"github.com/leapstack-labs/varcat/pkg/core"
)

// BuildOutput is the JSON form of a build summary.
type BuildOutput struct {
	BuildID  string            `json:"build_id"`
	Output   string            `json:"output"`
	Stats    core.CatalogStats `json:"stats"`
	Combined string            `json:"combined_sha256,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the variables browser page",
		Long: `Discover register codebooks and metadata in the data directory, assemble the
catalog and write a single self-contained HTML page.

With --watch, the page is rebuilt whenever an input file changes.`,
		Example: `  # Build with the defaults from varcat.yaml
  varcat build

  # Build from another data directory into a custom file
  varcat build --data-dir registers -o site/index.html

  # Rebuild on every change
  varcat build --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when input files change")
	return cmd
}

func runBuild(cmd *cobra.Command, watch bool) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if err := cfg.ValidateDirectories(); err != nil {
		return err
	}

	s := site.NewSite(cmdCtx.Generator(), site.SiteOptions{WriteOutput: true})
	if _, err := s.Rebuild(cmd.Context()); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	res, _ := s.Current()

	if err := reportBuild(r, res, cfg.Output, cfg.DataDir); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.Muted("Watching " + cfg.DataDir + " (Ctrl+C to stop)")
	return site.NewWatcher(cfg.DataDir, s.Rebuild, cmdCtx.Logger).Run(ctx)
}

func reportBuild(r *output.Renderer, res *site.Result, outPath, dataDir string) error {
	stats := res.Catalog.Stats()

	if r.EffectiveMode() == output.ModeJSON {
		out := BuildOutput{BuildID: res.BuildID, Output: outPath, Stats: stats}
		if res.Provenance != nil {
			out.Combined = res.Provenance.Combined
		}
		return r.JSON(out)
	}

	if stats.DatasetCount == 0 {
		r.Warning("No datasets found in " + dataDir)
	}
	r.Success(fmt.Sprintf("Built %d datasets (%d variables, %d groups)",
		stats.DatasetCount, stats.VariableCount, stats.GroupCount))
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("Output", outPath))
		if res.Provenance != nil && res.Provenance.Combined != "" {
			r.Println(output.FormatKeyValue("Combined SHA-256", res.Provenance.Combined))
		}
		return nil
	}
	r.Muted("Written to " + outPath)
	return nil
}

// buildCatalog runs the pipeline in memory for read-only commands.
func buildCatalog(ctx context.Context, cmdCtx *CommandContext) (*site.Result, error) {
	if err := cmdCtx.Cfg.ValidateDirectories(); err != nil {
		return nil, err
	}
	res, err := cmdCtx.Generator().Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	return res, nil
}
