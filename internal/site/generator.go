// Package site runs the catalog pipeline end to end and serves the result.
//
// A Generator discovers register files under a data directory, loads them,
// assembles the catalog and renders the browser page. A Site keeps the most
// recent build and republishes it when inputs change; Server exposes it over
// HTTP with live reload and a small JSON API for group expansion.
package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leapstack-labs/varcat/internal/catalog"
	"github.com/leapstack-labs/varcat/internal/loader"
	"github.com/leapstack-labs/varcat/internal/markup"
	"github.com/leapstack-labs/varcat/internal/provenance"
	"github.com/leapstack-labs/varcat/internal/render"
	"github.com/leapstack-labs/varcat/pkg/core"
)

// Options configure a Generator.
type Options struct {
	DataDir string
	Output  string
	Title   string
	Minify  bool
	Workers int
	Rules   core.BuildConfig
	// Markdown renders long-form info files; nil uses goldmark.
	Markdown markup.Renderer
	Logger   *slog.Logger
}

// Result is one completed build.
type Result struct {
	BuildID     string
	Sources     []loader.Source
	Catalog     *core.Catalog
	Provenance  *provenance.Report
	Fingerprint uint64
}

// Generator builds the catalog page from a data directory.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(opts Options) *Generator {
	if opts.Markdown == nil {
		opts.Markdown = markup.NewMarkdown()
	}
	if opts.Workers < 1 {
		opts.Workers = catalog.DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{opts: opts, logger: logger}
}

// Output returns the path Write renders to.
func (g *Generator) Output() string {
	return g.opts.Output
}

// DataDir returns the directory inputs are discovered in.
func (g *Generator) DataDir() string {
	return g.opts.DataDir
}

// Fingerprint discovers the current inputs and returns their content fingerprint.
func (g *Generator) Fingerprint() (uint64, error) {
	sources, err := loader.Discover(g.opts.DataDir)
	if err != nil {
		return 0, err
	}
	return fingerprint(sources)
}

// Build discovers, loads and assembles every dataset without writing output.
func (g *Generator) Build(ctx context.Context) (*Result, error) {
	id := uuid.New().String()
	logger := g.logger.With("build_id", id)

	sources, err := loader.Discover(g.opts.DataDir)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		logger.Warn("no datasets found", "data_dir", g.opts.DataDir)
	}

	fp, err := fingerprint(sources)
	if err != nil {
		return nil, err
	}

	inputs := make([]core.DatasetInput, 0, len(sources))
	var paths []string
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		arts, err := loader.Load(src, logger)
		if err != nil {
			return nil, err
		}
		html, err := g.opts.Markdown.Render(arts.Info)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", src.InfoPath, err)
		}

		inputs = append(inputs, core.DatasetInput{
			ID:              src.Key,
			Meta:            arts.Meta,
			Codebook:        arts.Codebook,
			DescriptionHTML: html,
		})
		paths = append(paths, src.Paths()...)
	}

	cat, err := catalog.NewBuilder(g.opts.Rules, g.opts.Workers, logger).Build(ctx, inputs)
	if err != nil {
		return nil, err
	}

	report, err := provenance.Digest(paths)
	if err != nil {
		return nil, err
	}

	stats := cat.Stats()
	logger.Info("catalog built",
		"datasets", stats.DatasetCount,
		"variables", stats.VariableCount,
		"groups", stats.GroupCount,
	)

	return &Result{
		BuildID:     id,
		Sources:     sources,
		Catalog:     cat,
		Provenance:  report,
		Fingerprint: fp,
	}, nil
}

// Page renders res to HTML bytes.
func (g *Generator) Page(res *Result, liveReload bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := render.Render(&buf, res.Catalog, g.renderOptions(res, liveReload)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders res to the configured output path.
func (g *Generator) Write(res *Result) error {
	if err := render.WriteFile(g.opts.Output, res.Catalog, g.renderOptions(res, false)); err != nil {
		return err
	}
	g.logger.Info("page written", "build_id", res.BuildID, "path", g.opts.Output)
	return nil
}

// Generate builds the catalog and writes the page.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	res, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.Write(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (g *Generator) renderOptions(res *Result, liveReload bool) render.Options {
	opts := render.Options{
		Title:      g.opts.Title,
		Minify:     g.opts.Minify,
		LiveReload: liveReload,
	}
	if res.Provenance != nil {
		opts.Provenance = res.Provenance.String()
	}
	return opts
}
