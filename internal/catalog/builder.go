package catalog

import (
	"context"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/varcat/pkg/core"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

// DefaultWorkers bounds concurrent dataset assembly when none is configured.
const DefaultWorkers = 4

// Builder assembles many datasets against one configuration.
type Builder struct {
	assembler *Assembler
	workers   int
	logger    *slog.Logger
}

// NewBuilder creates a builder. workers <= 0 selects DefaultWorkers.
func NewBuilder(cfg core.BuildConfig, workers int, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Builder{
		assembler: NewAssembler(cfg, logger),
		workers:   workers,
		logger:    logger,
	}
}

// Build assembles every input and returns the datasets ordered by title,
// then id, both compared case-insensitively. Assembly itself cannot fail; the
// only error is cancellation of ctx.
func (b *Builder) Build(ctx context.Context, inputs []core.DatasetInput) (*core.Catalog, error) {
	datasets := make([]*core.Dataset, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			datasets[i] = b.assembler.Assemble(inputs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortDatasets(datasets)
	return &core.Catalog{Datasets: datasets}, nil
}

// SortDatasets orders datasets by casefolded title, then casefolded id, then
// raw id so that the order is total.
func SortDatasets(datasets []*core.Dataset) {
	fold := cases.Fold()
	type key struct{ title, id string }
	keys := make(map[*core.Dataset]key, len(datasets))
	for _, ds := range datasets {
		keys[ds] = key{title: fold.String(ds.Title), id: fold.String(ds.ID)}
	}

	sort.SliceStable(datasets, func(i, j int) bool {
		ki, kj := keys[datasets[i]], keys[datasets[j]]
		if ki.title != kj.title {
			return ki.title < kj.title
		}
		if ki.id != kj.id {
			return ki.id < kj.id
		}
		return datasets[i].ID < datasets[j].ID
	})
}
