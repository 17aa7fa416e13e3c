// Package catalog assembles normalized, filtered and grouped datasets and
// orders them into a catalog.
package catalog

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/varcat/internal/group"
	"github.com/leapstack-labs/varcat/internal/ignore"
	"github.com/leapstack-labs/varcat/internal/normalize"
	"github.com/leapstack-labs/varcat/internal/order"
	"github.com/leapstack-labs/varcat/pkg/core"
)

// Assembler turns one DatasetInput into a Dataset. It holds only compiled,
// read-only configuration and is safe for concurrent use.
type Assembler struct {
	filter    *ignore.Filter
	synth     *group.Synthesizer
	longNotes core.LongNotesPolicy
	logger    *slog.Logger
}

// NewAssembler compiles cfg. Invalid patterns are dropped with a warning.
func NewAssembler(cfg core.BuildConfig, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Assembler{
		filter:    ignore.New(cfg.Ignore, logger),
		synth:     group.NewSynthesizer(cfg.Groups, logger),
		longNotes: cfg.LongNotes,
		logger:    logger,
	}
}

// Assemble builds the dataset. It never fails: missing metadata or codebook
// yields a minimally populated dataset.
func (a *Assembler) Assemble(in core.DatasetInput) *core.Dataset {
	logger := a.logger.With("dataset", in.ID)

	// Duplicate names keep their first position and their last properties.
	declared := make([]string, 0, len(in.Codebook))
	latest := make(map[string]core.Variable, len(in.Codebook))
	for _, entry := range in.Codebook {
		if _, dup := latest[entry.Name]; dup {
			logger.Warn("duplicate variable in codebook, keeping last definition", "variable", entry.Name)
		} else {
			declared = append(declared, entry.Name)
		}
		latest[entry.Name] = normalize.Variable(entry.Name, entry.Props)
	}

	survivors := make([]core.Variable, 0, len(declared))
	index := make(map[string]core.Variable, len(declared))
	for _, name := range declared {
		v := latest[name]
		if a.filter.ShouldIgnore(v) {
			continue
		}
		v.LongNotes = normalize.LongNotes(v.Notes, a.longNotes)
		survivors = append(survivors, v)
		index[name] = v
	}

	res := a.synth.Synthesize(survivors)
	renameCollidingGroups(&res, index, logger)
	for i := range res.Groups {
		res.Groups[i].LongNotes = normalize.LongNotes(res.Groups[i].Notes, a.longNotes)
	}

	ds := &core.Dataset{
		ID: in.ID,
		Variables: order.Assemble(order.Input{
			Declared:   declared,
			Surviving:  index,
			Groups:     res.Groups,
			Membership: res.Membership,
		}),
		VariableIndex: index,
	}
	ds.Title, ds.Subtitle = header(in.ID, in.Meta)
	ds.Description, ds.DescriptionHTML = describe(in.Meta, in.DescriptionHTML)

	logger.Debug("assembled dataset",
		"declared", len(declared),
		"ignored", len(declared)-len(survivors),
		"groups", len(res.Groups),
		"rows", len(ds.Variables))

	return ds
}

// renameCollidingGroups keeps row names unique within a dataset. A group whose
// id is also a surviving variable name (or another group's name) is renamed to
// "<id>_group", then "<id>_group_2" and so on.
func renameCollidingGroups(res *group.Result, index map[string]core.Variable, logger *slog.Logger) {
	taken := make(map[string]bool, len(index)+len(res.Groups))
	for name := range index {
		taken[name] = true
	}

	for i := range res.Groups {
		g := &res.Groups[i]
		name := g.Name
		for n := 1; taken[name]; n++ {
			name = g.Name + "_group"
			if n > 1 {
				name = fmt.Sprintf("%s_group_%d", g.Name, n)
			}
		}
		if name != g.Name {
			logger.Warn("group name collides with another row, renaming",
				"group", g.Name, "name", name)
			for _, m := range g.Members {
				res.Membership[m] = name
			}
			g.Name = name
		}
		taken[name] = true
	}
}
