// Package group collapses sets of variables into synthetic group rows.
//
// Specs are ordered by priority (ties broken by id) and every variable is
// claimed by the first spec whose pattern matches its name. A variable is
// therefore a member of at most one group, by construction.
package group

import (
	"log/slog"
	"regexp"
	"sort"

	"github.com/leapstack-labs/varcat/internal/normalize"
	"github.com/leapstack-labs/varcat/pkg/core"
)

type compiledSpec struct {
	core.GroupSpec
	re *regexp.Regexp
}

// Synthesizer holds compiled group specs. It is immutable after construction
// and safe for concurrent use.
type Synthesizer struct {
	specs []compiledSpec
}

// Result is the outcome of one synthesis pass.
type Result struct {
	// Groups holds one row per spec that claimed at least one variable, in
	// claim order (priority, then id).
	Groups []core.Variable
	// Membership maps a claimed variable name to its group's name.
	Membership map[string]string
	// Ungrouped holds the unclaimed variables in input order.
	Ungrouped []core.Variable
}

// NewSynthesizer sorts and compiles specs. A spec whose pattern does not
// compile is dropped with a warning. A nil logger discards warnings.
func NewSynthesizer(specs []core.GroupSpec, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ordered := make([]core.GroupSpec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	s := &Synthesizer{specs: make([]compiledSpec, 0, len(ordered))}
	for _, spec := range ordered {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			logger.Warn("dropping group with invalid pattern",
				"group", spec.ID, "pattern", spec.Pattern, "error", err)
			continue
		}
		s.specs = append(s.specs, compiledSpec{GroupSpec: spec, re: re})
	}
	return s
}

// SpecIDs returns the ids of the usable specs in claim order.
func (s *Synthesizer) SpecIDs() []string {
	ids := make([]string, len(s.specs))
	for i, spec := range s.specs {
		ids[i] = spec.ID
	}
	return ids
}

// Synthesize partitions vars into groups and ungrouped variables. vars must
// already be filtered; their order is preserved in Result.Ungrouped.
func (s *Synthesizer) Synthesize(vars []core.Variable) Result {
	claimed := make([][]core.Variable, len(s.specs))
	res := Result{
		Groups:     []core.Variable{},
		Membership: make(map[string]string),
		Ungrouped:  make([]core.Variable, 0, len(vars)),
	}

	for _, v := range vars {
		idx := s.claim(v.Name)
		if idx < 0 {
			res.Ungrouped = append(res.Ungrouped, v)
			continue
		}
		claimed[idx] = append(claimed[idx], v)
	}

	for i, members := range claimed {
		if len(members) == 0 {
			continue
		}
		g := build(s.specs[i].GroupSpec, members)
		for _, name := range g.Members {
			res.Membership[name] = g.Name
		}
		res.Groups = append(res.Groups, g)
	}

	return res
}

// claim returns the index of the first spec matching name, or -1.
func (s *Synthesizer) claim(name string) int {
	for i, spec := range s.specs {
		if spec.re.MatchString(name) {
			return i
		}
	}
	return -1
}

func build(spec core.GroupSpec, members []core.Variable) core.Variable {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	sort.Strings(names)

	label := spec.Label
	if label == "" {
		label = spec.ID
	}

	strategy := spec.CategoryStrategy.OrDefault()

	return core.Variable{
		Name:             spec.ID,
		Label:            label,
		Notes:            spec.Notes,
		Source:           spec.SourceOverride,
		Categories:       Categories(strategy, members, spec.CategoriesOverride),
		Tags:             []string{},
		IsGroup:          true,
		Members:          names,
		CategoryStrategy: strategy,
	}
}

// Categories aggregates member categories under strategy. Union and
// intersection results are sorted; override returns a copy of override.
func Categories(strategy core.CategoryStrategy, members []core.Variable, override []string) []string {
	switch strategy.OrDefault() {
	case core.StrategyOverride:
		out := make([]string, len(override))
		copy(out, override)
		return out

	case core.StrategyIntersection:
		if len(members) == 0 {
			return []string{}
		}
		counts := make(map[string]int)
		for _, m := range members {
			for _, c := range normalize.SortedSet(m.Categories) {
				counts[c]++
			}
		}
		common := make([]string, 0, len(counts))
		for c, n := range counts {
			if n == len(members) {
				common = append(common, c)
			}
		}
		sort.Strings(common)
		return common

	default:
		var all []string
		for _, m := range members {
			all = append(all, m.Categories...)
		}
		return normalize.SortedSet(all)
	}
}
