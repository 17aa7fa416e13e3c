// Package order merges ungrouped variables and group rows into the display
// sequence of a dataset.
package order

import (
	"github.com/leapstack-labs/varcat/pkg/core"
)

// Input describes one dataset's post-synthesis state.
type Input struct {
	// Declared is the codebook's declaration order, before any filtering.
	Declared []string
	// Surviving maps each non-ignored variable name to its record.
	Surviving map[string]core.Variable
	// Groups are the emitted group rows in claim order.
	Groups []core.Variable
	// Membership maps a grouped variable name to its group's name.
	Membership map[string]string
}

// Assemble walks the declaration order once. Ignored names are skipped, a
// group is emitted at the position of its first declared member, later members
// are skipped, and every other surviving variable is emitted in place. Groups
// never reached by the walk are appended in claim order.
func Assemble(in Input) []core.Variable {
	groups := make(map[string]core.Variable, len(in.Groups))
	for _, g := range in.Groups {
		groups[g.Name] = g
	}

	out := make([]core.Variable, 0, len(in.Surviving))
	emitted := make(map[string]bool, len(in.Groups))
	placed := make(map[string]bool, len(in.Declared))

	for _, name := range in.Declared {
		v, ok := in.Surviving[name]
		if !ok || placed[name] {
			continue
		}
		placed[name] = true

		groupName, grouped := in.Membership[name]
		if !grouped {
			out = append(out, v)
			continue
		}
		if emitted[groupName] {
			continue
		}
		if g, ok := groups[groupName]; ok {
			out = append(out, g)
			emitted[groupName] = true
		}
	}

	for _, g := range in.Groups {
		if !emitted[g.Name] && len(g.Members) > 0 {
			out = append(out, g)
			emitted[g.Name] = true
		}
	}

	return out
}
