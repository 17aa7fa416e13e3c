package catalog

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/varcat/pkg/core"
)

// Expansion errors.
var (
	ErrUnknownRow = errors.New("no such row")
	ErrNotGroup   = errors.New("row is not a group")
)

// ExpandGroup returns the member records of the group row named name, in
// member order, looked up in the dataset's variable index.
func ExpandGroup(ds *core.Dataset, name string) ([]core.Variable, error) {
	row, ok := ds.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in dataset %q", ErrUnknownRow, name, ds.ID)
	}
	if !row.IsGroup {
		return nil, fmt.Errorf("%w: %q in dataset %q", ErrNotGroup, name, ds.ID)
	}

	members := make([]core.Variable, 0, len(row.Members))
	for _, m := range row.Members {
		if v, ok := ds.VariableIndex[m]; ok {
			members = append(members, v)
		}
	}
	return members, nil
}
