package core

// CodebookEntry is one raw variable in declaration order.
type CodebookEntry struct {
	Name  string
	Props map[string]any
}

// Codebook is a dataset's raw variable descriptions, in declaration order.
type Codebook []CodebookEntry

// Names returns the entry names in declaration order.
func (c Codebook) Names() []string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name
	}
	return names
}

// DatasetInput is everything the assembler needs for one dataset.
type DatasetInput struct {
	ID       string
	Meta     map[string]any
	Codebook Codebook
	// DescriptionHTML is pre-rendered long-form text; it takes precedence over
	// any description found in Meta.
	DescriptionHTML string
}

// Dataset is one assembled catalog entry.
type Dataset struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	// Exactly one of Description and DescriptionHTML is set, or neither.
	Description     string `json:"description,omitempty"`
	DescriptionHTML string `json:"description_html,omitempty"`
	// Variables is the display list: ungrouped variables and group rows.
	Variables []Variable `json:"variables"`
	// VariableIndex holds every surviving variable, grouped or not.
	VariableIndex map[string]Variable `json:"variable_index"`
}

// Lookup returns the display row named name.
func (d *Dataset) Lookup(name string) (Variable, bool) {
	for _, v := range d.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Catalog is the ordered set of datasets produced by one build.
type Catalog struct {
	Datasets []*Dataset `json:"datasets"`
}

// CatalogStats contains counts for summaries.
type CatalogStats struct {
	DatasetCount  int `json:"dataset_count"`
	VariableCount int `json:"variable_count"`
	GroupCount    int `json:"group_count"`
	DisplayCount  int `json:"display_count"`
}

// Stats counts datasets, indexed variables, group rows and display rows.
func (c *Catalog) Stats() CatalogStats {
	s := CatalogStats{DatasetCount: len(c.Datasets)}
	for _, ds := range c.Datasets {
		s.VariableCount += len(ds.VariableIndex)
		s.DisplayCount += len(ds.Variables)
		for _, v := range ds.Variables {
			if v.IsGroup {
				s.GroupCount++
			}
		}
	}
	return s
}

// Dataset returns the dataset with the given id.
func (c *Catalog) Dataset(id string) (*Dataset, bool) {
	for _, ds := range c.Datasets {
		if ds.ID == id {
			return ds, true
		}
	}
	return nil, false
}
