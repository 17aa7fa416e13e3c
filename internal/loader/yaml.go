package loader

import (
	"log/slog"
	"os"

	"github.com/leapstack-labs/varcat/pkg/core"
	"gopkg.in/yaml.v3"
)

// Artifacts holds the parsed inputs of one dataset.
type Artifacts struct {
	Source   Source
	Meta     map[string]any
	Codebook core.Codebook
	Info     string // raw long-form Markdown, if any
}

// Load reads and parses every artifact present in src.
func Load(src Source, logger *slog.Logger) (*Artifacts, error) {
	a := &Artifacts{Source: src, Meta: map[string]any{}, Codebook: core.Codebook{}}

	if src.MetaPath != "" {
		meta, err := LoadMeta(src.MetaPath)
		if err != nil {
			return nil, err
		}
		a.Meta = meta
	}
	if src.CodebookPath != "" {
		cb, err := LoadCodebook(src.CodebookPath, logger)
		if err != nil {
			return nil, err
		}
		a.Codebook = cb
	}
	if src.InfoPath != "" {
		data, err := os.ReadFile(src.InfoPath) //nolint:gosec // G304: path comes from discovery
		if err != nil {
			return nil, &InputError{Path: src.InfoPath, Op: "read", Err: err}
		}
		a.Info = string(data)
	}
	return a, nil
}

// LoadCodebook reads a codebook file.
func LoadCodebook(path string, logger *slog.Logger) (core.Codebook, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from discovery
	if err != nil {
		return nil, &InputError{Path: path, Op: "read", Err: err}
	}
	cb, err := ParseCodebook(data, logger)
	if err != nil {
		return nil, &InputError{Path: path, Op: "parse", Err: err}
	}
	return cb, nil
}

// ParseCodebook parses a YAML mapping of variable name to properties,
// keeping declaration order. Only malformed YAML is an error; a top level that
// is not a mapping yields an empty codebook, and a property value that is not
// a mapping yields empty properties.
func ParseCodebook(data []byte, logger *slog.Logger) (core.Codebook, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	root := documentRoot(&doc)
	if root == nil {
		return core.Codebook{}, nil
	}
	if root.Kind != yaml.MappingNode {
		logger.Warn("codebook is not a mapping, treating it as empty", "line", root.Line)
		return core.Codebook{}, nil
	}

	cb := make(core.Codebook, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || keyNode.Value == "<<" {
			logger.Warn("skipping non-scalar codebook key", "line", keyNode.Line)
			continue
		}
		cb = append(cb, core.CodebookEntry{
			Name:  keyNode.Value,
			Props: decodeProps(keyNode.Value, valNode, logger),
		})
	}
	return cb, nil
}

// LoadMeta reads a meta file. A top level that is not a mapping yields empty meta.
func LoadMeta(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from discovery
	if err != nil {
		return nil, &InputError{Path: path, Op: "read", Err: err}
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &InputError{Path: path, Op: "parse", Err: err}
	}
	if m, ok := raw.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{}, nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return resolveAlias(doc.Content[0])
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func decodeProps(name string, n *yaml.Node, logger *slog.Logger) map[string]any {
	n = resolveAlias(n)
	props := map[string]any{}
	if n == nil {
		return props
	}

	switch n.Kind {
	case yaml.MappingNode:
		if err := n.Decode(&props); err != nil {
			logger.Warn("unreadable variable properties, using defaults",
				"variable", name, "line", n.Line, "error", err)
			return map[string]any{}
		}
	case yaml.ScalarNode:
		if n.Tag != "!!null" {
			logger.Warn("variable properties are not a mapping, using defaults",
				"variable", name, "line", n.Line)
		}
	default:
		logger.Warn("variable properties are not a mapping, using defaults",
			"variable", name, "line", n.Line)
	}
	return props
}
