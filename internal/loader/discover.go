// Package loader discovers per-dataset input files and parses them into the
// raw shapes consumed by the catalog assembler.
package loader

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File name markers. A file named "<key><marker>.<ext>" contributes that
// artifact to dataset <key>.
const (
	CodebookMarker = "_register_codebook"
	MetaMarker     = "_register_meta"
	InfoMarker     = "_register_info"
)

// Source lists the artifacts found for one dataset key. Any path may be empty.
type Source struct {
	Key          string
	CodebookPath string
	MetaPath     string
	InfoPath     string
}

// Paths returns the non-empty artifact paths.
func (s Source) Paths() []string {
	var out []string
	for _, p := range []string{s.MetaPath, s.CodebookPath, s.InfoPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Discover walks dataDir recursively and pairs artifacts by key. Sources are
// returned sorted by key. When two files claim the same artifact for one key,
// the first in lexical walk order is kept.
func Discover(dataDir string) ([]Source, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, &InputError{Path: dataDir, Op: "stat", Err: err}
	}
	if !info.IsDir() {
		return nil, &InputError{Path: dataDir, Op: "stat", Err: errNotDir}
	}

	byKey := make(map[string]*Source)
	get := func(key string) *Source {
		s, ok := byKey[key]
		if !ok {
			s = &Source{Key: key}
			byKey[key] = s
		}
		return s
	}

	err = filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dataDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case isYAML(ext) && strings.Contains(name, CodebookMarker):
			if s := get(keyOf(name, CodebookMarker)); s.CodebookPath == "" {
				s.CodebookPath = path
			}
		case isYAML(ext) && strings.Contains(name, MetaMarker):
			if s := get(keyOf(name, MetaMarker)); s.MetaPath == "" {
				s.MetaPath = path
			}
		case ext == ".md" && strings.Contains(name, InfoMarker):
			if s := get(keyOf(name, InfoMarker)); s.InfoPath == "" {
				s.InfoPath = path
			}
		}
		return nil
	})
	if err != nil {
		return nil, &InputError{Path: dataDir, Op: "walk", Err: err}
	}

	sources := make([]Source, 0, len(byKey))
	for _, s := range byKey {
		// An info file alone does not make a dataset.
		if s.CodebookPath == "" && s.MetaPath == "" {
			continue
		}
		sources = append(sources, *s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Key < sources[j].Key })
	return sources, nil
}

func isYAML(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func keyOf(name, marker string) string {
	key, _, _ := strings.Cut(name, marker)
	return key
}
