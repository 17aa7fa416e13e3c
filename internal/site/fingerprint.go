package site

import (
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/leapstack-labs/varcat/internal/loader"
)

// fingerprint hashes the paths and contents of every input file. Editors
// often emit write events without changing content; an equal fingerprint
// lets watch mode skip the rebuild.
func fingerprint(sources []loader.Source) (uint64, error) {
	h := xxh3.New()
	for _, src := range sources {
		for _, path := range src.Paths() {
			_, _ = h.WriteString(path)
			_, _ = h.Write([]byte{0})
			if err := hashInto(h, path); err != nil {
				return 0, err
			}
		}
	}
	return h.Sum64(), nil
}

func hashInto(w io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from discovery under the data dir
	if err != nil {
		return &loader.InputError{Path: path, Op: "read", Err: err}
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w, f); err != nil {
		return &loader.InputError{Path: path, Op: "read", Err: fmt.Errorf("hash: %w", err)}
	}
	return nil
}
