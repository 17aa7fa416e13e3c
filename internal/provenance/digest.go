// Package provenance records which input artifacts, by content digest,
// produced a build.
package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileDigest is the SHA-256 of one input file.
type FileDigest struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	SHA256 string `json:"sha256"`
}

// Report lists per-file digests in path order plus a digest over all of them.
type Report struct {
	Files    []FileDigest `json:"files"`
	Combined string       `json:"combined,omitempty"`
}

// Digest hashes every file in paths. Paths are made absolute, deduplicated
// and sorted first; the combined digest covers all file contents in that order.
func Digest(paths []string) (*Report, error) {
	seen := make(map[string]struct{}, len(paths))
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		abs = append(abs, a)
	}
	sort.Strings(abs)

	report := &Report{Files: make([]FileDigest, 0, len(abs))}
	if len(abs) == 0 {
		return report, nil
	}

	combined := sha256.New()
	for _, p := range abs {
		sum, err := hashFile(p, combined)
		if err != nil {
			return nil, err
		}
		report.Files = append(report.Files, FileDigest{
			Path:   p,
			Name:   filepath.Base(p),
			SHA256: sum,
		})
	}
	report.Combined = hex.EncodeToString(combined.Sum(nil))
	return report, nil
}

// hashFile returns the file's SHA-256 and also feeds its bytes into also.
func hashFile(path string, also io.Writer) (string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from discovery
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(h, also), f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// String renders one "<name>  <sha256>" line per file followed by the
// combined digest. A report without files renders as "".
func (r *Report) String() string {
	if r == nil || len(r.Files) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range r.Files {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Name)
		b.WriteString("  ")
		b.WriteString(f.SHA256)
	}
	b.WriteString("\n\nCombined SHA-256: ")
	b.WriteString(r.Combined)
	return b.String()
}
