// Package render turns a built catalog into the single-file variables browser.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/varcat/pkg/core"
)

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Variables Browser"

// Options control page rendering.
type Options struct {
	Title      string
	Minify     bool
	LiveReload bool
	// Provenance is printed verbatim in the page footer when non-empty.
	Provenance string
}

type page struct {
	Title      string
	Stats      core.CatalogStats
	Datasets   []datasetView
	Provenance string
	CSS        template.CSS
	JS         template.JS
	Data       template.JS
	LiveReload template.JS
}

type datasetView struct {
	ID              string
	Title           string
	Subtitle        string
	Description     string
	DescriptionHTML template.HTML
	Rows            []rowView
}

type rowView struct {
	core.Variable
	MemberRows []core.Variable
}

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Render writes the HTML page for cat to w.
func Render(w io.Writer, cat *core.Catalog, opts Options) error {
	if cat == nil {
		cat = &core.Catalog{}
	}

	assets, err := LoadAssets(opts.Minify)
	if err != nil {
		return err
	}

	data, err := CatalogJSON(cat)
	if err != nil {
		return err
	}

	p := page{
		Title:      opts.Title,
		Stats:      cat.Stats(),
		Datasets:   make([]datasetView, 0, len(cat.Datasets)),
		Provenance: opts.Provenance,
		CSS:        template.CSS(assets.CSS), //nolint:gosec // embedded asset
		JS:         template.JS(assets.JS),   //nolint:gosec // embedded asset
		Data:       template.JS(data),        //nolint:gosec // json.Marshal escapes <, > and &
	}
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if opts.LiveReload {
		p.LiveReload = template.JS(liveReloadScript)
	}

	for _, ds := range cat.Datasets {
		p.Datasets = append(p.Datasets, newDatasetView(ds))
	}

	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("failed to execute page template: %w", err)
	}
	return nil
}

func newDatasetView(ds *core.Dataset) datasetView {
	view := datasetView{
		ID:              ds.ID,
		Title:           ds.Title,
		Subtitle:        ds.Subtitle,
		Description:     ds.Description,
		DescriptionHTML: template.HTML(ds.DescriptionHTML), //nolint:gosec // rendered from trusted info files with raw HTML disabled
		Rows:            make([]rowView, 0, len(ds.Variables)),
	}

	for _, v := range ds.Variables {
		row := rowView{Variable: v}
		if v.IsGroup {
			for _, name := range v.Members {
				if member, ok := ds.VariableIndex[name]; ok {
					row.MemberRows = append(row.MemberRows, member)
				}
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// CatalogJSON returns the compact JSON form of cat embedded in the page.
func CatalogJSON(cat *core.Catalog) ([]byte, error) {
	datasets := cat.Datasets
	if datasets == nil {
		datasets = []*core.Dataset{}
	}
	data, err := json.Marshal(struct {
		Datasets []*core.Dataset `json:"datasets"`
	}{Datasets: datasets})
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return data, nil
}

// WriteFile renders cat and replaces path atomically, creating parent directories.
func WriteFile(path string, cat *core.Catalog, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, cat, opts); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".varcat-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // published page is world readable
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
