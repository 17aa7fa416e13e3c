// Package export writes a built catalog to a queryable SQLite database.
package export

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/varcat/pkg/core"
)

//go:embed schema.sql
var schemaSQL string

// SQLite replaces the database at path with the contents of cat.
// Every indexed variable is written; displayed rows carry their position.
func SQLite(ctx context.Context, cat *core.Catalog, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove previous export: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cat == nil {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	w, err := newWriter(ctx, tx)
	if err != nil {
		return err
	}
	defer w.close()

	for i, ds := range cat.Datasets {
		if err := w.dataset(ctx, i, ds); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type writer struct {
	datasets  *sql.Stmt
	variables *sql.Stmt
	members   *sql.Stmt
}

func newWriter(ctx context.Context, tx *sql.Tx) (*writer, error) {
	w := &writer{}
	var err error

	w.datasets, err = tx.PrepareContext(ctx, `
		INSERT INTO datasets (id, title, subtitle, description, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare dataset statement: %w", err)
	}

	w.variables, err = tx.PrepareContext(ctx, `
		INSERT INTO variables
		(dataset_id, name, label, notes, source, type, categories, tags,
		 is_group, long_notes, category_strategy, displayed, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.close()
		return nil, fmt.Errorf("prepare variable statement: %w", err)
	}

	w.members, err = tx.PrepareContext(ctx, `
		INSERT INTO group_members (dataset_id, group_name, member_name, position)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		w.close()
		return nil, fmt.Errorf("prepare group member statement: %w", err)
	}
	return w, nil
}

func (w *writer) close() {
	for _, stmt := range []*sql.Stmt{w.datasets, w.variables, w.members} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

func (w *writer) dataset(ctx context.Context, pos int, ds *core.Dataset) error {
	description := ds.Description
	if ds.DescriptionHTML != "" {
		description = ds.DescriptionHTML
	}
	if _, err := w.datasets.ExecContext(ctx, ds.ID, ds.Title, nullString(ds.Subtitle), nullString(description), pos); err != nil {
		return fmt.Errorf("insert dataset %s: %w", ds.ID, err)
	}

	displayed := make(map[string]int, len(ds.Variables))
	for i, v := range ds.Variables {
		displayed[v.Name] = i
	}

	// Displayed rows first, in order, then the remaining index entries by name.
	rows := make([]core.Variable, 0, len(ds.VariableIndex)+len(ds.Variables))
	rows = append(rows, ds.Variables...)
	var rest []string
	for name := range ds.VariableIndex {
		if _, ok := displayed[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		rows = append(rows, ds.VariableIndex[name])
	}

	for _, v := range rows {
		pos, shown := displayed[v.Name]
		if err := w.variable(ctx, ds.ID, v, shown, pos); err != nil {
			return err
		}
	}

	for _, v := range ds.Variables {
		if !v.IsGroup {
			continue
		}
		for i, member := range v.Members {
			if _, err := w.members.ExecContext(ctx, ds.ID, v.Name, member, i); err != nil {
				return fmt.Errorf("insert member %s of group %s: %w", member, v.Name, err)
			}
		}
	}
	return nil
}

func (w *writer) variable(ctx context.Context, datasetID string, v core.Variable, displayed bool, pos int) error {
	categories, err := jsonList(v.Categories)
	if err != nil {
		return err
	}
	tags, err := jsonList(v.Tags)
	if err != nil {
		return err
	}

	position := sql.NullInt64{}
	if displayed {
		position = sql.NullInt64{Int64: int64(pos), Valid: true}
	}

	_, err = w.variables.ExecContext(ctx,
		datasetID, v.Name, v.Label,
		nullString(v.Notes), nullString(v.Source), nullString(v.Type),
		categories, tags,
		v.IsGroup, v.LongNotes, nullString(string(v.CategoryStrategy)),
		displayed, position,
	)
	if err != nil {
		return fmt.Errorf("insert variable %s.%s: %w", datasetID, v.Name, err)
	}
	return nil
}

func jsonList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

// nullString returns a sql.NullString for optional string fields.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
