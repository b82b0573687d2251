package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/querysql"
)

// ErrUnknownCollection is returned when a table was not created through
// CreateCollection.
var ErrUnknownCollection = errors.New("unknown collection")

// ColumnType is the storage type of a collection column.
type ColumnType string

const (
	TypeText    ColumnType = "TEXT"
	TypeInteger ColumnType = "INTEGER"
	TypeBoolean ColumnType = "BOOLEAN"
)

// ParseColumnType accepts the CUE-facing names "string", "int" and "bool"
// as well as the SQL names.
func ParseColumnType(name string) (ColumnType, error) {
	switch strings.ToLower(name) {
	case "string", "text":
		return TypeText, nil
	case "int", "integer":
		return TypeInteger, nil
	case "bool", "boolean":
		return TypeBoolean, nil
	}
	return "", fmt.Errorf("unknown column type %q", name)
}

// Column is one collection column.
type Column struct {
	Name string     `db:"name"`
	Type ColumnType `db:"type"`
}

// Definition describes a collection table. Key names the unique,
// non-null column used as the last sort tie-breaker.
type Definition struct {
	Table   string
	Key     string
	Columns []Column
}

// Column returns the named column.
func (d Definition) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Validate checks identifiers, column types and that Key is a column.
func (d Definition) Validate() error {
	if err := querysql.CheckIdentifier(d.Table); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if strings.HasPrefix(d.Table, "pagewin_") {
		return fmt.Errorf("table %q uses the reserved pagewin_ prefix", d.Table)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", d.Table)
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if err := querysql.CheckIdentifier(c.Name); err != nil {
			return fmt.Errorf("column: %w", err)
		}
		if seen[c.Name] {
			return fmt.Errorf("column %s declared twice", c.Name)
		}
		seen[c.Name] = true
		switch c.Type {
		case TypeText, TypeInteger, TypeBoolean:
		default:
			return fmt.Errorf("column %s has unknown type %q", c.Name, c.Type)
		}
	}
	if !seen[d.Key] {
		return fmt.Errorf("key %q is not a column of %s", d.Key, d.Table)
	}
	return nil
}

// Fingerprint identifies the definition; recreating a collection with the
// same fingerprint is a no-op.
func (d Definition) Fingerprint() (string, error) {
	cols := make([]any, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = map[string]any{"name": c.Name, "type": string(c.Type)}
	}
	return ir.Fingerprint(ir.DomainCollection, map[string]any{
		"table":   d.Table,
		"key":     d.Key,
		"columns": cols,
	})
}

// CreateCollection creates the table for def and records it in the
// registry. Creating an identical collection again is a no-op; creating a
// different one under the same table name is an error.
func (s *Store) CreateCollection(ctx context.Context, def Definition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	fp, err := def.Fingerprint()
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.GetContext(ctx, &existing, "SELECT fingerprint FROM pagewin_collections WHERE table_name = ?", def.Table)
	switch {
	case err == nil && existing == fp:
		return nil
	case err == nil:
		return fmt.Errorf("create collection: %s already exists with a different definition", def.Table)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read registry: %w", err)
	}

	cols := make([]string, 0, len(def.Columns)+1)
	for _, c := range def.Columns {
		col := fmt.Sprintf("%s %s", c.Name, c.Type)
		if c.Name == def.Key {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", def.Key))
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", def.Table, strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", def.Table, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO pagewin_collections (table_name, key_column, fingerprint) VALUES (?, ?, ?)",
		def.Table, def.Key, fp,
	); err != nil {
		return fmt.Errorf("register %s: %w", def.Table, err)
	}
	for i, c := range def.Columns {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO pagewin_columns (table_name, position, name, type) VALUES (?, ?, ?, ?)",
			def.Table, i, c.Name, string(c.Type),
		); err != nil {
			return fmt.Errorf("register %s.%s: %w", def.Table, c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.mu.Lock()
	s.schemas[def.Table] = def
	s.mu.Unlock()
	return nil
}

// Collection returns the registered definition of table.
func (s *Store) Collection(ctx context.Context, table string) (Definition, error) {
	s.mu.RLock()
	def, ok := s.schemas[table]
	s.mu.RUnlock()
	if ok {
		return def, nil
	}

	var key string
	err := s.db.GetContext(ctx, &key, "SELECT key_column FROM pagewin_collections WHERE table_name = ?", table)
	if errors.Is(err, sql.ErrNoRows) {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownCollection, table)
	}
	if err != nil {
		return Definition{}, fmt.Errorf("read registry: %w", err)
	}

	var cols []Column
	if err := s.db.SelectContext(ctx, &cols,
		"SELECT name, type FROM pagewin_columns WHERE table_name = ? ORDER BY position ASC", table,
	); err != nil {
		return Definition{}, fmt.Errorf("read columns of %s: %w", table, err)
	}

	def = Definition{Table: table, Key: key, Columns: cols}
	s.mu.Lock()
	s.schemas[table] = def
	s.mu.Unlock()
	return def, nil
}

// Collections lists registered table names in name order.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names,
		"SELECT table_name FROM pagewin_collections ORDER BY table_name COLLATE BINARY ASC",
	); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// Insert adds rows to a collection in one transaction. Every row field
// must be a declared column holding a value of the column's type or null;
// absent columns are stored as NULL.
func (s *Store) Insert(ctx context.Context, table string, rows ...ir.Object) error {
	def, err := s.Collection(ctx, table)
	if err != nil {
		return err
	}

	names := make([]string, len(def.Columns))
	marks := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		names[i] = c.Name
		marks[i] = "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", def.Table, strings.Join(names, ", "), strings.Join(marks, ", "))

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, row := range rows {
		params, err := rowParams(def, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, stmt, params...); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", i, def.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func rowParams(def Definition, row ir.Object) ([]any, error) {
	for field := range row {
		if _, ok := def.Column(field); !ok {
			return nil, fmt.Errorf("unknown column %q", field)
		}
	}

	params := make([]any, len(def.Columns))
	for i, c := range def.Columns {
		v := row.Get(c.Name)
		if ir.IsNull(v) {
			if c.Name == def.Key {
				return nil, fmt.Errorf("key column %s is null", c.Name)
			}
			continue
		}
		if err := checkType(c, v); err != nil {
			return nil, err
		}
		params[i] = ir.ToAny(v)
	}
	return params, nil
}

func checkType(c Column, v ir.Value) error {
	ok := false
	switch v.(type) {
	case ir.String:
		ok = c.Type == TypeText
	case ir.Int:
		ok = c.Type == TypeInteger
	case ir.Bool:
		ok = c.Type == TypeBoolean
	}
	if !ok {
		return fmt.Errorf("column %s (%s) cannot hold %T", c.Name, c.Type, v)
	}
	return nil
}
