// Package sqlshape inspects the live structure of an already persisted
// SQL store and reports it as a [schema.Schema], the observed shape fed
// into current-version resolution. Inspection is strictly read-only; the
// store is never mutated.
package sqlshape

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/syssam/strata/schema"
)

// Inspector reads the observed entity shape of a concrete store.
type Inspector interface {
	InspectSchema(ctx context.Context) (*schema.Schema, error)
}

// SQLite inspects a SQLite database through its catalog tables and
// PRAGMA statements.
type SQLite struct {
	db *sql.DB
}

// NewSQLite returns an inspector over the given database handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// InspectSchema reads every user table into an entity description:
// columns become attributes, foreign keys become to-one relationships,
// and explicitly created indexes become compound indexes. Internal
// sqlite_* tables are skipped.
func (s *SQLite) InspectSchema(ctx context.Context) (*schema.Schema, error) {
	tables, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	entities := make([]*schema.Entity, 0, len(tables))
	for _, table := range tables {
		e, err := s.inspectTable(ctx, table)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return schema.New(entities...)
}

func (s *SQLite) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("sqlshape: listing tables: %w", err)
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlshape: listing tables: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlshape: listing tables: %w", err)
	}
	return tables, nil
}

func (s *SQLite) inspectTable(ctx context.Context, table string) (*schema.Entity, error) {
	e := &schema.Entity{Name: table}
	fkColumns, err := s.loadForeignKeys(ctx, e, table)
	if err != nil {
		return nil, err
	}
	if err := s.loadColumns(ctx, e, table, fkColumns); err != nil {
		return nil, err
	}
	if err := s.loadIndexes(ctx, e, table); err != nil {
		return nil, err
	}
	return e, nil
}

// loadForeignKeys turns the table's foreign keys into to-one
// relationships and returns the set of columns they occupy, so column
// loading can skip them.
func (s *SQLite) loadForeignKeys(ctx context.Context, e *schema.Entity, table string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("sqlshape: foreign keys of %q: %w", table, err)
	}
	defer rows.Close()
	columns := make(map[string]struct{})
	for rows.Next() {
		var (
			id, seq            int
			refTable, from     string
			to                 sql.NullString
			onUpdate, onDelete string
			match              string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("sqlshape: foreign keys of %q: %w", table, err)
		}
		columns[from] = struct{}{}
		e.Relationships = append(e.Relationships, schema.Relationship{
			Name:        from,
			Destination: refTable,
			Cardinality: schema.ToOne,
			DeleteRule:  deleteRule(onDelete),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlshape: foreign keys of %q: %w", table, err)
	}
	return columns, nil
}

func (s *SQLite) loadColumns(ctx context.Context, e *schema.Entity, table string, fkColumns map[string]struct{}) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return fmt.Errorf("sqlshape: columns of %q: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			deflt   sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &deflt, &pk); err != nil {
			return fmt.Errorf("sqlshape: columns of %q: %w", table, err)
		}
		if _, ok := fkColumns[name]; ok {
			continue
		}
		e.Attributes = append(e.Attributes, schema.Attribute{
			Name:     name,
			Type:     attributeType(typ),
			Optional: notNull == 0 && pk == 0,
			Default:  deflt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlshape: columns of %q: %w", table, err)
	}
	return nil
}

// loadIndexes keeps only indexes created with CREATE INDEX (origin "c")
// or a UNIQUE constraint (origin "u"); implicit primary-key indexes are
// not part of the declared shape.
func (s *SQLite) loadIndexes(ctx context.Context, e *schema.Entity, table string) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", table))
	if err != nil {
		return fmt.Errorf("sqlshape: indexes of %q: %w", table, err)
	}
	type indexEntry struct {
		name   string
		unique bool
	}
	var indexes []indexEntry
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return fmt.Errorf("sqlshape: indexes of %q: %w", table, err)
		}
		if origin != "c" && origin != "u" {
			continue
		}
		indexes = append(indexes, indexEntry{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("sqlshape: indexes of %q: %w", table, err)
	}
	rows.Close()
	for _, idx := range indexes {
		fields, err := s.indexFields(ctx, idx.name)
		if err != nil {
			return err
		}
		e.Indexes = append(e.Indexes, schema.Index{Fields: fields, Unique: idx.unique})
	}
	return nil
}

func (s *SQLite) indexFields(ctx context.Context, index string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%q)", index))
	if err != nil {
		return nil, fmt.Errorf("sqlshape: index %q: %w", index, err)
	}
	defer rows.Close()
	var fields []string
	for rows.Next() {
		var (
			seqno, cid int
			name       sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("sqlshape: index %q: %w", index, err)
		}
		if name.Valid {
			fields = append(fields, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlshape: index %q: %w", index, err)
	}
	return fields, nil
}

// attributeType maps a SQLite declared column type to the structural
// model, following SQLite's affinity rules for the common cases.
func attributeType(declared string) schema.AttributeType {
	t := strings.ToUpper(declared)
	switch {
	case strings.Contains(t, "INT"):
		return schema.TypeInt
	case strings.Contains(t, "BOOL"):
		return schema.TypeBool
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return schema.TypeTime
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"), strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return schema.TypeFloat
	case strings.Contains(t, "BLOB"), t == "":
		return schema.TypeBytes
	case strings.Contains(t, "UUID"):
		return schema.TypeUUID
	case strings.Contains(t, "JSON"):
		return schema.TypeJSON
	default:
		return schema.TypeString
	}
}

func deleteRule(onDelete string) schema.DeleteRule {
	switch strings.ToUpper(onDelete) {
	case "CASCADE":
		return schema.Cascade
	case "SET NULL", "SET DEFAULT":
		return schema.Nullify
	case "RESTRICT":
		return schema.Deny
	default:
		return schema.NoAction
	}
}
