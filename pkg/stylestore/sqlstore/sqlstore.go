// Package sqlstore serves style records from a libSQL database.
//
// Each record kind has its own table with one TEXT column per schema field
// (see migrations/). An empty column means the field is unset.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/go-libsql"

	pvmerrors "github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/style"
)

const (
	tableNodes      = "diagram_node_type_styles"
	tableTransition = "diagram_transition_styles"
	tableSpecial    = "diagram_special_node_styles"
	tableGraph      = "diagram_graph_settings"

	// defaultName keys the single transition and graph rows.
	defaultName = "default"
)

// Store implements [style.Source] on top of libSQL.
type Store struct {
	db *sql.DB
}

// Ensure Store implements style.Source.
var _ style.Source = (*Store)(nil)

// Open opens a libSQL database. dsn is a file URI such as
// "file:/var/lib/pvmviz/styles.db".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, pvmerrors.Wrap(pvmerrors.ErrCodeInvalidStyleSource, err, "open libsql %s", dsn)
	}
	db.SetMaxOpenConns(1)

	// Some PRAGMAs return rows, so use QueryRow.
	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the style tables if needed.
func (s *Store) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// =============================================================================
// style.Source
// =============================================================================

func (s *Store) NodeStyle(ctx context.Context, nodeType string) (style.Record, error) {
	return s.record(ctx, tableNodes, "node_type", nodeType)
}

func (s *Store) TransitionStyle(ctx context.Context) (style.Record, error) {
	return s.record(ctx, tableTransition, "name", defaultName)
}

func (s *Store) SpecialNodeStyle(ctx context.Context, kind style.Special) (style.Record, error) {
	return s.record(ctx, tableSpecial, "kind", string(kind))
}

func (s *Store) GraphSettings(ctx context.Context) (style.GraphRecord, error) {
	f, err := s.fields(ctx, tableGraph, "name", defaultName, style.GraphFieldNames())
	if err != nil {
		return style.GraphRecord{}, err
	}
	r, err := style.GraphRecordFromFields(f)
	if err != nil {
		return style.GraphRecord{}, fmt.Errorf("%s/%s: %w", tableGraph, defaultName, err)
	}
	return r, nil
}

func (s *Store) record(ctx context.Context, table, keyCol, key string) (style.Record, error) {
	f, err := s.fields(ctx, table, keyCol, key, style.RecordFieldNames())
	if err != nil {
		return style.Record{}, err
	}
	r, err := style.RecordFromFields(f)
	if err != nil {
		return style.Record{}, fmt.Errorf("%s/%s: %w", table, key, err)
	}
	return r, nil
}

// fields reads one row and returns its non-empty columns.
func (s *Store) fields(ctx context.Context, table, keyCol, key string, cols []string) (map[string]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", strings.Join(cols, ", "), table, keyCol)
	values := make([]string, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	err := s.db.QueryRowContext(ctx, query, key).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, style.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	f := make(map[string]string, len(cols))
	for i, c := range cols {
		if values[i] != "" {
			f[c] = values[i]
		}
	}
	return f, nil
}

// =============================================================================
// Writes
// =============================================================================

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PutNodeStyle inserts or replaces the record for a node type.
func (s *Store) PutNodeStyle(ctx context.Context, nodeType string, r style.Record) error {
	return upsertRecord(ctx, s.db, tableNodes, "node_type", nodeType, r)
}

// PutTransitionStyle inserts or replaces the transition record.
func (s *Store) PutTransitionStyle(ctx context.Context, r style.Record) error {
	return upsertRecord(ctx, s.db, tableTransition, "name", defaultName, r)
}

// PutSpecialNodeStyle inserts or replaces the record for a virtual node.
func (s *Store) PutSpecialNodeStyle(ctx context.Context, kind style.Special, r style.Record) error {
	return upsertRecord(ctx, s.db, tableSpecial, "kind", string(kind), r)
}

// PutGraphSettings inserts or replaces the graph settings.
func (s *Store) PutGraphSettings(ctx context.Context, r style.GraphRecord) error {
	return upsert(ctx, s.db, tableGraph, "name", defaultName, style.GraphFieldNames(), r.Fields())
}

// Seed writes every record of t in one transaction. On error nothing is
// written.
func (s *Store) Seed(ctx context.Context, t *style.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if t.Graph != nil {
		if err := upsert(ctx, tx, tableGraph, "name", defaultName, style.GraphFieldNames(), t.Graph.Fields()); err != nil {
			return err
		}
	}
	if t.Transition != nil {
		if err := upsertRecord(ctx, tx, tableTransition, "name", defaultName, *t.Transition); err != nil {
			return err
		}
	}
	for kind, r := range t.Special {
		if err := upsertRecord(ctx, tx, tableSpecial, "kind", string(kind), r); err != nil {
			return err
		}
	}
	for nodeType, r := range t.Nodes {
		if err := upsertRecord(ctx, tx, tableNodes, "node_type", nodeType, r); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func upsertRecord(ctx context.Context, db execer, table, keyCol, key string, r style.Record) error {
	return upsert(ctx, db, table, keyCol, key, style.RecordFieldNames(), r.Fields())
}

func upsert(ctx context.Context, db execer, table, keyCol, key string, cols []string, f map[string]string) error {
	args := make([]any, 0, len(cols)+1)
	args = append(args, key)
	sets := make([]string, len(cols))
	for i, c := range cols {
		args = append(args, f[c])
		sets[i] = c + "=excluded." + c
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES (?%s) ON CONFLICT(%s) DO UPDATE SET %s, updated_at=CURRENT_TIMESTAMP",
		table, keyCol, strings.Join(cols, ", "), strings.Repeat(", ?", len(cols)), keyCol, strings.Join(sets, ", "),
	)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", table, key, err)
	}
	return nil
}
