// Package mysqlstore is a MySQL-backed storage back-end (spec §6.4):
// schemas and data are persisted as two physical tables the way spec
// §6.4 describes, leaving encoding to the back-end. Connection lifecycle
// is grounded directly on the teacher's internal/apply.Applier
// (Options{DSN}, Connect/Close around database/sql, go-sql-driver/mysql)
// — the one place in the teacher repo that actually dials a database.
package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// Options configures a Store's connection, mirroring internal/apply's
// Options struct field-for-field for the one field both concerns share.
type Options struct {
	DSN string
}

// Store is the MySQL-backed back-end. A zero Store is not usable; build
// one with Open.
type Store struct {
	db *sql.DB
	tx *sql.Tx

	// Now, like storage/memstore's Store, is overridable for tests that
	// need deterministic SchemaMeta timestamps.
	Now func() string
}

// Open dials the database, verifies connectivity, and creates the two
// physical tables spec §6.4 names, plus glue_functions, if they do not
// already exist.
func Open(ctx context.Context, opts Options) (*Store, error) {
	db, err := sql.Open("mysql", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysqlstore: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysqlstore: ping: %w", err)
	}
	s := &Store{db: db, Now: defaultNow}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const schemaTableDDL = `CREATE TABLE IF NOT EXISTS glue_schemas (
	table_name VARCHAR(191) NOT NULL PRIMARY KEY,
	column_defs TEXT NOT NULL,
	primary_key TEXT NOT NULL,
	foreign_keys TEXT NOT NULL,
	checks TEXT NOT NULL,
	engine_hint TEXT NOT NULL,
	created_at VARCHAR(64) NOT NULL,
	updated_at VARCHAR(64) NOT NULL
) ENGINE=InnoDB`

const dataTableDDL = `CREATE TABLE IF NOT EXISTS glue_data (
	table_name VARCHAR(191) NOT NULL,
	key_bytes VARBINARY(767) NOT NULL,
	key_value TEXT NOT NULL,
	row_value TEXT NOT NULL,
	PRIMARY KEY (table_name, key_bytes)
) ENGINE=InnoDB`

const functionTableDDL = `CREATE TABLE IF NOT EXISTS glue_functions (
	name VARCHAR(191) NOT NULL PRIMARY KEY,
	params TEXT NOT NULL,
	body TEXT NOT NULL
) ENGINE=InnoDB`

func (s *Store) migrate(ctx context.Context) error {
	for _, ddl := range []string{schemaTableDDL, dataTableDDL, functionTableDDL} {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("mysqlstore: migrate: %w", err)
		}
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx, letting every query
// method run unmodified whether or not a user transaction is open.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) conn() execer {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func defaultNow() string { return nowRFC3339() }
