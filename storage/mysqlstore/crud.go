package mysqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/store"
	"github.com/glue-sql/glue/translate"
	"github.com/glue-sql/glue/value"
)

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

// FetchAllSchemas implements store.Store.
func (s *Store) FetchAllSchemas(ctx context.Context) ([]*schema.Schema, error) {
	rows, err := s.conn().QueryContext(ctx, `SELECT table_name, column_defs, primary_key, foreign_keys, checks, engine_hint FROM glue_schemas`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tr := translate.New()
	var out []*schema.Schema
	for rows.Next() {
		var table, cols, pk, fks, checks, hint string
		if err := rows.Scan(&table, &cols, &pk, &fks, &checks, &hint); err != nil {
			return nil, err
		}
		sch, err := unmarshalSchema(table, cols, pk, fks, checks, hint, tr)
		if err != nil {
			return nil, err
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

// FetchSchema implements store.Store, returning (nil, nil) for a table
// that does not exist.
func (s *Store) FetchSchema(ctx context.Context, table string) (*schema.Schema, error) {
	var cols, pk, fks, checks, hint string
	row := s.conn().QueryRowContext(ctx,
		`SELECT column_defs, primary_key, foreign_keys, checks, engine_hint FROM glue_schemas WHERE table_name = ?`, table)
	if err := row.Scan(&cols, &pk, &fks, &checks, &hint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return unmarshalSchema(table, cols, pk, fks, checks, hint, translate.New())
}

// FetchData implements store.Store, returning (nil, nil) when key is absent.
func (s *Store) FetchData(ctx context.Context, table string, key value.Key) (*schema.DataRow, error) {
	var rowJSON string
	row := s.conn().QueryRowContext(ctx,
		`SELECT row_value FROM glue_data WHERE table_name = ? AND key_bytes = ?`, table, key.Bytes)
	if err := row.Scan(&rowJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	r, err := unmarshalRow(rowJSON)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ScanData implements store.Store, streaming in ascending key_bytes order
// (spec §5 "Ordering") since VARBINARY comparison in MySQL is byte-order,
// matching value.Key's own ordering contract.
func (s *Store) ScanData(ctx context.Context, table string) (store.RowIterator, error) {
	rows, err := s.conn().QueryContext(ctx,
		`SELECT key_bytes, key_value, row_value FROM glue_data WHERE table_name = ? ORDER BY key_bytes ASC`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var keyBytes []byte
		var keyJSON, rowJSON string
		if err := rows.Scan(&keyBytes, &keyJSON, &rowJSON); err != nil {
			return nil, err
		}
		kv, err := unmarshalValue(keyJSON)
		if err != nil {
			return nil, err
		}
		key, err := value.NewKey(kv)
		if err != nil {
			return nil, err
		}
		r, err := unmarshalRow(rowJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, store.Row{Key: key, Data: r})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.NewSliceIterator(out), nil
}

// InsertSchema implements store.StoreMut.
func (s *Store) InsertSchema(ctx context.Context, sch *schema.Schema) error {
	cols, pk, fks, checks, err := marshalSchema(sch)
	if err != nil {
		return err
	}
	now := s.now()
	_, err = s.conn().ExecContext(ctx, `
		INSERT INTO glue_schemas (table_name, column_defs, primary_key, foreign_keys, checks, engine_hint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE column_defs = VALUES(column_defs), primary_key = VALUES(primary_key),
			foreign_keys = VALUES(foreign_keys), checks = VALUES(checks), engine_hint = VALUES(engine_hint),
			updated_at = VALUES(updated_at)`,
		sch.Table, cols, pk, fks, checks, sch.EngineHint, now, now)
	return err
}

// DeleteSchema implements store.StoreMut, cascading into glue_data.
func (s *Store) DeleteSchema(ctx context.Context, table string) error {
	if _, err := s.conn().ExecContext(ctx, `DELETE FROM glue_data WHERE table_name = ?`, table); err != nil {
		return err
	}
	_, err := s.conn().ExecContext(ctx, `DELETE FROM glue_schemas WHERE table_name = ?`, table)
	return err
}

// AppendData implements store.StoreMut: each row is assigned a
// monotonically increasing synthetic integer key, scoped per table.
func (s *Store) AppendData(ctx context.Context, table string, rows []schema.DataRow) error {
	next, err := s.nextAutoKey(ctx, table)
	if err != nil {
		return err
	}
	storeRows := make([]store.Row, len(rows))
	for i, r := range rows {
		kv := value.NewInt64(next)
		next++
		key, err := value.NewKey(kv)
		if err != nil {
			return err
		}
		storeRows[i] = store.Row{Key: key, Data: r}
	}
	return s.InsertData(ctx, table, storeRows)
}

func (s *Store) nextAutoKey(ctx context.Context, table string) (int64, error) {
	var maxKey sql.NullString
	row := s.conn().QueryRowContext(ctx,
		`SELECT key_value FROM glue_data WHERE table_name = ? ORDER BY key_bytes DESC LIMIT 1`, table)
	if err := row.Scan(&maxKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 1, nil
		}
		return 0, err
	}
	if !maxKey.Valid {
		return 1, nil
	}
	v, err := unmarshalValue(maxKey.String)
	if err != nil {
		return 0, err
	}
	if n, ok := v.Int64(); ok {
		return n + 1, nil
	}
	return 1, nil
}

// InsertData implements store.StoreMut, overwriting any existing row
// under the same key.
func (s *Store) InsertData(ctx context.Context, table string, rows []store.Row) error {
	for _, r := range rows {
		keyJSON, err := marshalValue(r.Key.Value())
		if err != nil {
			return err
		}
		rowJSON, err := marshalRow(r.Data)
		if err != nil {
			return err
		}
		_, err = s.conn().ExecContext(ctx, `
			INSERT INTO glue_data (table_name, key_bytes, key_value, row_value)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE key_value = VALUES(key_value), row_value = VALUES(row_value)`,
			table, r.Key.Bytes, keyJSON, rowJSON)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteData implements store.StoreMut.
func (s *Store) DeleteData(ctx context.Context, table string, keys []value.Key) error {
	for _, k := range keys {
		if _, err := s.conn().ExecContext(ctx, `DELETE FROM glue_data WHERE table_name = ? AND key_bytes = ?`, table, k.Bytes); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) now() string {
	if s.Now != nil {
		return s.Now()
	}
	return nowRFC3339()
}

// Begin/Commit/Rollback implement store.Transaction over database/sql's
// own *sql.Tx, delegating isolation entirely to the MySQL server's
// configured default (spec §5: the back-end documents its isolation
// choice rather than the engine enforcing one).
func (s *Store) Begin(ctx context.Context, autocommit bool) (bool, error) {
	wasAutocommit := s.tx == nil
	if s.tx != nil {
		return false, errors.New("mysqlstore: transaction already open")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	s.tx = tx
	return wasAutocommit, nil
}

func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return errors.New("mysqlstore: no transaction open")
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

func (s *Store) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return errors.New("mysqlstore: no transaction open")
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

// SchemaNames implements store.Metadata.
func (s *Store) SchemaNames(ctx context.Context) ([]store.SchemaMeta, error) {
	rows, err := s.conn().QueryContext(ctx, `SELECT table_name, created_at, updated_at FROM glue_schemas`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.SchemaMeta
	for rows.Next() {
		var m store.SchemaMeta
		if err := rows.Scan(&m.Table, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type functionRow struct {
	Params []string `json:"params"`
}

// FetchFunction implements store.CustomFunction.
func (s *Store) FetchFunction(ctx context.Context, name string) (*store.FunctionDef, error) {
	var paramsJSON, body string
	row := s.conn().QueryRowContext(ctx, `SELECT params, body FROM glue_functions WHERE name = ?`, name)
	if err := row.Scan(&paramsJSON, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var fr functionRow
	if err := json.Unmarshal([]byte(paramsJSON), &fr.Params); err != nil {
		return nil, err
	}
	return &store.FunctionDef{Name: name, Params: fr.Params, Body: body}, nil
}

// InsertFunction implements store.CustomFunctionMut.
func (s *Store) InsertFunction(ctx context.Context, def store.FunctionDef) error {
	paramsJSON, err := json.Marshal(def.Params)
	if err != nil {
		return err
	}
	_, err = s.conn().ExecContext(ctx, `
		INSERT INTO glue_functions (name, params, body) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE params = VALUES(params), body = VALUES(body)`,
		def.Name, string(paramsJSON), def.Body)
	return err
}

// DeleteFunction implements store.CustomFunctionMut.
func (s *Store) DeleteFunction(ctx context.Context, name string) error {
	_, err := s.conn().ExecContext(ctx, `DELETE FROM glue_functions WHERE name = ?`, name)
	return err
}
