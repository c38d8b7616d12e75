// Package executor dispatches a planned Statement against a store,
// returning a Payload (spec §4.5). Pipeline staging has no direct
// teacher analogue — the teacher never executes queries, only diffs and
// migrates schemas — so it is grounded on original_source/core/src/executor/'s
// directory shape (one file per stage/concern) translated into the
// teacher's one-function-per-concern Go style
// (internal/parser/mysql/parser.go's convertX split).
package executor

import (
	"context"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/internal/glog"
	"github.com/glue-sql/glue/store"
	"github.com/glue-sql/glue/txn"
	"github.com/glue-sql/glue/value"
)

// Payload is the closed set of statement-execution results (spec §4.5),
// mirroring the ast.Statement closed-interface discipline.
type Payload interface{ isPayload() }

type CreatePayload struct{}

func (CreatePayload) isPayload() {}

type DropTablePayload struct{ Count int }

func (DropTablePayload) isPayload() {}

type InsertPayload struct{ Count int }

func (InsertPayload) isPayload() {}

type UpdatePayload struct{ Count int }

func (UpdatePayload) isPayload() {}

type DeletePayload struct{ Count int }

func (DeletePayload) isPayload() {}

// SelectPayload carries rows for a schema-carrying (positional) query.
type SelectPayload struct {
	Labels []string
	Rows   [][]value.Value
}

func (SelectPayload) isPayload() {}

// SelectMapPayload carries rows for a schemaless query (spec §6.3).
type SelectMapPayload struct {
	Rows []map[string]value.Value
}

func (SelectMapPayload) isPayload() {}

type AlterTablePayload struct{}

func (AlterTablePayload) isPayload() {}

type CreateIndexPayload struct{}

func (CreateIndexPayload) isPayload() {}

type DropIndexPayload struct{}

func (DropIndexPayload) isPayload() {}

type StartTransactionPayload struct{}

func (StartTransactionPayload) isPayload() {}

type CommitPayload struct{}

func (CommitPayload) isPayload() {}

type RollbackPayload struct{}

func (RollbackPayload) isPayload() {}

type ColumnInfo struct {
	Name     string
	DataType string
}

type ShowColumnsPayload struct{ Columns []ColumnInfo }

func (ShowColumnsPayload) isPayload() {}

type ExplainColumn struct {
	Name        string
	DataType    string
	Nullable    bool
	Constraints string
	Default     string
	Comment     string
}

type ExplainTablePayload struct{ Columns []ExplainColumn }

func (ExplainTablePayload) isPayload() {}

type ShowVariablePayload struct{ Value value.Value }

func (ShowVariablePayload) isPayload() {}

type ShowTablesPayload struct{ Tables []string }

func (ShowTablesPayload) isPayload() {}

type CreateFunctionPayload struct{}

func (CreateFunctionPayload) isPayload() {}

type DropFunctionPayload struct{}

func (DropFunctionPayload) isPayload() {}

// Executor ties a store, its optional capabilities, and a session's
// transaction state together to run planned statements.
type Executor struct {
	Store   store.Store
	Mut     store.StoreMut
	Session *txn.Session

	// NullsFirst overrides spec §4.5's documented default ORDER BY policy
	// (Nulls last for ASC, first for DESC). The spec's Open Question §9
	// leaves the policy a top-level configuration rather than a hard-coded
	// choice; when true, Nulls sort first regardless of direction.
	NullsFirst bool

	// Variables surfaces engine configuration through SHOW VARIABLE (spec
	// §4.5's ShowVariable Payload, elaborated in SPEC_FULL.md's
	// Supplemented-features section). Nil means no variables are exposed.
	Variables map[string]value.Value
}

func New(s store.Store, mut store.StoreMut) *Executor {
	return &Executor{Store: s, Mut: mut, Session: txn.NewSession()}
}

// Execute runs one already-translated Statement, applying the
// execute-atomic autocommit wrapping spec §4.5 describes when the store
// exposes store.Transaction. BEGIN/COMMIT/ROLLBACK themselves are never
// wrapped.
func (e *Executor) Execute(ctx context.Context, st ast.Statement) (Payload, error) {
	txStore, transactional := e.Store.(store.Transaction)
	wrapped := transactional && !e.Session.InTransaction()
	switch st.(type) {
	case ast.StartTransactionStatement, ast.CommitStatement, ast.RollbackStatement:
		wrapped = false
	}
	if wrapped {
		glog.AutocommitWrap(st.String())
		if _, err := txStore.Begin(ctx, true); err != nil {
			return nil, err
		}
		e.Session.Begin(true, false)
	}

	payload, err := e.dispatch(ctx, st)

	if wrapped {
		if err != nil {
			_ = txStore.Rollback(ctx)
		} else {
			err = txStore.Commit(ctx)
		}
		e.Session.End()
	}
	return payload, err
}

func (e *Executor) dispatch(ctx context.Context, st ast.Statement) (Payload, error) {
	switch s := st.(type) {
	case ast.QueryStatement:
		return e.execSelect(ctx, s.Query)
	case ast.InsertStatement:
		return e.execInsert(ctx, s)
	case ast.UpdateStatement:
		return e.execUpdate(ctx, s)
	case ast.DeleteStatement:
		return e.execDelete(ctx, s)
	case ast.CreateTableStatement:
		return e.execCreateTable(ctx, s)
	case ast.DropTableStatement:
		return e.execDropTable(ctx, s)
	case ast.AlterTableStatement:
		return e.execAlterTable(ctx, s)
	case ast.CreateIndexStatement:
		return e.execCreateIndex(ctx, s)
	case ast.DropIndexStatement:
		return e.execDropIndex(ctx, s)
	case ast.StartTransactionStatement:
		return e.execBegin(ctx)
	case ast.CommitStatement:
		return e.execCommit(ctx)
	case ast.RollbackStatement:
		return e.execRollback(ctx)
	case ast.ShowTablesStatement:
		return e.execShowTables(ctx)
	case ast.ShowColumnsStatement:
		return e.execShowColumns(ctx, s.Table)
	case ast.ExplainTableStatement:
		return e.execExplainTable(ctx, s.Table)
	case ast.ShowVariableStatement:
		return e.execShowVariable(s.Name)
	case ast.CreateFunctionStatement:
		return e.execCreateFunction(ctx, s)
	case ast.DropFunctionStatement:
		return e.execDropFunction(ctx, s)
	default:
		return nil, glueerr.New(glueerr.Execute, "UnsupportedStatement", "statement type %T not supported", st)
	}
}

func (e *Executor) execBegin(ctx context.Context) (Payload, error) {
	txStore, ok := e.Store.(store.Transaction)
	if !ok {
		return nil, glueerr.New(glueerr.Execute, "TransactionNotSupported", "back-end does not support transactions")
	}
	_, err := txStore.Begin(ctx, false)
	if err != nil {
		return nil, err
	}
	_, err = e.Session.Begin(false, false)
	if err != nil {
		_ = txStore.Rollback(ctx)
		return nil, err
	}
	return StartTransactionPayload{}, nil
}

func (e *Executor) execCommit(ctx context.Context) (Payload, error) {
	txStore, ok := e.Store.(store.Transaction)
	if !ok {
		return nil, glueerr.New(glueerr.Execute, "TransactionNotSupported", "back-end does not support transactions")
	}
	if err := txStore.Commit(ctx); err != nil {
		return nil, err
	}
	e.Session.End()
	return CommitPayload{}, nil
}

func (e *Executor) execRollback(ctx context.Context) (Payload, error) {
	txStore, ok := e.Store.(store.Transaction)
	if !ok {
		return nil, glueerr.New(glueerr.Execute, "TransactionNotSupported", "back-end does not support transactions")
	}
	if err := txStore.Rollback(ctx); err != nil {
		return nil, err
	}
	e.Session.End()
	return RollbackPayload{}, nil
}
