package mysqlstore

import (
	"encoding/json"
	"fmt"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/schema"
	"github.com/glue-sql/glue/translate"
)

type columnDTO struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	Nullable   bool   `json:"nullable"`
	Default    string `json:"default,omitempty"`
	Unique     bool   `json:"unique"`
	PrimaryKey bool   `json:"primary_key"`
	Comment    string `json:"comment,omitempty"`
}

type checkDTO struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

type foreignKeyDTO struct {
	Name              string   `json:"name"`
	Columns           []string `json:"columns"`
	ReferencedTable   string   `json:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns"`
}

func marshalColumns(cols []schema.ColumnDef) (string, error) {
	if cols == nil {
		return "[]", nil
	}
	dtos := make([]columnDTO, len(cols))
	for i, c := range cols {
		dtos[i] = columnDTO{
			Name: c.Name, DataType: c.DataType.String(), Nullable: c.Nullable,
			Default: ast.Render(c.Default), Unique: c.Unique, PrimaryKey: c.PrimaryKey, Comment: c.Comment,
		}
	}
	b, err := json.Marshal(dtos)
	return string(b), err
}

// unmarshalColumns re-parses each Default text by feeding "SELECT <text>"
// back through the translator, the same one the engine already depends
// on — reusing it here avoids hand-rolling a second expression parser
// just to round-trip a handful of literal defaults.
func unmarshalColumns(s string, tr *translate.Translator) ([]schema.ColumnDef, error) {
	var dtos []columnDTO
	if err := json.Unmarshal([]byte(s), &dtos); err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, nil
	}
	out := make([]schema.ColumnDef, len(dtos))
	for i, d := range dtos {
		dt, ok := ast.LookupDataType(d.DataType)
		if !ok {
			return nil, fmt.Errorf("mysqlstore: unknown persisted data type %q", d.DataType)
		}
		var def ast.Expr
		if d.Default != "" {
			e, err := parseExpr(tr, d.Default)
			if err != nil {
				return nil, err
			}
			def = e
		}
		out[i] = schema.ColumnDef{
			Name: d.Name, DataType: dt, Nullable: d.Nullable, Default: def,
			Unique: d.Unique, PrimaryKey: d.PrimaryKey, Comment: d.Comment,
		}
	}
	return out, nil
}

func parseExpr(tr *translate.Translator, text string) (ast.Expr, error) {
	stmts, err := tr.Parse("SELECT " + text)
	if err != nil {
		return nil, fmt.Errorf("mysqlstore: re-parsing persisted expression %q: %w", text, err)
	}
	qs, ok := stmts[0].(ast.QueryStatement)
	if !ok || qs.Query.Body.Select == nil || len(qs.Query.Body.Select.Projection) == 0 {
		return nil, fmt.Errorf("mysqlstore: persisted expression %q did not round-trip to a projection", text)
	}
	return qs.Query.Body.Select.Projection[0].Expr, nil
}

func marshalPrimaryKey(pk *schema.PrimaryKeyRef) (string, error) {
	if pk == nil {
		return "", nil
	}
	b, err := json.Marshal(pk.ColumnIndexes)
	return string(b), err
}

func unmarshalPrimaryKey(s string) (*schema.PrimaryKeyRef, error) {
	if s == "" {
		return nil, nil
	}
	var idxs []int
	if err := json.Unmarshal([]byte(s), &idxs); err != nil {
		return nil, err
	}
	return &schema.PrimaryKeyRef{ColumnIndexes: idxs}, nil
}

func marshalForeignKeys(fks []schema.ForeignKey) (string, error) {
	dtos := make([]foreignKeyDTO, len(fks))
	for i, fk := range fks {
		dtos[i] = foreignKeyDTO{Name: fk.Name, Columns: fk.Columns, ReferencedTable: fk.ReferencedTable, ReferencedColumns: fk.ReferencedColumns}
	}
	b, err := json.Marshal(dtos)
	return string(b), err
}

func unmarshalForeignKeys(s string) ([]schema.ForeignKey, error) {
	var dtos []foreignKeyDTO
	if err := json.Unmarshal([]byte(s), &dtos); err != nil {
		return nil, err
	}
	out := make([]schema.ForeignKey, len(dtos))
	for i, d := range dtos {
		out[i] = schema.ForeignKey{Name: d.Name, Columns: d.Columns, ReferencedTable: d.ReferencedTable, ReferencedColumns: d.ReferencedColumns}
	}
	return out, nil
}

func marshalChecks(checks []schema.CheckConstraint) (string, error) {
	dtos := make([]checkDTO, len(checks))
	for i, c := range checks {
		dtos[i] = checkDTO{Name: c.Name, Expr: ast.Render(c.Expr)}
	}
	b, err := json.Marshal(dtos)
	return string(b), err
}

func unmarshalChecks(s string, tr *translate.Translator) ([]schema.CheckConstraint, error) {
	var dtos []checkDTO
	if err := json.Unmarshal([]byte(s), &dtos); err != nil {
		return nil, err
	}
	out := make([]schema.CheckConstraint, len(dtos))
	for i, d := range dtos {
		e, err := parseExpr(tr, d.Expr)
		if err != nil {
			return nil, err
		}
		out[i] = schema.CheckConstraint{Name: d.Name, Expr: e}
	}
	return out, nil
}

func marshalSchema(s *schema.Schema) (cols, pk, fks, checks string, err error) {
	cols, err = marshalColumns(s.ColumnDefs)
	if err != nil {
		return
	}
	pk, err = marshalPrimaryKey(s.PrimaryKey)
	if err != nil {
		return
	}
	fks, err = marshalForeignKeys(s.ForeignKeys)
	if err != nil {
		return
	}
	checks, err = marshalChecks(s.Checks)
	return
}

func unmarshalSchema(table, cols, pk, fks, checks, engineHint string, tr *translate.Translator) (*schema.Schema, error) {
	colDefs, err := unmarshalColumns(cols, tr)
	if err != nil {
		return nil, err
	}
	pkRef, err := unmarshalPrimaryKey(pk)
	if err != nil {
		return nil, err
	}
	fkList, err := unmarshalForeignKeys(fks)
	if err != nil {
		return nil, err
	}
	checkList, err := unmarshalChecks(checks, tr)
	if err != nil {
		return nil, err
	}
	return &schema.Schema{
		Table: table, ColumnDefs: colDefs, PrimaryKey: pkRef,
		ForeignKeys: fkList, Checks: checkList, EngineHint: engineHint,
	}, nil
}
