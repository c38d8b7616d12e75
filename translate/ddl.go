package translate

import (
	"fmt"

	tidbast "github.com/pingcap/tidb/pkg/parser/ast"

	"github.com/glue-sql/glue/ast"
)

func (t *Translator) convertCreateTableStmt(s *tidbast.CreateTableStmt) (ast.Statement, error) {
	cols := make([]ast.ColumnDef, len(s.Cols))
	pkFromColumns := []string(nil)
	for i, c := range s.Cols {
		col, isPK, err := t.convertColumnDef(c)
		if err != nil {
			return nil, err
		}
		cols[i] = col
		if isPK {
			pkFromColumns = append(pkFromColumns, col.Name)
		}
	}

	var fks []ast.ForeignKeyDef
	var checks []ast.CheckDef
	pk := pkFromColumns
	for _, c := range s.Constraints {
		switch c.Tp {
		case tidbast.ConstraintPrimaryKey:
			pk = columnNamesFromKeys(c.Keys)
		case tidbast.ConstraintForeignKey:
			fk := ast.ForeignKeyDef{
				Name:            c.Name,
				Columns:         columnNamesFromKeys(c.Keys),
				ReferencedTable: c.Refer.Table.Name.O,
			}
			for _, spec := range c.Refer.IndexPartSpecifications {
				if spec.Column != nil {
					fk.ReferencedColumns = append(fk.ReferencedColumns, spec.Column.Name.O)
				}
			}
			fks = append(fks, fk)
		case tidbast.ConstraintCheck:
			if c.Expr != nil {
				e, err := t.convertExpr(c.Expr)
				if err != nil {
					return nil, err
				}
				checks = append(checks, ast.CheckDef{Name: c.Name, Expr: e})
			}
		}
	}

	engineHint := ""
	for _, opt := range s.Options {
		if opt.Tp == tidbast.TableOptionEngine {
			engineHint = opt.StrValue
		}
	}

	return ast.CreateTableStatement{
		Table:       s.Table.Name.O,
		IfNotExists: s.IfNotExists,
		Columns:     cols,
		PrimaryKey:  pk,
		ForeignKeys: fks,
		Checks:      checks,
		EngineHint:  engineHint,
	}, nil
}

func columnNamesFromKeys(keys []*tidbast.IndexPartSpecification) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Column.Name.O
	}
	return names
}

func (t *Translator) convertColumnDef(c *tidbast.ColumnDef) (ast.ColumnDef, bool, error) {
	dt, err := lookupFieldType(c.Tp)
	if err != nil {
		return ast.ColumnDef{}, false, err
	}
	col := ast.ColumnDef{Name: c.Name.Name.O, DataType: dt, Nullable: true}
	isPK := false
	for _, opt := range c.Options {
		switch opt.Tp {
		case tidbast.ColumnOptionNotNull:
			col.Nullable = false
		case tidbast.ColumnOptionNull:
			col.Nullable = true
		case tidbast.ColumnOptionPrimaryKey:
			isPK = true
			col.PrimaryKey = true
			col.Nullable = false
		case tidbast.ColumnOptionUniqKey:
			col.Unique = true
		case tidbast.ColumnOptionDefaultValue:
			if opt.Expr != nil {
				e, err := t.convertExpr(opt.Expr)
				if err != nil {
					return ast.ColumnDef{}, false, err
				}
				col.Default = e
			}
		case tidbast.ColumnOptionComment:
			if opt.Expr != nil {
				e, err := t.convertExpr(opt.Expr)
				if err != nil {
					return ast.ColumnDef{}, false, err
				}
				if lit, ok := e.(ast.Literal); ok {
					col.Comment = lit.Text
				}
			}
		}
	}
	return col, isPK, nil
}

func (t *Translator) convertAlterTableStmt(s *tidbast.AlterTableStmt) (ast.Statement, error) {
	if len(s.Specs) != 1 {
		return nil, &UnsupportedStatement{Kind: "ALTER TABLE with multiple clauses"}
	}
	spec := s.Specs[0]
	base := ast.AlterTableStatement{Table: s.Table.Name.O}

	switch spec.Tp {
	case tidbast.AlterTableRenameTable:
		base.Op = ast.AlterRenameTable
		base.NewTableName = spec.NewTable.Name.O
	case tidbast.AlterTableRenameColumn:
		base.Op = ast.AlterRenameColumn
		base.OldColumn = spec.OldColumnName.Name.O
		base.NewColumn = spec.NewColumnName.Name.O
	case tidbast.AlterTableAddColumns:
		if len(spec.NewColumns) != 1 {
			return nil, &UnsupportedStatement{Kind: "ALTER TABLE ADD with multiple columns"}
		}
		col, _, err := t.convertColumnDef(spec.NewColumns[0])
		if err != nil {
			return nil, err
		}
		base.Op = ast.AlterAddColumn
		base.AddColumn = col
	case tidbast.AlterTableDropColumn:
		base.Op = ast.AlterDropColumn
		base.OldColumn = spec.OldColumnName.Name.O
		base.IfExists = spec.IfExists
	default:
		return nil, &UnsupportedStatement{Kind: fmt.Sprintf("ALTER TABLE clause %v", spec.Tp)}
	}
	return base, nil
}

func (t *Translator) convertCreateIndexStmt(s *tidbast.CreateIndexStmt) (ast.Statement, error) {
	if len(s.IndexPartSpecifications) != 1 {
		return nil, &UnsupportedStatement{Kind: "CREATE INDEX on more than one column/expression"}
	}
	spec := s.IndexPartSpecifications[0]
	var e ast.Expr
	var err error
	if spec.Expr != nil {
		e, err = t.convertExpr(spec.Expr)
	} else if spec.Column != nil {
		e = ast.Ident{Name: spec.Column.Name.O}
	}
	if err != nil {
		return nil, err
	}
	return ast.CreateIndexStatement{Name: s.IndexName, Table: s.Table.Name.O, Expr: e}, nil
}
