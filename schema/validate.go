package schema

import (
	"errors"
	"fmt"

	"github.com/glue-sql/glue/value"
)

// Validate runs all structural checks on a fully built Schema. It returns
// the first error encountered. Adapted from the teacher's sequential
// validateX pipeline (internal/core/validate.go), rewired from
// dialect/naming rules to spec §3.3's schema-lifecycle invariants.
func (s *Schema) Validate() error {
	if err := s.validateRequiredFields(); err != nil {
		return err
	}
	if err := s.validatePrimaryKey(); err != nil {
		return err
	}
	if err := s.validateUniqueConstraints(); err != nil {
		return err
	}
	if err := s.validateIndexes(); err != nil {
		return err
	}
	if err := s.validateForeignKeys(); err != nil {
		return err
	}
	return nil
}

func (s *Schema) validateRequiredFields() error {
	if s == nil {
		return errors.New("schema is nil")
	}
	if s.Table == "" {
		return errors.New("table name is required")
	}
	seen := make(map[string]bool, len(s.ColumnDefs))
	for _, c := range s.ColumnDefs {
		if c.Name == "" {
			return errors.New("column name is required")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// validatePrimaryKey enforces spec §3.3: at most one primary key
// declaration per schema (composite keys are one declaration spanning
// several columns, not several declarations).
func (s *Schema) validatePrimaryKey() error {
	if s.Schemaless() {
		if s.PrimaryKey != nil {
			return errors.New("schemaless table cannot declare a primary key")
		}
		return nil
	}

	var fromColumns []int
	for i, c := range s.ColumnDefs {
		if c.PrimaryKey {
			fromColumns = append(fromColumns, i)
		}
	}
	if len(fromColumns) > 0 && s.PrimaryKey != nil {
		return errors.New("primary key declared both inline and at schema level")
	}
	if len(fromColumns) > 1 {
		return errors.New("composite primary keys must be declared at schema level, not per-column")
	}

	if s.PrimaryKey != nil {
		if len(s.PrimaryKey.ColumnIndexes) == 0 {
			return errors.New("primary key must reference at least one column")
		}
		for _, idx := range s.PrimaryKey.ColumnIndexes {
			if idx < 0 || idx >= len(s.ColumnDefs) {
				return fmt.Errorf("primary key references out-of-range column index %d", idx)
			}
			if s.ColumnDefs[idx].Nullable {
				return fmt.Errorf("primary key column %q must not be nullable", s.ColumnDefs[idx].Name)
			}
		}
	}
	return nil
}

// unhashableDataType reports whether a column's declared type can never hold
// a comparable-for-uniqueness value (spec §3.1(d): List and Map are not
// hashable, so neither a PRIMARY KEY nor a UNIQUE constraint may target
// them).
func unhashableDataType(k value.Kind) bool {
	return k == value.ListKind || k == value.MapKind
}

func (s *Schema) validateUniqueConstraints() error {
	for _, c := range s.ColumnDefs {
		if !c.Unique && !c.PrimaryKey {
			continue
		}
		k, err := dataTypeKind(c.DataType)
		if err != nil {
			return err
		}
		if unhashableDataType(k) {
			return fmt.Errorf("column %q: UNIQUE/PRIMARY KEY not supported on type %s", c.Name, c.DataType)
		}
	}
	return nil
}

func (s *Schema) validateIndexes() error {
	seen := make(map[string]bool, len(s.Indexes))
	for _, idx := range s.Indexes {
		if idx.Name == "" {
			return errors.New("index name is required")
		}
		if seen[idx.Name] {
			return fmt.Errorf("duplicate index %q", idx.Name)
		}
		seen[idx.Name] = true
		if idx.Expr == nil {
			return fmt.Errorf("index %q has no expression", idx.Name)
		}
	}
	return nil
}

func (s *Schema) validateForeignKeys() error {
	for _, fk := range s.ForeignKeys {
		if len(fk.Columns) == 0 {
			return fmt.Errorf("foreign key %q references no columns", fk.Name)
		}
		if len(fk.Columns) != len(fk.ReferencedColumns) {
			return fmt.Errorf("foreign key %q: column count mismatch with referenced table", fk.Name)
		}
		for _, col := range fk.Columns {
			if s.ColumnIndex(col) < 0 {
				return fmt.Errorf("foreign key %q references unknown column %q", fk.Name, col)
			}
		}
	}
	return nil
}
