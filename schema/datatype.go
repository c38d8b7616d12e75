package schema

import (
	"fmt"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/value"
)

// dataTypeKind maps a column's declared ast.DataType to the value.Kind a
// stored value of that column must carry. Kept here rather than in
// package value to avoid a value->ast import cycle (ast must stay free of
// dependencies so translate can build it from the raw parse tree alone).
func dataTypeKind(dt ast.DataType) (value.Kind, error) {
	switch dt {
	case ast.TypeBoolean:
		return value.Bool, nil
	case ast.TypeInt8:
		return value.Int8, nil
	case ast.TypeInt16:
		return value.Int16, nil
	case ast.TypeInt32:
		return value.Int32, nil
	case ast.TypeInt64:
		return value.Int64, nil
	case ast.TypeInt128:
		return value.Int128, nil
	case ast.TypeUint8:
		return value.Uint8, nil
	case ast.TypeUint16:
		return value.Uint16, nil
	case ast.TypeUint32:
		return value.Uint32, nil
	case ast.TypeUint64:
		return value.Uint64, nil
	case ast.TypeUint128:
		return value.Uint128, nil
	case ast.TypeFloat32:
		return value.Float32, nil
	case ast.TypeFloat64:
		return value.Float64, nil
	case ast.TypeDecimal:
		return value.DecimalKind, nil
	case ast.TypeText:
		return value.Text, nil
	case ast.TypeBytea:
		return value.Bytea, nil
	case ast.TypeInet:
		return value.Inet, nil
	case ast.TypeDate:
		return value.Date, nil
	case ast.TypeTime:
		return value.Time, nil
	case ast.TypeTimestamp:
		return value.Timestamp, nil
	case ast.TypeInterval:
		return value.IntervalKind, nil
	case ast.TypeUuid:
		return value.UuidKind, nil
	case ast.TypePoint:
		return value.PointKind, nil
	case ast.TypeList:
		return value.ListKind, nil
	case ast.TypeMap:
		return value.MapKind, nil
	default:
		return 0, fmt.Errorf("unknown data type %v", dt)
	}
}
