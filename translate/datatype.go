package translate

import (
	"strings"

	"github.com/pingcap/tidb/pkg/types"

	"github.com/glue-sql/glue/ast"
)

// fieldTypeRawName reduces a parser *types.FieldType to the bare type
// keyword this engine's ast.LookupDataType table indexes on, the same
// normalization step the teacher applies via core.NormalizeDataType
// (internal/parser/mysql/parser.go) before storing TypeRaw.
func fieldTypeRawName(tp *types.FieldType) string {
	name := strings.ToUpper(types.TypeToStr(tp.GetType(), tp.GetCharset()))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

func lookupFieldType(tp *types.FieldType) (ast.DataType, error) {
	name := fieldTypeRawName(tp)
	dt, ok := ast.LookupDataType(name)
	if !ok {
		return 0, &UnsupportedDataType{Name: name}
	}
	return dt, nil
}
