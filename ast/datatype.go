package ast

// DataType is the closed enum of textual type spellings spec §6.2 lists.
type DataType int

const (
	TypeBoolean DataType = iota
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64 // INT / INTEGER / INT64
	TypeInt128
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeUint128
	TypeFloat32
	TypeFloat64 // FLOAT
	TypeDecimal
	TypeText
	TypeBytea
	TypeInet
	TypeDate
	TypeTime
	TypeTimestamp
	TypeInterval
	TypeUuid
	TypePoint
	TypeList
	TypeMap
)

var dataTypeNames = map[DataType]string{
	TypeBoolean:   "BOOLEAN",
	TypeInt8:      "INT8",
	TypeInt16:     "INT16",
	TypeInt32:     "INT32",
	TypeInt64:     "INT",
	TypeInt128:    "INT128",
	TypeUint8:     "UINT8",
	TypeUint16:    "UINT16",
	TypeUint32:    "UINT32",
	TypeUint64:    "UINT64",
	TypeUint128:   "UINT128",
	TypeFloat32:   "FLOAT32",
	TypeFloat64:   "FLOAT",
	TypeDecimal:   "DECIMAL",
	TypeText:      "TEXT",
	TypeBytea:     "BYTEA",
	TypeInet:      "INET",
	TypeDate:      "DATE",
	TypeTime:      "TIME",
	TypeTimestamp: "TIMESTAMP",
	TypeInterval:  "INTERVAL",
	TypeUuid:      "UUID",
	TypePoint:     "POINT",
	TypeList:      "LIST",
	TypeMap:       "MAP",
}

func (d DataType) String() string {
	if s, ok := dataTypeNames[d]; ok {
		return s
	}
	return "UNKNOWN"
}

// dataTypeAliases maps every textual spelling spec §6.2 lists (including
// synonyms like INTEGER/INT64 for TypeInt64) to its DataType, consumed by
// package translate when converting the parser's raw type-name tokens.
var dataTypeAliases = map[string]DataType{
	"BOOLEAN": TypeBoolean, "BOOL": TypeBoolean,
	"INT8": TypeInt8, "TINYINT": TypeInt8,
	"INT16": TypeInt16, "SMALLINT": TypeInt16,
	"INT32": TypeInt32,
	"INT":   TypeInt64, "INTEGER": TypeInt64, "INT64": TypeInt64, "BIGINT": TypeInt64,
	"INT128":  TypeInt128,
	"UINT8":   TypeUint8,
	"UINT16":  TypeUint16,
	"UINT32":  TypeUint32,
	"UINT64":  TypeUint64,
	"UINT128": TypeUint128,
	"FLOAT32": TypeFloat32,
	"FLOAT":   TypeFloat64, "DOUBLE": TypeFloat64,
	"DECIMAL":   TypeDecimal,
	"TEXT":      TypeText, "VARCHAR": TypeText, "CHAR": TypeText,
	"BYTEA":     TypeBytea,
	"INET":      TypeInet,
	"DATE":      TypeDate,
	"TIME":      TypeTime,
	"TIMESTAMP": TypeTimestamp,
	"INTERVAL":  TypeInterval,
	"UUID":      TypeUuid,
	"POINT":     TypePoint,
	"LIST":      TypeList,
	"MAP":       TypeMap,
}

// LookupDataType resolves a textual type name (case-insensitive handled by
// the caller) to its DataType, reporting false for unsupported spellings
// (the translator turns that into UnsupportedDataType).
func LookupDataType(name string) (DataType, bool) {
	dt, ok := dataTypeAliases[name]
	return dt, ok
}
