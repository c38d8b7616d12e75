// Package glueerr implements the engine's closed error-kind taxonomy
// (spec §7): every error returned by any package carries one of a fixed
// set of Kind values plus a typed payload, never a bare string. Grounded
// on the *DatabaseError shape in mstgnz-sdc/err/errors.go (Type + Message
// + wrapped Err + Unwrap), narrowed to the fifteen kinds spec §7 names
// instead of sdc's connection/query/migration bucket list.
package glueerr

import "fmt"

// Kind is the closed set of top-level error categories spec §7 lists.
type Kind string

const (
	Parser        Kind = "Parser"
	Translate     Kind = "Translate"
	Plan          Kind = "Plan"
	Execute       Kind = "Execute"
	Fetch         Kind = "Fetch"
	Select        Kind = "Select"
	Update        Kind = "Update"
	Delete        Kind = "Delete"
	Insert        Kind = "Insert"
	Evaluate      Kind = "Evaluate"
	Validate      Kind = "Validate"
	ValueErr      Kind = "Value"
	Schema        Kind = "Schema"
	Storage       Kind = "Storage"
	RowConversion Kind = "RowConversion"
)

// Error is the single error type every package returns. Code is a
// kind-scoped, machine-comparable tag (e.g. "TableNotFound",
// "BinaryOperationOverflow"); Message is the human-readable detail.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s(%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s(%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is by Kind+Code equality, ignoring Message/Cause —
// two errors of the same code are "the same" regardless of which table
// or column triggered them.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func New(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, code string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Common, cross-package constructors for codes named explicitly by spec §7/§4.

func TableNotFound(table string) *Error {
	return New(Plan, "TableNotFound", "table %q not found", table)
}

func ColumnReferenceAmbiguous(column string) *Error {
	return New(Plan, "ColumnReferenceAmbiguous", "column %q is ambiguous across joined tables", column)
}

func ColumnNotFound(table, column string) *Error {
	return New(Plan, "ColumnNotFound", "column %q not found on table %q", column, table)
}

func BinaryOperationOverflow(op string) *Error {
	return New(Evaluate, "BinaryOperationOverflow", "%s overflowed", op)
}

func InvalidDivisorZero() *Error {
	return New(Evaluate, "InvalidDivisorZero", "division by zero")
}

func FunctionArgsLengthNotMatching(name string, got, min, max int) *Error {
	if min == max {
		return New(Evaluate, "FunctionArgsLengthNotMatching", "%s takes exactly %d argument(s), got %d", name, min, got)
	}
	return New(Evaluate, "FunctionArgsLengthNotMatching", "%s takes between %d and %d arguments, got %d", name, min, max, got)
}

func FunctionRequiresKindValue(name, kind string) *Error {
	return New(Evaluate, "FunctionRequires"+kind+"Value", "%s requires a %s argument", name, kind)
}

func BooleanRequired() *Error {
	return New(Evaluate, "BooleanRequired", "expression must evaluate to a boolean")
}

func CrossTypeComparisonRejected(a, b string) *Error {
	return New(ValueErr, "CrossTypeComparisonRejected", "cannot compare %s with %s", a, b)
}

func UnsupportedAlterOperation(op string) *Error {
	return New(Execute, "UnsupportedAlterOperation", "unsupported ALTER TABLE operation: %s", op)
}

func DropTypeNotSupported(kind string) *Error {
	return New(Execute, "DropTypeNotSupported", "back-end does not support dropping %s", kind)
}

func NotNullViolation(column string) *Error {
	return New(Validate, "NotNullViolation", "column %q may not be null", column)
}

func UniqueViolation(column string) *Error {
	return New(Validate, "UniqueViolation", "duplicate value for unique column %q", column)
}

// DuplicateEntryOnPrimaryKey is UniqueViolation's primary-key-specific
// spelling (spec §8.3 scenario 2 names this exact code).
func DuplicateEntryOnPrimaryKey(column string) *Error {
	return New(Validate, "DuplicateEntryOnPrimaryKey", "duplicate entry for primary key %q", column)
}

func ForeignKeyViolation(name string) *Error {
	return New(Validate, "ForeignKeyViolation", "foreign key %q violated", name)
}

func CheckViolation(name string) *Error {
	return New(Validate, "CheckViolation", "check constraint %q violated", name)
}

func TypeIncompatible(column, want, got string) *Error {
	return New(Validate, "TypeIncompatible", "column %q expects %s, got %s", column, want, got)
}

func StorageMsg(format string, args ...any) *Error {
	return New(Storage, "StorageMsg", format, args...)
}

// UnhashableValue reports a runtime LIST/MAP value reaching a position
// spec §3.1(d) forbids (GROUP BY, DISTINCT, a JOIN key, a unique/index
// key). Most cases are caught statically by the planner; this is the
// executor's backstop for schemaless rows, where the shape of a Map field
// is not known until evaluation.
func UnhashableValue(position string) *Error {
	return New(Execute, "UnhashableValue", "LIST/MAP value cannot be used in %s position", position)
}
