package ast

// Query is a full SELECT/VALUES statement with its trailing modifiers,
// spec §4.1.
type Query struct {
	Body    SetExpr
	OrderBy []OrderByExpr
	Limit   Expr // nil means no limit
	Offset  Expr // nil means no offset
}

// SetExpr is either a Select or a literal Values list (spec §4.1).
type SetExpr struct {
	Select *Select
	Values [][]Expr // mutually exclusive with Select
}

type OrderByExpr struct {
	Expr Expr
	Asc  bool
}

// TableFactor is a FROM-clause entry: a named table, a derived subquery
// (mandatory alias), the SERIES(n) generator, or a dictionary table name
// (spec §6.2, §4.8).
type TableFactor struct {
	Name    string // table name, dictionary name, or "" for derived/series
	Alias   string
	Derived *Query // non-nil for "(SELECT ...) AS alias"
	Series  Expr   // non-nil for SERIES(n)

	// Index is filled in by the planner (spec §4.4 items 3-4): a point
	// fetch or indexed-range-scan directive rather than a full scan.
	Index *IndexItem
}

type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

type Join struct {
	Kind  JoinKind
	Table TableFactor
	On    Expr

	// HashJoin is set by the planner (spec §4.4 item 5) when On is an
	// equality between one side's key and the other's expression.
	HashJoin bool
}

type Select struct {
	Projection []SelectItem
	From       *TableFactor // nil for a FROM-less SELECT (e.g. "SELECT 1")
	Joins      []Join
	Where      Expr
	GroupBy    []Expr
	Having     Expr
	Distinct   bool
}

// SelectItem is one projection entry: an expression with an optional
// alias, or a wildcard (possibly qualified, "t.*").
type SelectItem struct {
	Expr     Expr // nil for Wildcard
	Alias    string
	Wildcard bool
	Qualify  string // table qualifier for "t.*"; empty for unqualified "*"
}
