package ast

// IndexItem is a planner-attached directive on a TableFactor telling the
// executor how to reach rows without a full scan (spec §4.4 items 3-4):
// either a primary-key point lookup or a non-clustered secondary-index
// range scan.
type IndexItem struct {
	PrimaryKey *PrimaryKeyHit
	Secondary  *NonClusteredHit
}

// PrimaryKeyHit is a point fetch by primary-key value.
type PrimaryKeyHit struct{ Value Expr }

// NonClusteredHit is a scan over a named secondary index bounded by a
// comparison against Value, e.g. "idx_age < 30".
type NonClusteredHit struct {
	Name  string
	Asc   bool
	Cmp   BinaryOperator
	Value Expr
}
