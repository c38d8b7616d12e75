package eval

import (
	"math"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

// Accumulator folds one grouped column's values into a single result.
// ast.AggregateCall is rejected by (*Evaluator).Eval because aggregation
// needs a grouped context only the executor's group_by stage has; the
// executor drives an Accumulator per group instead (spec §4.3).
type Accumulator interface {
	// Accumulate feeds one row's evaluated argument. v is the zero Value
	// with IsNull()==true for COUNT(*) rows (no argument to evaluate).
	Accumulate(v value.Value) error
	Result() (value.Value, error)
}

// NewAccumulator builds the Accumulator for agg. star marks COUNT(*),
// where every row counts regardless of any argument's nullity.
func NewAccumulator(agg ast.Aggregate, star, distinct bool) Accumulator {
	base := &distinctFilter{enabled: distinct}
	switch agg {
	case ast.AggCount:
		return &countAcc{distinctFilter: base, star: star}
	case ast.AggSum:
		return &sumAcc{distinctFilter: base}
	case ast.AggAvg:
		return &avgAcc{distinctFilter: base}
	case ast.AggMin:
		return &minMaxAcc{distinctFilter: base, wantMax: false}
	case ast.AggMax:
		return &minMaxAcc{distinctFilter: base, wantMax: true}
	case ast.AggStdev:
		return &varianceAcc{distinctFilter: base, sample: true}
	case ast.AggVariance:
		return &varianceAcc{distinctFilter: base, sample: false}
	default:
		return &countAcc{distinctFilter: base}
	}
}

// distinctFilter tracks values already seen when DISTINCT is requested,
// keyed by value.Key's Kind-tagged byte encoding rather than Value.String()
// (spec §3.1(d): List/Map cannot serve as a DISTINCT key, and String()
// collapses distinct Kinds that happen to render the same text).
type distinctFilter struct {
	enabled bool
	seen    map[string]bool
}

// admit reports whether v should be folded in: always true when DISTINCT
// isn't requested, otherwise true only the first time this value is seen.
func (d *distinctFilter) admit(v value.Value) (bool, error) {
	if !d.enabled {
		return true, nil
	}
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	k, err := value.NewKey(v)
	if err != nil {
		return false, glueerr.UnhashableValue("DISTINCT aggregate")
	}
	key := string(k.Bytes)
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

type countAcc struct {
	*distinctFilter
	star  bool
	count int64
}

func (a *countAcc) Accumulate(v value.Value) error {
	if !a.star && v.IsNull() {
		return nil
	}
	ok, err := a.admit(v)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	a.count++
	return nil
}

func (a *countAcc) Result() (value.Value, error) { return value.NewInt64(a.count), nil }

type sumAcc struct {
	*distinctFilter
	sum   value.Value
	seen  bool
}

func (a *sumAcc) Accumulate(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	ok, err := a.admit(v)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if !a.seen {
		a.sum = v
		a.seen = true
		return nil
	}
	s, err := value.Add(a.sum, v)
	if err != nil {
		return err
	}
	a.sum = s
	return nil
}

func (a *sumAcc) Result() (value.Value, error) {
	if !a.seen {
		return value.NewNull(), nil
	}
	return a.sum, nil
}

type avgAcc struct {
	*distinctFilter
	sum   float64
	count int64
}

func (a *avgAcc) Accumulate(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	admitted, err := a.admit(v)
	if err != nil {
		return err
	}
	if !admitted {
		return nil
	}
	f, ok := v.AsFloat64()
	if !ok {
		return nil
	}
	a.sum += f
	a.count++
	return nil
}

func (a *avgAcc) Result() (value.Value, error) {
	if a.count == 0 {
		return value.NewNull(), nil
	}
	return value.NewFloat64(a.sum / float64(a.count))
}

type minMaxAcc struct {
	*distinctFilter
	wantMax bool
	cur     value.Value
	seen    bool
}

func (a *minMaxAcc) Accumulate(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	admitted, err := a.admit(v)
	if err != nil {
		return err
	}
	if !admitted {
		return nil
	}
	if !a.seen {
		a.cur = v
		a.seen = true
		return nil
	}
	cmp, err := value.Compare(v, a.cur)
	if err != nil {
		return err
	}
	if (a.wantMax && cmp > 0) || (!a.wantMax && cmp < 0) {
		a.cur = v
	}
	return nil
}

func (a *minMaxAcc) Result() (value.Value, error) {
	if !a.seen {
		return value.NewNull(), nil
	}
	return a.cur, nil
}

// varianceAcc computes STDEV/VARIANCE via Welford's online algorithm
// (sample variance: STDEV, VARIANCE both divide by n-1, matching the
// common SQL-dialect convention for these two names).
type varianceAcc struct {
	*distinctFilter
	sample bool
	count  int64
	mean   float64
	m2     float64
}

func (a *varianceAcc) Accumulate(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	admitted, err := a.admit(v)
	if err != nil {
		return err
	}
	if !admitted {
		return nil
	}
	f, ok := v.AsFloat64()
	if !ok {
		return nil
	}
	a.count++
	delta := f - a.mean
	a.mean += delta / float64(a.count)
	delta2 := f - a.mean
	a.m2 += delta * delta2
	return nil
}

func (a *varianceAcc) Result() (value.Value, error) {
	if a.count == 0 {
		return value.NewNull(), nil
	}
	if a.count == 1 {
		return value.NewFloat64(0)
	}
	variance := a.m2 / float64(a.count-1)
	if a.sample {
		return value.NewFloat64(math.Sqrt(variance))
	}
	return value.NewFloat64(variance)
}
