package eval

import (
	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

// evalExtract implements EXTRACT over DATE/TIME/TIMESTAMP/INTERVAL
// (supplemented from original_source, see SPEC_FULL.md): fields the
// original distinguishes are YEAR, MONTH, DAY, HOUR, MINUTE, SECOND, and
// which of them apply depends on the operand's kind (e.g. HOUR on a DATE
// is meaningless since a DATE has no time-of-day component).
func (e *Evaluator) evalExtract(ex ast.Extract) (value.Value, error) {
	v, err := e.Eval(ex.Expr)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() {
		return value.NewNull(), nil
	}

	switch v.Kind {
	case value.Date:
		d, _ := v.DateVal()
		return extractFromDate(ex.Field, d)
	case value.Time:
		t, _ := v.TimeVal()
		return extractFromTime(ex.Field, t)
	case value.Timestamp:
		ts, _ := v.TimestampVal()
		switch ex.Field {
		case ast.ExtractYear, ast.ExtractMonth, ast.ExtractDay:
			return extractFromDate(ex.Field, ts.Date)
		default:
			return extractFromTime(ex.Field, ts.Time)
		}
	case value.IntervalKind:
		iv, _ := v.IntervalVal()
		return extractFromInterval(ex.Field, iv)
	default:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "FunctionRequiresTemporalValue", "EXTRACT requires a DATE, TIME, TIMESTAMP, or INTERVAL argument, got %s", v.Kind)
	}
}

func extractFromDate(field ast.ExtractField, d value.Date) (value.Value, error) {
	switch field {
	case ast.ExtractYear:
		return value.NewInt64(int64(d.Year)), nil
	case ast.ExtractMonth:
		return value.NewInt64(int64(d.Month)), nil
	case ast.ExtractDay:
		return value.NewInt64(int64(d.Day)), nil
	default:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "ExtractFieldNotApplicable", "EXTRACT field not applicable to DATE")
	}
}

func extractFromTime(field ast.ExtractField, t value.Time) (value.Value, error) {
	us := t.Microseconds
	h := us / 3_600_000_000
	us -= h * 3_600_000_000
	m := us / 60_000_000
	us -= m * 60_000_000
	s := us / 1_000_000
	switch field {
	case ast.ExtractHour:
		return value.NewInt64(h), nil
	case ast.ExtractMinute:
		return value.NewInt64(m), nil
	case ast.ExtractSecond:
		return value.NewInt64(s), nil
	default:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "ExtractFieldNotApplicable", "EXTRACT field not applicable to TIME")
	}
}

func extractFromInterval(field ast.ExtractField, iv value.Interval) (value.Value, error) {
	switch field {
	case ast.ExtractYear:
		return value.NewInt64(int64(iv.Months / 12)), nil
	case ast.ExtractMonth:
		return value.NewInt64(int64(iv.Months % 12)), nil
	case ast.ExtractDay:
		return value.NewInt64(iv.Microseconds / (24 * 3_600_000_000)), nil
	case ast.ExtractHour:
		return value.NewInt64((iv.Microseconds / 3_600_000_000) % 24), nil
	case ast.ExtractMinute:
		return value.NewInt64((iv.Microseconds / 60_000_000) % 60), nil
	case ast.ExtractSecond:
		return value.NewInt64((iv.Microseconds / 1_000_000) % 60), nil
	default:
		return value.Value{}, glueerr.New(glueerr.Evaluate, "ExtractFieldNotApplicable", "unknown EXTRACT field")
	}
}
