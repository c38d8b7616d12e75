package eval

import (
	"fmt"
	"strconv"

	"github.com/glue-sql/glue/ast"
	"github.com/glue-sql/glue/glueerr"
	"github.com/glue-sql/glue/value"
)

func (e *Evaluator) evalCast(c ast.Cast) (value.Value, error) {
	v, err := e.Eval(c.Expr)
	if err != nil {
		return value.Value{}, err
	}
	return Cast(v, c.DataType)
}

// Cast converts v to the target data type, one switch arm per
// (from.Kind, to) pair actually reachable from the textual type list in
// spec §6.2, grounded on original_source's data/value/cast.rs-style
// per-pair conversion (supplemented feature, see SPEC_FULL.md).
func Cast(v value.Value, to ast.DataType) (value.Value, error) {
	if v.IsNull() {
		return value.NewNull(), nil
	}
	switch to {
	case ast.TypeBoolean:
		return castToBool(v)
	case ast.TypeInt8, ast.TypeInt16, ast.TypeInt32, ast.TypeInt64:
		return castToInt(v, to)
	case ast.TypeFloat32, ast.TypeFloat64:
		return castToFloat(v, to)
	case ast.TypeDecimal:
		return castToDecimal(v)
	case ast.TypeText:
		return value.NewText(v.String()), nil
	case ast.TypeDate:
		return castToDate(v)
	case ast.TypeTime:
		return castToTime(v)
	case ast.TypeTimestamp:
		return castToTimestamp(v)
	case ast.TypeUuid:
		return castToUuid(v)
	default:
		return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to %s", v.Kind, to)
	}
}

func castToBool(v value.Value) (value.Value, error) {
	switch {
	case v.Kind == value.Bool:
		return v, nil
	case v.IsNumeric():
		f, _ := v.AsFloat64()
		return value.NewBool(f != 0), nil
	case v.Kind == value.Text:
		s, _ := v.Text()
		switch s {
		case "true", "TRUE", "1":
			return value.NewBool(true), nil
		case "false", "FALSE", "0":
			return value.NewBool(false), nil
		}
	}
	return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to BOOLEAN", v.Kind)
}

func castToInt(v value.Value, to ast.DataType) (value.Value, error) {
	var i int64
	switch {
	case v.Kind == value.Bool:
		b, _ := v.Bool()
		if b {
			i = 1
		}
	case v.IsNumeric():
		f, _ := v.AsFloat64()
		i = int64(f)
	case v.Kind == value.Text:
		s, _ := v.Text()
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Value{}, glueerr.Wrap(glueerr.ValueErr, "ParseFailure", err, "cannot CAST %q to integer", s)
		}
		i = parsed
	default:
		return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to integer", v.Kind)
	}
	switch to {
	case ast.TypeInt8:
		return value.NewInt8(int8(i)), nil
	case ast.TypeInt16:
		return value.NewInt16(int16(i)), nil
	case ast.TypeInt32:
		return value.NewInt32(int32(i)), nil
	default:
		return value.NewInt64(i), nil
	}
}

func castToFloat(v value.Value, to ast.DataType) (value.Value, error) {
	var f float64
	switch {
	case v.IsNumeric():
		f, _ = v.AsFloat64()
	case v.Kind == value.Text:
		s, _ := v.Text()
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Value{}, glueerr.Wrap(glueerr.ValueErr, "ParseFailure", err, "cannot CAST %q to float", s)
		}
		f = parsed
	default:
		return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to float", v.Kind)
	}
	if to == ast.TypeFloat32 {
		return value.NewFloat32(float32(f))
	}
	return value.NewFloat64(f)
}

func castToDecimal(v value.Value) (value.Value, error) {
	if d, ok := v.DecimalVal(); ok {
		return value.NewDecimal(d), nil
	}
	switch {
	case v.IsNumeric():
		f, _ := v.AsFloat64()
		d, err := value.NewDecimalFromString(fmt.Sprintf("%v", f))
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDecimal(d), nil
	case v.Kind == value.Text:
		s, _ := v.Text()
		d, err := value.NewDecimalFromString(s)
		if err != nil {
			return value.Value{}, glueerr.Wrap(glueerr.ValueErr, "ParseFailure", err, "cannot CAST %q to DECIMAL", s)
		}
		return value.NewDecimal(d), nil
	default:
		return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to DECIMAL", v.Kind)
	}
}

func castToDate(v value.Value) (value.Value, error) {
	if v.Kind == value.Date {
		return v, nil
	}
	s, ok := v.Text()
	if !ok {
		return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to DATE", v.Kind)
	}
	d, err := value.ParseDate(s)
	if err != nil {
		return value.Value{}, glueerr.Wrap(glueerr.ValueErr, "ParseFailure", err, "cannot CAST %q to DATE", s)
	}
	return value.NewDate(d), nil
}

func castToTime(v value.Value) (value.Value, error) {
	if v.Kind == value.Time {
		return v, nil
	}
	s, ok := v.Text()
	if !ok {
		return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to TIME", v.Kind)
	}
	t, err := value.ParseTime(s)
	if err != nil {
		return value.Value{}, glueerr.Wrap(glueerr.ValueErr, "ParseFailure", err, "cannot CAST %q to TIME", s)
	}
	return value.NewTime(t), nil
}

func castToTimestamp(v value.Value) (value.Value, error) {
	if v.Kind == value.Timestamp {
		return v, nil
	}
	s, ok := v.Text()
	if !ok {
		return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to TIMESTAMP", v.Kind)
	}
	ts, err := value.ParseTimestamp(s)
	if err != nil {
		return value.Value{}, glueerr.Wrap(glueerr.ValueErr, "ParseFailure", err, "cannot CAST %q to TIMESTAMP", s)
	}
	return value.NewTimestamp(ts), nil
}

func castToUuid(v value.Value) (value.Value, error) {
	if v.Kind == value.UuidKind {
		return v, nil
	}
	s, ok := v.Text()
	if !ok {
		return value.Value{}, glueerr.New(glueerr.ValueErr, "UnsupportedCast", "cannot CAST %s to UUID", v.Kind)
	}
	u, err := value.ParseUuid(s)
	if err != nil {
		return value.Value{}, glueerr.Wrap(glueerr.ValueErr, "ParseFailure", err, "cannot CAST %q to UUID", s)
	}
	return value.NewUuid(u), nil
}
