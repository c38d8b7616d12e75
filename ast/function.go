package ast

// Function and Aggregate are closed enumerations (spec §4.1, §9: "every
// supported function is a named variant, not a string"). Adding one means
// editing this file (its functionNames and functionArity tables, which the
// translator resolves names and arity through) and eval's dispatch table —
// deliberately, per spec §9.
type Function int

const (
	FuncUpper Function = iota
	FuncLower
	FuncLength
	FuncTrim
	FuncLtrim
	FuncRtrim
	FuncSubstr
	FuncRepeat
	FuncConcat
	FuncAbs
	FuncRound
	FuncFloor
	FuncCeil
	FuncPow
	FuncSqrt
	FuncMod
	FuncNow
	FuncCoalesce
	FuncIfNull
	FuncGenerateUuid
	FuncReverse
	FuncLpad
	FuncRpad
)

var functionNames = map[string]Function{
	"UPPER": FuncUpper, "LOWER": FuncLower, "LENGTH": FuncLength,
	"TRIM": FuncTrim, "LTRIM": FuncLtrim, "RTRIM": FuncRtrim,
	"SUBSTR": FuncSubstr, "SUBSTRING": FuncSubstr,
	"REPEAT": FuncRepeat, "CONCAT": FuncConcat,
	"ABS": FuncAbs, "ROUND": FuncRound, "FLOOR": FuncFloor, "CEIL": FuncCeil,
	"POW": FuncPow, "POWER": FuncPow, "SQRT": FuncSqrt, "MOD": FuncMod,
	"NOW": FuncNow, "COALESCE": FuncCoalesce, "IFNULL": FuncIfNull,
	"GENERATE_UUID": FuncGenerateUuid, "REVERSE": FuncReverse,
	"LPAD": FuncLpad, "RPAD": FuncRpad,
}

// LookupFunction resolves an upper-cased function name to its Function
// variant.
func LookupFunction(name string) (Function, bool) {
	f, ok := functionNames[name]
	return f, ok
}

// Arity is the accepted argument-count range for a function, consumed by
// the translator (spec §4.2: "checks function arity against a static
// table... mismatch produces FunctionArgsLengthNotMatching").
type Arity struct{ Min, Max int }

const unbounded = 1<<31 - 1

var functionArity = map[Function]Arity{
	FuncUpper: {1, 1}, FuncLower: {1, 1}, FuncLength: {1, 1},
	FuncTrim: {1, 1}, FuncLtrim: {1, 1}, FuncRtrim: {1, 1},
	FuncSubstr: {2, 3}, FuncRepeat: {2, 2},
	FuncConcat: {1, unbounded},
	FuncAbs:    {1, 1}, FuncRound: {1, 2}, FuncFloor: {1, 1}, FuncCeil: {1, 1},
	FuncPow: {2, 2}, FuncSqrt: {1, 1}, FuncMod: {2, 2},
	FuncNow:      {0, 0},
	FuncCoalesce: {1, unbounded}, FuncIfNull: {2, 2},
	FuncGenerateUuid: {0, 0}, FuncReverse: {1, 1},
	FuncLpad: {2, 3}, FuncRpad: {2, 3},
}

func (f Function) Arity() Arity {
	if a, ok := functionArity[f]; ok {
		return a
	}
	return Arity{0, unbounded}
}

func (f Function) Name() string {
	for name, fn := range functionNames {
		if fn == f {
			return name
		}
	}
	return "UNKNOWN"
}

// Aggregate is the closed set spec §4.3 names: COUNT, SUM, MIN, MAX, AVG,
// STDEV, VARIANCE.
type Aggregate int

const (
	AggCount Aggregate = iota
	AggSum
	AggMin
	AggMax
	AggAvg
	AggStdev
	AggVariance
)

var aggregateNames = map[string]Aggregate{
	"COUNT": AggCount, "SUM": AggSum, "MIN": AggMin, "MAX": AggMax,
	"AVG": AggAvg, "STDEV": AggStdev, "VARIANCE": AggVariance,
}

func LookupAggregate(name string) (Aggregate, bool) {
	a, ok := aggregateNames[name]
	return a, ok
}

func (a Aggregate) Name() string {
	for name, agg := range aggregateNames {
		if agg == a {
			return name
		}
	}
	return "UNKNOWN"
}
