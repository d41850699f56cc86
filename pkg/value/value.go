package value

import (
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindArray
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindNumber: "number",
	KindString: "string",
	KindBool:   "boolean",
	KindArray:  "array",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is a dynamically-typed pseudocode value. The zero Value is null.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	Arr  []Value
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Number creates a numeric Value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Int creates a numeric Value from an integer.
func Int(i int64) Value {
	return Value{Kind: KindNumber, Num: float64(i)}
}

// String creates a string Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Array creates an array Value holding elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, Arr: elems}
}

// Sized creates an array of n null elements.
func Sized(n int) Value {
	if n < 0 {
		n = 0
	}
	return Value{Kind: KindArray, Arr: make([]Value, n)}
}

func (v Value) IsNull() bool   { return v.Kind == KindNull }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsString() bool { return v.Kind == KindString }
func (v Value) IsArray() bool  { return v.Kind == KindArray }

// Clone returns a deep copy so that array writes never alias a previous state.
func (v Value) Clone() Value {
	if v.Kind != KindArray {
		return v
	}
	out := make([]Value, len(v.Arr))
	for i, e := range v.Arr {
		out[i] = e.Clone()
	}
	return Value{Kind: KindArray, Arr: out}
}

// String renders the value for output. Arrays are comma-joined with null
// elements left empty.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindArray:
		parts := make([]string, len(v.Arr))
		for i, e := range v.Arr {
			if e.Kind != KindNull {
				parts[i] = e.String()
			}
		}
		return strings.Join(parts, ",")
	default:
		return "null"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'g', -1, 64)
		// 1e+21 / 1e-07 -> 1e+21 / 1e-7
		if i := strings.Index(s, "e"); i >= 0 {
			mant, exp := s[:i], s[i+1:]
			sign := exp[0]
			digits := strings.TrimLeft(exp[1:], "0")
			return mant + "e" + string(sign) + digits
		}
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
