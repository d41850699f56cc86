package value

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	binaryRegex  = regexp.MustCompile(`^[01]+$`)
	intPrefix    = regexp.MustCompile(`^[+-]?\d+`)
	numericRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// IsNumericLiteral reports whether s is a plain decimal number literal.
func IsNumericLiteral(s string) bool {
	return numericRegex.MatchString(s)
}

// ParseNumber parses a decimal number literal. ok is false when s is not one.
func ParseNumber(s string) (float64, bool) {
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	// out-of-range literals come back as ±Inf with an error; keep the Inf
	f, _ := strconv.ParseFloat(s, 64)
	return f, true
}

// ToNumber converts v to a number. Empty strings are 0 and non-numeric
// strings yield NaN.
func (v Value) ToNumber() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0
		}
		if f, ok := ParseNumber(s); ok {
			return f
		}
		return math.NaN()
	case KindArray:
		return String(v.String()).ToNumber()
	default:
		return 0
	}
}

// ToInt is the integer coercion applied before arithmetic and bitwise
// operators: numbers are floored, strings made only of 0/1 digits are read as
// base 2, other strings use their leading base-10 digits, anything else is 0.
func (v Value) ToInt() int64 {
	switch v.Kind {
	case KindNumber:
		return floorInt(v.Num)
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindString:
		s := strings.TrimSpace(v.Str)
		if binaryRegex.MatchString(s) {
			if n, err := strconv.ParseInt(s, 2, 64); err == nil {
				return n
			}
			return 0
		}
		if m := intPrefix.FindString(s); m != "" {
			if n, err := strconv.ParseInt(m, 10, 64); err == nil {
				return n
			}
		}
		return 0
	default:
		return 0
	}
}

func floorInt(f float64) int64 {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f < math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Floor(f))
}

// Truthy reports whether v counts as true in a condition. Null, false, 0, NaN
// and "" are false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case KindString:
		return v.Str != ""
	case KindBool:
		return v.Bool
	case KindArray:
		return true
	default:
		return false
	}
}

// LooseEqual implements the `==` comparison. Null only equals null, two arrays
// compare element-wise, an array against a primitive compares via its string
// form, and mixed number/string/bool operands compare numerically.
func LooseEqual(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == b.Kind
	}

	if a.Kind == KindArray && b.Kind == KindArray {
		if len(a.Arr) != len(b.Arr) {
			return false
		}
		for i := range a.Arr {
			if !LooseEqual(a.Arr[i], b.Arr[i]) {
				return false
			}
		}
		return true
	}
	if a.Kind == KindArray {
		a = String(a.String())
	}
	if b.Kind == KindArray {
		b = String(b.String())
	}

	if a.Kind == b.Kind {
		switch a.Kind {
		case KindString:
			return a.Str == b.Str
		case KindBool:
			return a.Bool == b.Bool
		default:
			return a.Num == b.Num
		}
	}

	return a.ToNumber() == b.ToNumber()
}

// Compare orders two values for <, <=, > and >=. Two strings compare
// lexicographically, everything else numerically. ok is false when either
// side is NaN, in which case every relational operator is false.
func Compare(a, b Value) (cmp int, ok bool) {
	if a.Kind == KindString && b.Kind == KindString {
		return strings.Compare(a.Str, b.Str), true
	}

	x, y := a.ToNumber(), b.ToNumber()
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}

	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	default:
		return 0, true
	}
}
