package expr

import (
	"math"
	"regexp"
	"strings"

	"pseudotrace/pkg/value"
)

// operator groups from lowest to highest precedence; within a group longer
// spellings come first so that `<=` wins over `<` at the same offset
var precedence = [][]string{
	{" or ", "||"},
	{" and ", "&&"},
	{"∨", "|"},
	{"⊕", " xor ", "^"},
	{"∧", "&"},
	{"==", "!=", "≠", "="},
	{"<=", ">=", "≦", "≧", "<", ">"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%", "÷"},
}

// notLevel is the group before which a leading `not` is applied.
const notLevel = 2

const operatorRunes = "+-*/%<>=!&|^(,[{≦≧≠∧∨⊕÷"

var exponentTail = regexp.MustCompile(`(^|[^\p{L}\p{N}_])\d+(\.\d*)?[eE]$`)

// findOperator returns the rightmost top-level occurrence of any operator in
// group, or -1 when none applies.
func findOperator(s string, group []string) (int, string) {
	mask := topLevel(s)

	for i := len(s) - 1; i >= 0; i-- {
		if !mask[i] {
			continue
		}
		for _, op := range group {
			if strings.HasPrefix(s[i:], op) && acceptOperator(s, i, op) {
				return i, op
			}
		}
	}

	return -1, ""
}

// acceptOperator rejects matches that are really part of a longer operator or
// a unary sign.
func acceptOperator(s string, i int, op string) bool {
	var prev, next byte
	if i > 0 {
		prev = s[i-1]
	}
	if j := i + len(op); j < len(s) {
		next = s[j]
	}

	switch op {
	case "|", "&":
		return prev != op[0] && next != op[0]
	case "=":
		return !strings.ContainsRune("<>!=", rune(prev)) && next != '='
	case "==":
		return prev != '=' && next != '='
	case "<", ">":
		// part of << or >>
		return prev != '<' && prev != '>' && next != '<' && next != '>'
	case "+", "-":
		return !isUnary(s[:i])
	}

	return true
}

func isUnary(left string) bool {
	if exponentTail.MatchString(left) {
		return true
	}

	left = strings.TrimSpace(left)
	if left == "" {
		return true
	}
	if strings.ContainsRune(operatorRunes, lastRune(left)) {
		return true
	}

	lower := strings.ToLower(left)
	for _, kw := range []string{" and", " or", " xor", "not"} {
		if strings.HasSuffix(lower, kw) && (len(lower) == len(kw) || kw[0] == ' ') {
			return true
		}
	}

	return false
}

func isLogical(op string) bool {
	switch op {
	case " or ", "||", " and ", "&&":
		return true
	}
	return false
}

// applyBinary computes a non-logical binary operator on evaluated operands.
func applyBinary(op string, a, b value.Value) value.Value {
	switch op {
	case "==", "=":
		return value.Bool(value.LooseEqual(a, b))
	case "!=", "≠":
		return value.Bool(!value.LooseEqual(a, b))
	case "<", ">", "<=", ">=", "≦", "≧":
		return value.Bool(compare(op, a, b))
	case "+":
		if a.Kind == value.KindString || b.Kind == value.KindString ||
			a.Kind == value.KindArray || b.Kind == value.KindArray {
			return value.String(a.String() + b.String())
		}
		return value.Number(a.ToNumber() + b.ToNumber())
	}

	x, y := a.ToInt(), b.ToInt()
	switch op {
	case "-":
		return value.Int(x - y)
	case "*":
		return value.Int(x * y)
	case "/", "÷":
		// division by zero follows float semantics: ±Inf or NaN
		return value.Number(math.Floor(float64(x) / float64(y)))
	case "%":
		return value.Number(math.Mod(float64(x), float64(y)))
	case "&", "∧":
		return value.Int(x & y)
	case "|", "∨":
		return value.Int(x | y)
	case "^", "⊕", " xor ":
		return value.Int(x ^ y)
	case "<<":
		return value.Int(x << uint(y&63))
	case ">>":
		return value.Int(x >> uint(y&63))
	}

	return value.Null()
}

func compare(op string, a, b value.Value) bool {
	c, ok := value.Compare(a, b)
	if !ok {
		return false
	}

	switch op {
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=", "≦":
		return c <= 0
	default:
		return c >= 0
	}
}
