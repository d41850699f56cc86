package expr

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"pseudotrace/pkg/value"
)

var lengthRegex = regexp.MustCompile(`^(.+?)(?:\.|の)(要素数|文字数)$`)

// Evaluate computes a pseudocode expression against env. It scans the string
// directly: redundant parentheses are stripped, literals and property
// accesses are recognised, then the lowest-precedence top-level operator is
// located (rightmost first) and both sides are evaluated recursively.
// Unrecognised text evaluates to itself as a string.
func Evaluate(expression string, env value.Env) (value.Value, error) {
	s := unwrap(normalize(expression))
	if s == "" {
		return value.Null(), nil
	}

	if enclosedBy(s, '[') || enclosedBy(s, '{') {
		return evalList(s, env)
	}

	if s[0] != '"' && s[0] != '\'' {
		if f, ok := value.ParseNumber(s); ok {
			return value.Number(f), nil
		}
	}

	if str, ok := quoted(s); ok {
		return value.String(str), nil
	}

	if m := lengthRegex.FindStringSubmatch(s); m != nil && isPrimary(strings.TrimSpace(m[1])) {
		return evalLength(s, strings.TrimSpace(m[1]), m[2], env)
	}

	if name, indexes, ok := accessChain(s); ok {
		return evalIndex(s, name, indexes, env)
	}

	if v, ok := env[s]; ok {
		return v, nil
	}

	if v, ok := keyword(s); ok {
		return v, nil
	}

	for level, group := range precedence {
		// `not` binds looser than every operator except and/or
		if level == notLevel && strings.HasPrefix(s, "not ") {
			v, err := Evaluate(s[len("not "):], env)
			if err != nil {
				return value.Value{}, err
			}
			return value.Bool(!v.Truthy()), nil
		}
		if i, op := findOperator(s, group); i >= 0 {
			return evalBinary(s[:i], op, s[i+len(op):], env)
		}
	}

	if v, ok, err := evalUnary(s, env); ok {
		return v, err
	}

	return value.String(s), nil
}

func evalList(s string, env value.Env) (value.Value, error) {
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return value.Array(), nil
	}

	parts := splitTopLevel(inner, ',')
	elems := make([]value.Value, 0, len(parts))
	for _, p := range parts {
		v, err := Evaluate(p, env)
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)
	}

	return value.Array(elems...), nil
}

func quoted(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return "", false
	}
	inner := s[1 : len(s)-1]
	if strings.IndexByte(inner, q) >= 0 {
		return "", false
	}
	return inner, true
}

func keyword(s string) (value.Value, bool) {
	switch s {
	case "true", "真":
		return value.Bool(true), true
	case "false", "偽":
		return value.Bool(false), true
	case "null", "未定義", "未定義の値":
		return value.Null(), true
	}
	return value.Value{}, false
}

func evalLength(s, target, prop string, env value.Env) (value.Value, error) {
	v, err := operand(target, env)
	if err != nil {
		return value.Value{}, err
	}

	switch {
	case v.Kind == value.KindString:
		return value.Int(int64(utf8.RuneCountInString(v.Str))), nil
	case v.Kind == value.KindArray && prop == "要素数":
		return value.Int(int64(len(v.Arr))), nil
	case v.Kind == value.KindNull:
		return value.Value{}, newEvalError(s, "未定義の値 %q の%sは取得できません", target, prop)
	default:
		return value.Value{}, newEvalError(s, "%s型の値 %q の%sは取得できません", v.Kind, target, prop)
	}
}

// operand evaluates the target of a property access. A bare name that is not
// bound is null here rather than falling back to its own text.
func operand(target string, env value.Env) (value.Value, error) {
	if identRegex.FindString(target) == target {
		if v, ok := env[target]; ok {
			return v, nil
		}
		if v, ok := keyword(target); ok {
			return v, nil
		}
		return value.Null(), nil
	}
	return Evaluate(target, env)
}

func evalIndex(s, name string, indexes []string, env value.Env) (value.Value, error) {
	cur := env[name]
	label := name

	for _, ix := range indexes {
		idx, err := Evaluate(ix, env)
		if err != nil {
			return value.Value{}, err
		}

		switch cur.Kind {
		case value.KindNull:
			return value.Value{}, newEvalError(s, "未定義の値 %q には添字でアクセスできません", label)
		case value.KindArray:
			cur = readElement(cur.Arr, idx)
		case value.KindString:
			runes := []rune(cur.Str)
			if n, ok := resolveReadIndex(idx, len(runes)); ok {
				cur = value.String(string(runes[n]))
			} else {
				cur = value.Null()
			}
		default:
			return value.Value{}, newEvalError(s, "%s型の値 %q には添字でアクセスできません", cur.Kind, label)
		}

		label += "[" + ix + "]"
	}

	return cur, nil
}

func readElement(arr []value.Value, idx value.Value) value.Value {
	if n, ok := resolveReadIndex(idx, len(arr)); ok {
		return arr[n]
	}
	return value.Null()
}

// resolveReadIndex maps a read index onto a 0-based offset. An index of 1 or
// more is first read as 1-based; when that falls outside the array the raw
// index is tried as 0-based.
func resolveReadIndex(idx value.Value, length int) (int, bool) {
	f := idx.ToNumber()
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}

	n := int(f)
	if n >= 1 && n-1 < length {
		return n - 1, true
	}
	if n >= 0 && n < length {
		return n, true
	}
	return 0, false
}

func evalBinary(left, op, right string, env value.Env) (value.Value, error) {
	l, err := Evaluate(left, env)
	if err != nil {
		return value.Value{}, err
	}

	if isLogical(op) {
		or := op == " or " || op == "||"
		if l.Truthy() == or {
			return l, nil
		}
		return Evaluate(right, env)
	}

	r, err := Evaluate(right, env)
	if err != nil {
		return value.Value{}, err
	}

	return applyBinary(op, l, r), nil
}

func evalUnary(s string, env value.Env) (value.Value, bool, error) {
	var rest string
	var apply func(value.Value) value.Value

	switch {
	case strings.HasPrefix(s, "-"):
		rest = s[1:]
		apply = func(v value.Value) value.Value { return value.Number(-v.ToNumber()) }
	case strings.HasPrefix(s, "+"):
		rest = s[1:]
		apply = func(v value.Value) value.Value { return value.Number(v.ToNumber()) }
	case strings.HasPrefix(s, "!") && !strings.HasPrefix(s, "!="):
		rest = s[1:]
		apply = func(v value.Value) value.Value { return value.Bool(!v.Truthy()) }
	default:
		return value.Value{}, false, nil
	}

	if strings.TrimSpace(rest) == "" {
		return value.Value{}, false, nil
	}

	v, err := Evaluate(rest, env)
	if err != nil {
		return value.Value{}, true, err
	}
	return apply(v), true, nil
}
