package expr

import (
	"math"
	"regexp"

	"pseudotrace/pkg/value"
)

var (
	divisibleByBoth = regexp.MustCompile(`^(.+?)\s*が\s*(.+?)\s*と\s*(.+?)\s*で割り切れ(る|ない)$`)
	divisibleBy     = regexp.MustCompile(`^(.+?)\s*が\s*(.+?)\s*で割り切れ(る|ない)$`)
	equalTo         = regexp.MustCompile(`^(.+?)\s*が\s*(.+?)\s*と等し(い|くない)$`)
)

// EvaluateCondition evaluates a branch or loop condition. The natural-language
// divisibility and equality phrases are recognised first; anything else is
// evaluated as an expression and converted to a boolean.
func EvaluateCondition(condition string, env value.Env) (bool, error) {
	cond := normalize(condition)

	if m := divisibleByBoth.FindStringSubmatch(cond); m != nil {
		return divisible(cond, env, m[4] == "る", m[1], m[2], m[3])
	}

	if m := divisibleBy.FindStringSubmatch(cond); m != nil {
		return divisible(cond, env, m[3] == "る", m[1], m[2])
	}

	if m := equalTo.FindStringSubmatch(cond); m != nil {
		l, err := Evaluate(m[1], env)
		if err != nil {
			return false, &CondEvalError{Cond: condition, Err: err}
		}
		r, err := Evaluate(m[2], env)
		if err != nil {
			return false, &CondEvalError{Cond: condition, Err: err}
		}
		return value.LooseEqual(l, r) == (m[3] == "い"), nil
	}

	v, err := Evaluate(cond, env)
	if err != nil {
		return false, &CondEvalError{Cond: condition, Err: err}
	}

	return v.Truthy(), nil
}

// divisible reports whether target is a multiple of every divisor, or of not
// all of them when want is false. Non-numeric operands and zero divisors make
// the phrase false in either form.
func divisible(cond string, env value.Env, want bool, target string, divisors ...string) (bool, error) {
	x, err := Evaluate(target, env)
	if err != nil {
		return false, &CondEvalError{Cond: cond, Err: err}
	}
	if x.Kind != value.KindNumber {
		return false, nil
	}

	all := true
	for _, d := range divisors {
		dv, err := Evaluate(d, env)
		if err != nil {
			return false, &CondEvalError{Cond: cond, Err: err}
		}
		if dv.Kind != value.KindNumber || dv.Num == 0 {
			return false, nil
		}
		if math.Mod(x.Num, dv.Num) != 0 {
			all = false
		}
	}

	return all == want, nil
}
