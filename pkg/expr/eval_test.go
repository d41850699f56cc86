package expr_test

import (
	"math"
	"testing"

	"pseudotrace/pkg/expr"
	"pseudotrace/pkg/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected value.Value
	}{
		{"2 + 3 * 4", value.Int(14)},
		{"(2 + 3) * 4", value.Int(20)},
		{"((7))", value.Int(7)},
		{"10 - 4 - 3", value.Int(3)},
		{"100 / 10 / 5", value.Int(2)},
		{"7 / 2", value.Int(3)},
		{"-7 / 2", value.Int(-4)},
		{"7 ÷ 2", value.Int(3)},
		{"-7 % 3", value.Int(-1)},
		{"7 % -3", value.Int(1)},
		{"2 * (3 + 4) - 1", value.Int(13)},
		{"３ + ４", value.Int(7)},
		{"3 * -2", value.Int(-6)},
		{"-(2 + 3)", value.Int(-5)},
		{"1.5 + 1.25", value.Number(2.75)},
		{"1e3 + 1", value.Int(1001)},
	}

	for _, test := range tests {
		got, err := expr.Evaluate(test.input, value.Env{})
		require.NoError(t, err, test.input)
		assert.Equal(t, test.expected, got, test.input)
	}
}

func TestShiftAndRelationalDisambiguation(t *testing.T) {
	tests := []struct {
		input    string
		expected value.Value
	}{
		{"5 << 2", value.Int(20)},
		{"5 > 2", value.Bool(true)},
		{"5 >> 1", value.Int(2)},
		{"1 << 3 > 7", value.Bool(true)},
		{"5 >= 5", value.Bool(true)},
		{"5 <= 4", value.Bool(false)},
		{"3 ≦ 3", value.Bool(true)},
		{"2 ≧ 3", value.Bool(false)},
		{"1 + 1 == 2", value.Bool(true)},
		{"1 + 1 = 2", value.Bool(true)},
		{"1 != 2", value.Bool(true)},
		{"1 ≠ 1", value.Bool(false)},
	}

	for _, test := range tests {
		got, err := expr.Evaluate(test.input, value.Env{})
		require.NoError(t, err, test.input)
		assert.Equal(t, test.expected, got, test.input)
	}
}

func TestBitwise(t *testing.T) {
	env := value.Env{"r": value.String("00000001"), "b": value.String("10110000")}
	tests := []struct {
		input    string
		expected value.Value
	}{
		{"12 & 10", value.Int(8)},
		{"12 ∧ 10", value.Int(8)},
		{"12 | 3", value.Int(15)},
		{"12 ∨ 3", value.Int(15)},
		{"12 ^ 10", value.Int(6)},
		{"12 ⊕ 10", value.Int(6)},
		{"12 xor 10", value.Int(6)},
		{"r << 1", value.Int(2)},
		{"b >> 4", value.Int(11)},
		{"1 | 2 & 3", value.Int(3)},
	}

	for _, test := range tests {
		got, err := expr.Evaluate(test.input, env)
		require.NoError(t, err, test.input)
		assert.Equal(t, test.expected, got, test.input)
	}
}

func TestLogicalOperators(t *testing.T) {
	env := value.Env{"x": value.Int(5), "s": value.String("")}

	got, err := expr.Evaluate("x > 1 and x < 10", env)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)

	got, err = expr.Evaluate("x > 7 || x == 5", env)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)

	// operands are returned, not converted
	got, err = expr.Evaluate("s or 3", env)
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), got)

	// short circuit skips a right side that would fail
	got, err = expr.Evaluate("x > 1 or missing[1]", env)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)

	got, err = expr.Evaluate("not x > 7", env)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)
}

func TestStringsAndLiterals(t *testing.T) {
	env := value.Env{"name": value.String("abc"), "n": value.Int(2)}
	tests := []struct {
		input    string
		expected value.Value
	}{
		{`"hello"`, value.String("hello")},
		{`'hi'`, value.String("hi")},
		{`"a" + "b"`, value.String("ab")},
		{`name + n`, value.String("abc2")},
		{`n + "1"`, value.String("21")},
		{`"1 + 2"`, value.String("1 + 2")},
		{`"5" == 5`, value.Bool(true)},
		{`"abc" < "abd"`, value.Bool(true)},
		{`true`, value.Bool(true)},
		{`偽`, value.Bool(false)},
		{`未定義の値`, value.Null()},
		{`ループが終了しました`, value.String("ループが終了しました")},
		{``, value.Null()},
	}

	for _, test := range tests {
		got, err := expr.Evaluate(test.input, env)
		require.NoError(t, err, test.input)
		assert.Equal(t, test.expected, got, test.input)
	}
}

func TestArrayLiteralsAndLength(t *testing.T) {
	env := value.Env{
		"arr": value.Array(value.Int(10), value.Int(20), value.Int(30)),
		"s":   value.String("あいう"),
	}

	got, err := expr.Evaluate("{1, 2 + 3, \"x\"}", env)
	require.NoError(t, err)
	assert.Equal(t, value.Array(value.Int(1), value.Int(5), value.String("x")), got)

	got, err = expr.Evaluate("[]", env)
	require.NoError(t, err)
	assert.Equal(t, value.Array(), got)

	got, err = expr.Evaluate("{{1, 2}, {3}}", env)
	require.NoError(t, err)
	assert.Equal(t, value.Array(value.Array(value.Int(1), value.Int(2)), value.Array(value.Int(3))), got)

	for _, in := range []string{"arr.要素数", "arrの要素数"} {
		got, err = expr.Evaluate(in, env)
		require.NoError(t, err, in)
		assert.Equal(t, value.Int(3), got, in)
	}

	got, err = expr.Evaluate("sの文字数", env)
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), got)

	got, err = expr.Evaluate("s.要素数 + arrの要素数", env)
	require.NoError(t, err)
	assert.Equal(t, value.Int(6), got)

	got, err = expr.Evaluate("arr[arrの要素数]", env)
	require.NoError(t, err)
	assert.Equal(t, value.Int(30), got)

	_, err = expr.Evaluate("missingの要素数", env)
	var evalErr *expr.EvalError
	assert.ErrorAs(t, err, &evalErr)
}

func TestIndexRead(t *testing.T) {
	env := value.Env{
		"arr":  value.Array(value.Int(10), value.Int(20), value.Int(30)),
		"grid": value.Array(value.Array(value.Int(1), value.Int(2)), value.Array(value.Int(3), value.Int(4))),
		"s":    value.String("abc"),
		"i":    value.Int(2),
		"n":    value.Int(7),
	}
	tests := []struct {
		input    string
		expected value.Value
	}{
		{"arr[1]", value.Int(10)},
		{"arr[3]", value.Int(30)},
		{"arr[0]", value.Int(10)},
		{"arr[i]", value.Int(20)},
		{"arr[i + 1]", value.Int(30)},
		{"arr[i - 1] * 2", value.Int(20)},
		{"arr[4]", value.Null()},
		{"arr[1.5]", value.Null()},
		{"grid[2][1]", value.Int(3)},
		{"s[1]", value.String("a")},
		{"s[3]", value.String("c")},
	}

	for _, test := range tests {
		got, err := expr.Evaluate(test.input, env)
		require.NoError(t, err, test.input)
		assert.Equal(t, test.expected, got, test.input)
	}
}

func TestIndexReadErrors(t *testing.T) {
	env := value.Env{"n": value.Int(7), "nothing": value.Null()}

	for _, in := range []string{"n[1]", "nothing[1]", "undefinedName[1]"} {
		_, err := expr.Evaluate(in, env)
		var evalErr *expr.EvalError
		assert.ErrorAs(t, err, &evalErr, in)
	}
}

func TestHugeOperandsSaturate(t *testing.T) {
	got, err := expr.Evaluate("1e30 * 1", value.Env{})
	require.NoError(t, err)
	assert.Equal(t, value.Int(math.MaxInt64), got)

	got, err = expr.Evaluate("-1e30 - 0", value.Env{})
	require.NoError(t, err)
	assert.Equal(t, value.Int(math.MinInt64), got)
}

func TestDivisionByZero(t *testing.T) {
	got, err := expr.Evaluate("1 / 0", value.Env{})
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.Num, 1))

	got, err = expr.Evaluate("1 % 0", value.Env{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Num))
}
