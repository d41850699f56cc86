package value_test

import (
	"math"
	"testing"

	"pseudotrace/pkg/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		input       value.Value
		expected    int64
		description string
	}{
		{value.String("01011"), 11, "binary digit string"},
		{value.String("42"), 42, "decimal string"},
		{value.String("abc"), 0, "non-numeric string"},
		{value.Number(3.9), 3, "floor not round"},
		{value.Number(-3.2), -4, "floor toward negative infinity"},
		{value.String("00000000"), 0, "eight zero bits"},
		{value.String("12abc"), 12, "leading digits"},
		{value.Bool(true), 1, "true"},
		{value.Null(), 0, "null"},
		{value.Number(math.NaN()), 0, "NaN"},
		{value.Number(1e30), math.MaxInt64, "saturates above int64"},
		{value.Number(-1e30), math.MinInt64, "saturates below int64"},
		{value.Number(-9223372036854775808), math.MinInt64, "exact int64 minimum"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.input.ToInt(), test.description)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		input    value.Value
		expected string
	}{
		{value.Int(3), "3"},
		{value.Number(2.5), "2.5"},
		{value.Number(-0.125), "-0.125"},
		{value.Number(1e21), "1e+21"},
		{value.Number(math.Inf(1)), "Infinity"},
		{value.Number(math.NaN()), "NaN"},
		{value.String("あ"), "あ"},
		{value.Bool(false), "false"},
		{value.Null(), "null"},
		{value.Array(value.Int(1), value.Null(), value.String("x")), "1,,x"},
		{value.Array(value.Array(value.Int(1), value.Int(2)), value.Int(3)), "1,2,3"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.input.String())
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, value.Null().Truthy())
	assert.False(t, value.Int(0).Truthy())
	assert.False(t, value.String("").Truthy())
	assert.False(t, value.Number(math.NaN()).Truthy())
	assert.True(t, value.Array().Truthy())
	assert.True(t, value.String("0").Truthy())
	assert.True(t, value.Int(-1).Truthy())
}

func TestLooseEqual(t *testing.T) {
	assert.True(t, value.LooseEqual(value.String("5"), value.Int(5)))
	assert.True(t, value.LooseEqual(value.Bool(true), value.Int(1)))
	assert.True(t, value.LooseEqual(value.Null(), value.Null()))
	assert.False(t, value.LooseEqual(value.Null(), value.Int(0)))
	assert.False(t, value.LooseEqual(value.String("a"), value.Int(0)))
	assert.True(t, value.LooseEqual(
		value.Array(value.Int(1), value.Int(2)),
		value.Array(value.Int(1), value.Int(2)),
	))
	assert.True(t, value.LooseEqual(value.Array(value.Int(1), value.Int(2)), value.String("1,2")))
}

func TestCompare(t *testing.T) {
	c, ok := value.Compare(value.String("abc"), value.String("abd"))
	require.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = value.Compare(value.String("10"), value.Int(9))
	require.True(t, ok)
	assert.Equal(t, 1, c)

	_, ok = value.Compare(value.String("x"), value.Int(1))
	assert.False(t, ok)
}

func TestParseBindings(t *testing.T) {
	vars, err := value.ParseBindings(`{"num": 15, "name": "a", "arr": [1, "b", null], "ok": true}`)
	require.NoError(t, err)

	assert.Equal(t, value.Int(15), vars["num"])
	assert.Equal(t, value.String("a"), vars["name"])
	assert.Equal(t, value.Array(value.Int(1), value.String("b"), value.Null()), vars["arr"])
	assert.Equal(t, value.Bool(true), vars["ok"])

	empty, err := value.ParseBindings("   ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{`{"a": }`, `[1, 2]`, `null`, `{"o": {"x": 1}}`} {
		_, err := value.ParseBindings(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00000101", value.Format(value.Int(5), value.TypeByte))
	assert.Equal(t, "00000011", value.Format(value.String("11"), value.TypeByte))
	assert.Equal(t, "5", value.Format(value.Int(5), value.TypeInteger))
	assert.Equal(t, `"hi"`, value.Format(value.String("hi"), value.TypeString))
	assert.Equal(t, `[1,null,"x"]`, value.Format(value.Array(value.Int(1), value.Null(), value.String("x")), ""))
	assert.Equal(t, "null", value.Format(value.Number(math.NaN()), ""))
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := value.Array(value.Array(value.Int(1)))
	cp := orig.Clone()
	cp.Arr[0].Arr[0] = value.Int(9)

	assert.Equal(t, value.Int(1), orig.Arr[0].Arr[0])
}
