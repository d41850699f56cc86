package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnsupportedJSON = errors.New("unsupported JSON value")

// MarshalJSON encodes like JSON.stringify: NaN and ±Inf become null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return []byte("null"), nil
		}
		return []byte(formatNumber(v.Num)), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// FromAny converts a decoded JSON value. Objects are rejected.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case float64:
		return Number(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return Array(elems...), nil
	case []Value:
		return Array(x...), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedJSON, raw)
	}
}

// ParseBindings decodes a JSON object of initial variable bindings.
// Blank input yields an empty set.
func ParseBindings(src string) (map[string]Value, error) {
	out := make(map[string]Value)
	if strings.TrimSpace(src) == "" {
		return out, nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top level must be an object", ErrUnsupportedJSON)
	}

	for name, r := range raw {
		v, err := FromAny(r)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
