package value

import (
	"fmt"
	"strings"
)

// Declared type keywords.
const (
	TypeInteger = "整数型"
	TypeString  = "文字列型"
	TypeArray   = "配列型"
	TypeBoolean = "論理型"
	TypeReal    = "実数型"
	TypeByte    = "8ビット型"
)

// TypeKeywords lists the declaration keywords in matching order.
var TypeKeywords = []string{TypeByte, TypeInteger, TypeString, TypeArray, TypeBoolean, TypeReal}

// Format renders v for display. Only the declared type changes the rendering:
// a 8ビット型 value is shown as eight binary digits. Everything else is
// rendered as JSON.
func Format(v Value, declType string) string {
	if declType == TypeByte {
		switch v.Kind {
		case KindNumber:
			return fmt.Sprintf("%08b", uint8(v.ToInt()))
		case KindString:
			if binaryRegex.MatchString(v.Str) {
				if len(v.Str) >= 8 {
					return v.Str
				}
				return strings.Repeat("0", 8-len(v.Str)) + v.Str
			}
		}
	}

	b, err := v.MarshalJSON()
	if err != nil {
		return v.String()
	}
	return string(b)
}
