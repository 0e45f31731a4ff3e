package feed

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Number is an optional integer that tolerates the loose encodings seen
// upstream: JSON numbers, integral floats and numeric strings. Anything else
// decodes to an unset Number instead of failing the whole document.
type Number struct {
	Value int
	Valid bool
}

// NewNumber returns a set Number.
func NewNumber(v int) Number {
	return Number{Value: v, Valid: true}
}

// Int returns the value, or zero when unset.
func (n Number) Int() int {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// Positive reports whether the number is set and greater than zero.
func (n Number) Positive() bool {
	return n.Valid && n.Value > 0
}

func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.Itoa(n.Value)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Value)), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := jsoniter.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if v, ok := ParseNumber(raw); ok {
		*n = NewNumber(v)
	}
	return nil
}

// ParseNumber parses an integer or an integral float.
func ParseNumber(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
