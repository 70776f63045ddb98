package table

import "strconv"

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindFloat
	KindInt
	KindString
)

// Value is one nullable cell of a Table.
type Value struct {
	kind Kind
	f    float64
	i    int64
	s    string
}

// Null returns the null cell.
func Null() Value { return Value{} }

// Float returns a float64 cell.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Int returns an int64 cell.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// String returns a string cell.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the scalar type of the cell.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float64 returns the cell as a float64. Integer cells widen; string
// and null cells report false.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Int64 returns the cell as an int64: integer cells directly, float
// cells only when they carry a whole number.
func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Str returns the cell as a string; false for non-string cells.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Display renders the cell for human-facing concatenation. Null cells
// render empty.
func (v Value) Display() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// GroupKey returns a canonical key fragment for grouping. Null is its
// own fragment, so null-valued dimensions form their own groups.
func (v Value) GroupKey() string {
	switch v.kind {
	case KindFloat:
		return "f:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt:
		return "i:" + strconv.FormatInt(v.i, 10)
	case KindString:
		return "s:" + v.s
	default:
		return "\x00"
	}
}

// Any returns the cell as a plain Go value (nil, float64, int64, or
// string), suitable for JSON encoding.
func (v Value) Any() any {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return v.i
	case KindString:
		return v.s
	default:
		return nil
	}
}

// Equal reports whether two cells hold the same kind and value.
func (v Value) Equal(o Value) bool { return v == o }
