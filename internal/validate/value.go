package validate

import "time"

// Value is a validated, coerced input object. Getters assume the schema
// declared the field with the matching kind; absent optional fields return
// zero values.
type Value map[string]any

func (v Value) Has(field string) bool {
	_, ok := v[field]
	return ok
}

func (v Value) Str(field string) string {
	s, _ := v[field].(string)
	return s
}

func (v Value) Int(field string) int {
	switch n := v[field].(type) {
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func (v Value) Uint(field string) uint {
	n := v.Int(field)
	if n < 0 {
		return 0
	}
	return uint(n)
}

func (v Value) Float(field string) float64 {
	switch n := v[field].(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func (v Value) Bool(field string) bool {
	b, _ := v[field].(bool)
	return b
}

func (v Value) Date(field string) time.Time {
	t, _ := v[field].(time.Time)
	return t
}

// List returns the validated elements of an object array field.
func (v Value) List(field string) []Value {
	l, _ := v[field].([]Value)
	return l
}

// Uints returns the elements of a scalar integer array field.
func (v Value) Uints(field string) []uint {
	raw, _ := v[field].([]any)
	out := make([]uint, 0, len(raw))
	for _, e := range raw {
		if n, ok := e.(int64); ok && n > 0 {
			out = append(out, uint(n))
		}
	}
	return out
}
