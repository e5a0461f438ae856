// Package validate interprets declarative per-endpoint schemas. A schema is
// declared once as a package variable; Validate walks every rule and returns
// either the coerced value or the complete list of violations. It never
// stops at the first failure: the caller gets all applicable messages in one
// round trip.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Kind uint8

const (
	String Kind = iota
	Int
	Float
	Bool
	Date
	Array
)

const dateLayout = "2006-01-02"

// Rule describes one field of an input object.
type Rule struct {
	Field    string
	Kind     Kind
	Required bool
	Default  any      // applied when an optional field is absent
	NotBlank bool     // strings: must contain a non-space character
	MaxLen   int      // strings: maximum length, 0 = unlimited
	OneOf    []string // strings: enum membership
	Min      *float64 // numbers (and scalar array elements)
	Max      *float64
	Elem     []Rule // arrays of objects: per-element rules
	ElemKind Kind   // arrays of scalars, ignored when Elem is set
	MinItems int
}

type Schema struct {
	rules []Rule
}

func New(rules ...Rule) *Schema {
	return &Schema{rules: rules}
}

// Num is shorthand for bound pointers in rule literals.
func Num(f float64) *float64 { return &f }

// Body parses the request body and validates it against the schema. A body
// that is not a JSON object is answered uniformly as a single message.
func Body(c *fiber.Ctx, s *Schema) (Value, []string) {
	var raw map[string]any
	if err := json.Unmarshal(c.Body(), &raw); err != nil || raw == nil {
		return nil, []string{"Invalid request body"}
	}
	return s.Validate(raw)
}

// Validate applies every rule to the raw object. Unknown fields are ignored.
func (s *Schema) Validate(raw map[string]any) (Value, []string) {
	out := Value{}
	var msgs []string

	for _, r := range s.rules {
		v, present := raw[r.Field]
		if !present || v == nil {
			if r.Required {
				msgs = append(msgs, r.Field+" is required")
			} else if r.Default != nil {
				out[r.Field] = r.Default
			}
			continue
		}

		coerced, fieldMsgs := checkField(r, r.Field, v)
		if len(fieldMsgs) > 0 {
			msgs = append(msgs, fieldMsgs...)
			continue
		}
		out[r.Field] = coerced
	}

	if len(msgs) > 0 {
		return nil, msgs
	}
	return out, nil
}

func checkField(r Rule, path string, v any) (any, []string) {
	switch r.Kind {
	case String:
		return checkString(r, path, v)
	case Int:
		return checkInt(r, path, v)
	case Float:
		return checkFloat(r, path, v)
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, []string{path + " must be a boolean"}
		}
		return b, nil
	case Date:
		s, ok := v.(string)
		if !ok {
			return nil, []string{path + " must be a date in YYYY-MM-DD format"}
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, []string{path + " must be a date in YYYY-MM-DD format"}
		}
		return t, nil
	case Array:
		return checkArray(r, path, v)
	}
	return nil, []string{path + " has an unsupported rule"}
}

func checkString(r Rule, path string, v any) (any, []string) {
	s, ok := v.(string)
	if !ok {
		return nil, []string{path + " must be a string"}
	}
	var msgs []string
	if r.NotBlank && strings.TrimSpace(s) == "" {
		msgs = append(msgs, path+" must not be empty")
	}
	if r.MaxLen > 0 && len(s) > r.MaxLen {
		msgs = append(msgs, fmt.Sprintf("%s must be at most %d characters", path, r.MaxLen))
	}
	if len(r.OneOf) > 0 && !contains(r.OneOf, s) {
		msgs = append(msgs, fmt.Sprintf("%s must be one of %s", path, strings.Join(r.OneOf, ", ")))
	}
	if len(msgs) > 0 {
		return nil, msgs
	}
	return s, nil
}

func checkInt(r Rule, path string, v any) (any, []string) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return nil, []string{path + " must be an integer"}
	}
	if msgs := checkBounds(r, path, f); len(msgs) > 0 {
		return nil, msgs
	}
	return int64(f), nil
}

func checkFloat(r Rule, path string, v any) (any, []string) {
	f, ok := v.(float64)
	if !ok {
		return nil, []string{path + " must be a number"}
	}
	if msgs := checkBounds(r, path, f); len(msgs) > 0 {
		return nil, msgs
	}
	return f, nil
}

func checkBounds(r Rule, path string, f float64) []string {
	var msgs []string
	if r.Min != nil && f < *r.Min {
		msgs = append(msgs, path+" must be at least "+formatNum(*r.Min))
	}
	if r.Max != nil && f > *r.Max {
		msgs = append(msgs, path+" must be at most "+formatNum(*r.Max))
	}
	return msgs
}

func checkArray(r Rule, path string, v any) (any, []string) {
	items, ok := v.([]any)
	if !ok {
		return nil, []string{path + " must be an array"}
	}
	var msgs []string
	if len(items) < r.MinItems {
		msgs = append(msgs, fmt.Sprintf("%s must have at least %d items", path, r.MinItems))
	}

	if len(r.Elem) > 0 {
		elems := make([]Value, 0, len(items))
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				msgs = append(msgs, fmt.Sprintf("%s[%d] must be an object", path, i))
				continue
			}
			elem := Value{}
			for _, er := range r.Elem {
				ev, present := obj[er.Field]
				prefix := fmt.Sprintf("%s[%d].%s", path, i, er.Field)
				if !present || ev == nil {
					if er.Required {
						msgs = append(msgs, prefix+" is required")
					} else if er.Default != nil {
						elem[er.Field] = er.Default
					}
					continue
				}
				coerced, elemMsgs := checkField(er, prefix, ev)
				if len(elemMsgs) > 0 {
					msgs = append(msgs, elemMsgs...)
					continue
				}
				elem[er.Field] = coerced
			}
			elems = append(elems, elem)
		}
		if len(msgs) > 0 {
			return nil, msgs
		}
		return elems, nil
	}

	// scalar elements
	scalar := Rule{Kind: r.ElemKind, Min: r.Min, Max: r.Max, OneOf: r.OneOf}
	elems := make([]any, 0, len(items))
	for i, item := range items {
		coerced, elemMsgs := checkField(scalar, fmt.Sprintf("%s[%d]", path, i), item)
		if len(elemMsgs) > 0 {
			msgs = append(msgs, elemMsgs...)
			continue
		}
		elems = append(elems, coerced)
	}
	if len(msgs) > 0 {
		return nil, msgs
	}
	return elems, nil
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func contains(set []string, s string) bool {
	for _, e := range set {
		if e == s {
			return true
		}
	}
	return false
}
