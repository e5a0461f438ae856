package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCollectsAllViolations(t *testing.T) {
	s := New(
		Rule{Field: "name", Kind: String, Required: true, NotBlank: true},
		Rule{Field: "price", Kind: Float, Required: true, Min: Num(0)},
		Rule{Field: "unit", Kind: String, Required: true},
	)

	_, msgs := s.Validate(map[string]any{
		"name":  "   ",
		"price": -2.5,
	})

	require.Len(t, msgs, 3)
	assert.Equal(t, []string{
		"name must not be empty",
		"price must be at least 0",
		"unit is required",
	}, msgs)
}

func TestValidateTypeMismatches(t *testing.T) {
	s := New(
		Rule{Field: "name", Kind: String, Required: true},
		Rule{Field: "count", Kind: Int, Required: true},
		Rule{Field: "price", Kind: Float, Required: true},
		Rule{Field: "active", Kind: Bool, Required: true},
	)

	_, msgs := s.Validate(map[string]any{
		"name":   12,
		"count":  1.5,
		"price":  "free",
		"active": "yes",
	})

	assert.Equal(t, []string{
		"name must be a string",
		"count must be an integer",
		"price must be a number",
		"active must be a boolean",
	}, msgs)
}

func TestValidateCoercesTypes(t *testing.T) {
	s := New(
		Rule{Field: "count", Kind: Int, Required: true},
		Rule{Field: "when", Kind: Date, Required: true},
	)

	// json numbers arrive as float64
	v, msgs := s.Validate(map[string]any{
		"count": float64(7),
		"when":  "2026-03-01",
	})

	require.Nil(t, msgs)
	assert.Equal(t, 7, v.Int("count"))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), v.Date("when"))
}

func TestValidateAppliesDefaults(t *testing.T) {
	s := New(
		Rule{Field: "take", Kind: Int, Default: int64(10)},
	)

	v, msgs := s.Validate(map[string]any{})

	require.Nil(t, msgs)
	assert.Equal(t, 10, v.Int("take"))
}

func TestValidateEnumAndBounds(t *testing.T) {
	s := New(
		Rule{Field: "status", Kind: String, Required: true, OneOf: []string{"PENDING", "APPROVED"}},
		Rule{Field: "days", Kind: Int, Required: true, Min: Num(1), Max: Num(30)},
	)

	_, msgs := s.Validate(map[string]any{
		"status": "MAYBE",
		"days":   float64(45),
	})

	assert.Equal(t, []string{
		"status must be one of PENDING, APPROVED",
		"days must be at most 30",
	}, msgs)
}

func TestValidateObjectArrayElements(t *testing.T) {
	s := New(
		Rule{Field: "ingredients", Kind: Array, Required: true, MinItems: 1, Elem: []Rule{
			{Field: "id", Kind: Int, Required: true, Min: Num(1)},
			{Field: "quantity", Kind: Float, Required: true, Min: Num(0)},
		}},
	)

	_, msgs := s.Validate(map[string]any{
		"ingredients": []any{
			map[string]any{"id": float64(1), "quantity": float64(2)},
			map[string]any{"id": float64(0)},
			"oops",
		},
	})

	assert.Equal(t, []string{
		"ingredients[1].id must be at least 1",
		"ingredients[1].quantity is required",
		"ingredients[2] must be an object",
	}, msgs)
}

func TestValidateObjectArrayOK(t *testing.T) {
	s := New(
		Rule{Field: "ingredients", Kind: Array, Required: true, Elem: []Rule{
			{Field: "id", Kind: Int, Required: true, Min: Num(1)},
			{Field: "quantity", Kind: Float, Required: true},
		}},
	)

	v, msgs := s.Validate(map[string]any{
		"ingredients": []any{
			map[string]any{"id": float64(3), "quantity": 1.5},
		},
	})

	require.Nil(t, msgs)
	items := v.List("ingredients")
	require.Len(t, items, 1)
	assert.Equal(t, uint(3), items[0].Uint("id"))
	assert.Equal(t, 1.5, items[0].Float("quantity"))
}

func TestValidateScalarArray(t *testing.T) {
	s := New(
		Rule{Field: "dishes", Kind: Array, Required: true, MinItems: 1, ElemKind: Int, Min: Num(1)},
	)

	v, msgs := s.Validate(map[string]any{
		"dishes": []any{float64(4), float64(9)},
	})
	require.Nil(t, msgs)
	assert.Equal(t, []uint{4, 9}, v.Uints("dishes"))

	_, msgs = s.Validate(map[string]any{
		"dishes": []any{float64(0), "x"},
	})
	assert.Equal(t, []string{
		"dishes[0] must be at least 1",
		"dishes[1] must be an integer",
	}, msgs)

	_, msgs = s.Validate(map[string]any{"dishes": []any{}})
	assert.Equal(t, []string{"dishes must have at least 1 items"}, msgs)
}

func TestValidateNotAnArray(t *testing.T) {
	s := New(Rule{Field: "dishes", Kind: Array, Required: true, ElemKind: Int})

	_, msgs := s.Validate(map[string]any{"dishes": "1,2,3"})
	assert.Equal(t, []string{"dishes must be an array"}, msgs)
}

func TestValidateNullTreatedAsAbsent(t *testing.T) {
	s := New(Rule{Field: "name", Kind: String, Required: true})

	_, msgs := s.Validate(map[string]any{"name": nil})
	assert.Equal(t, []string{"name is required"}, msgs)
}
