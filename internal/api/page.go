package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const DefaultTake = 10

// PageParams carries cursor pagination input: rows with id > Cursor are
// returned, at most Take of them.
type PageParams struct {
	Cursor uint
	Take   int
}

// ParsePage reads cursor/take from the query string, applying the default
// page size and collecting every violation.
func ParsePage(c *fiber.Ctx) (PageParams, []string) {
	var msgs []string
	p := PageParams{Take: DefaultTake}

	if raw := c.Query("cursor"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			msgs = append(msgs, "cursor must be a non-negative integer")
		} else {
			p.Cursor = uint(n)
		}
	}

	if raw := c.Query("take"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			msgs = append(msgs, "take must be a positive integer")
		} else {
			p.Take = n
		}
	}

	return p, msgs
}

// ParseID reads a numeric path parameter.
func ParseID(c *fiber.Ctx, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Page wraps a result page under its entity-plural key together with the
// cursor for the next page (null when the page was not full).
func Page(c *fiber.Ctx, key string, items any, next *uint) error {
	return OK(c, fiber.Map{key: items, "nextCursor": next})
}
