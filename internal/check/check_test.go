package check

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRunsEveryCheck(t *testing.T) {
	l := New()
	l.That(false, "first violation")
	l.That(true, "should not appear")
	l.That(false, "second violation")

	require.True(t, l.Failed())
	assert.Equal(t, []string{"first violation", "second violation"}, l.Messages())
	assert.NoError(t, l.Err())
}

func TestListEmpty(t *testing.T) {
	l := New()
	l.That(true, "ok")

	assert.False(t, l.Failed())
	assert.Empty(t, l.Messages())
}

func TestCheckRecordsFirstError(t *testing.T) {
	first := errors.New("query one failed")
	second := errors.New("query two failed")

	l := New()
	l.Check(false, first, "suppressed by error")
	l.Check(false, nil, "kept")
	l.Check(false, second, "also suppressed")

	assert.Equal(t, first, l.Err())
	assert.Equal(t, []string{"kept"}, l.Messages())
}

func TestUniqueIDs(t *testing.T) {
	assert.True(t, UniqueIDs([]uint{1, 2, 3}))
	assert.True(t, UniqueIDs(nil))
	assert.False(t, UniqueIDs([]uint{1, 2, 1}))
}

func TestDedupePreservesOrder(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, Dedupe([]uint{3, 1, 3, 2, 1}))
	assert.Empty(t, Dedupe(nil))
}
