package pgrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder(t *testing.T) {
	var b queryBuilder
	assert.Empty(t, b.clause())

	b.where("p.price >= ?", 10)
	b.whereRaw("p.is_active")
	b.where("p.name ILIKE '%' || ? || '%'", "milk")
	limit := b.arg(20)

	assert.Equal(t, " WHERE p.price >= $1 AND p.is_active AND p.name ILIKE '%' || $2 || '%'", b.clause())
	assert.Equal(t, "$3", limit)
	assert.Equal(t, []any{10, "milk", 20}, b.args)
}
