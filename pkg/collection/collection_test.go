package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tiffinbox/tiffin/pkg/collection"
)

type line struct {
	Item string
	Qty  int
}

func TestHelpers(t *testing.T) {
	lines := []line{{"thali", 3}, {"lassi", 1}, {"thali", 2}}
	item := func(l line) string { return l.Item }

	assert.Equal(t, []string{"thali", "lassi", "thali"}, collection.Map(lines, item))
	assert.Equal(t, []string{"thali", "lassi"}, collection.Unique(collection.Map(lines, item)))
	assert.Len(t, collection.Filter(lines, func(l line) bool { return l.Qty > 1 }), 2)
	assert.NotNil(t, collection.Filter(lines, func(line) bool { return false }))
	assert.Equal(t, 2, collection.Count(lines, func(l line) bool { return l.Item == "thali" }))
	assert.True(t, collection.Any(lines, func(l line) bool { return l.Item == "lassi" }))
	assert.True(t, collection.Includes([]string{"Pending", "Paid"}, "Paid"))
	assert.False(t, collection.Includes([]string{"Pending", "Paid"}, "Lost"))

	groups := collection.GroupBy(lines, item)
	assert.Len(t, groups["thali"], 2)
	assert.Equal(t, 3, groups["thali"][0].Qty)

	total := collection.Reduce(lines, 0, func(sum int, l line) int { return sum + l.Qty })
	assert.Equal(t, 6, total)

	byItem := collection.KeyBy(lines, item)
	assert.Equal(t, 2, byItem["thali"].Qty)
}
