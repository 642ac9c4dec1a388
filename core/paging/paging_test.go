package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowMovesOverTwentyThreeItems(t *testing.T) {
	w := New(0, 10, 23)

	w = w.Next()
	assert.Equal(t, 10, w.Offset)
	w = w.Next()
	assert.Equal(t, 20, w.Offset)
	w = w.Next()
	assert.Equal(t, 20, w.Offset, "next is capped on the last page")

	assert.Equal(t, 0, w.Start().Offset)
	assert.Equal(t, 20, New(0, 10, 23).End().Offset)
	assert.Equal(t, 10, w.Previous().Offset)
	assert.Equal(t, 0, New(0, 10, 23).Previous().Offset)
}

func TestWindowButtonVisibility(t *testing.T) {
	tests := []struct {
		offset   int
		prev     bool
		next     bool
		pageSize int
	}{
		{offset: 0, prev: false, next: true, pageSize: 10},
		{offset: 10, prev: true, next: true, pageSize: 10},
		{offset: 20, prev: true, next: false, pageSize: 3},
	}
	ids := make([]int, 23)
	for i := range ids {
		ids[i] = i + 1
	}
	for _, tt := range tests {
		w := New(tt.offset, 10, 23)
		assert.Equal(t, tt.prev, w.HasPrevious(), "offset %d", tt.offset)
		assert.Equal(t, tt.next, w.HasNext(), "offset %d", tt.offset)
		assert.Len(t, Page(w, ids), tt.pageSize)
	}
}

func TestNewSnapsOffset(t *testing.T) {
	assert.Equal(t, 10, New(17, 10, 23).Offset)
	assert.Equal(t, 20, New(90, 10, 23).Offset)
	assert.Equal(t, 0, New(-5, 10, 23).Offset)
	assert.Equal(t, DefaultSize, New(0, 0, 5).Size)
}

func TestEmptyList(t *testing.T) {
	w := New(0, 10, 0)
	assert.False(t, w.HasNext())
	assert.False(t, w.HasPrevious())
	assert.Equal(t, 0, w.End().Offset)
	assert.Empty(t, Page(w, []int64{}))
}

func TestPageExactMultiple(t *testing.T) {
	w := New(0, 10, 20).End()
	assert.Equal(t, 10, w.Offset)
	assert.False(t, w.HasNext())
}
