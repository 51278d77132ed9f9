package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor_StopsWhenBackendExhausted(t *testing.T) {
	c := NewCursor(100, 1000)

	assert.Equal(t, 100, c.First())
	more := c.Advance(100, PageInfo{HasNextPage: true, EndCursor: "c1"})
	assert.True(t, more)
	assert.Equal(t, "c1", c.After)

	more = c.Advance(40, PageInfo{HasNextPage: false, EndCursor: "c2"})
	assert.False(t, more)
	assert.Equal(t, 140, c.Fetched)
	assert.False(t, c.Truncated(PageInfo{HasNextPage: false}))
}

func TestCursor_StopsAtLimit(t *testing.T) {
	c := NewCursor(100, 250)

	assert.True(t, c.Advance(100, PageInfo{HasNextPage: true, EndCursor: "a"}))
	assert.True(t, c.Advance(100, PageInfo{HasNextPage: true, EndCursor: "b"}))
	assert.Equal(t, 50, c.First())

	last := PageInfo{HasNextPage: true, EndCursor: "c"}
	assert.False(t, c.Advance(50, last))
	assert.True(t, c.Truncated(last))
}

func TestCursor_Defaults(t *testing.T) {
	c := NewCursor(0, -5)
	assert.Equal(t, 100, c.PageSize)
	assert.Equal(t, 0, c.Limit)
	assert.Equal(t, 100, c.First())
	assert.False(t, c.Advance(0, PageInfo{HasNextPage: true, EndCursor: "x"}))
}
