package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	page, size := Normalize(0, 0)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = Normalize(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, size)
}

func TestNewMeta_MiddlePage(t *testing.T) {
	meta := NewMeta(2, 10, 25)

	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasPrevPage)
	assert.True(t, meta.HasNextPage)
	assert.Equal(t, 1, *meta.PrevPage)
	assert.Equal(t, 3, *meta.NextPage)
}

func TestNewMeta_Boundaries(t *testing.T) {
	first := NewMeta(1, 10, 25)
	assert.False(t, first.HasPrevPage)
	assert.Nil(t, first.PrevPage)
	assert.True(t, first.HasNextPage)

	last := NewMeta(3, 10, 25)
	assert.True(t, last.HasPrevPage)
	assert.False(t, last.HasNextPage)
	assert.Nil(t, last.NextPage)

	empty := NewMeta(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
	assert.False(t, empty.HasPrevPage)
}
