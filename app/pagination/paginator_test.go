package pagination

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func sliceFetch(all []int) func(limit, offset int) ([]int, error) {
	return func(limit, offset int) ([]int, error) {
		if offset >= len(all) {
			return []int{}, nil
		}
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		return all[offset:end], nil
	}
}

func TestNumPages(t *testing.T) {
	tests := []struct {
		count, perPage, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{14, 10, 2},
		{30, 10, 3},
		{5, 0, 1},
		{25, -3, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.count, tt.perPage).NumPages(), "count=%d perPage=%d", tt.count, tt.perPage)
	}
}

func TestNumberResolution(t *testing.T) {
	p := New(14, 10)

	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"1", 1},
		{"2", 2},
		{" 2 ", 2},
		{"abc", 1},
		{"1.5", 1},
		{"0", 2},
		{"-1", 2},
		{"3", 2},
		{"999", 2},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Number(tt.raw))
		})
	}
}

func TestPaginate(t *testing.T) {
	all := ints(14)
	p := New(len(all), 10)

	t.Run("first page", func(t *testing.T) {
		page, err := Paginate(p, "", sliceFetch(all))
		require.NoError(t, err)
		assert.Equal(t, 1, page.Number)
		assert.Equal(t, all[:10], page.Items)
		assert.True(t, page.HasNext())
		assert.False(t, page.HasPrevious())
		assert.True(t, page.HasOtherPages())
		assert.Equal(t, 2, page.NextPageNumber())
		assert.Equal(t, 0, page.PreviousPageNumber())
		assert.Equal(t, 1, page.StartIndex())
		assert.Equal(t, 10, page.EndIndex())
		assert.Equal(t, []int{1, 2}, page.PageRange())
	})

	t.Run("second page", func(t *testing.T) {
		page, err := Paginate(p, "2", sliceFetch(all))
		require.NoError(t, err)
		assert.Equal(t, all[10:], page.Items)
		assert.False(t, page.HasNext())
		assert.Equal(t, 0, page.NextPageNumber())
		assert.Equal(t, 1, page.PreviousPageNumber())
		assert.Equal(t, 11, page.StartIndex())
		assert.Equal(t, 14, page.EndIndex())
	})

	t.Run("empty listing", func(t *testing.T) {
		page, err := Paginate(New(0, 10), "5", sliceFetch(nil))
		require.NoError(t, err)
		assert.Equal(t, 1, page.Number)
		assert.Empty(t, page.Items)
		assert.False(t, page.HasOtherPages())
		assert.Equal(t, 0, page.StartIndex())
		assert.Equal(t, 0, page.EndIndex())
	})

	t.Run("fetch error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Paginate(p, "1", func(limit, offset int) ([]int, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	})
}
