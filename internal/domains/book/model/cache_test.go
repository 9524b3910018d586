package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookDetailCacheKey(t *testing.T) {
	assert.Equal(t, "books:detail:42", BookDetailCacheKey(42))
}

func TestBookListCacheKeyIsDeterministic(t *testing.T) {
	year := 1965
	a := BookListCacheKey(Filter{Author: "Frank Herbert", Genre: "Science Fiction", YearPublication: &year})
	b := BookListCacheKey(Filter{Author: "Frank Herbert", Genre: "Science Fiction", YearPublication: &year})
	assert.Equal(t, a, b)
}

func TestBookListCacheKeyNormalizesFilter(t *testing.T) {
	a := BookListCacheKey(Filter{Author: "  Frank   Herbert "})
	b := BookListCacheKey(Filter{Author: "Frank Herbert"})
	assert.Equal(t, a, b, "equivalent filters must share a key")
}

func TestBookListCacheKeyDistinguishesFilters(t *testing.T) {
	year := 1965
	keys := map[string]bool{}
	for _, key := range []string{
		BookListCacheKey(Filter{}),
		BookListCacheKey(Filter{Author: "Frank Herbert"}),
		BookListCacheKey(Filter{Genre: "Science Fiction"}),
		BookListCacheKey(Filter{YearPublication: &year}),
	} {
		keys[key] = true
	}
	assert.Len(t, keys, 4)
}

func TestBookListCacheKeyMatchesInvalidationPattern(t *testing.T) {
	key := BookListCacheKey(Filter{Author: "Frank Herbert"})
	assert.Regexp(t, `^books:list:[0-9a-f]{32}$`, key)
}
