package model

import (
	"crypto/md5"
	"fmt"
)

// Cache key layout. Detail keys are per-id; list keys hash the normalized
// filter so equivalent filters always map to the same key regardless of
// how the parameters arrived.
const (
	ListCachePattern = "books:list:*"
)

func BookDetailCacheKey(id int) string {
	return fmt.Sprintf("books:detail:%d", id)
}

func BookListCacheKey(f Filter) string {
	f = f.Normalize()

	year := ""
	if f.YearPublication != nil {
		year = fmt.Sprintf("%d", *f.YearPublication)
	}

	material := fmt.Sprintf("author=%s|genre=%s|year=%s", f.Author, f.Genre, year)
	return fmt.Sprintf("books:list:%x", md5.Sum([]byte(material)))
}
