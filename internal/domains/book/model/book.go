package model

import (
	"strings"
	"time"
)

// Genre is the fixed set of allowed book genres.
type Genre string

const (
	GenreFiction        Genre = "Fiction"
	GenreNonFiction     Genre = "Non-Fiction"
	GenreScienceFiction Genre = "Science Fiction"
	GenreFantasy        Genre = "Fantasy"
	GenreMystery        Genre = "Mystery"
	GenreThriller       Genre = "Thriller"
	GenreRomance        Genre = "Romance"
	GenreHorror         Genre = "Horror"
	GenreBiography      Genre = "Biography"
	GenreHistory        Genre = "History"
	GenreScience        Genre = "Science"
	GenrePoetry         Genre = "Poetry"
	GenreDrama          Genre = "Drama"
	GenreChildren       Genre = "Children"
)

func (g Genre) IsValid() bool {
	switch g {
	case GenreFiction, GenreNonFiction, GenreScienceFiction, GenreFantasy,
		GenreMystery, GenreThriller, GenreRomance, GenreHorror,
		GenreBiography, GenreHistory, GenreScience, GenrePoetry,
		GenreDrama, GenreChildren:
		return true
	}
	return false
}

func (g Genre) String() string {
	return string(g)
}

// AllGenres returns the allowed genres in a stable order, for error
// messages.
func AllGenres() []string {
	return []string{
		"Biography", "Children", "Drama", "Fantasy", "Fiction", "History",
		"Horror", "Mystery", "Non-Fiction", "Poetry", "Romance", "Science",
		"Science Fiction", "Thriller",
	}
}

// Book is the catalog entity. BookID and the timestamps are assigned by
// the store; BookID is immutable after creation.
type Book struct {
	BookID          int       `json:"book_id" db:"book_id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	YearPublication int       `json:"year_publication" db:"year_publication"`
	Genre           string    `json:"genre" db:"genre"`
	NumberPages     int       `json:"number_pages" db:"number_pages"`
	ISBN            *string   `json:"isbn" db:"isbn"`
	Accessibility   bool      `json:"accessibility" db:"accessibility"`
	Description     *string   `json:"description" db:"description"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeSpace collapses runs of whitespace into single spaces and trims
// the ends. Applied to title, author and genre before validation.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
