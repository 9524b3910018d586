package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var isbnPattern = regexp.MustCompile(`^(?:\d{10}|\d{13})$`)

// CreateBookRequest is the payload for POST /books. Accessibility defaults
// to true when omitted.
type CreateBookRequest struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	YearPublication int     `json:"year_publication"`
	Genre           string  `json:"genre"`
	NumberPages     int     `json:"number_pages"`
	ISBN            *string `json:"isbn"`
	Accessibility   *bool   `json:"accessibility"`
	Description     *string `json:"description"`
}

// Normalize cleans string fields in place before validation.
func (r *CreateBookRequest) Normalize() {
	r.Title = NormalizeSpace(r.Title)
	r.Author = NormalizeSpace(r.Author)
	r.Genre = NormalizeSpace(r.Genre)
}

// Validate enforces the field constraints and the future-year rule.
func (r *CreateBookRequest) Validate() error {
	r.Normalize()

	err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.YearPublication, validation.Required,
			validation.Min(1000), validation.Max(time.Now().Year()+1)),
		validation.Field(&r.Genre, validation.Required, validation.By(genreRule)),
		validation.Field(&r.NumberPages, validation.Required,
			validation.Min(1), validation.Max(50000)),
		validation.Field(&r.ISBN, validation.NilOrNotEmpty,
			validation.Match(isbnPattern).Error("must be exactly 10 or 13 digits")),
		validation.Field(&r.Description, validation.Length(0, 5000)),
	)
	if err != nil {
		return err
	}

	// Books from the future cannot be marked available.
	if r.YearPublication > time.Now().Year() && r.AccessibilityOrDefault() {
		return ErrFutureBookAccessible
	}

	return nil
}

func (r *CreateBookRequest) AccessibilityOrDefault() bool {
	if r.Accessibility == nil {
		return true
	}
	return *r.Accessibility
}

// UpdateBookRequest is the payload for PUT /books/:id. Only fields present
// in the request are applied; everything else keeps its stored value.
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	YearPublication *int    `json:"year_publication"`
	Genre           *string `json:"genre"`
	NumberPages     *int    `json:"number_pages"`
	ISBN            *string `json:"isbn"`
	Accessibility   *bool   `json:"accessibility"`
	Description     *string `json:"description"`
}

func (r *UpdateBookRequest) Normalize() {
	if r.Title != nil {
		normalized := NormalizeSpace(*r.Title)
		r.Title = &normalized
	}
	if r.Author != nil {
		normalized := NormalizeSpace(*r.Author)
		r.Author = &normalized
	}
	if r.Genre != nil {
		normalized := NormalizeSpace(*r.Genre)
		r.Genre = &normalized
	}
}

func (r *UpdateBookRequest) Validate() error {
	r.Normalize()

	// Rules run on dereferenced values. ozzo's threshold and length rules
	// skip zero values, so a field the client explicitly set to its zero
	// value must still fail: Required carries that check.
	errs := validation.Errors{}

	if r.Title != nil {
		errs["title"] = validation.Validate(*r.Title,
			validation.Required, validation.Length(1, 500))
	}
	if r.Author != nil {
		errs["author"] = validation.Validate(*r.Author,
			validation.Required, validation.Length(1, 200))
	}
	if r.YearPublication != nil {
		errs["year_publication"] = validation.Validate(*r.YearPublication,
			validation.Required, validation.Min(1000), validation.Max(time.Now().Year()+1))
	}
	if r.Genre != nil {
		errs["genre"] = validation.Validate(*r.Genre,
			validation.Required, validation.By(genreRule))
	}
	if r.NumberPages != nil {
		errs["number_pages"] = validation.Validate(*r.NumberPages,
			validation.Required, validation.Min(1), validation.Max(50000))
	}
	if r.ISBN != nil {
		errs["isbn"] = validation.Validate(*r.ISBN,
			validation.Required, validation.Match(isbnPattern).Error("must be exactly 10 or 13 digits"))
	}
	if r.Description != nil {
		errs["description"] = validation.Validate(*r.Description,
			validation.Length(0, 5000))
	}

	if err := errs.Filter(); err != nil {
		return err
	}

	if r.YearPublication != nil && *r.YearPublication > time.Now().Year() &&
		r.Accessibility != nil && *r.Accessibility {
		return ErrFutureBookAccessible
	}

	return nil
}

// IsEmpty reports whether the update carries no fields at all.
func (r *UpdateBookRequest) IsEmpty() bool {
	return r.Title == nil && r.Author == nil && r.YearPublication == nil &&
		r.Genre == nil && r.NumberPages == nil && r.ISBN == nil &&
		r.Accessibility == nil && r.Description == nil
}

// Fields returns the column/value pairs present in the update, in a stable
// order, for the repository's partial UPDATE.
func (r *UpdateBookRequest) Fields() ([]string, []interface{}) {
	columns := []string{}
	values := []interface{}{}

	if r.Title != nil {
		columns = append(columns, "title")
		values = append(values, *r.Title)
	}
	if r.Author != nil {
		columns = append(columns, "author")
		values = append(values, *r.Author)
	}
	if r.YearPublication != nil {
		columns = append(columns, "year_publication")
		values = append(values, *r.YearPublication)
	}
	if r.Genre != nil {
		columns = append(columns, "genre")
		values = append(values, *r.Genre)
	}
	if r.NumberPages != nil {
		columns = append(columns, "number_pages")
		values = append(values, *r.NumberPages)
	}
	if r.ISBN != nil {
		columns = append(columns, "isbn")
		values = append(values, *r.ISBN)
	}
	if r.Accessibility != nil {
		columns = append(columns, "accessibility")
		values = append(values, *r.Accessibility)
	}
	if r.Description != nil {
		columns = append(columns, "description")
		values = append(values, *r.Description)
	}

	return columns, values
}

// Filter holds the optional equality predicates for list queries. Empty
// values impose no constraint; predicates combine with AND.
type Filter struct {
	Author          string
	Genre           string
	YearPublication *int
}

// Normalize cleans filter strings so equivalent filters hit the same cache
// key.
func (f Filter) Normalize() Filter {
	f.Author = NormalizeSpace(f.Author)
	f.Genre = NormalizeSpace(f.Genre)
	return f
}

// genreRule receives the indirected field value; ozzo hands it a string
// for both string and *string fields, or nil for an absent pointer.
func genreRule(value interface{}) error {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	if !Genre(s).IsValid() {
		return fmt.Errorf("must be one of: %s", strings.Join(AllGenres(), ", "))
	}
	return nil
}
