package data

import (
	"time"

	"github.com/ekenna/bookvault/internal/validator"
)

// Book defines a book inventory record.
type Book struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	Price         float64   `json:"price"`
	Stock         int64     `json:"stock"`
	PublishedYear int32     `json:"publishedYear,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}

// ValidateBook checks every field constraint on a book record. Fields are
// expected to already be trimmed of surrounding whitespace.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 200, "title", "must not be more than 200 characters")
	v.Check(book.Author != "", "author", "must be provided")
	v.Check(len(book.Author) <= 100, "author", "must not be more than 100 characters")
	v.Check(book.Genre != "", "genre", "must be provided")
	v.Check(len(book.Genre) <= 50, "genre", "must not be more than 50 characters")
	v.Check(book.Price >= 0, "price", "must not be negative")
	v.Check(book.Stock >= 0, "stock", "must not be negative")
	if book.PublishedYear != 0 {
		v.Check(book.PublishedYear >= 1000, "publishedYear", "must be 1000 or later")
		v.Check(book.PublishedYear <= int32(time.Now().Year()), "publishedYear", "must not be in the future")
	}
}
