// Package dto defines the request bodies and query string inputs accepted by
// the API.
package dto

import "github.com/ekenna/bookvault/data"

// CreateBookRequestBody is the body for creating a book. Price is a pointer
// so that a missing price can be told apart from a zero price.
type CreateBookRequestBody struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Genre         string   `json:"genre"`
	Price         *float64 `json:"price"`
	Stock         *int64   `json:"stock"`
	PublishedYear *int32   `json:"publishedYear"`
}

// UpdateBookRequestBody is the body for a partial update. Only non-nil fields
// are applied to the stored record.
type UpdateBookRequestBody struct {
	Title         *string  `json:"title"`
	Author        *string  `json:"author"`
	Genre         *string  `json:"genre"`
	Price         *float64 `json:"price"`
	Stock         *int64   `json:"stock"`
	PublishedYear *int32   `json:"publishedYear"`
}

// QsListBooks holds the parsed query string of the list endpoint.
type QsListBooks struct {
	Search  string
	Genre   string
	Author  string
	Filters data.Filters
}
