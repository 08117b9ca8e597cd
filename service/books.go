package service

import (
	"errors"
	"strings"

	"github.com/ekenna/bookvault/data"
	"github.com/ekenna/bookvault/data/dto"
	"github.com/ekenna/bookvault/internal/validator"
	"github.com/ekenna/bookvault/repository"
)

type books interface {
	CreateBook(requestBody dto.CreateBookRequestBody) (*data.Book, error)
	ListBooks(qs dto.QsListBooks) ([]*data.Book, int64, int64, error)
	UpdateBook(bookID int64, requestBody dto.UpdateBookRequestBody) (*data.Book, error)
	DeleteBook(bookID int64) (*data.Book, error)
	GetStats() (*data.Stats, error)
	GetGenres() ([]string, error)
}

// CreateBook service creates a new book. Text fields are trimmed and stock
// defaults to zero when omitted.
func (s *service) CreateBook(requestBody dto.CreateBookRequestBody) (*data.Book, error) {
	book := &data.Book{
		Title:  strings.TrimSpace(requestBody.Title),
		Author: strings.TrimSpace(requestBody.Author),
		Genre:  strings.TrimSpace(requestBody.Genre),
	}
	if requestBody.Price != nil {
		book.Price = *requestBody.Price
	}
	if requestBody.Stock != nil {
		book.Stock = *requestBody.Stock
	}
	if requestBody.PublishedYear != nil {
		book.PublishedYear = *requestBody.PublishedYear
	}
	v := validator.New()
	if requestBody.Price == nil {
		v.AddError("price", "must be provided")
	}
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err := s.repo.CreateBook(book)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ListBooks service retrieves a filtered, sorted list of books along with the
// unfiltered total and out-of-stock counts.
func (s *service) ListBooks(qs dto.QsListBooks) ([]*data.Book, int64, int64, error) {
	books, err := s.repo.GetAllBooks(qs.Search, qs.Genre, qs.Author, qs.Filters)
	if err != nil {
		return nil, 0, 0, err
	}
	total, outOfStock, err := s.repo.CountBooks()
	if err != nil {
		return nil, 0, 0, err
	}
	return books, total, outOfStock, nil
}

// UpdateBook service applies a partial update to a book. Only fields present
// in the request body change; the merged record is re-validated before it is
// written back.
func (s *service) UpdateBook(bookID int64, requestBody dto.UpdateBookRequestBody) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if requestBody.Title != nil {
		book.Title = strings.TrimSpace(*requestBody.Title)
	}
	if requestBody.Author != nil {
		book.Author = strings.TrimSpace(*requestBody.Author)
	}
	if requestBody.Genre != nil {
		book.Genre = strings.TrimSpace(*requestBody.Genre)
	}
	if requestBody.Price != nil {
		book.Price = *requestBody.Price
	}
	if requestBody.Stock != nil {
		book.Stock = *requestBody.Stock
	}
	if requestBody.PublishedYear != nil {
		book.PublishedYear = *requestBody.PublishedYear
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return book, nil
}

// DeleteBook service deletes a book and returns the deleted record.
func (s *service) DeleteBook(bookID int64) (*data.Book, error) {
	book, err := s.repo.DeleteBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// GetStats service computes the aggregate statistics over the collection.
func (s *service) GetStats() (*data.Stats, error) {
	return s.repo.GetStats()
}

// GetGenres service retrieves the distinct genres currently present.
func (s *service) GetGenres() ([]string, error) {
	return s.repo.GetGenres()
}
