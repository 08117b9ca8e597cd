package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ekenna/bookvault/data"
)

type books interface {
	CreateBook(book *data.Book) error
	GetBook(bookID int64) (*data.Book, error)
	GetAllBooks(search, genre, author string, filters data.Filters) ([]*data.Book, error)
	UpdateBook(book *data.Book) error
	DeleteBook(bookID int64) (*data.Book, error)
	CountBooks() (total int64, outOfStock int64, err error)
	GetStats() (*data.Stats, error)
	GetGenres() ([]string, error)
}

// CreateBook creates a new book record. The store assigns the id, the
// creation timestamp and the initial version.
func (r *repository) CreateBook(book *data.Book) error {
	query := `
		INSERT INTO books (title, author, genre, price, stock, published_year)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version`
	args := []interface{}{book.Title, book.Author, book.Genre, book.Price, book.Stock, book.PublishedYear}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.db.QueryRowContext(ctx, query, args...).Scan(&book.ID, &book.CreatedAt, &book.Version)
}

// GetBook retrieves a book record by its ID.
func (r *repository) GetBook(bookID int64) (*data.Book, error) {
	if bookID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, title, author, genre, price, stock, published_year, created_at, version
		FROM books
		WHERE id = $1`
	var book data.Book
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.Price,
		&book.Stock,
		&book.PublishedYear,
		&book.CreatedAt,
		&book.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetAllBooks retrieves a filtered, sorted list of book records. The search
// term matches when title, author or genre contains it, case-insensitively.
// The genre and author terms are separate contains predicates. Every supplied
// predicate must hold.
func (r *repository) GetAllBooks(search, genre, author string, filters data.Filters) ([]*data.Book, error) {
	query := fmt.Sprintf(`
		SELECT id, title, author, genre, price, stock, published_year, created_at, version
		FROM books
		WHERE (
			title ILIKE '%%' || $1 || '%%' OR
			author ILIKE '%%' || $1 || '%%' OR
			genre ILIKE '%%' || $1 || '%%' OR
			$1 = ''
		)
		AND (genre ILIKE '%%' || $2 || '%%' OR $2 = '')
		AND (author ILIKE '%%' || $3 || '%%' OR $3 = '')
		ORDER BY %s %s, id ASC`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{search, genre, author}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := []*data.Book{}
	for rows.Next() {
		var book data.Book
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Genre,
			&book.Price,
			&book.Stock,
			&book.PublishedYear,
			&book.CreatedAt,
			&book.Version,
		)
		if err != nil {
			return nil, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBook updates a book record. The id and created_at columns are never
// touched. Returns ErrEditConflict when the record changed under us.
func (r *repository) UpdateBook(book *data.Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, genre = $3, price = $4, stock = $5, published_year = $6, version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version`
	args := []interface{}{
		book.Title,
		book.Author,
		book.Genre,
		book.Price,
		book.Stock,
		book.PublishedYear,
		book.ID,
		book.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&book.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// DeleteBook deletes a book record and returns the deleted record so callers
// can display what was removed.
func (r *repository) DeleteBook(bookID int64) (*data.Book, error) {
	if bookID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		DELETE FROM books
		WHERE id = $1
		RETURNING id, title, author, genre, price, stock, published_year, created_at, version`
	var book data.Book
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.Price,
		&book.Stock,
		&book.PublishedYear,
		&book.CreatedAt,
		&book.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// CountBooks returns the unfiltered record count and the count of records
// with no stock.
func (r *repository) CountBooks() (int64, int64, error) {
	query := `
		SELECT count(*), count(*) FILTER (WHERE stock = 0)
		FROM books`
	var total, outOfStock int64
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query).Scan(&total, &outOfStock)
	if err != nil {
		return 0, 0, err
	}
	return total, outOfStock, nil
}

// GetStats computes the aggregate statistics over the full collection: record
// counts, total inventory value and per-genre counts ordered by count
// descending with ties broken by first insertion.
func (r *repository) GetStats() (*data.Stats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var stats data.Stats
	totalsQuery := `
		SELECT count(*), count(*) FILTER (WHERE stock = 0), COALESCE(SUM(price * stock), 0)
		FROM books`
	err := r.db.QueryRowContext(ctx, totalsQuery).Scan(&stats.TotalBooks, &stats.OutOfStockBooks, &stats.TotalValue)
	if err != nil {
		return nil, err
	}
	genresQuery := `
		SELECT genre, count(*)
		FROM books
		GROUP BY genre
		ORDER BY count(*) DESC, MIN(id) ASC`
	rows, err := r.db.QueryContext(ctx, genresQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stats.GenreStats = []data.GenreCount{}
	for rows.Next() {
		var gc data.GenreCount
		if err := rows.Scan(&gc.Genre, &gc.Count); err != nil {
			return nil, err
		}
		stats.GenreStats = append(stats.GenreStats, gc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetGenres retrieves the distinct genre strings currently present.
func (r *repository) GetGenres() ([]string, error) {
	query := `
		SELECT DISTINCT genre
		FROM books`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	genres := []string{}
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}
