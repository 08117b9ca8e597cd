package service_test

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ekenna/bookvault/config"
	"github.com/ekenna/bookvault/data"
	"github.com/ekenna/bookvault/data/dto"
	"github.com/ekenna/bookvault/internal/jsonlog"
	"github.com/ekenna/bookvault/repository"
	"github.com/ekenna/bookvault/service"
)

// fakeRepo is an in-memory stand-in for the Postgres repository. It mirrors
// the store's query semantics: contains matching, AND-combined predicates,
// sort fallback and count-descending genre aggregation with insertion-order
// tie-break.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	books  map[int64]*data.Book
	order  []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{books: make(map[int64]*data.Book)}
}

func (f *fakeRepo) CreateBook(book *data.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	book.ID = f.nextID
	book.CreatedAt = time.Now().UTC()
	book.Version = 1
	stored := *book
	f.books[book.ID] = &stored
	f.order = append(f.order, book.ID)
	return nil
}

func (f *fakeRepo) GetBook(bookID int64) (*data.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[bookID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	copied := *book
	return &copied, nil
}

func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

func (f *fakeRepo) GetAllBooks(search, genre, author string, filters data.Filters) ([]*data.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	books := []*data.Book{}
	for _, id := range f.order {
		book, ok := f.books[id]
		if !ok {
			continue
		}
		if search != "" && !containsFold(book.Title, search) && !containsFold(book.Author, search) && !containsFold(book.Genre, search) {
			continue
		}
		if genre != "" && !containsFold(book.Genre, genre) {
			continue
		}
		if author != "" && !containsFold(book.Author, author) {
			continue
		}
		copied := *book
		books = append(books, &copied)
	}
	asc := filters.SortDirection() == "ASC"
	column := filters.SortColumn()
	sort.SliceStable(books, func(i, j int) bool {
		var less bool
		switch column {
		case "title":
			less = books[i].Title < books[j].Title
		case "author":
			less = books[i].Author < books[j].Author
		case "genre":
			less = books[i].Genre < books[j].Genre
		case "price":
			less = books[i].Price < books[j].Price
		default:
			less = books[i].CreatedAt.Before(books[j].CreatedAt) ||
				(books[i].CreatedAt.Equal(books[j].CreatedAt) && books[i].ID < books[j].ID)
		}
		if asc {
			return less
		}
		return !less && !booksEqualByColumn(books[i], books[j], column)
	})
	return books, nil
}

func booksEqualByColumn(a, b *data.Book, column string) bool {
	switch column {
	case "title":
		return a.Title == b.Title
	case "author":
		return a.Author == b.Author
	case "genre":
		return a.Genre == b.Genre
	case "price":
		return a.Price == b.Price
	default:
		return a.CreatedAt.Equal(b.CreatedAt) && a.ID == b.ID
	}
}

func (f *fakeRepo) UpdateBook(book *data.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.books[book.ID]
	if !ok || stored.Version != book.Version {
		return repository.ErrEditConflict
	}
	book.Version++
	copied := *book
	f.books[book.ID] = &copied
	return nil
}

func (f *fakeRepo) DeleteBook(bookID int64) (*data.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[bookID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	delete(f.books, bookID)
	copied := *book
	return &copied, nil
}

func (f *fakeRepo) CountBooks() (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total, outOfStock int64
	for _, book := range f.books {
		total++
		if book.Stock == 0 {
			outOfStock++
		}
	}
	return total, outOfStock, nil
}

func (f *fakeRepo) GetStats() (*data.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &data.Stats{GenreStats: []data.GenreCount{}}
	counts := make(map[string]int64)
	firstSeen := make(map[string]int)
	for i, id := range f.order {
		book, ok := f.books[id]
		if !ok {
			continue
		}
		stats.TotalBooks++
		if book.Stock == 0 {
			stats.OutOfStockBooks++
		}
		stats.TotalValue += book.Price * float64(book.Stock)
		if _, seen := counts[book.Genre]; !seen {
			firstSeen[book.Genre] = i
		}
		counts[book.Genre]++
	}
	for genre, count := range counts {
		stats.GenreStats = append(stats.GenreStats, data.GenreCount{Genre: genre, Count: count})
	}
	sort.SliceStable(stats.GenreStats, func(i, j int) bool {
		if stats.GenreStats[i].Count != stats.GenreStats[j].Count {
			return stats.GenreStats[i].Count > stats.GenreStats[j].Count
		}
		return firstSeen[stats.GenreStats[i].Genre] < firstSeen[stats.GenreStats[j].Genre]
	})
	return stats, nil
}

func (f *fakeRepo) GetGenres() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	genres := []string{}
	for _, book := range f.books {
		if !seen[book.Genre] {
			seen[book.Genre] = true
			genres = append(genres, book.Genre)
		}
	}
	return genres, nil
}

func newTestService(repo repository.Repository) service.Service {
	var cfg config.Config
	var wg sync.WaitGroup
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	return service.New(cfg, &wg, logger, repo)
}

func ptrFloat(f float64) *float64 { return &f }
func ptrInt64(i int64) *int64     { return &i }
func ptrInt32(i int32) *int32     { return &i }
func ptrString(s string) *string  { return &s }

func TestCreateBook(t *testing.T) {
	t.Run("trims text fields and defaults stock", func(t *testing.T) {
		repo := newFakeRepo()
		s := newTestService(repo)
		book, err := s.CreateBook(dto.CreateBookRequestBody{
			Title:  "  Dune  ",
			Author: " Herbert ",
			Genre:  "Sci-Fi",
			Price:  ptrFloat(15.00),
		})
		if err != nil {
			t.Fatal(err)
		}
		if book.Title != "Dune" || book.Author != "Herbert" {
			t.Errorf("expected trimmed fields; got %q by %q", book.Title, book.Author)
		}
		if book.Stock != 0 {
			t.Errorf("expected stock to default to 0; got %d", book.Stock)
		}
		if book.ID == 0 || book.CreatedAt.IsZero() {
			t.Error("expected the store to assign id and createdAt")
		}
	})

	t.Run("round trip through list", func(t *testing.T) {
		repo := newFakeRepo()
		s := newTestService(repo)
		created, err := s.CreateBook(dto.CreateBookRequestBody{
			Title:         "Dune",
			Author:        "Herbert",
			Genre:         "Sci-Fi",
			Price:         ptrFloat(15.00),
			Stock:         ptrInt64(3),
			PublishedYear: ptrInt32(1965),
		})
		if err != nil {
			t.Fatal(err)
		}
		books, _, _, err := s.ListBooks(dto.QsListBooks{})
		if err != nil {
			t.Fatal(err)
		}
		if len(books) != 1 {
			t.Fatalf("expected 1 book; got %d", len(books))
		}
		got := books[0]
		if got.ID != created.ID || got.Title != "Dune" || got.Author != "Herbert" ||
			got.Genre != "Sci-Fi" || got.Price != 15.00 || got.Stock != 3 || got.PublishedYear != 1965 {
			t.Errorf("round-tripped record differs: %+v", got)
		}
	})

	t.Run("missing price is a validation failure", func(t *testing.T) {
		repo := newFakeRepo()
		s := newTestService(repo)
		_, err := s.CreateBook(dto.CreateBookRequestBody{
			Title:  "Dune",
			Author: "Herbert",
			Genre:  "Sci-Fi",
		})
		var vErr *service.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected a ValidationError; got %v", err)
		}
		if _, ok := vErr.Fields["price"]; !ok {
			t.Errorf("expected a price error; got %v", vErr.Fields)
		}
		if total, _, _ := repo.CountBooks(); total != 0 {
			t.Error("rejected create must not touch the store")
		}
	})

	t.Run("negative price is rejected not clamped", func(t *testing.T) {
		repo := newFakeRepo()
		s := newTestService(repo)
		_, err := s.CreateBook(dto.CreateBookRequestBody{
			Title:  "Dune",
			Author: "Herbert",
			Genre:  "Sci-Fi",
			Price:  ptrFloat(-5),
		})
		var vErr *service.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected a ValidationError; got %v", err)
		}
		if total, _, _ := repo.CountBooks(); total != 0 {
			t.Error("rejected create must not touch the store")
		}
	})

	t.Run("published year boundaries", func(t *testing.T) {
		repo := newFakeRepo()
		s := newTestService(repo)
		currentYear := int32(time.Now().Year())

		_, err := s.CreateBook(dto.CreateBookRequestBody{
			Title: "New Release", Author: "Someone", Genre: "Fiction",
			Price: ptrFloat(10), PublishedYear: ptrInt32(currentYear),
		})
		if err != nil {
			t.Errorf("the current year must be accepted; got %v", err)
		}

		_, err = s.CreateBook(dto.CreateBookRequestBody{
			Title: "From the Future", Author: "Someone", Genre: "Fiction",
			Price: ptrFloat(10), PublishedYear: ptrInt32(currentYear + 1),
		})
		var vErr *service.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected next year to be rejected; got %v", err)
		}
		if _, ok := vErr.Fields["publishedYear"]; !ok {
			t.Errorf("expected a publishedYear error; got %v", vErr.Fields)
		}
	})
}

func TestListBooks(t *testing.T) {
	seed := func(t *testing.T, s service.Service) {
		t.Helper()
		inputs := []dto.CreateBookRequestBody{
			{Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Price: ptrFloat(15), Stock: ptrInt64(0)},
			{Title: "Emma", Author: "Jane Austen", Genre: "Fiction", Price: ptrFloat(9), Stock: ptrInt64(4)},
			{Title: "Persuasion", Author: "Jane Austen", Genre: "Fiction", Price: ptrFloat(11), Stock: ptrInt64(2)},
		}
		for _, input := range inputs {
			if _, err := s.CreateBook(input); err != nil {
				t.Fatal(err)
			}
		}
	}

	t.Run("empty store", func(t *testing.T) {
		s := newTestService(newFakeRepo())
		books, total, outOfStock, err := s.ListBooks(dto.QsListBooks{})
		if err != nil {
			t.Fatal(err)
		}
		if len(books) != 0 || total != 0 || outOfStock != 0 {
			t.Errorf("expected all-zero list result; got %d/%d/%d", len(books), total, outOfStock)
		}
	})

	t.Run("counts are unfiltered", func(t *testing.T) {
		s := newTestService(newFakeRepo())
		seed(t, s)
		books, total, outOfStock, err := s.ListBooks(dto.QsListBooks{Genre: "fiction"})
		if err != nil {
			t.Fatal(err)
		}
		if len(books) != 2 {
			t.Errorf("expected 2 fiction books; got %d", len(books))
		}
		if total != 3 {
			t.Errorf("totalBooks must ignore the filter; got %d", total)
		}
		if outOfStock != 1 {
			t.Errorf("expected 1 out-of-stock book; got %d", outOfStock)
		}
	})

	t.Run("predicates AND-combine", func(t *testing.T) {
		s := newTestService(newFakeRepo())
		seed(t, s)
		books, _, _, err := s.ListBooks(dto.QsListBooks{Search: "austen", Genre: "Fiction", Author: "jane"})
		if err != nil {
			t.Fatal(err)
		}
		if len(books) != 2 {
			t.Errorf("expected both Austen novels; got %d", len(books))
		}
		books, _, _, err = s.ListBooks(dto.QsListBooks{Search: "austen", Genre: "Sci-Fi"})
		if err != nil {
			t.Fatal(err)
		}
		if len(books) != 0 {
			t.Errorf("conflicting predicates must match nothing; got %d", len(books))
		}
	})

	t.Run("sorting", func(t *testing.T) {
		s := newTestService(newFakeRepo())
		seed(t, s)
		books, _, _, err := s.ListBooks(dto.QsListBooks{
			Filters: data.Filters{SortBy: "price", SortOrder: "asc"},
		})
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(books); i++ {
			if books[i-1].Price > books[i].Price {
				t.Fatalf("expected ascending prices; got %v then %v", books[i-1].Price, books[i].Price)
			}
		}
	})
}

func TestUpdateBook(t *testing.T) {
	t.Run("partial update keeps unspecified fields", func(t *testing.T) {
		repo := newFakeRepo()
		s := newTestService(repo)
		created, err := s.CreateBook(dto.CreateBookRequestBody{
			Title: "Dune", Author: "Herbert", Genre: "Sci-Fi",
			Price: ptrFloat(15), Stock: ptrInt64(3), PublishedYear: ptrInt32(1965),
		})
		if err != nil {
			t.Fatal(err)
		}
		updated, err := s.UpdateBook(created.ID, dto.UpdateBookRequestBody{
			Price: ptrFloat(18.50),
		})
		if err != nil {
			t.Fatal(err)
		}
		if updated.Price != 18.50 {
			t.Errorf("expected updated price; got %v", updated.Price)
		}
		if updated.Title != "Dune" || updated.Author != "Herbert" || updated.Stock != 3 || updated.PublishedYear != 1965 {
			t.Errorf("unspecified fields changed: %+v", updated)
		}
		if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Error("id and createdAt must be immutable")
		}
	})

	t.Run("validation failure leaves stored record unchanged", func(t *testing.T) {
		repo := newFakeRepo()
		s := newTestService(repo)
		created, err := s.CreateBook(dto.CreateBookRequestBody{
			Title: "Dune", Author: "Herbert", Genre: "Sci-Fi", Price: ptrFloat(15),
		})
		if err != nil {
			t.Fatal(err)
		}
		_, err = s.UpdateBook(created.ID, dto.UpdateBookRequestBody{Price: ptrFloat(-5)})
		var vErr *service.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected a ValidationError; got %v", err)
		}
		if _, ok := vErr.Fields["price"]; !ok {
			t.Errorf("expected a price error; got %v", vErr.Fields)
		}
		stored, err := repo.GetBook(created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Price != 15 {
			t.Errorf("stored record must be unchanged; got price %v", stored.Price)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		s := newTestService(newFakeRepo())
		_, err := s.UpdateBook(42, dto.UpdateBookRequestBody{Title: ptrString("x")})
		if !errors.Is(err, service.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound; got %v", err)
		}
	})
}

func TestDeleteBook(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)
	created, err := s.CreateBook(dto.CreateBookRequestBody{
		Title: "Dune", Author: "Herbert", Genre: "Sci-Fi", Price: ptrFloat(15),
	})
	if err != nil {
		t.Fatal(err)
	}
	deleted, err := s.DeleteBook(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if deleted.ID != created.ID || deleted.Title != "Dune" {
		t.Errorf("expected the deleted record back; got %+v", deleted)
	}
	// Deleting again reports not-found rather than failing some other way.
	_, err = s.DeleteBook(created.ID)
	if !errors.Is(err, service.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound on second delete; got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)
	inputs := []dto.CreateBookRequestBody{
		{Title: "Emma", Author: "Austen", Genre: "Fiction", Price: ptrFloat(10), Stock: ptrInt64(2)},
		{Title: "Dune", Author: "Herbert", Genre: "Sci-Fi", Price: ptrFloat(15), Stock: ptrInt64(0)},
		{Title: "Persuasion", Author: "Austen", Genre: "Fiction", Price: ptrFloat(5), Stock: ptrInt64(1)},
	}
	for _, input := range inputs {
		if _, err := s.CreateBook(input); err != nil {
			t.Fatal(err)
		}
	}
	stats, err := s.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalBooks != 3 {
		t.Errorf("expected 3 books; got %d", stats.TotalBooks)
	}
	if stats.OutOfStockBooks != 1 {
		t.Errorf("expected 1 out-of-stock book; got %d", stats.OutOfStockBooks)
	}
	if want := 10*2.0 + 15*0.0 + 5*1.0; stats.TotalValue != want {
		t.Errorf("expected total value %v; got %v", want, stats.TotalValue)
	}
	if len(stats.GenreStats) != 2 {
		t.Fatalf("expected 2 genre buckets; got %d", len(stats.GenreStats))
	}
	if stats.GenreStats[0].Genre != "Fiction" || stats.GenreStats[0].Count != 2 {
		t.Errorf("expected Fiction(2) first; got %+v", stats.GenreStats[0])
	}
	if stats.GenreStats[1].Genre != "Sci-Fi" || stats.GenreStats[1].Count != 1 {
		t.Errorf("expected Sci-Fi(1) second; got %+v", stats.GenreStats[1])
	}
}

func TestGetStatsEmptyStore(t *testing.T) {
	s := newTestService(newFakeRepo())
	stats, err := s.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalBooks != 0 || stats.OutOfStockBooks != 0 || stats.TotalValue != 0 {
		t.Errorf("expected zero stats; got %+v", stats)
	}
	if len(stats.GenreStats) != 0 {
		t.Errorf("expected no genre buckets; got %v", stats.GenreStats)
	}
}

func TestGetGenres(t *testing.T) {
	s := newTestService(newFakeRepo())
	for _, input := range []dto.CreateBookRequestBody{
		{Title: "Emma", Author: "Austen", Genre: "Fiction", Price: ptrFloat(10)},
		{Title: "Persuasion", Author: "Austen", Genre: "Fiction", Price: ptrFloat(11)},
		{Title: "Dune", Author: "Herbert", Genre: "Sci-Fi", Price: ptrFloat(15)},
	} {
		if _, err := s.CreateBook(input); err != nil {
			t.Fatal(err)
		}
	}
	genres, err := s.GetGenres()
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(genres)
	want := []string{"Fiction", "Sci-Fi"}
	if len(genres) != len(want) || genres[0] != want[0] || genres[1] != want[1] {
		t.Errorf("expected %v; got %v", want, genres)
	}
}
