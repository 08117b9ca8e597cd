// Package clients implements the consumer side of the inventory API: a state
// controller holding the current filter selection and the last fetched
// results, with a server-is-truth consistency model. State is never merged
// optimistically; every mutation is followed by a full refetch of both the
// list and the statistics.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/ekenna/bookvault/data"
	"github.com/ekenna/bookvault/data/dto"
	"golang.org/x/sync/errgroup"
)

// FilterState is the current filter/sort selection.
type FilterState struct {
	Search    string
	Genre     string
	Author    string
	SortBy    string
	SortOrder string
}

// APIError is a failure envelope returned by the inventory API.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inventory API: %d %s", e.StatusCode, e.Message)
}

type listResponse struct {
	Success         bool        `json:"success"`
	Count           int         `json:"count"`
	TotalBooks      int64       `json:"totalBooks"`
	OutOfStockBooks int64       `json:"outOfStockBooks"`
	Data            []data.Book `json:"data"`
	Message         string      `json:"message"`
	Errors          []string    `json:"errors"`
}

type statsResponse struct {
	Success bool       `json:"success"`
	Data    data.Stats `json:"data"`
	Message string     `json:"message"`
	Errors  []string   `json:"errors"`
}

type bookResponse struct {
	Success bool      `json:"success"`
	Data    data.Book `json:"data"`
	Message string    `json:"message"`
	Errors  []string  `json:"errors"`
}

// Inventory is a client for the inventory API. It keeps the last successful
// server responses as its state. A change to the filter state issues exactly
// one list fetch. Overlapping list fetches are ordered by a monotonically
// increasing generation token and responses older than the newest applied one
// are discarded.
type Inventory struct {
	baseURL string
	client  *http.Client

	mu         sync.Mutex
	filter     FilterState
	records    []data.Book
	totalBooks int64
	outOfStock int64
	stats      data.Stats
	inflight   int
	issued     uint64
	applied    uint64
}

// NewInventory creates an inventory client for the API at baseURL, e.g.
// "http://localhost:5000".
func NewInventory(baseURL string) *Inventory {
	return &Inventory{
		baseURL: baseURL,
		client:  NewHTTPClient(),
	}
}

// SetFilter replaces the filter state and issues one list fetch for it.
func (inv *Inventory) SetFilter(ctx context.Context, filter FilterState) error {
	inv.mu.Lock()
	inv.filter = filter
	inv.mu.Unlock()
	return inv.refreshList(ctx)
}

// Filter returns the current filter state.
func (inv *Inventory) Filter() FilterState {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.filter
}

// Records returns the last fetched result set.
func (inv *Inventory) Records() []data.Book {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	records := make([]data.Book, len(inv.records))
	copy(records, inv.records)
	return records
}

// Counts returns the unfiltered total and out-of-stock counts from the last
// list response.
func (inv *Inventory) Counts() (totalBooks, outOfStockBooks int64) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.totalBooks, inv.outOfStock
}

// Stats returns the last fetched aggregate statistics.
func (inv *Inventory) Stats() data.Stats {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.stats
}

// Loading reports whether any fetch is in flight.
func (inv *Inventory) Loading() bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.inflight > 0
}

// Refresh refetches the list and the statistics concurrently.
func (inv *Inventory) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return inv.refreshList(ctx) })
	g.Go(func() error { return inv.refreshStats(ctx) })
	return g.Wait()
}

// refreshList fetches the list for the current filter state. The generation
// token taken before the request decides whether the response may still be
// applied once it arrives.
func (inv *Inventory) refreshList(ctx context.Context) error {
	inv.mu.Lock()
	inv.issued++
	gen := inv.issued
	filter := inv.filter
	inv.inflight++
	inv.mu.Unlock()
	defer func() {
		inv.mu.Lock()
		inv.inflight--
		inv.mu.Unlock()
	}()

	qs := url.Values{}
	if filter.Search != "" {
		qs.Set("search", filter.Search)
	}
	if filter.Genre != "" {
		qs.Set("genre", filter.Genre)
	}
	if filter.Author != "" {
		qs.Set("author", filter.Author)
	}
	if filter.SortBy != "" {
		qs.Set("sortBy", filter.SortBy)
	}
	if filter.SortOrder != "" {
		qs.Set("sortOrder", filter.SortOrder)
	}
	endpoint := inv.baseURL + "/api/books"
	if len(qs) > 0 {
		endpoint += "?" + qs.Encode()
	}
	var response listResponse
	if err := inv.do(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if gen <= inv.applied {
		// A newer response already landed; this one is stale.
		return nil
	}
	inv.applied = gen
	inv.records = response.Data
	inv.totalBooks = response.TotalBooks
	inv.outOfStock = response.OutOfStockBooks
	return nil
}

// refreshStats fetches the full aggregate statistics.
func (inv *Inventory) refreshStats(ctx context.Context) error {
	var response statsResponse
	err := inv.do(ctx, http.MethodGet, inv.baseURL+"/api/books/stats", nil, &response)
	if err != nil {
		return err
	}
	inv.mu.Lock()
	inv.stats = response.Data
	inv.mu.Unlock()
	return nil
}

// Genres fetches the distinct genres currently present.
func (inv *Inventory) Genres(ctx context.Context) ([]string, error) {
	var response struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	err := inv.do(ctx, http.MethodGet, inv.baseURL+"/api/books/genres", nil, &response)
	if err != nil {
		return nil, err
	}
	return response.Data, nil
}

// CreateBook creates a book and refetches the list and the statistics.
func (inv *Inventory) CreateBook(ctx context.Context, requestBody dto.CreateBookRequestBody) (*data.Book, error) {
	var response bookResponse
	err := inv.do(ctx, http.MethodPost, inv.baseURL+"/api/books", requestBody, &response)
	if err != nil {
		return nil, err
	}
	if err := inv.Refresh(ctx); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// UpdateBook applies a partial update to a book and refetches the list and
// the statistics.
func (inv *Inventory) UpdateBook(ctx context.Context, bookID int64, requestBody dto.UpdateBookRequestBody) (*data.Book, error) {
	endpoint := fmt.Sprintf("%s/api/books/%d", inv.baseURL, bookID)
	var response bookResponse
	err := inv.do(ctx, http.MethodPut, endpoint, requestBody, &response)
	if err != nil {
		return nil, err
	}
	if err := inv.Refresh(ctx); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// DeleteBook deletes a book, returns the deleted record and refetches the
// list and the statistics.
func (inv *Inventory) DeleteBook(ctx context.Context, bookID int64) (*data.Book, error) {
	endpoint := fmt.Sprintf("%s/api/books/%d", inv.baseURL, bookID)
	var response bookResponse
	err := inv.do(ctx, http.MethodDelete, endpoint, nil, &response)
	if err != nil {
		return nil, err
	}
	if err := inv.Refresh(ctx); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// do issues a request with an optional JSON body and decodes the response
// envelope into dst. Failure envelopes become an *APIError.
func (inv *Inventory) do(ctx context.Context, method, endpoint string, body interface{}, dst interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(js)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := inv.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		// A non-JSON failure body still yields a usable APIError.
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    failure.Message,
			Errors:     failure.Errors,
		}
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
