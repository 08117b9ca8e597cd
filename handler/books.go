package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ekenna/bookvault/data"
	"github.com/ekenna/bookvault/data/dto"
	"github.com/ekenna/bookvault/service"
)

// listBooksHandler returns the filtered, sorted book list along with the
// unfiltered total and out-of-stock counts.
func (h *Handler) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListBooks
	qs := r.URL.Query()
	qsInput.Search = h.readString(qs, "search", "")
	qsInput.Genre = h.readString(qs, "genre", "")
	qsInput.Author = h.readString(qs, "author", "")
	qsInput.Filters = data.Filters{
		SortBy:    h.readString(qs, "sortBy", "createdAt"),
		SortOrder: h.readString(qs, "sortOrder", "desc"),
	}
	books, total, outOfStock, err := h.service.ListBooks(qsInput)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	env := envelope{
		"success":         true,
		"count":           len(books),
		"totalBooks":      total,
		"outOfStockBooks": outOfStock,
		"data":            books,
	}
	err = h.encodeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showStatsHandler returns the aggregate statistics over the full collection.
func (h *Handler) showStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"success": true, "data": stats}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listGenresHandler returns the distinct genres currently present.
func (h *Handler) listGenresHandler(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.GetGenres()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"success": true, "data": genres}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateBookRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.CreateBook(requestBody)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			h.failedValidationResponse(w, r, vErr)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/books/%d", book.ID))
	env := envelope{"success": true, "message": "book added successfully", "data": book}
	err = h.encodeJSON(w, http.StatusCreated, env, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.invalidIDResponse(w, r)
		return
	}
	var requestBody dto.UpdateBookRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.UpdateBook(bookID, requestBody)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.As(err, &vErr):
			h.failedValidationResponse(w, r, vErr)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	env := envelope{"success": true, "message": "book updated successfully", "data": book}
	err = h.encodeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler deletes a book and returns the deleted record so clients
// can display what was removed.
func (h *Handler) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.invalidIDResponse(w, r)
		return
	}
	book, err := h.service.DeleteBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	env := envelope{"success": true, "message": "book deleted successfully", "data": book}
	err = h.encodeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
