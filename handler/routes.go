package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.routeNotFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/api/health", h.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/api/books", h.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/api/books", h.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/api/books/stats", h.showStatsHandler)
	router.HandlerFunc(http.MethodGet, "/api/books/genres", h.listGenresHandler)
	router.HandlerFunc(http.MethodPut, "/api/books/:bookId", h.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/api/books/:bookId", h.deleteBookHandler)

	if h.config.Metrics.Enabled {
		router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))
	}

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.recoverPanic(h.enableCORS(h.rateLimit(h.logRequest(h.metrics(router)))))
}
