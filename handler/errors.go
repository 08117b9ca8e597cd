package handler

import (
	"fmt"
	"net/http"

	"github.com/ekenna/bookvault/service"
)

func (h *Handler) logError(r *http.Request, err error) {
	h.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	})
}

// errorResponse writes a failure envelope. Every failure carries a message;
// validation failures additionally carry one message per violated field.
func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, errs []string) {
	env := envelope{"success": false, "message": message}
	if len(errs) > 0 {
		env["errors"] = errs
	}
	err := h.encodeJSON(w, status, env, nil)
	if err != nil {
		h.logError(r, err)
		w.WriteHeader(500)
	}
}

func (h *Handler) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	// Internal detail is only echoed back outside production.
	if h.config.Server.Env != "production" {
		h.errorResponse(w, r, http.StatusInternalServerError, message, []string{err.Error()})
		return
	}
	h.errorResponse(w, r, http.StatusInternalServerError, message, nil)
}

func (h *Handler) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "book not found"
	h.errorResponse(w, r, http.StatusNotFound, message, nil)
}

func (h *Handler) routeNotFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("route %s not found", r.URL.Path)
	h.errorResponse(w, r, http.StatusNotFound, message, nil)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	h.errorResponse(w, r, http.StatusMethodNotAllowed, message, nil)
}

func (h *Handler) invalidIDResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid book ID"
	h.errorResponse(w, r, http.StatusBadRequest, message, nil)
}

func (h *Handler) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (h *Handler) failedValidationResponse(w http.ResponseWriter, r *http.Request, vErr *service.ValidationError) {
	h.errorResponse(w, r, http.StatusBadRequest, "validation error", vErr.Messages())
}

func (h *Handler) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "unable to update the record due to an edit conflict, please try again"
	h.errorResponse(w, r, http.StatusConflict, message, nil)
}

func (h *Handler) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	h.errorResponse(w, r, http.StatusTooManyRequests, message, nil)
}

func (h *Handler) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid authentication credentials"
	h.errorResponse(w, r, http.StatusUnauthorized, message, nil)
}
