package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
)

// response is the JSON envelope every endpoint returns.
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Fields  interface{} `json:"fields,omitempty"`
}

// listMeta carries pagination info alongside list payloads.
type listMeta struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, response{Success: true, Data: data})
}

func respondList(w http.ResponseWriter, items interface{}, total int64, page, pageSize int) {
	respondOK(w, listMeta{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// respondError translates domain errors to HTTP statuses:
// validation 400, forbidden 403, not found 404, conflict 409, storage 503.
func respondError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, response{Message: "validation failed", Fields: ve.Fields})
		return
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		writeJSON(w, http.StatusConflict, response{Message: ce.Reason})
		return
	}

	// Forbidden and not-found errors carry caller-safe text built by the
	// services ("role borrower cannot delete books", "book 7: not found"),
	// so the message goes out as is.
	if errors.Is(err, domain.ErrForbidden) {
		writeJSON(w, http.StatusForbidden, response{Message: err.Error()})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, response{Message: err.Error()})
		return
	}

	if domain.IsStorage(err) {
		logger.Error("Storage failure", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, response{Message: "temporary storage failure, try again"})
		return
	}

	logger.Error("Unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, response{Message: "internal error"})
}

func respondStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: status < 400, Message: message})
}
