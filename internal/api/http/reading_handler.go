package http

import (
	"encoding/json"
	"net/http"

	"library-lending-backend/internal/service"
)

type ReadingHandler struct {
	readingSvc service.ReadingService
}

func NewReadingHandler(readingSvc service.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingSvc: readingSvc}
}

type markReadRequest struct {
	BookID int64 `json:"book_id"`
}

func (h *ReadingHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.BookID <= 0 {
		respondStatus(w, http.StatusBadRequest, "book_id is required")
		return
	}

	entry, err := h.readingSvc.MarkAsRead(r.Context(), actorID(r), req.BookID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, entry)
}

func (h *ReadingHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.readingSvc.History(r.Context(), actorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, entries)
}
