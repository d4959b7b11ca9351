package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/service"
)

type BookHandler struct {
	catalogSvc service.CatalogService
}

func NewBookHandler(catalogSvc service.CatalogService) *BookHandler {
	return &BookHandler{catalogSvc: catalogSvc}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, name, fallback string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		v = fallback
	}
	n, _ := strconv.Atoi(v)
	return n
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var book domain.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		respondStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.catalogSvc.CreateBook(r.Context(), actorID(r), &book); err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, book)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := h.catalogSvc.GetBook(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, book)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var book domain.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		respondStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	book.ID = id

	if err := h.catalogSvc.UpdateBook(r.Context(), actorID(r), &book); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, book)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid book id")
		return
	}

	// Deletions archive by default; ?archive=false skips the snapshot.
	archive := true
	if v := r.URL.Query().Get("archive"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondStatus(w, http.StatusBadRequest, "archive must be true or false")
			return
		}
		archive = parsed
	}

	if err := h.catalogSvc.DeleteBook(r.Context(), actorID(r), id, archive); err != nil {
		respondError(w, err)
		return
	}
	respondStatus(w, http.StatusOK, "book deleted")
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ownerID, _ := strconv.ParseInt(q.Get("owner_id"), 10, 64)
	filter := domain.BookFilter{
		Query:         q.Get("q"),
		Category:      q.Get("category"),
		OwnerID:       ownerID,
		AvailableOnly: q.Get("available") == "true",
		Page:          queryInt(r, "page", "1"),
		PageSize:      queryInt(r, "page_size", "20"),
	}

	books, total, err := h.catalogSvc.ListBooks(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, books, total, filter.Page, filter.PageSize)
}

func (h *BookHandler) AddCopy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var copy domain.BookCopy
	if err := json.NewDecoder(r.Body).Decode(&copy); err != nil {
		respondStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	copy.BookID = id

	if err := h.catalogSvc.AddCopy(r.Context(), actorID(r), &copy); err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, copy)
}

func (h *BookHandler) ListCopies(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid book id")
		return
	}

	copies, err := h.catalogSvc.ListCopies(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, copies)
}
