package http

import (
	"io"
	"net/http"
	"os"
	"strings"

	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/service"
	"library-lending-backend/internal/storage"
)

type CoverHandler struct {
	catalogSvc  service.CatalogService
	store       storage.Storage
	maxFileSize int64
}

func NewCoverHandler(catalogSvc service.CatalogService, store storage.Storage, maxFileSizeMB int64) *CoverHandler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 5
	}
	return &CoverHandler{
		catalogSvc:  catalogSvc,
		store:       store,
		maxFileSize: maxFileSizeMB << 20,
	}
}

// Upload stores a new cover image for the book and records its key on the
// catalog entry. The edit check runs before the file store is touched, so a
// forbidden caller never leaves a file behind.
func (h *CoverHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid book id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondStatus(w, http.StatusBadRequest, "cover image too large or malformed")
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		respondStatus(w, http.StatusBadRequest, "cover file is required")
		return
	}
	defer file.Close()

	key, err := storage.NewCoverKey(header.Header.Get("Content-Type"))
	if err != nil {
		respondStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.catalogSvc.AuthorizeBookEdit(r.Context(), actorID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.store.Save(r.Context(), key, file); err != nil {
		logger.Error("Failed to store cover image", "book_id", id, "error", err)
		respondStatus(w, http.StatusInternalServerError, "failed to store cover image")
		return
	}

	previous := book.CoverImage
	book.CoverImage = key
	if err := h.catalogSvc.UpdateBook(r.Context(), actorID(r), book); err != nil {
		// Roll the orphaned file back so the catalog and storage agree.
		if delErr := h.store.Delete(r.Context(), key); delErr != nil {
			logger.Warn("Failed to remove orphaned cover", "key", key, "error", delErr)
		}
		respondError(w, err)
		return
	}
	if previous != "" && previous != key {
		if err := h.store.Delete(r.Context(), previous); err != nil {
			logger.Warn("Failed to remove replaced cover", "key", previous, "error", err)
		}
	}

	respondOK(w, map[string]string{"cover_image": key})
}

func (h *CoverHandler) Download(w http.ResponseWriter, r *http.Request) {
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
	if book.CoverImage == "" {
		respondStatus(w, http.StatusNotFound, "book has no cover image")
		return
	}

	reader, err := h.store.Open(r.Context(), book.CoverImage)
	if err != nil {
		if os.IsNotExist(err) {
			respondStatus(w, http.StatusNotFound, "cover image is missing from storage")
			return
		}
		logger.Error("Failed to open cover image", "book_id", id, "error", err)
		respondStatus(w, http.StatusInternalServerError, "failed to read cover image")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", coverContentType(book.CoverImage))
	if _, err := io.Copy(w, reader); err != nil {
		logger.Warn("Failed to stream cover image", "book_id", id, "error", err)
	}
}

func coverContentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
