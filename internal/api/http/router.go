// Package http exposes the REST API. All mutating endpoints run behind the
// JWT auth middleware; the services decide per-role what the caller may do.
package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"library-lending-backend/internal/security"
	"library-lending-backend/internal/service"
	"library-lending-backend/internal/storage"
)

type RouterConfig struct {
	AuthSvc        service.AuthService
	UserSvc        service.UserService
	CatalogSvc     service.CatalogService
	LoanSvc        service.LoanService
	ReadingSvc     service.ReadingService
	Tokens         security.TokenManager
	CoverStore     storage.Storage
	MaxCoverSizeMB int64
}

func NewRouter(cfg RouterConfig) *mux.Router {
	authHandler := NewAuthHandler(cfg.AuthSvc, cfg.UserSvc)
	userHandler := NewUserHandler(cfg.UserSvc)
	bookHandler := NewBookHandler(cfg.CatalogSvc)
	loanHandler := NewLoanHandler(cfg.LoanSvc)
	readingHandler := NewReadingHandler(cfg.ReadingSvc)
	coverHandler := NewCoverHandler(cfg.CatalogSvc, cfg.CoverStore, cfg.MaxCoverSizeMB)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public endpoints
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondStatus(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)

	// Authenticated endpoints
	auth := api.NewRoute().Subrouter()
	auth.Use(AuthMiddleware(cfg.Tokens))

	auth.HandleFunc("/users/me", userHandler.Me).Methods(http.MethodGet)
	auth.HandleFunc("/users", userHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	auth.HandleFunc("/users/{id:[0-9]+}", userHandler.Update).Methods(http.MethodPut)
	auth.HandleFunc("/users/{id:[0-9]+}", userHandler.Delete).Methods(http.MethodDelete)
	auth.HandleFunc("/users/{id:[0-9]+}/suspend", userHandler.Suspend).Methods(http.MethodPost)
	auth.HandleFunc("/users/{id:[0-9]+}/reactivate", userHandler.Reactivate).Methods(http.MethodPost)

	auth.HandleFunc("/books", bookHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/books", bookHandler.List).Methods(http.MethodGet)
	auth.HandleFunc("/books/{id:[0-9]+}", bookHandler.Get).Methods(http.MethodGet)
	auth.HandleFunc("/books/{id:[0-9]+}", bookHandler.Update).Methods(http.MethodPut)
	auth.HandleFunc("/books/{id:[0-9]+}", bookHandler.Delete).Methods(http.MethodDelete)
	auth.HandleFunc("/books/{id:[0-9]+}/copies", bookHandler.AddCopy).Methods(http.MethodPost)
	auth.HandleFunc("/books/{id:[0-9]+}/copies", bookHandler.ListCopies).Methods(http.MethodGet)
	auth.HandleFunc("/books/{id:[0-9]+}/cover", coverHandler.Upload).Methods(http.MethodPost)
	auth.HandleFunc("/books/{id:[0-9]+}/cover", coverHandler.Download).Methods(http.MethodGet)

	auth.HandleFunc("/loans", loanHandler.Request).Methods(http.MethodPost)
	auth.HandleFunc("/loans/mine", loanHandler.ListMine).Methods(http.MethodGet)
	auth.HandleFunc("/loans/lendings", loanHandler.ListLendings).Methods(http.MethodGet)
	auth.HandleFunc("/loans/{id:[0-9]+}", loanHandler.Get).Methods(http.MethodGet)
	auth.HandleFunc("/loans/{id:[0-9]+}/approve", loanHandler.Approve).Methods(http.MethodPost)
	auth.HandleFunc("/loans/{id:[0-9]+}/reject", loanHandler.Reject).Methods(http.MethodPost)
	auth.HandleFunc("/loans/{id:[0-9]+}/cancel", loanHandler.Cancel).Methods(http.MethodPost)
	auth.HandleFunc("/loans/{id:[0-9]+}/handover", loanHandler.Handover).Methods(http.MethodPost)
	auth.HandleFunc("/loans/{id:[0-9]+}/return", loanHandler.Return).Methods(http.MethodPost)

	auth.HandleFunc("/reading", readingHandler.Mark).Methods(http.MethodPost)
	auth.HandleFunc("/reading", readingHandler.History).Methods(http.MethodGet)

	return r
}
