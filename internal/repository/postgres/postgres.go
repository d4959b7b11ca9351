package postgres

import (
	"database/sql"
	"errors"

	"library-lending-backend/internal/repository"

	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.BookRepository
	repository.LoanRepository
	repository.ReadingRepository
	repository.AuditRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		UserRepository:    NewUserRepository(db),
		BookRepository:    NewBookRepository(db),
		LoanRepository:    NewLoanRepository(db),
		ReadingRepository: NewReadingRepository(db),
		AuditRepository:   NewAuditRepository(db),
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
