package repository

import (
	"context"

	"library-lending-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error
	RecordLogin(ctx context.Context, id int64) error
	// SoftDelete marks the account deleted. It fails with a conflict while
	// the user still has open loans.
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, role domain.Role, page, pageSize int) ([]domain.User, int64, error)
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
	// Update overwrites the mutable catalog fields of the book owned by
	// ownerID. Availability counters are never touched here.
	Update(ctx context.Context, book *domain.Book) error
	// Delete removes a book that has no open loans. When archive is set, the
	// book row and its loan rows are snapshotted to the archive tables inside
	// the same transaction.
	Delete(ctx context.Context, id int64, archive bool) error
	List(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int64, error)

	// AddCopy registers one physical unit and increments both availability
	// counters atomically. Duplicate copy numbers per book are a conflict.
	AddCopy(ctx context.Context, copy *domain.BookCopy) error
	ListCopies(ctx context.Context, bookID int64) ([]domain.BookCopy, error)
}

type LoanRepository interface {
	// CreateRequest inserts a pending loan and decrements the book's
	// available counter in one transaction. The decrement is conditional
	// (available_copies > 0) so two concurrent requests for the last copy
	// cannot both succeed.
	CreateRequest(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)
	// Transition moves the loan from its expected current status to the next
	// one, guarded by an affected-row check, and releases the held copy in
	// the same transaction when release is set.
	Transition(ctx context.Context, loan *domain.Loan, from domain.LoanStatus, release bool) error
	ListByBorrower(ctx context.Context, userID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error)
	ListOverdue(ctx context.Context) ([]domain.Loan, error)
	ListDueSoon(ctx context.Context, withinDays int) ([]domain.Loan, error)
	AccrueFines(ctx context.Context, dailyFineCents int64) (int64, error)
}

type ReadingRepository interface {
	// MarkAsRead inserts a reading mark; marking the same book twice is a
	// conflict.
	MarkAsRead(ctx context.Context, userID, bookID int64) (*domain.ReadingEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.ReadingEntry, error)
}

type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}
