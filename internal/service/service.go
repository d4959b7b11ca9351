package service

import (
	"context"
	"time"

	"library-lending-backend/internal/domain"
)

type AuthService interface {
	// Login returns the authenticated user plus access and refresh tokens.
	Login(ctx context.Context, username, password string) (*domain.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type UserService interface {
	// Register creates a self-serve account. Staff roles cannot be
	// self-registered; use CreateUser for those.
	Register(ctx context.Context, username, email, password, fullName string, role domain.Role, membershipType string) (*domain.User, error)
	// CreateUser creates an account with any role on behalf of staff.
	CreateUser(ctx context.Context, actorID int64, user *domain.User, password string) error
	GetProfile(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, actorID, userID int64, email, fullName, membershipType string) (*domain.User, error)
	Suspend(ctx context.Context, actorID, userID int64) error
	Reactivate(ctx context.Context, actorID, userID int64) error
	// Delete soft-deletes the account. It fails with a conflict while the
	// user still has open loans.
	Delete(ctx context.Context, actorID, userID int64) error
	List(ctx context.Context, actorID int64, role domain.Role, page, pageSize int) ([]domain.User, int64, error)
}

type CatalogService interface {
	CreateBook(ctx context.Context, actorID int64, book *domain.Book) error
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	// AuthorizeBookEdit checks edit rights on the book before any write
	// begins and returns the current catalog entry.
	AuthorizeBookEdit(ctx context.Context, actorID, bookID int64) (*domain.Book, error)
	UpdateBook(ctx context.Context, actorID int64, book *domain.Book) error
	// DeleteBook removes a book with no open loans. With archive set, the
	// book and its loan history are snapshotted to the archive tables first.
	DeleteBook(ctx context.Context, actorID, bookID int64, archive bool) error
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int64, error)
	AddCopy(ctx context.Context, actorID int64, copy *domain.BookCopy) error
	ListCopies(ctx context.Context, bookID int64) ([]domain.BookCopy, error)
}

type LoanService interface {
	// RequestBorrow places a pending request and holds one copy of the book.
	RequestBorrow(ctx context.Context, actorID, bookID int64) (*domain.Loan, error)
	Approve(ctx context.Context, actorID, loanID int64) (*domain.Loan, error)
	Reject(ctx context.Context, actorID, loanID int64) (*domain.Loan, error)
	// Cancel withdraws a still-pending request. The borrower may cancel
	// their own request; staff may cancel any.
	Cancel(ctx context.Context, actorID, loanID int64) (*domain.Loan, error)
	// Handover records the physical pickup of an approved loan.
	Handover(ctx context.Context, actorID, loanID int64) (*domain.Loan, error)
	// Return closes a borrowed loan, fixes the fine and releases the copy.
	Return(ctx context.Context, actorID, loanID int64) (*domain.Loan, error)
	GetLoan(ctx context.Context, actorID int64, loanID int64) (*domain.Loan, error)
	ListMyLoans(ctx context.Context, actorID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error)
	// ListLendings returns loans on books the actor owns.
	ListLendings(ctx context.Context, actorID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error)
}

type ReadingService interface {
	MarkAsRead(ctx context.Context, actorID, bookID int64) (*domain.ReadingEntry, error)
	History(ctx context.Context, actorID int64) ([]domain.ReadingEntry, error)
}

type EmailService interface {
	SendBorrowRequestNotification(ctx context.Context, to, ownerName, borrowerName, bookTitle string) error
	SendLoanDecisionNotification(ctx context.Context, to, borrowerName, bookTitle string, approved bool) error
	SendDueReminder(ctx context.Context, to, borrowerName, bookTitle string, dueDate time.Time) error
	SendOverdueNotice(ctx context.Context, to, borrowerName, bookTitle string, daysLate int, fineCents int64) error
	SendAccountStatusNotification(ctx context.Context, to, name string, status domain.UserStatus) error
}
