package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"library-lending-backend/internal/domain"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockUserRepo) RecordLogin(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) List(ctx context.Context, role domain.Role, page, pageSize int) ([]domain.User, int64, error) {
	args := m.Called(ctx, role, page, pageSize)
	var users []domain.User
	if v := args.Get(0); v != nil {
		users = v.([]domain.User)
	}
	return users, args.Get(1).(int64), args.Error(2)
}

type MockBookRepo struct{ mock.Mock }

func (m *MockBookRepo) Create(ctx context.Context, b *domain.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookRepo) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*domain.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookRepo) Update(ctx context.Context, b *domain.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookRepo) Delete(ctx context.Context, id int64, archive bool) error {
	return m.Called(ctx, id, archive).Error(0)
}

func (m *MockBookRepo) List(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int64, error) {
	args := m.Called(ctx, filter)
	var books []domain.Book
	if v := args.Get(0); v != nil {
		books = v.([]domain.Book)
	}
	return books, args.Get(1).(int64), args.Error(2)
}

func (m *MockBookRepo) AddCopy(ctx context.Context, copy *domain.BookCopy) error {
	return m.Called(ctx, copy).Error(0)
}

func (m *MockBookRepo) ListCopies(ctx context.Context, bookID int64) ([]domain.BookCopy, error) {
	args := m.Called(ctx, bookID)
	var copies []domain.BookCopy
	if v := args.Get(0); v != nil {
		copies = v.([]domain.BookCopy)
	}
	return copies, args.Error(1)
}

type MockLoanRepo struct{ mock.Mock }

func (m *MockLoanRepo) CreateRequest(ctx context.Context, loan *domain.Loan) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanRepo) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*domain.Loan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepo) Transition(ctx context.Context, loan *domain.Loan, from domain.LoanStatus, release bool) error {
	return m.Called(ctx, loan, from, release).Error(0)
}

func (m *MockLoanRepo) ListByBorrower(ctx context.Context, userID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	var loans []domain.Loan
	if v := args.Get(0); v != nil {
		loans = v.([]domain.Loan)
	}
	return loans, args.Get(1).(int64), args.Error(2)
}

func (m *MockLoanRepo) ListByOwner(ctx context.Context, ownerID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	var loans []domain.Loan
	if v := args.Get(0); v != nil {
		loans = v.([]domain.Loan)
	}
	return loans, args.Get(1).(int64), args.Error(2)
}

func (m *MockLoanRepo) ListOverdue(ctx context.Context) ([]domain.Loan, error) {
	args := m.Called(ctx)
	var loans []domain.Loan
	if v := args.Get(0); v != nil {
		loans = v.([]domain.Loan)
	}
	return loans, args.Error(1)
}

func (m *MockLoanRepo) ListDueSoon(ctx context.Context, withinDays int) ([]domain.Loan, error) {
	args := m.Called(ctx, withinDays)
	var loans []domain.Loan
	if v := args.Get(0); v != nil {
		loans = v.([]domain.Loan)
	}
	return loans, args.Error(1)
}

func (m *MockLoanRepo) AccrueFines(ctx context.Context, dailyFineCents int64) (int64, error) {
	args := m.Called(ctx, dailyFineCents)
	return args.Get(0).(int64), args.Error(1)
}

type MockReadingRepo struct{ mock.Mock }

func (m *MockReadingRepo) MarkAsRead(ctx context.Context, userID, bookID int64) (*domain.ReadingEntry, error) {
	args := m.Called(ctx, userID, bookID)
	if e := args.Get(0); e != nil {
		return e.(*domain.ReadingEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReadingRepo) ListByUser(ctx context.Context, userID int64) ([]domain.ReadingEntry, error) {
	args := m.Called(ctx, userID)
	var entries []domain.ReadingEntry
	if v := args.Get(0); v != nil {
		entries = v.([]domain.ReadingEntry)
	}
	return entries, args.Error(1)
}

type MockAuditRepo struct{ mock.Mock }

func (m *MockAuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) SendBorrowRequestNotification(ctx context.Context, to, ownerName, borrowerName, bookTitle string) error {
	return m.Called(ctx, to, ownerName, borrowerName, bookTitle).Error(0)
}

func (m *MockEmailService) SendLoanDecisionNotification(ctx context.Context, to, borrowerName, bookTitle string, approved bool) error {
	return m.Called(ctx, to, borrowerName, bookTitle, approved).Error(0)
}

func (m *MockEmailService) SendDueReminder(ctx context.Context, to, borrowerName, bookTitle string, dueDate time.Time) error {
	return m.Called(ctx, to, borrowerName, bookTitle, dueDate).Error(0)
}

func (m *MockEmailService) SendOverdueNotice(ctx context.Context, to, borrowerName, bookTitle string, daysLate int, fineCents int64) error {
	return m.Called(ctx, to, borrowerName, bookTitle, daysLate, fineCents).Error(0)
}

func (m *MockEmailService) SendAccountStatusNotification(ctx context.Context, to, name string, status domain.UserStatus) error {
	return m.Called(ctx, to, name, status).Error(0)
}
