package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"library-lending-backend/internal/config"
	"library-lending-backend/internal/domain"
)

var testRules = config.LendingConfig{
	LoanPeriodDays:        14,
	BorrowWindowStartHour: 17,
	BorrowWindowEndHour:   24,
	DailyFineCents:        50,
}

func newLoanServiceForTest(loanRepo *MockLoanRepo, bookRepo *MockBookRepo, userRepo *MockUserRepo, emailSvc *MockEmailService, at time.Time) *loanService {
	svc := NewLoanService(loanRepo, bookRepo, userRepo, emailSvc, testRules).(*loanService)
	svc.now = func() time.Time { return at }
	return svc
}

func TestLoanService_RequestBorrow(t *testing.T) {
	ctx := context.Background()
	evening := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

	borrower := &domain.User{ID: 2, FullName: "Ana Reader", Role: domain.RoleBorrower, Status: domain.UserStatusActive}
	owner := &domain.User{ID: 3, Email: "owner@lib.test", FullName: "Leo Lender", Role: domain.RoleLender, Status: domain.UserStatusActive}
	book := &domain.Book{ID: 5, OwnerID: 3, Title: "Dune"}

	t.Run("Success", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		emailSvc := new(MockEmailService)
		svc := newLoanServiceForTest(loanRepo, bookRepo, userRepo, emailSvc, evening)

		userRepo.On("GetByID", ctx, int64(2)).Return(borrower, nil).Once()
		loanRepo.On("CreateRequest", ctx, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.UserID == 2 && l.BookID == 5 &&
				l.Status == domain.LoanStatusPending &&
				l.DueDate.Equal(evening.AddDate(0, 0, 14))
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Loan).ID = 10
		}).Return(nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(book, nil).Once()
		userRepo.On("GetByID", ctx, int64(3)).Return(owner, nil).Once()
		emailSvc.On("SendBorrowRequestNotification", ctx, "owner@lib.test", "Leo Lender", "Ana Reader", "Dune").Return(nil).Once()

		loan, err := svc.RequestBorrow(ctx, 2, 5)
		assert.NoError(t, err)
		assert.Equal(t, int64(10), loan.ID)
		loanRepo.AssertExpectations(t)
		emailSvc.AssertExpectations(t)
	})

	t.Run("OutsideBorrowWindow", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		userRepo := new(MockUserRepo)
		morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		svc := newLoanServiceForTest(loanRepo, new(MockBookRepo), userRepo, new(MockEmailService), morning)

		userRepo.On("GetByID", ctx, int64(2)).Return(borrower, nil).Once()

		_, err := svc.RequestBorrow(ctx, 2, 5)
		assert.True(t, domain.IsConflict(err))
		loanRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})

	t.Run("SuspendedAccount", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(new(MockLoanRepo), new(MockBookRepo), userRepo, new(MockEmailService), evening)

		suspended := &domain.User{ID: 2, Role: domain.RoleBorrower, Status: domain.UserStatusSuspended}
		userRepo.On("GetByID", ctx, int64(2)).Return(suspended, nil).Once()

		_, err := svc.RequestBorrow(ctx, 2, 5)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("ReaderCannotBorrow", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(new(MockLoanRepo), new(MockBookRepo), userRepo, new(MockEmailService), evening)

		reader := &domain.User{ID: 4, Role: domain.RoleReader, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(4)).Return(reader, nil).Once()

		_, err := svc.RequestBorrow(ctx, 4, 5)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestLoanService_Approve(t *testing.T) {
	ctx := context.Background()
	evening := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	owner := &domain.User{ID: 3, Email: "owner@lib.test", Role: domain.RoleLender, Status: domain.UserStatusActive}
	borrower := &domain.User{ID: 2, Email: "ana@lib.test", FullName: "Ana Reader"}
	book := &domain.Book{ID: 5, OwnerID: 3, Title: "Dune"}

	t.Run("OwnerApproves", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		emailSvc := new(MockEmailService)
		svc := newLoanServiceForTest(loanRepo, bookRepo, userRepo, emailSvc, evening)

		loan := &domain.Loan{ID: 10, UserID: 2, BookID: 5, Status: domain.LoanStatusPending}
		userRepo.On("GetByID", ctx, int64(3)).Return(owner, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(book, nil).Twice()
		loanRepo.On("Transition", ctx, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.Status == domain.LoanStatusApproved
		}), domain.LoanStatusPending, false).Return(nil).Once()
		userRepo.On("GetByID", ctx, int64(2)).Return(borrower, nil).Once()
		emailSvc.On("SendLoanDecisionNotification", ctx, "ana@lib.test", "Ana Reader", "Dune", true).Return(nil).Once()

		got, err := svc.Approve(ctx, 3, 10)
		assert.NoError(t, err)
		assert.Equal(t, domain.LoanStatusApproved, got.Status)
		loanRepo.AssertExpectations(t)
	})

	t.Run("OtherLenderForbidden", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(loanRepo, bookRepo, userRepo, new(MockEmailService), evening)

		other := &domain.User{ID: 7, Role: domain.RoleLender, Status: domain.UserStatusActive}
		loan := &domain.Loan{ID: 10, UserID: 2, BookID: 5, Status: domain.LoanStatusPending}
		userRepo.On("GetByID", ctx, int64(7)).Return(other, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(book, nil).Once()

		_, err := svc.Approve(ctx, 7, 10)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(loanRepo, bookRepo, userRepo, new(MockEmailService), evening)

		loan := &domain.Loan{ID: 10, UserID: 2, BookID: 5, Status: domain.LoanStatusRejected}
		userRepo.On("GetByID", ctx, int64(3)).Return(owner, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(book, nil).Once()

		_, err := svc.Approve(ctx, 3, 10)
		assert.True(t, domain.IsConflict(err))
	})
}

func TestLoanService_Return(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)

	owner := &domain.User{ID: 3, Role: domain.RoleLender, Status: domain.UserStatusActive}
	book := &domain.Book{ID: 5, OwnerID: 3, Title: "Dune"}

	t.Run("OnTimeNoFine", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(loanRepo, bookRepo, userRepo, new(MockEmailService), now)

		loan := &domain.Loan{ID: 10, UserID: 2, BookID: 5, Status: domain.LoanStatusBorrowed, DueDate: now.AddDate(0, 0, 2)}
		userRepo.On("GetByID", ctx, int64(3)).Return(owner, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(book, nil).Once()
		loanRepo.On("Transition", ctx, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.Status == domain.LoanStatusReturned && l.FineAmountCents == 0 && l.ReturnDate != nil
		}), domain.LoanStatusBorrowed, true).Return(nil).Once()

		got, err := svc.Return(ctx, 3, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), got.FineAmountCents)
	})

	t.Run("LateAccruesFine", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(loanRepo, bookRepo, userRepo, new(MockEmailService), now)

		loan := &domain.Loan{ID: 10, UserID: 2, BookID: 5, Status: domain.LoanStatusBorrowed, DueDate: now.AddDate(0, 0, -3)}
		userRepo.On("GetByID", ctx, int64(3)).Return(owner, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(book, nil).Once()
		loanRepo.On("Transition", ctx, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.Status == domain.LoanStatusReturned && l.FineAmountCents == 150
		}), domain.LoanStatusBorrowed, true).Return(nil).Once()

		got, err := svc.Return(ctx, 3, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(150), got.FineAmountCents)
	})
}

func TestLoanService_Cancel(t *testing.T) {
	ctx := context.Background()
	evening := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	borrower := &domain.User{ID: 2, Role: domain.RoleBorrower, Status: domain.UserStatusActive}

	t.Run("PendingRequest", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(loanRepo, new(MockBookRepo), userRepo, new(MockEmailService), evening)

		loan := &domain.Loan{ID: 10, UserID: 2, BookID: 5, Status: domain.LoanStatusPending}
		userRepo.On("GetByID", ctx, int64(2)).Return(borrower, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()
		loanRepo.On("Transition", ctx, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.Status == domain.LoanStatusCancelled
		}), domain.LoanStatusPending, true).Return(nil).Once()

		_, err := svc.Cancel(ctx, 2, 10)
		assert.NoError(t, err)
	})

	t.Run("LibrarianCancelsAnyPending", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(loanRepo, new(MockBookRepo), userRepo, new(MockEmailService), evening)

		librarian := &domain.User{ID: 1, Role: domain.RoleLibrarian, Status: domain.UserStatusActive}
		loan := &domain.Loan{ID: 10, UserID: 2, BookID: 5, Status: domain.LoanStatusPending}
		userRepo.On("GetByID", ctx, int64(1)).Return(librarian, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()
		loanRepo.On("Transition", ctx, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.Status == domain.LoanStatusCancelled
		}), domain.LoanStatusPending, true).Return(nil).Once()

		_, err := svc.Cancel(ctx, 1, 10)
		assert.NoError(t, err)
	})

	t.Run("NotOwnLoan", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(loanRepo, new(MockBookRepo), userRepo, new(MockEmailService), evening)

		loan := &domain.Loan{ID: 10, UserID: 9, BookID: 5, Status: domain.LoanStatusPending}
		userRepo.On("GetByID", ctx, int64(2)).Return(borrower, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()

		_, err := svc.Cancel(ctx, 2, 10)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("ApprovedCannotBeCancelled", func(t *testing.T) {
		loanRepo := new(MockLoanRepo)
		userRepo := new(MockUserRepo)
		svc := newLoanServiceForTest(loanRepo, new(MockBookRepo), userRepo, new(MockEmailService), evening)

		loan := &domain.Loan{ID: 10, UserID: 2, BookID: 5, Status: domain.LoanStatusApproved}
		userRepo.On("GetByID", ctx, int64(2)).Return(borrower, nil).Once()
		loanRepo.On("GetByID", ctx, int64(10)).Return(loan, nil).Once()

		_, err := svc.Cancel(ctx, 2, 10)
		assert.True(t, domain.IsConflict(err))
	})
}
