package service

import (
	"context"
	"fmt"
	"time"

	"library-lending-backend/internal/config"
	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/policy"
	"library-lending-backend/internal/repository"
)

type loanService struct {
	loanRepo repository.LoanRepository
	bookRepo repository.BookRepository
	userRepo repository.UserRepository
	emailSvc EmailService
	rules    config.LendingConfig
	now      func() time.Time
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	rules config.LendingConfig,
) LoanService {
	return &loanService{
		loanRepo: loanRepo,
		bookRepo: bookRepo,
		userRepo: userRepo,
		emailSvc: emailSvc,
		rules:    rules,
		now:      time.Now,
	}
}

func (s *loanService) RequestBorrow(ctx context.Context, actorID, bookID int64) (*domain.Loan, error) {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(user.Role, policy.OpRequestBorrow) {
		return nil, fmt.Errorf("role %s cannot borrow: %w", user.Role, domain.ErrForbidden)
	}
	if !user.CanBorrow() {
		return nil, domain.Conflictf("account is %s and cannot borrow", user.Status)
	}

	now := s.now()
	if !s.withinBorrowWindow(now) {
		return nil, domain.Conflictf("borrow requests are only accepted between %02d:00 and %02d:00",
			s.rules.BorrowWindowStartHour, s.rules.BorrowWindowEndHour)
	}

	loan := &domain.Loan{
		UserID:      actorID,
		BookID:      bookID,
		RequestDate: now,
		DueDate:     now.AddDate(0, 0, s.rules.LoanPeriodDays),
		Status:      domain.LoanStatusPending,
	}
	if err := s.loanRepo.CreateRequest(ctx, loan); err != nil {
		return nil, err
	}

	// Notification is best effort. The request stands even if email fails.
	if book, err := s.bookRepo.GetByID(ctx, bookID); err == nil {
		if owner, err := s.userRepo.GetByID(ctx, book.OwnerID); err == nil {
			if err := s.emailSvc.SendBorrowRequestNotification(ctx, owner.Email, owner.FullName, user.FullName, book.Title); err != nil {
				logger.Warn("borrow request notification failed", "loan_id", loan.ID, "error", err)
			}
		}
	}

	return loan, nil
}

func (s *loanService) withinBorrowWindow(now time.Time) bool {
	h := now.Hour()
	return h >= s.rules.BorrowWindowStartHour && h < s.rules.BorrowWindowEndHour
}

func (s *loanService) Approve(ctx context.Context, actorID, loanID int64) (*domain.Loan, error) {
	loan, err := s.decide(ctx, actorID, loanID, domain.LoanStatusApproved, false)
	if err != nil {
		return nil, err
	}
	s.notifyDecision(ctx, loan, true)
	return loan, nil
}

func (s *loanService) Reject(ctx context.Context, actorID, loanID int64) (*domain.Loan, error) {
	loan, err := s.decide(ctx, actorID, loanID, domain.LoanStatusRejected, true)
	if err != nil {
		return nil, err
	}
	s.notifyDecision(ctx, loan, false)
	return loan, nil
}

func (s *loanService) Handover(ctx context.Context, actorID, loanID int64) (*domain.Loan, error) {
	return s.decide(ctx, actorID, loanID, domain.LoanStatusBorrowed, false)
}

func (s *loanService) Return(ctx context.Context, actorID, loanID int64) (*domain.Loan, error) {
	return s.decide(ctx, actorID, loanID, domain.LoanStatusReturned, true)
}

// decide runs the owner-side transitions. The actor must own the book or be
// staff with decision rights; the transition itself is validated against the
// state machine before the guarded update runs.
func (s *loanService) decide(ctx context.Context, actorID, loanID int64, next domain.LoanStatus, release bool) (*domain.Loan, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(actor.Role, policy.OpDecideLoan) {
		return nil, fmt.Errorf("role %s cannot decide loans: %w", actor.Role, domain.ErrForbidden)
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	book, err := s.bookRepo.GetByID(ctx, loan.BookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != actorID && actor.Role != domain.RoleLibrarian && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("loan %d belongs to another lender: %w", loanID, domain.ErrForbidden)
	}

	from := loan.Status
	if !from.CanTransitionTo(next) {
		return nil, domain.Conflictf("cannot move loan %d from %s to %s", loanID, from, next)
	}

	now := s.now()
	loan.Status = next
	switch next {
	case domain.LoanStatusBorrowed:
		loan.BorrowDate = &now
	case domain.LoanStatusReturned:
		loan.ReturnDate = &now
		loan.FineAmountCents = s.fineAt(loan, now)
	}

	if err := s.loanRepo.Transition(ctx, loan, from, release); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) Cancel(ctx context.Context, actorID, loanID int64) (*domain.Loan, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(actor.Role, policy.OpCancelLoan) {
		return nil, fmt.Errorf("role %s cannot cancel loans: %w", actor.Role, domain.ErrForbidden)
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	// Borrowers cancel their own requests; staff may cancel any.
	if loan.UserID != actorID && actor.Role != domain.RoleLibrarian && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("loan %d belongs to another borrower: %w", loanID, domain.ErrForbidden)
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, domain.Conflictf("only pending requests can be cancelled, loan %d is %s", loanID, loan.Status)
	}

	from := loan.Status
	loan.Status = domain.LoanStatusCancelled
	if err := s.loanRepo.Transition(ctx, loan, from, true); err != nil {
		return nil, err
	}
	return loan, nil
}

// fineAt computes the fine for a loan returned at the given time: full days
// past due times the daily rate, never negative.
func (s *loanService) fineAt(loan *domain.Loan, at time.Time) int64 {
	if !at.After(loan.DueDate) {
		return 0
	}
	daysLate := int64(at.Sub(loan.DueDate).Hours() / 24)
	return daysLate * s.rules.DailyFineCents
}

func (s *loanService) GetLoan(ctx context.Context, actorID, loanID int64) (*domain.Loan, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID == actorID || actor.Role == domain.RoleLibrarian || actor.Role == domain.RoleAdmin {
		return loan, nil
	}
	book, err := s.bookRepo.GetByID(ctx, loan.BookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != actorID {
		return nil, fmt.Errorf("loan %d: %w", loanID, domain.ErrForbidden)
	}
	return loan, nil
}

func (s *loanService) ListMyLoans(ctx context.Context, actorID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error) {
	if status != "" && !status.Valid() {
		ve := domain.NewValidationError()
		ve.Add("status", "unknown loan status")
		return nil, 0, ve
	}
	return s.loanRepo.ListByBorrower(ctx, actorID, status, page, pageSize)
}

func (s *loanService) ListLendings(ctx context.Context, actorID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error) {
	if status != "" && !status.Valid() {
		ve := domain.NewValidationError()
		ve.Add("status", "unknown loan status")
		return nil, 0, ve
	}
	return s.loanRepo.ListByOwner(ctx, actorID, status, page, pageSize)
}

func (s *loanService) notifyDecision(ctx context.Context, loan *domain.Loan, approved bool) {
	borrower, err := s.userRepo.GetByID(ctx, loan.UserID)
	if err != nil {
		return
	}
	book, err := s.bookRepo.GetByID(ctx, loan.BookID)
	if err != nil {
		return
	}
	if err := s.emailSvc.SendLoanDecisionNotification(ctx, borrower.Email, borrower.FullName, book.Title, approved); err != nil {
		logger.Warn("loan decision notification failed", "loan_id", loan.ID, "error", err)
	}
}
