package domain

import "time"

type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusBorrowed  LoanStatus = "borrowed"
	LoanStatusReturned  LoanStatus = "returned"
	LoanStatusCancelled LoanStatus = "cancelled"
)

// loanTransitions is the authoritative state machine:
//
//	(none) --create--> pending
//	pending --approve--> approved
//	pending --reject--> rejected
//	pending --cancel--> cancelled
//	approved --handover--> borrowed
//	borrowed --return--> returned
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusPending:  {LoanStatusApproved, LoanStatusRejected, LoanStatusCancelled},
	LoanStatusApproved: {LoanStatusBorrowed},
	LoanStatusBorrowed: {LoanStatusReturned},
}

// OpenLoanStatuses are the statuses that consume one unit of book availability.
var OpenLoanStatuses = []LoanStatus{LoanStatusPending, LoanStatusApproved, LoanStatusBorrowed}

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusRejected,
		LoanStatusBorrowed, LoanStatusReturned, LoanStatusCancelled:
		return true
	}
	return false
}

// Open reports whether the loan holds a copy.
func (s LoanStatus) Open() bool {
	return s == LoanStatusPending || s == LoanStatusApproved || s == LoanStatusBorrowed
}

// Terminal statuses permit no further transition.
func (s LoanStatus) Terminal() bool {
	return s == LoanStatusRejected || s == LoanStatusReturned || s == LoanStatusCancelled
}

func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	for _, allowed := range loanTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Loan struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	BookID          int64      `json:"book_id"`
	RequestDate     time.Time  `json:"request_date"`
	BorrowDate      *time.Time `json:"borrow_date,omitempty"`
	DueDate         time.Time  `json:"due_date"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
	Status          LoanStatus `json:"status"`
	FineAmountCents int64      `json:"fine_amount_cents"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Overdue reports whether the loan is borrowed and past due at the given time.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Status == LoanStatusBorrowed && now.After(l.DueDate)
}
