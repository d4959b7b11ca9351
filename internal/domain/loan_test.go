package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoanStatusTransitions(t *testing.T) {
	cases := []struct {
		from    LoanStatus
		to      LoanStatus
		allowed bool
	}{
		{LoanStatusPending, LoanStatusApproved, true},
		{LoanStatusPending, LoanStatusRejected, true},
		{LoanStatusPending, LoanStatusCancelled, true},
		{LoanStatusPending, LoanStatusBorrowed, false},
		{LoanStatusPending, LoanStatusReturned, false},
		{LoanStatusApproved, LoanStatusBorrowed, true},
		{LoanStatusApproved, LoanStatusCancelled, false},
		{LoanStatusApproved, LoanStatusRejected, false},
		{LoanStatusBorrowed, LoanStatusReturned, true},
		{LoanStatusBorrowed, LoanStatusCancelled, false},
		{LoanStatusRejected, LoanStatusApproved, false},
		{LoanStatusReturned, LoanStatusBorrowed, false},
		{LoanStatusCancelled, LoanStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestLoanStatusClassification(t *testing.T) {
	open := []LoanStatus{LoanStatusPending, LoanStatusApproved, LoanStatusBorrowed}
	terminal := []LoanStatus{LoanStatusRejected, LoanStatusReturned, LoanStatusCancelled}

	for _, s := range open {
		assert.True(t, s.Open(), "%s should be open", s)
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
	for _, s := range terminal {
		assert.False(t, s.Open(), "%s should not be open", s)
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}

	assert.False(t, LoanStatus("unknown").Valid())
	assert.True(t, LoanStatusPending.Valid())
}

func TestLoanOverdue(t *testing.T) {
	now := time.Now()

	borrowed := &Loan{Status: LoanStatusBorrowed, DueDate: now.Add(-time.Hour)}
	assert.True(t, borrowed.Overdue(now))

	notYetDue := &Loan{Status: LoanStatusBorrowed, DueDate: now.Add(time.Hour)}
	assert.False(t, notYetDue.Overdue(now))

	// Only a held book can be overdue.
	pending := &Loan{Status: LoanStatusPending, DueDate: now.Add(-time.Hour)}
	assert.False(t, pending.Overdue(now))

	returned := &Loan{Status: LoanStatusReturned, DueDate: now.Add(-time.Hour)}
	assert.False(t, returned.Overdue(now))
}
