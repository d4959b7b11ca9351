package jobs

import (
	"context"
	"time"

	"library-lending-backend/internal/logger"
)

// AccrueOverdueFines refreshes the running fine on every overdue borrowed
// loan. Fines become final when the book is returned.
func (jr *JobRunner) AccrueOverdueFines() {
	jr.runWithRecovery("AccrueOverdueFines", func() {
		ctx := context.Background()

		updated, err := jr.store.AccrueFines(ctx, jr.config.Lending.DailyFineCents)
		if err != nil {
			logger.Error("Failed to accrue overdue fines", "error", err)
			return
		}
		logger.Info("Accrued overdue fines", "loans_updated", updated)
	})
}

// SendOverdueNotices emails every borrower holding an overdue book.
func (jr *JobRunner) SendOverdueNotices() {
	jr.runWithRecovery("SendOverdueNotices", func() {
		ctx := context.Background()

		loans, err := jr.store.ListOverdue(ctx)
		if err != nil {
			logger.Error("Failed to list overdue loans", "error", err)
			return
		}

		now := time.Now()
		sent := 0
		for _, loan := range loans {
			borrower, err := jr.store.UserRepository.GetByID(ctx, loan.UserID)
			if err != nil {
				logger.Error("Failed to load borrower for overdue notice", "loan_id", loan.ID, "error", err)
				continue
			}
			book, err := jr.store.BookRepository.GetByID(ctx, loan.BookID)
			if err != nil {
				logger.Error("Failed to load book for overdue notice", "loan_id", loan.ID, "error", err)
				continue
			}

			daysLate := int(now.Sub(loan.DueDate).Hours() / 24)
			if err := jr.emailSvc.SendOverdueNotice(ctx, borrower.Email, borrower.FullName, book.Title, daysLate, loan.FineAmountCents); err != nil {
				logger.Error("Failed to send overdue notice", "loan_id", loan.ID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Sent overdue notices", "overdue_loans", len(loans), "notices_sent", sent)
	})
}

// SendDueReminders emails borrowers whose loans come due within two days.
func (jr *JobRunner) SendDueReminders() {
	jr.runWithRecovery("SendDueReminders", func() {
		ctx := context.Background()

		loans, err := jr.store.ListDueSoon(ctx, 2)
		if err != nil {
			logger.Error("Failed to list loans due soon", "error", err)
			return
		}

		sent := 0
		for _, loan := range loans {
			borrower, err := jr.store.UserRepository.GetByID(ctx, loan.UserID)
			if err != nil {
				logger.Error("Failed to load borrower for due reminder", "loan_id", loan.ID, "error", err)
				continue
			}
			book, err := jr.store.BookRepository.GetByID(ctx, loan.BookID)
			if err != nil {
				logger.Error("Failed to load book for due reminder", "loan_id", loan.ID, "error", err)
				continue
			}

			if err := jr.emailSvc.SendDueReminder(ctx, borrower.Email, borrower.FullName, book.Title, loan.DueDate); err != nil {
				logger.Error("Failed to send due reminder", "loan_id", loan.ID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Sent due reminders", "due_soon_loans", len(loans), "reminders_sent", sent)
	})
}
