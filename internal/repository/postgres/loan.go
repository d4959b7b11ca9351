package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

const loanColumns = `id, user_id, book_id, request_date, borrow_date, due_date, return_date, status, fine_amount_cents, created_at, updated_at`

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &loanRepository{db: db}
}

// CreateRequest performs the whole check-and-hold inside one transaction:
// duplicate-open-loan check, conditional availability decrement, loan insert.
// Either all of it commits or none of it does. The decrement carries the
// availability precondition itself (available_copies > 0 with an
// affected-row check), so two concurrent requests for the last copy are
// serialized by the row lock on books and exactly one wins.
func (r *loanRepository) CreateRequest(ctx context.Context, loan *domain.Loan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("loan create", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM loans WHERE user_id = $1 AND book_id = $2 AND status IN ('pending', 'approved', 'borrowed'))`,
		loan.UserID, loan.BookID).Scan(&exists)
	if err != nil {
		return domain.NewStorageError("loan create", err)
	}
	if exists {
		return domain.Conflictf("you already have a request for this book")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies - 1, updated_at = NOW() WHERE id = $1 AND available_copies > 0`,
		loan.BookID)
	if err != nil {
		return domain.NewStorageError("loan create", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("loan create", err)
	}
	if affected == 0 {
		// Either the book vanished or the last copy was taken.
		var bookExists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, loan.BookID).Scan(&bookExists); err != nil {
			return domain.NewStorageError("loan create", err)
		}
		if !bookExists {
			return fmt.Errorf("book %d: %w", loan.BookID, domain.ErrNotFound)
		}
		return domain.Conflictf("book is not available")
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO loans (user_id, book_id, request_date, due_date, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		loan.UserID, loan.BookID, loan.RequestDate, loan.DueDate, loan.Status).
		Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		// The partial unique index on open loans backs the pre-check under
		// concurrent inserts for the same (user, book).
		if isUniqueViolation(err) {
			return domain.Conflictf("you already have a request for this book")
		}
		return domain.NewStorageError("loan create", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("loan create", err)
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	loan := &domain.Loan{}
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&loan.ID, &loan.UserID, &loan.BookID, &loan.RequestDate, &loan.BorrowDate,
		&loan.DueDate, &loan.ReturnDate, &loan.Status, &loan.FineAmountCents,
		&loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loan %d: %w", id, domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("loan get", err)
	}
	return loan, nil
}

// Transition updates the loan row guarded by its expected current status and,
// when release is set, gives the held copy back to the book in the same
// transaction. The status guard makes concurrent conflicting transitions
// lose with a conflict instead of silently overwriting each other.
func (r *loanRepository) Transition(ctx context.Context, loan *domain.Loan, from domain.LoanStatus, release bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("loan transition", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE loans SET status = $1, borrow_date = $2, return_date = $3, fine_amount_cents = $4, updated_at = NOW()
		 WHERE id = $5 AND status = $6`,
		loan.Status, loan.BorrowDate, loan.ReturnDate, loan.FineAmountCents, loan.ID, from)
	if err != nil {
		return domain.NewStorageError("loan transition", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("loan transition", err)
	}
	if affected == 0 {
		return domain.Conflictf("loan %d is no longer %s", loan.ID, from)
	}

	if release {
		// The cap guard keeps available_copies <= total_copies even if a
		// release is retried.
		res, err = tx.ExecContext(ctx,
			`UPDATE books SET available_copies = available_copies + 1, updated_at = NOW()
			 WHERE id = $1 AND available_copies < total_copies`,
			loan.BookID)
		if err != nil {
			return domain.NewStorageError("loan transition", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return domain.NewStorageError("loan transition", err)
		}
		if affected == 0 {
			return domain.Conflictf("book %d inventory is already full", loan.BookID)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("loan transition", err)
	}
	return nil
}

func (r *loanRepository) ListByBorrower(ctx context.Context, userID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error) {
	return r.list(ctx, `user_id = $1`, userID, status, page, pageSize)
}

func (r *loanRepository) ListByOwner(ctx context.Context, ownerID int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error) {
	return r.list(ctx, `book_id IN (SELECT id FROM books WHERE owner_id = $1)`, ownerID, status, page, pageSize)
}

func (r *loanRepository) list(ctx context.Context, where string, id int64, status domain.LoanStatus, page, pageSize int) ([]domain.Loan, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + loanColumns + ` FROM loans WHERE ` + where
	args := []interface{}{id}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int64
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, domain.NewStorageError("loan list", err)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.NewStorageError("loan list", err)
	}
	defer rows.Close()

	loans, err := scanLoans(rows)
	if err != nil {
		return nil, 0, err
	}
	return loans, count, nil
}

func (r *loanRepository) ListOverdue(ctx context.Context) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = 'borrowed' AND due_date < NOW() ORDER BY due_date`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("loan list overdue", err)
	}
	defer rows.Close()
	return scanLoans(rows)
}

func (r *loanRepository) ListDueSoon(ctx context.Context, withinDays int) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
	          WHERE status = 'borrowed' AND due_date >= NOW() AND due_date < NOW() + ($1 * INTERVAL '1 day')
	          ORDER BY due_date`
	rows, err := r.db.QueryContext(ctx, query, withinDays)
	if err != nil {
		return nil, domain.NewStorageError("loan list due soon", err)
	}
	defer rows.Close()
	return scanLoans(rows)
}

// AccrueFines refreshes fine_amount_cents on all overdue borrowed loans to
// days-late times the daily fine. Fines become final at return time.
func (r *loanRepository) AccrueFines(ctx context.Context, dailyFineCents int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loans
		 SET fine_amount_cents = GREATEST(0, EXTRACT(DAY FROM NOW() - due_date)::bigint) * $1,
		     updated_at = NOW()
		 WHERE status = 'borrowed' AND due_date < NOW()`,
		dailyFineCents)
	if err != nil {
		return 0, domain.NewStorageError("loan accrue fines", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.NewStorageError("loan accrue fines", err)
	}
	return affected, nil
}

func scanLoans(rows *sql.Rows) ([]domain.Loan, error) {
	var loans []domain.Loan
	for rows.Next() {
		var loan domain.Loan
		if err := rows.Scan(
			&loan.ID, &loan.UserID, &loan.BookID, &loan.RequestDate, &loan.BorrowDate,
			&loan.DueDate, &loan.ReturnDate, &loan.Status, &loan.FineAmountCents,
			&loan.CreatedAt, &loan.UpdatedAt); err != nil {
			return nil, domain.NewStorageError("loan scan", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("loan scan", err)
	}
	return loans, nil
}
