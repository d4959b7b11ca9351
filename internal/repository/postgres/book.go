package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

const bookColumns = `id, owner_id, title, author, isbn, category, publisher, year, pages, language, condition, cover_image, total_copies, available_copies, created_at, updated_at`

type bookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) repository.BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `INSERT INTO books (owner_id, title, author, isbn, category, publisher, year, pages, language, condition, cover_image, total_copies, available_copies, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW()) RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		b.OwnerID, b.Title, b.Author, b.ISBN, b.Category, b.Publisher, b.Year, b.Pages,
		b.Language, b.Condition, b.CoverImage, b.TotalCopies, b.AvailableCopies).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.NewStorageError("book create", err)
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	b := &domain.Book{}
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Publisher,
		&b.Year, &b.Pages, &b.Language, &b.Condition, &b.CoverImage,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("book get", err)
	}
	return b, nil
}

// Update overwrites the mutable catalog fields, gated on ownership. The
// availability counters belong to the loan lifecycle and are left alone.
func (r *bookRepository) Update(ctx context.Context, b *domain.Book) error {
	query := `UPDATE books SET title=$1, author=$2, isbn=$3, category=$4, publisher=$5, year=$6, pages=$7, language=$8, condition=$9, cover_image=$10, updated_at=NOW()
	          WHERE id=$11 AND owner_id=$12`
	res, err := r.db.ExecContext(ctx, query,
		b.Title, b.Author, b.ISBN, b.Category, b.Publisher, b.Year, b.Pages,
		b.Language, b.Condition, b.CoverImage, b.ID, b.OwnerID)
	if err != nil {
		return domain.NewStorageError("book update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("book update", err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d owned by user %d: %w", b.ID, b.OwnerID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a book with no open loans. The open-loan check runs inside
// the same transaction as the delete so a request racing in between cannot
// orphan a held copy. Archiving snapshots the book and its loan history
// before the rows go away.
func (r *bookRepository) Delete(ctx context.Context, id int64, archive bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("book delete", err)
	}
	defer tx.Rollback()

	var openLoans int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM loans WHERE book_id = $1 AND status IN ('pending', 'approved', 'borrowed')`,
		id).Scan(&openLoans)
	if err != nil {
		return domain.NewStorageError("book delete", err)
	}
	if openLoans > 0 {
		return domain.Conflictf("book has %d active borrows", openLoans)
	}

	if archive {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO books_archive SELECT *, NOW() AS archived_at FROM books WHERE id = $1`, id); err != nil {
			return domain.NewStorageError("book delete", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO loans_archive SELECT *, NOW() AS archived_at FROM loans WHERE book_id = $1`, id); err != nil {
			return domain.NewStorageError("book delete", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE book_id = $1`, id); err != nil {
		return domain.NewStorageError("book delete", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_copies WHERE book_id = $1`, id); err != nil {
		return domain.NewStorageError("book delete", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return domain.NewStorageError("book delete", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("book delete", err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("book delete", err)
	}
	return nil
}

func (r *bookRepository) List(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int64, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Query != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.OwnerID != 0 {
		query += fmt.Sprintf(" AND owner_id = $%d", argIdx)
		args = append(args, filter.OwnerID)
		argIdx++
	}
	if filter.AvailableOnly {
		query += " AND available_copies > 0"
	}

	var count int64
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, domain.NewStorageError("book list", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	query += fmt.Sprintf(" ORDER BY title ASC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.NewStorageError("book list", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Publisher,
			&b.Year, &b.Pages, &b.Language, &b.Condition, &b.CoverImage,
			&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, domain.NewStorageError("book list", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.NewStorageError("book list", err)
	}
	return books, count, nil
}

// AddCopy registers one physical unit and bumps both counters in the same
// transaction, keeping the aggregate in step with the registry.
func (r *bookRepository) AddCopy(ctx context.Context, copy *domain.BookCopy) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("copy add", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO book_copies (book_id, copy_number, condition, location, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`,
		copy.BookID, copy.CopyNumber, copy.Condition, copy.Location, copy.Notes).
		Scan(&copy.ID, &copy.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflictf("copy number %s already exists for this book", copy.CopyNumber)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("book %d: %w", copy.BookID, domain.ErrNotFound)
		}
		return domain.NewStorageError("copy add", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE books SET total_copies = total_copies + 1, available_copies = available_copies + 1, updated_at = NOW() WHERE id = $1`,
		copy.BookID)
	if err != nil {
		return domain.NewStorageError("copy add", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("copy add", err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d: %w", copy.BookID, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("copy add", err)
	}
	return nil
}

func (r *bookRepository) ListCopies(ctx context.Context, bookID int64) ([]domain.BookCopy, error) {
	query := `SELECT id, book_id, copy_number, condition, location, notes, created_at
	          FROM book_copies WHERE book_id = $1 ORDER BY copy_number`
	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, domain.NewStorageError("copy list", err)
	}
	defer rows.Close()

	var copies []domain.BookCopy
	for rows.Next() {
		var c domain.BookCopy
		if err := rows.Scan(&c.ID, &c.BookID, &c.CopyNumber, &c.Condition, &c.Location, &c.Notes, &c.CreatedAt); err != nil {
			return nil, domain.NewStorageError("copy list", err)
		}
		copies = append(copies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("copy list", err)
	}
	return copies, nil
}
