package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type readingRepository struct {
	db *sql.DB
}

func NewReadingRepository(db *sql.DB) repository.ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) MarkAsRead(ctx context.Context, userID, bookID int64) (*domain.ReadingEntry, error) {
	entry := &domain.ReadingEntry{UserID: userID, BookID: bookID}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reading_history (user_id, book_id, marked_at) VALUES ($1, $2, NOW()) RETURNING id, marked_at`,
		userID, bookID).Scan(&entry.ID, &entry.MarkedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflictf("already marked as read")
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("book %d: %w", bookID, domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("reading mark", err)
	}
	return entry, nil
}

func (r *readingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ReadingEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, book_id, marked_at FROM reading_history WHERE user_id = $1 ORDER BY marked_at DESC`,
		userID)
	if err != nil {
		return nil, domain.NewStorageError("reading list", err)
	}
	defer rows.Close()

	var entries []domain.ReadingEntry
	for rows.Next() {
		var e domain.ReadingEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.BookID, &e.MarkedAt); err != nil {
			return nil, domain.NewStorageError("reading list", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("reading list", err)
	}
	return entries, nil
}
