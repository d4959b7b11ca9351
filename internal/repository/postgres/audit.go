package postgres

import (
	"context"
	"database/sql"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO audit_logs (user_id, action, description, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`,
		entry.UserID, entry.Action, entry.Description, entry.IPAddress).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return domain.NewStorageError("audit record", err)
	}
	return nil
}
