package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

const userColumns = `id, username, email, password_hash, full_name, role, membership_type, status, created_at, last_login`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (username, email, password_hash, full_name, role, membership_type, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.Role, u.MembershipType, u.Status).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflictf("username or email already in use")
		}
		return domain.NewStorageError("user create", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.MembershipType, &u.Status, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("user get", err)
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND status != 'deleted'`
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.MembershipType, &u.Status, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("user get", err)
	}
	return u, nil
}

// Update never touches role or password: role is immutable after creation and
// password changes go through their own flow.
func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email=$1, full_name=$2, membership_type=$3 WHERE id=$4 AND status != 'deleted'`
	res, err := r.db.ExecContext(ctx, query, u.Email, u.FullName, u.MembershipType, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflictf("email already in use")
		}
		return domain.NewStorageError("user update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("user update", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", u.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $1 WHERE id = $2 AND status != 'deleted'`, status, id)
	if err != nil {
		return domain.NewStorageError("user update status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("user update status", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *userRepository) RecordLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return domain.NewStorageError("user record login", err)
	}
	return nil
}

// SoftDelete marks the account deleted, guarded against open loans in the
// same transaction.
func (r *userRepository) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("user delete", err)
	}
	defer tx.Rollback()

	var openLoans int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM loans WHERE user_id = $1 AND status IN ('pending', 'approved', 'borrowed')`,
		id).Scan(&openLoans)
	if err != nil {
		return domain.NewStorageError("user delete", err)
	}
	if openLoans > 0 {
		return domain.Conflictf("user has %d active borrowings", openLoans)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET status = 'deleted' WHERE id = $1 AND status != 'deleted'`, id)
	if err != nil {
		return domain.NewStorageError("user delete", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("user delete", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError("user delete", err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, role domain.Role, page, pageSize int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE status != 'deleted'`
	args := []interface{}{}
	argIdx := 1
	if role != "" {
		query += fmt.Sprintf(" AND role = $%d", argIdx)
		args = append(args, role)
		argIdx++
	}

	var count int64
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, domain.NewStorageError("user list", err)
	}

	query += fmt.Sprintf(" ORDER BY username ASC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.NewStorageError("user list", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
			&u.MembershipType, &u.Status, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, 0, domain.NewStorageError("user list", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.NewStorageError("user list", err)
	}
	return users, count, nil
}
