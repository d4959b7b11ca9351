package domain

import "time"

// ReadingEntry records that a reader marked a book as read. Reading marks
// never touch inventory counters.
type ReadingEntry struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	BookID   int64     `json:"book_id"`
	MarkedAt time.Time `json:"marked_at"`
}

// AuditEntry is a best-effort trail row for destructive or account-level
// actions. Failures to write audit rows never fail the guarded operation.
type AuditEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}
