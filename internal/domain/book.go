package domain

import "time"

// Book is a catalog entry. Availability is tracked with per-title counters:
// 0 <= AvailableCopies <= TotalCopies always holds. The counters are only
// mutated by the loan lifecycle and by the copies registry, never directly
// through catalog updates.
type Book struct {
	ID              int64     `json:"id"`
	OwnerID         int64     `json:"owner_id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Category        string    `json:"category"`
	Publisher       string    `json:"publisher"`
	Year            int       `json:"year"`
	Pages           int       `json:"pages"`
	Language        string    `json:"language"`
	Condition       string    `json:"condition"`
	CoverImage      string    `json:"cover_image"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookCopy is one physical unit in the staff-managed copies registry.
// Creating a copy increments the owning book's counters in the same
// transaction; copies are never auto-created.
type BookCopy struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	CopyNumber string    `json:"copy_number"`
	Condition  string    `json:"condition"`
	Location   string    `json:"location"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookFilter narrows catalog listings. Query matches title or author,
// case-insensitive substring.
type BookFilter struct {
	Query         string
	Category      string
	OwnerID       int64
	AvailableOnly bool
	Page          int
	PageSize      int
}
