package domain

import "time"

type Role string

const (
	RoleReader    Role = "reader"
	RoleBorrower  Role = "borrower"
	RoleLender    Role = "lender"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleBorrower, RoleLender, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role manages the catalog and decides loan requests.
func (r Role) IsStaff() bool {
	return r == RoleLender || r == RoleLibrarian || r == RoleAdmin
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	FullName       string     `json:"full_name"`
	Role           Role       `json:"role"`
	MembershipType string     `json:"membership_type"`
	Status         UserStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// CanBorrow reports whether the account may create new loans.
// Suspended and deleted accounts cannot, regardless of role.
func (u *User) CanBorrow() bool {
	return u.Status == UserStatusActive && u.Role == RoleBorrower
}
