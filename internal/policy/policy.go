// Package policy gates every mutating operation by the caller's role.
// The table is static; services consult it before any write begins.
package policy

import "library-lending-backend/internal/domain"

type Operation string

const (
	OpCreateBook    Operation = "create_book"
	OpUpdateBook    Operation = "update_book"
	OpDeleteBook    Operation = "delete_book"
	OpAddCopy       Operation = "add_copy"
	OpRequestBorrow Operation = "request_borrow"
	OpCancelLoan    Operation = "cancel_loan"
	OpDecideLoan    Operation = "decide_loan"
	OpMarkRead      Operation = "mark_read"
	OpManageUsers   Operation = "manage_users"
)

var table = map[domain.Role]map[Operation]bool{
	domain.RoleReader: {
		OpMarkRead: true,
	},
	domain.RoleBorrower: {
		OpRequestBorrow: true,
		OpCancelLoan:    true,
	},
	domain.RoleLender: {
		OpCreateBook: true,
		OpUpdateBook: true,
		OpDecideLoan: true,
	},
	domain.RoleLibrarian: {
		OpCreateBook:  true,
		OpUpdateBook:  true,
		OpDeleteBook:  true,
		OpAddCopy:     true,
		OpDecideLoan:  true,
		OpCancelLoan:  true,
		OpManageUsers: true,
	},
	domain.RoleAdmin: {
		OpCreateBook:  true,
		OpUpdateBook:  true,
		OpDeleteBook:  true,
		OpAddCopy:     true,
		OpDecideLoan:  true,
		OpCancelLoan:  true,
		OpManageUsers: true,
	},
}

// CanPerform reports whether the role is allowed to perform the operation.
// Unknown roles and unknown operations are both denied.
func CanPerform(role domain.Role, op Operation) bool {
	ops, ok := table[role]
	if !ok {
		return false
	}
	return ops[op]
}
