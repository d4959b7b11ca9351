package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"library-lending-backend/internal/domain"
)

func TestCanPerform(t *testing.T) {
	// Borrowers manage their own loans, nothing else.
	assert.True(t, CanPerform(domain.RoleBorrower, OpRequestBorrow))
	assert.True(t, CanPerform(domain.RoleBorrower, OpCancelLoan))
	assert.False(t, CanPerform(domain.RoleBorrower, OpCreateBook))
	assert.False(t, CanPerform(domain.RoleBorrower, OpDecideLoan))
	assert.False(t, CanPerform(domain.RoleBorrower, OpMarkRead))

	// Readers only mark books as read.
	assert.True(t, CanPerform(domain.RoleReader, OpMarkRead))
	assert.False(t, CanPerform(domain.RoleReader, OpRequestBorrow))

	// Lenders manage their catalog and decide on their loans, but cannot
	// delete books or manage accounts.
	assert.True(t, CanPerform(domain.RoleLender, OpCreateBook))
	assert.True(t, CanPerform(domain.RoleLender, OpDecideLoan))
	assert.False(t, CanPerform(domain.RoleLender, OpDeleteBook))
	assert.False(t, CanPerform(domain.RoleLender, OpManageUsers))

	// Staff hold the full set, including cancelling stuck requests.
	for _, role := range []domain.Role{domain.RoleLibrarian, domain.RoleAdmin} {
		assert.True(t, CanPerform(role, OpDeleteBook))
		assert.True(t, CanPerform(role, OpAddCopy))
		assert.True(t, CanPerform(role, OpManageUsers))
		assert.True(t, CanPerform(role, OpCancelLoan))
		assert.False(t, CanPerform(role, OpRequestBorrow))
	}

	// Unknown roles and operations are denied.
	assert.False(t, CanPerform(domain.Role("ghost"), OpRequestBorrow))
	assert.False(t, CanPerform(domain.RoleAdmin, Operation("unknown")))
}
