package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"library-lending-backend/internal/domain"
)

func TestCatalogService_CreateBook(t *testing.T) {
	ctx := context.Background()
	lender := &domain.User{ID: 3, Role: domain.RoleLender, Status: domain.UserStatusActive}

	t.Run("LenderOwnsWhatTheyAdd", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		userRepo.On("GetByID", ctx, int64(3)).Return(lender, nil).Once()
		bookRepo.On("Create", ctx, mock.MatchedBy(func(b *domain.Book) bool {
			return b.OwnerID == 3 && b.AvailableCopies == b.TotalCopies
		})).Return(nil).Once()

		book := &domain.Book{Title: "Dune", Author: "Frank Herbert", TotalCopies: 2}
		err := svc.CreateBook(ctx, 3, book)
		assert.NoError(t, err)
		bookRepo.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		userRepo.On("GetByID", ctx, int64(3)).Return(lender, nil).Once()

		err := svc.CreateBook(ctx, 3, &domain.Book{})
		assert.True(t, domain.IsValidation(err))
		bookRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("BorrowerForbidden", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(new(MockBookRepo), userRepo, new(MockAuditRepo))

		borrower := &domain.User{ID: 2, Role: domain.RoleBorrower, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(2)).Return(borrower, nil).Once()

		err := svc.CreateBook(ctx, 2, &domain.Book{Title: "Dune", Author: "Frank Herbert"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestCatalogService_DeleteBook(t *testing.T) {
	ctx := context.Background()
	librarian := &domain.User{ID: 1, Role: domain.RoleLibrarian, Status: domain.UserStatusActive}

	t.Run("ArchivesAndAudits", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		auditRepo := new(MockAuditRepo)
		svc := NewCatalogService(bookRepo, userRepo, auditRepo)

		userRepo.On("GetByID", ctx, int64(1)).Return(librarian, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(&domain.Book{ID: 5, Title: "Dune"}, nil).Once()
		bookRepo.On("Delete", ctx, int64(5), true).Return(nil).Once()
		auditRepo.On("Record", ctx, mock.MatchedBy(func(e *domain.AuditEntry) bool {
			return e.UserID == 1 && e.Action == "book.delete"
		})).Return(nil).Once()

		err := svc.DeleteBook(ctx, 1, 5, true)
		assert.NoError(t, err)
		auditRepo.AssertExpectations(t)
	})

	t.Run("SkipsArchiveWhenAsked", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		auditRepo := new(MockAuditRepo)
		svc := NewCatalogService(bookRepo, userRepo, auditRepo)

		userRepo.On("GetByID", ctx, int64(1)).Return(librarian, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(&domain.Book{ID: 5, Title: "Dune"}, nil).Once()
		bookRepo.On("Delete", ctx, int64(5), false).Return(nil).Once()
		auditRepo.On("Record", ctx, mock.MatchedBy(func(e *domain.AuditEntry) bool {
			return !strings.Contains(e.Description, "archived")
		})).Return(nil).Once()

		err := svc.DeleteBook(ctx, 1, 5, false)
		assert.NoError(t, err)
		bookRepo.AssertExpectations(t)
	})

	t.Run("LenderForbidden", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(new(MockBookRepo), userRepo, new(MockAuditRepo))

		lender := &domain.User{ID: 3, Role: domain.RoleLender, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(3)).Return(lender, nil).Once()

		err := svc.DeleteBook(ctx, 3, 5, true)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestCatalogService_AuthorizeBookEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerAllowed", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		lender := &domain.User{ID: 3, Role: domain.RoleLender, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(3)).Return(lender, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(&domain.Book{ID: 5, OwnerID: 3}, nil).Once()

		book, err := svc.AuthorizeBookEdit(ctx, 3, 5)
		assert.NoError(t, err)
		assert.Equal(t, int64(5), book.ID)
	})

	t.Run("OtherLenderForbidden", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		lender := &domain.User{ID: 3, Role: domain.RoleLender, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(3)).Return(lender, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(&domain.Book{ID: 5, OwnerID: 9}, nil).Once()

		_, err := svc.AuthorizeBookEdit(ctx, 3, 5)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("StaffEditAnyBook", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		admin := &domain.User{ID: 1, Role: domain.RoleAdmin, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(1)).Return(admin, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(&domain.Book{ID: 5, OwnerID: 9}, nil).Once()

		_, err := svc.AuthorizeBookEdit(ctx, 1, 5)
		assert.NoError(t, err)
	})

	t.Run("BorrowerForbiddenWithoutBookLoad", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		borrower := &domain.User{ID: 2, Role: domain.RoleBorrower, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(2)).Return(borrower, nil).Once()

		_, err := svc.AuthorizeBookEdit(ctx, 2, 5)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		bookRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_UpdateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("KeepsRealOwnerOnStaffEdit", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		librarian := &domain.User{ID: 1, Role: domain.RoleLibrarian, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(1)).Return(librarian, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(&domain.Book{ID: 5, OwnerID: 9}, nil).Once()
		bookRepo.On("Update", ctx, mock.MatchedBy(func(b *domain.Book) bool {
			return b.OwnerID == 9
		})).Return(nil).Once()

		book := &domain.Book{ID: 5, Title: "Dune", Author: "Frank Herbert"}
		err := svc.UpdateBook(ctx, 1, book)
		assert.NoError(t, err)
		bookRepo.AssertExpectations(t)
	})

	t.Run("WrongOwnerForbidden", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		lender := &domain.User{ID: 3, Role: domain.RoleLender, Status: domain.UserStatusActive}
		userRepo.On("GetByID", ctx, int64(3)).Return(lender, nil).Once()
		bookRepo.On("GetByID", ctx, int64(5)).Return(&domain.Book{ID: 5, OwnerID: 9}, nil).Once()

		err := svc.UpdateBook(ctx, 3, &domain.Book{ID: 5, Title: "Dune", Author: "Frank Herbert"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		bookRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_AddCopy(t *testing.T) {
	ctx := context.Background()
	librarian := &domain.User{ID: 1, Role: domain.RoleLibrarian, Status: domain.UserStatusActive}

	t.Run("Success", func(t *testing.T) {
		bookRepo := new(MockBookRepo)
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(bookRepo, userRepo, new(MockAuditRepo))

		userRepo.On("GetByID", ctx, int64(1)).Return(librarian, nil).Once()
		bookRepo.On("AddCopy", ctx, mock.Anything).Return(nil).Once()

		err := svc.AddCopy(ctx, 1, &domain.BookCopy{BookID: 5, CopyNumber: "C-002"})
		assert.NoError(t, err)
	})

	t.Run("MissingCopyNumber", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := NewCatalogService(new(MockBookRepo), userRepo, new(MockAuditRepo))

		userRepo.On("GetByID", ctx, int64(1)).Return(librarian, nil).Once()

		err := svc.AddCopy(ctx, 1, &domain.BookCopy{BookID: 5})
		assert.True(t, domain.IsValidation(err))
	})
}
