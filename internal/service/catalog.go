package service

import (
	"context"
	"fmt"
	"time"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/policy"
	"library-lending-backend/internal/repository"
)

type catalogService struct {
	bookRepo  repository.BookRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
}

func NewCatalogService(
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
) CatalogService {
	return &catalogService{bookRepo: bookRepo, userRepo: userRepo, auditRepo: auditRepo}
}

func validateBook(b *domain.Book) error {
	ve := domain.NewValidationError()
	if b.Title == "" {
		ve.Add("title", "title is required")
	}
	if b.Author == "" {
		ve.Add("author", "author is required")
	}
	if b.TotalCopies < 0 {
		ve.Add("total_copies", "cannot be negative")
	}
	if b.Year != 0 && (b.Year < 1400 || b.Year > time.Now().Year()+1) {
		ve.Add("year", "implausible publication year")
	}
	if b.Pages < 0 {
		ve.Add("pages", "cannot be negative")
	}
	return ve.OrNil()
}

func (s *catalogService) CreateBook(ctx context.Context, actorID int64, book *domain.Book) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !policy.CanPerform(actor.Role, policy.OpCreateBook) {
		return fmt.Errorf("role %s cannot add books: %w", actor.Role, domain.ErrForbidden)
	}
	if err := validateBook(book); err != nil {
		return err
	}

	// Lenders always own what they add. Staff may register a book on
	// behalf of another owner.
	if book.OwnerID == 0 || actor.Role == domain.RoleLender {
		book.OwnerID = actorID
	}
	// New titles start fully available.
	book.AvailableCopies = book.TotalCopies

	return s.bookRepo.Create(ctx, book)
}

func (s *catalogService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

// AuthorizeBookEdit loads the book and verifies the actor may modify it.
// Handlers that write outside the catalog (cover uploads) call this before
// touching any other store. Lenders edit only their own books; staff edit any.
func (s *catalogService) AuthorizeBookEdit(ctx context.Context, actorID, bookID int64) (*domain.Book, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(actor.Role, policy.OpUpdateBook) {
		return nil, fmt.Errorf("role %s cannot update books: %w", actor.Role, domain.ErrForbidden)
	}
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != actorID && actor.Role != domain.RoleLibrarian && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("book %d belongs to another lender: %w", bookID, domain.ErrForbidden)
	}
	return book, nil
}

func (s *catalogService) UpdateBook(ctx context.Context, actorID int64, book *domain.Book) error {
	existing, err := s.AuthorizeBookEdit(ctx, actorID, book.ID)
	if err != nil {
		return err
	}
	if err := validateBook(book); err != nil {
		return err
	}
	// The repository update is gated on owner_id; carry the real owner over.
	book.OwnerID = existing.OwnerID
	return s.bookRepo.Update(ctx, book)
}

func (s *catalogService) DeleteBook(ctx context.Context, actorID, bookID int64, archive bool) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !policy.CanPerform(actor.Role, policy.OpDeleteBook) {
		return fmt.Errorf("role %s cannot delete books: %w", actor.Role, domain.ErrForbidden)
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if err := s.bookRepo.Delete(ctx, bookID, archive); err != nil {
		return err
	}

	detail := fmt.Sprintf("deleted %q (id %d)", book.Title, bookID)
	if archive {
		detail += " and archived its history"
	}
	s.audit(ctx, actorID, "book.delete", detail)
	return nil
}

func (s *catalogService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, int64, error) {
	return s.bookRepo.List(ctx, filter)
}

func (s *catalogService) AddCopy(ctx context.Context, actorID int64, copy *domain.BookCopy) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !policy.CanPerform(actor.Role, policy.OpAddCopy) {
		return fmt.Errorf("role %s cannot register copies: %w", actor.Role, domain.ErrForbidden)
	}

	ve := domain.NewValidationError()
	if copy.BookID == 0 {
		ve.Add("book_id", "book is required")
	}
	if copy.CopyNumber == "" {
		ve.Add("copy_number", "copy number is required")
	}
	if err := ve.OrNil(); err != nil {
		return err
	}
	return s.bookRepo.AddCopy(ctx, copy)
}

func (s *catalogService) ListCopies(ctx context.Context, bookID int64) ([]domain.BookCopy, error) {
	return s.bookRepo.ListCopies(ctx, bookID)
}

func (s *catalogService) audit(ctx context.Context, actorID int64, action, description string) {
	entry := &domain.AuditEntry{UserID: actorID, Action: action, Description: description}
	if err := s.auditRepo.Record(ctx, entry); err != nil {
		logger.Warn("audit record failed", "action", action, "error", err)
	}
}
