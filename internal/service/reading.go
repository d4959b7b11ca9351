package service

import (
	"context"
	"fmt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/policy"
	"library-lending-backend/internal/repository"
)

type readingService struct {
	readingRepo repository.ReadingRepository
	userRepo    repository.UserRepository
}

func NewReadingService(readingRepo repository.ReadingRepository, userRepo repository.UserRepository) ReadingService {
	return &readingService{readingRepo: readingRepo, userRepo: userRepo}
}

func (s *readingService) MarkAsRead(ctx context.Context, actorID, bookID int64) (*domain.ReadingEntry, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(actor.Role, policy.OpMarkRead) {
		return nil, fmt.Errorf("role %s cannot mark books as read: %w", actor.Role, domain.ErrForbidden)
	}
	return s.readingRepo.MarkAsRead(ctx, actorID, bookID)
}

func (s *readingService) History(ctx context.Context, actorID int64) ([]domain.ReadingEntry, error) {
	return s.readingRepo.ListByUser(ctx, actorID)
}
