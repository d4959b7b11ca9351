package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/policy"
	"library-lending-backend/internal/repository"
)

type userService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	emailSvc  EmailService
}

func NewUserService(
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	emailSvc EmailService,
) UserService {
	return &userService{userRepo: userRepo, auditRepo: auditRepo, emailSvc: emailSvc}
}

func validateAccount(username, email, password, fullName string) error {
	ve := domain.NewValidationError()
	if len(username) < 3 {
		ve.Add("username", "must be at least 3 characters")
	}
	if !strings.Contains(email, "@") {
		ve.Add("email", "invalid email address")
	}
	if len(password) < 8 {
		ve.Add("password", "must be at least 8 characters")
	}
	if fullName == "" {
		ve.Add("full_name", "full name is required")
	}
	return ve.OrNil()
}

func (s *userService) Register(ctx context.Context, username, email, password, fullName string, role domain.Role, membershipType string) (*domain.User, error) {
	if role == "" {
		role = domain.RoleBorrower
	}
	if err := validateAccount(username, email, password, fullName); err != nil {
		return nil, err
	}
	if role != domain.RoleReader && role != domain.RoleBorrower {
		ve := domain.NewValidationError()
		ve.Add("role", "self registration is limited to reader and borrower accounts")
		return nil, ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Username:       username,
		Email:          email,
		PasswordHash:   string(hash),
		FullName:       fullName,
		Role:           role,
		MembershipType: membershipType,
		Status:         domain.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, actorID int64, user *domain.User, password string) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !policy.CanPerform(actor.Role, policy.OpManageUsers) {
		return fmt.Errorf("role %s cannot manage accounts: %w", actor.Role, domain.ErrForbidden)
	}
	if err := validateAccount(user.Username, user.Email, password, user.FullName); err != nil {
		return err
	}
	if !user.Role.Valid() {
		ve := domain.NewValidationError()
		ve.Add("role", "unknown role")
		return ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.Status = domain.UserStatusActive

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	s.audit(ctx, actorID, "user.create", fmt.Sprintf("created %s account %s", user.Role, user.Username))
	return nil
}

func (s *userService) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, actorID, userID int64, email, fullName, membershipType string) (*domain.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actorID != userID && !policy.CanPerform(actor.Role, policy.OpManageUsers) {
		return nil, fmt.Errorf("cannot edit another user's profile: %w", domain.ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ve := domain.NewValidationError()
	if email != "" && !strings.Contains(email, "@") {
		ve.Add("email", "invalid email address")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if email != "" {
		user.Email = email
	}
	if fullName != "" {
		user.FullName = fullName
	}
	if membershipType != "" {
		user.MembershipType = membershipType
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Suspend(ctx context.Context, actorID, userID int64) error {
	return s.setStatus(ctx, actorID, userID, domain.UserStatusSuspended, "user.suspend")
}

func (s *userService) Reactivate(ctx context.Context, actorID, userID int64) error {
	return s.setStatus(ctx, actorID, userID, domain.UserStatusActive, "user.reactivate")
}

func (s *userService) setStatus(ctx context.Context, actorID, userID int64, status domain.UserStatus, action string) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !policy.CanPerform(actor.Role, policy.OpManageUsers) {
		return fmt.Errorf("role %s cannot manage accounts: %w", actor.Role, domain.ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}

	s.audit(ctx, actorID, action, fmt.Sprintf("set account %s to %s", user.Username, status))
	if err := s.emailSvc.SendAccountStatusNotification(ctx, user.Email, user.FullName, status); err != nil {
		logger.Warn("account status notification failed", "user_id", userID, "error", err)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, actorID, userID int64) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actorID != userID && !policy.CanPerform(actor.Role, policy.OpManageUsers) {
		return fmt.Errorf("role %s cannot delete accounts: %w", actor.Role, domain.ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	s.audit(ctx, actorID, "user.delete", fmt.Sprintf("deleted account %s", user.Username))
	return nil
}

func (s *userService) List(ctx context.Context, actorID int64, role domain.Role, page, pageSize int) ([]domain.User, int64, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !policy.CanPerform(actor.Role, policy.OpManageUsers) {
		return nil, 0, fmt.Errorf("role %s cannot list accounts: %w", actor.Role, domain.ErrForbidden)
	}
	return s.userRepo.List(ctx, role, page, pageSize)
}

func (s *userService) audit(ctx context.Context, actorID int64, action, description string) {
	entry := &domain.AuditEntry{UserID: actorID, Action: action, Description: description}
	if err := s.auditRepo.Record(ctx, entry); err != nil {
		logger.Warn("audit record failed", "action", action, "error", err)
	}
}
