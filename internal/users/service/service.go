package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"alerthub_backend/internal/users/repository"
	"alerthub_backend/platform/apperr"
	"alerthub_backend/platform/logger"
	"alerthub_backend/platform/phone"
)

const bcryptCost = 10

// defaultRoleID is the citizen role; admin-created accounts fall back to it
// when no role is given.
const defaultRoleID = 2

// Repository is the persistence surface the service needs.
type Repository interface {
	List(ctx context.Context) ([]repository.User, error)
	GetByID(ctx context.Context, userID int64) (repository.User, error)
	Create(ctx context.Context, firstName, lastName, email, passwordHash string, phone *string, roleID int64) (repository.User, error)
	Update(ctx context.Context, userID int64, fields repository.UpdateFields) (repository.User, error)
	SetActive(ctx context.Context, userID int64, active bool) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type Service struct {
	repo Repository
	log  *logger.Logger
}

func New(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns every account for the admin panel.
func (s *Service) List(ctx context.Context) ([]repository.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list users", err)
	}
	return users, nil
}

// CreateInput carries the validated admin-create fields.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	RoleID    *int64
}

// Create makes an active account on behalf of an admin.
func (s *Service) Create(ctx context.Context, in CreateInput) (repository.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	roleID := int64(defaultRoleID)
	if in.RoleID != nil {
		roleID = *in.RoleID
	}

	var phonePtr *string
	if normalized := phone.NormalizeE164(in.Phone); normalized != "" {
		phonePtr = &normalized
	}

	user, err := s.repo.Create(ctx,
		strings.TrimSpace(in.FirstName),
		strings.TrimSpace(in.LastName),
		strings.ToLower(strings.TrimSpace(in.Email)),
		string(hash),
		phonePtr,
		roleID,
	)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return repository.User{}, apperr.Conflict("email already registered")
		case errors.Is(err, repository.ErrBadRole):
			return repository.User{}, apperr.Validation("role does not exist")
		}
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "create user", err)
	}
	return user, nil
}

// UpdateInput carries the optional admin-editable fields.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	RoleID    *int64
}

// Update patches an account's basic fields.
func (s *Service) Update(ctx context.Context, userID int64, in UpdateInput) (repository.User, error) {
	fields := repository.UpdateFields{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		RoleID:    in.RoleID,
	}
	if in.Phone != nil {
		normalized := phone.NormalizeE164(*in.Phone)
		fields.Phone = &normalized
	}

	user, err := s.repo.Update(ctx, userID, fields)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return repository.User{}, apperr.NotFound("user not found")
		case errors.Is(err, repository.ErrBadRole):
			return repository.User{}, apperr.Validation("role does not exist")
		}
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "update user", err)
	}
	return user, nil
}

// ChangeStatus activates or deactivates an account.
func (s *Service) ChangeStatus(ctx context.Context, userID int64, active bool) error {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Wrap(apperr.KindInternal, "change user status", err)
	}
	return nil
}

// GetProfile loads the caller's own account; inactive accounts are rejected.
func (s *Service) GetProfile(ctx context.Context, userID int64) (repository.User, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return repository.User{}, err
	}
	return user, nil
}

// UpdateProfile edits the caller's own name and phone.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, firstName, lastName, rawPhone string) (repository.User, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return repository.User{}, err
	}

	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)
	var phonePtr *string
	normalized := phone.NormalizeE164(rawPhone)
	phonePtr = &normalized

	user, err := s.repo.Update(ctx, userID, repository.UpdateFields{
		FirstName: &first,
		LastName:  &last,
		Phone:     phonePtr,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, apperr.NotFound("user not found")
		}
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "update profile", err)
	}
	return user, nil
}

// ChangePassword sets a new password for the caller. When the current
// password is provided it must match.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}

	if currentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
			return apperr.BadRequest("current password is incorrect")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return apperr.Wrap(apperr.KindInternal, "update password", err)
	}

	s.log.AuthEvent("change_password", user.Email, true, "")
	return nil
}

// DeactivateAccount is the self-service soft delete: the row stays, the
// account can no longer sign in usefully.
func (s *Service) DeactivateAccount(ctx context.Context, userID int64) error {
	if err := s.repo.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Wrap(apperr.KindInternal, "deactivate account", err)
	}
	return nil
}

func (s *Service) activeUser(ctx context.Context, userID int64) (repository.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, apperr.NotFound("user not found")
		}
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "load user", err)
	}
	if !user.Active {
		return repository.User{}, apperr.Forbidden("account is inactive")
	}
	return user, nil
}
