package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cardapio/internal/apperror"
	"cardapio/internal/models"
	"cardapio/internal/repositories"
)

// UserUpdate carries the fields to change; nil fields are left untouched.
type UserUpdate struct {
	Name      *string
	Email     *string
	Phone     *string
	BirthDate *time.Time
	Role      *models.Role
	Password  *string
}

// UserService manages accounts on behalf of their owners and admins.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List returns every user. Admins only.
func (s *UserService) List(ctx context.Context, actor Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Authorization("only admins can list users")
	}
	return s.userRepo.List(ctx)
}

// Get retrieves a user visible to actor.
func (s *UserService) Get(ctx context.Context, actor Actor, id string) (*models.User, error) {
	if err := actor.authorizeOwner(id, "user "+id); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// Update applies patch to the user. Only admins may change a role.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, patch UserUpdate) (*models.User, error) {
	if err := actor.authorizeOwner(id, "user "+id); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Role != nil && *patch.Role != user.Role {
		if !actor.IsAdmin() {
			return nil, apperror.Authorization("only admins can change roles")
		}
		if !patch.Role.Valid() {
			return nil, apperror.Validation("invalid role %q", *patch.Role)
		}
		user.Role = *patch.Role
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, apperror.Validation("name must not be empty")
		}
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.BirthDate != nil {
		user.BirthDate = patch.BirthDate
	}
	if patch.Password != nil {
		if err := CheckPassword(*patch.Password); err != nil {
			return nil, err
		}
		hashed, err := HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return user, nil
}

// Delete removes the user together with its addresses. Users with orders are kept.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := actor.authorizeOwner(id, "user "+id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}
