package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cecilia/internal/models"
	"cecilia/internal/repository"
	"cecilia/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

const emailTakenMessage = "Email is already in use"

type UserService struct {
	userRepo repository.UserRepository
	cost     int
}

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
}

// UpdateUserInput changes only the non-nil fields. An empty Name clears it.
type UpdateUserInput struct {
	Email    *string
	Name     *string
	Password *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, cost: BcryptCost}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByEmail normalizes email before the lookup.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := validation.NormalizeEmail(in.Email)

	var fields []models.FieldError
	if err := validation.ValidateEmail(email); err != nil {
		fields = append(fields, models.FieldError{Field: "email", Message: err.Error()})
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields = append(fields, models.FieldError{Field: "password", Message: err.Error()})
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError("Invalid user data", fields...)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Name:     strings.TrimSpace(in.Name),
		Password: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, models.NewConflictError(emailTakenMessage)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var fields []models.FieldError
	if in.Email != nil {
		email := validation.NormalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			fields = append(fields, models.FieldError{Field: "email", Message: err.Error()})
		} else {
			user.Email = email
		}
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			fields = append(fields, models.FieldError{Field: "password", Message: err.Error()})
		}
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError("Invalid user data", fields...)
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Password != nil {
		if user.Password, err = s.hash(*in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, models.NewConflictError(emailTakenMessage)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.userRepo.Delete(ctx, id)
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	return string(hash), nil
}
