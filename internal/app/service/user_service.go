package service

import (
	"errors"

	"github.com/oboteam/guarantor-backend/internal/app/model"
	"github.com/oboteam/guarantor-backend/internal/app/repository"
	"github.com/oboteam/guarantor-backend/pkg/logger"
	"github.com/oboteam/guarantor-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrEmailAlreadyExists = errors.New("email already exists")

// CreateUserInput carries a new user's attributes
type CreateUserInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsActive    bool
	IsSuperuser bool
}

// UpdateUserInput carries a partial user update; nil fields are left unchanged
type UpdateUserInput struct {
	Email       *string
	Password    *string
	FirstName   *string
	LastName    *string
	IsActive    *bool
	IsSuperuser *bool
}

type UserService interface {
	ListUsers() ([]model.User, error)
	GetUser(id uint) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	CreateUser(input CreateUserInput) (*model.User, error)
	UpdateUser(id uint, input UpdateUserInput) (*model.User, error)
	DeleteUser(id uint) (*model.User, error)
	SetNewPassword(email, newPassword string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers() ([]model.User, error) {
	return s.userRepo.List()
}

func (s *userService) GetUser(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByEmail(email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) CreateUser(input CreateUserInput) (*model.User, error) {
	logger.Info("Creating user", map[string]interface{}{
		"email":        input.Email,
		"is_superuser": input.IsSuperuser,
	})

	existing, err := s.userRepo.FindByEmail(input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, err
	}
	if existing != nil {
		logger.Warn("User creation failed: email already exists", map[string]interface{}{
			"email": input.Email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, err
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     input.IsActive,
		IsSuperuser:  input.IsSuperuser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("User created successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return user, nil
}

func (s *userService) UpdateUser(id uint, input UpdateUserInput) (*model.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsSuperuser != nil {
		user.IsSuperuser = *input.IsSuperuser
	}
	if input.Password != nil {
		hashedPassword, err := util.HashPassword(*input.Password)
		if err != nil {
			logger.Error("Failed to hash password", err, map[string]interface{}{
				"user_id": id,
			})
			return nil, err
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User updated successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return user, nil
}

func (s *userService) DeleteUser(id uint) (*model.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Delete(id); err != nil {
		return nil, err
	}

	logger.Info("User deleted successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return user, nil
}

// SetNewPassword overwrites the password of the user identified by email
func (s *userService) SetNewPassword(email, newPassword string) (*model.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("Password updated successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return user, nil
}
