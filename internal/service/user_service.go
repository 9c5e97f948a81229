package service

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"feather-finance/internal/dto"
	"feather-finance/internal/entity"
	"feather-finance/internal/repository"
	"feather-finance/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	maxUsernameLength = 50
	maxEmailLength    = 100
	minPasswordLength = 8
	maxPasswordBytes  = 72
)

// UserService manages accounts. It hashes passwords but performs no login.
type UserService interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, id uint) (*dto.UserResponse, error)
}

type userService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	logger     *logger.Logger
}

// NewUserService creates a new user service. A cost outside bcrypt's range
// falls back to bcrypt.DefaultCost.
func NewUserService(userRepo repository.UserRepository, bcryptCost int, logger *logger.Logger) UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case username == "":
		return nil, validationError("username is required")
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return nil, validationError("username exceeds %d characters", maxUsernameLength)
	case email == "":
		return nil, validationError("email is required")
	case utf8.RuneCountInString(email) > maxEmailLength:
		return nil, validationError("email exceeds %d characters", maxEmailLength)
	case utf8.RuneCountInString(req.Password) < minPasswordLength:
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	case len(req.Password) > maxPasswordBytes:
		return nil, validationError("password must be at most %d bytes", maxPasswordBytes)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, validationError("email %q is not a valid address", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create user", logger.ErrorField(err), logger.StringField("username", username))
		return nil, err
	}

	s.logger.InfoContext(ctx, "User created", logger.Field("user_id", user.ID))
	return toUserResponse(user), nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func toUserResponse(user *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
