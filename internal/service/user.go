package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"novara/internal/model"
	"novara/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo   repository.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.With().Str("component", "user_service").Logger(),
	}
}

// Register creates a new account. Email and username must both be unused.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, model.ErrInvalidRegistration
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, model.ErrEmailExists
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, model.ErrUsernameExists
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	}

	// The store enforces uniqueness too; a concurrent register surfaces here.
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailExists) || errors.Is(err, model.ErrUsernameExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Don't reveal whether the email exists or not
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile sets the caller's profile picture, typically a URL returned by
// an avatar upload.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error) {
	picture := req.ProfilePicture
	if picture != nil && *picture == "" {
		picture = nil
	}

	user, err := s.repo.UpdateProfilePicture(ctx, id, picture)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", id).Bool("has_picture", picture != nil).Msg("profile updated")
	return user, nil
}
