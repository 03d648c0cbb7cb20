package service

import (
	"context"
	"errors"

	userserrors "busline/internal/users/errors"
	"busline/internal/users/repository"
	"busline/internal/users/validator"
	"busline/pkg/auth"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	"busline/pkg/model"
	"busline/pkg/sanitizer"
)

const invalidCredentialsMsg = "invalid email or password"

type UserService interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error)
	SignIn(ctx context.Context, req *model.SignInRequest) (*auth.AccessToken, *model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, updates *model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, validator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateSignUp(req); err != nil {
		s.cfg.Log.Warn("Sign-up validation failed", "error", err)
		return nil, apperrors.Validation("Invalid sign-up input", map[string]any{"error": err.Error()})
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         config.RoleUser,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User signed up", "id", user.ID, "email", user.Email)
	return user, nil
}

func (s *userService) SignIn(ctx context.Context, req *model.SignInRequest) (*auth.AccessToken, *model.User, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateSignIn(req); err != nil {
		return nil, nil, apperrors.Validation("Invalid sign-in input", map[string]any{"error": err.Error()})
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			// Same message as a wrong password so the response does
			// not reveal whether the account exists.
			return nil, nil, apperrors.Unauthorized(invalidCredentialsMsg)
		}
		s.cfg.Log.Error("Failed to look up user", "error", err)
		return nil, nil, apperrors.Internal("Failed to sign in", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, nil, apperrors.Unauthorized(invalidCredentialsMsg)
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.JWTTTL)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User signed in", "id", user.ID)
	return &token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, updates *model.UserUpdate) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	updates.Name = sanitizer.NormalizeName(updates.Name)
	updates.Email = sanitizer.NormalizeEmail(updates.Email)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("User update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updates.Name != "" {
		existing.Name = updates.Name
	}
	if updates.Email != "" {
		existing.Email = updates.Email
	}
	if updates.Password != "" {
		hash, err := auth.HashPassword(updates.Password, s.cfg.BcryptCost)
		if err != nil {
			return nil, apperrors.Internal("Failed to hash password", err)
		}
		existing.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, id, existing); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		s.cfg.Log.Error("Failed to update user", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update user", err)
	}

	s.cfg.Log.Info("User updated", "id", id)
	return existing, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		s.cfg.Log.Error("Failed to delete user", "id", id, "error", err)
		return apperrors.Internal("Failed to delete user", err)
	}

	s.cfg.Log.Info("User deleted", "id", id)
	return nil
}
