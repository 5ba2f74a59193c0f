package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"foodgram/internal/apperr"
	"foodgram/internal/auth"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/validation"
)

const avatarPrefix = "users/avatars"

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// UserView is a user as seen by a particular viewer.
type UserView struct {
	User         *models.User
	IsSubscribed bool
}

type UserService struct {
	users         repository.UserRepository
	subscriptions repository.RelationRepository[string]
	images        ImageUploader
	validator     *validation.Validator
	logger        *slog.Logger
}

func NewUserService(users repository.UserRepository, subscriptions repository.RelationRepository[string], images ImageUploader, v *validation.Validator, logger *slog.Logger) *UserService {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, subscriptions: subscriptions, images: images, validator: v, logger: logger}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if err := validation.CheckUsername(in.Username); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if err := s.ensureFree(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  hash,
	}
	// The unique indexes still decide a race between two registrations.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user_registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

func (s *UserService) ensureFree(ctx context.Context, username, email string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return apperr.ErrUsernameTaken
	} else if !errors.Is(err, apperr.ErrUserNotFound) {
		return err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return apperr.ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrUserNotFound) {
		return err
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, viewer Viewer, id string) (*UserView, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &UserView{User: user}
	if !viewer.IsAnonymous() && viewer.UserID != id {
		ok, err := s.subscriptions.Exists(ctx, viewer.UserID, id)
		if err != nil {
			return nil, err
		}
		view.IsSubscribed = ok
	}
	return view, nil
}

// SetAvatar stores an inline image and points the user at it.
func (s *UserService) SetAvatar(ctx context.Context, userID, image string) (string, error) {
	if image == "" {
		return "", apperr.ErrInvalidImage.WithField("avatar").WithMessage("avatar is required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	current := ""
	if user.Avatar != nil {
		current = *user.Avatar
	}
	ref, err := s.images.Save(ctx, avatarPrefix, image, current)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateAvatar(ctx, userID, &ref); err != nil {
		return "", err
	}
	s.dropAvatar(ctx, user.Avatar, ref)
	return ref, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.UpdateAvatar(ctx, userID, nil); err != nil {
		return err
	}
	s.dropAvatar(ctx, user.Avatar, "")
	return nil
}

func (s *UserService) dropAvatar(ctx context.Context, old *string, keep string) {
	if old == nil || *old == "" || *old == keep {
		return
	}
	if err := s.images.Delete(ctx, *old); err != nil {
		s.logger.Warn("avatar_cleanup_failed", slog.String("avatar", *old), slog.Any("error", err))
	}
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, in PasswordChange) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(user.Password, in.CurrentPassword); err != nil {
		return apperr.Validation("current_password", "current password is incorrect")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Info("password_changed", slog.String("user_id", userID))
	return nil
}

// Promote grants the admin role.
func (s *UserService) Promote(ctx context.Context, username string) error {
	if err := s.users.UpdateRole(ctx, username, models.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("user_promoted", slog.String("username", username))
	return nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}
