package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/projection"
	"github.com/vidtube/backend/internal/repositories"
)

// RegisterInput is the registration payload. AvatarPath and CoverImagePath are
// staged local files; the service takes ownership of them.
type RegisterInput struct {
	Username       string `json:"username" validate:"required,min=3,max=30"`
	Email          string `json:"email" validate:"required,email"`
	FullName       string `json:"fullName" validate:"required,max=100"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	AvatarPath     string `json:"avatar" validate:"required"`
	CoverImagePath string `json:"coverImage"`
}

// LoginInput identifies an account by username or email.
type LoginInput struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountInput changes the editable profile fields.
type UpdateAccountInput struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

// ChangePasswordInput replaces the password after verifying the current one.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UserService implements registration, sessions and account management.
type UserService struct {
	users     repositories.UserRepository
	videos    repositories.VideoRepository
	subs      repositories.SubscriptionRepository
	sessions  *auth.Manager
	assets    AssetStore
	janitor   AssetCleaner
	assembler *projection.Assembler
	now       func() time.Time
}

// Register creates an account. Uploaded assets are deleted again if any later step fails.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "users.register")
	defer span.End()
	logger := logging.FromContext(ctx)

	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := validateInput(in); err != nil {
		discard(in.AvatarPath, in.CoverImagePath)
		return models.User{}, err
	}

	if _, err := s.users.FindByLogin(ctx, in.Username, in.Email); err == nil {
		discard(in.AvatarPath, in.CoverImagePath)
		return models.User{}, apierrors.Conflict("user with email or username already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		discard(in.AvatarPath, in.CoverImagePath)
		return models.User{}, apierrors.Internal("failed to check existing users", err)
	}

	avatar, err := s.assets.Upload(ctx, in.AvatarPath)
	if err != nil {
		discard(in.CoverImagePath)
		return models.User{}, apierrors.Internal("failed to upload avatar", err)
	}

	var cover models.Asset
	if in.CoverImagePath != "" {
		cover, err = s.assets.Upload(ctx, in.CoverImagePath)
		if err != nil {
			deleteAssets(ctx, s.assets, avatar)
			return models.User{}, apierrors.Internal("failed to upload cover image", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		deleteAssets(ctx, s.assets, avatar, cover)
		return models.User{}, apierrors.Internal("failed to secure password", err)
	}

	now := s.now()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hashed),
		Avatar:       avatar,
		CoverImage:   cover,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		deleteAssets(ctx, s.assets, avatar, cover)
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, apierrors.Conflict("user with email or username already exists")
		}
		return models.User{}, apierrors.Internal("failed to create user", err)
	}

	logger.Info("user registered", "userId", user.ID)
	return user, nil
}

// Login verifies credentials and issues a session.
func (s *UserService) Login(ctx context.Context, in LoginInput) (models.User, models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "users.login")
	defer span.End()

	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	user, err := s.verifyCredentials(ctx, in)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}
	if !user.IsActive {
		return models.User{}, models.SessionTokens{}, apierrors.Forbidden("account is deactivated")
	}

	tokens, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return models.User{}, models.SessionTokens{}, apierrors.Internal("failed to create session", err)
	}
	user.RefreshToken = tokens.RefreshToken

	logging.FromContext(ctx).Info("user logged in", "userId", user.ID)
	return user, tokens, nil
}

// Logout revokes the stored refresh token of userID.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return storeError("user", err)
	}
	return nil
}

// Refresh rotates a session. Every failure is reported as Unauthorized.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "users.refresh")
	defer span.End()

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return models.SessionTokens{}, apierrors.Unauthorized("refresh token is required")
	}

	tokens, user, err := s.sessions.Refresh(ctx, refreshToken)
	if err != nil {
		logger := logging.FromContext(ctx)
		switch {
		case errors.Is(err, auth.ErrTokenReused):
			logger.Warn("refresh token reuse rejected", "error", err)
			return models.SessionTokens{}, apierrors.Unauthorized("refresh token is expired or used")
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInactiveUser), errors.Is(err, repositories.ErrNotFound):
			logger.Warn("refresh rejected", "error", err)
		default:
			logger.Error("refresh failed", "error", err)
		}
		apiErr := apierrors.Unauthorized("invalid refresh token")
		apiErr.Err = err
		return models.SessionTokens{}, apiErr
	}

	logging.FromContext(ctx).Info("session refreshed", "userId", user.ID)
	return tokens, nil
}

// Current returns the profile of userID.
func (s *UserService) Current(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, storeError("user", err)
	}
	return user, nil
}

// UpdateAccount changes the full name and email of userID.
func (s *UserService) UpdateAccount(ctx context.Context, userID string, in UpdateAccountInput) (models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}

	user, err := s.users.UpdateAccount(ctx, userID, in.FullName, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, apierrors.Conflict("email is already in use")
		}
		return models.User{}, storeError("user", err)
	}
	return user, nil
}

// ChangePassword verifies the old password before storing a hash of the new one.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return storeError("user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)) != nil {
		return apierrors.Unauthorized("invalid old password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apierrors.Internal("failed to secure password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return storeError("user", err)
	}
	return nil
}

// UpdateAvatar replaces the avatar with the staged file at localPath.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, localPath string) (models.User, error) {
	return s.replaceImage(ctx, userID, localPath, "avatar",
		func(u models.User) models.Asset { return u.Avatar },
		s.users.UpdateAvatar)
}

// UpdateCoverImage replaces the cover image with the staged file at localPath.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID, localPath string) (models.User, error) {
	return s.replaceImage(ctx, userID, localPath, "cover image",
		func(u models.User) models.Asset { return u.CoverImage },
		s.users.UpdateCoverImage)
}

func (s *UserService) replaceImage(
	ctx context.Context,
	userID, localPath, field string,
	previous func(models.User) models.Asset,
	store func(context.Context, string, models.Asset) (models.User, error),
) (models.User, error) {
	if localPath == "" {
		return models.User{}, apierrors.Invalid(field + " file is missing")
	}

	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		discard(localPath)
		return models.User{}, storeError("user", err)
	}

	asset, err := s.assets.Upload(ctx, localPath)
	if err != nil {
		return models.User{}, apierrors.Internal("failed to upload "+field, err)
	}

	updated, err := store(ctx, userID, asset)
	if err != nil {
		deleteAssets(ctx, s.assets, asset)
		return models.User{}, storeError("user", err)
	}

	retire(ctx, s.janitor, previous(current))
	return updated, nil
}

// Deactivate soft-deletes userID and revokes its session.
func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return storeError("user", err)
	}
	logging.FromContext(ctx).Info("user deactivated", "userId", userID)
	return nil
}

// Reactivate restores a deactivated account after verifying its credentials.
func (s *UserService) Reactivate(ctx context.Context, in LoginInput) (models.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}

	user, err := s.verifyCredentials(ctx, in)
	if err != nil {
		return models.User{}, err
	}
	if user.IsActive {
		return user, nil
	}

	if err := s.users.SetActive(ctx, user.ID, true); err != nil {
		return models.User{}, storeError("user", err)
	}
	user.IsActive = true
	logging.FromContext(ctx).Info("user reactivated", "userId", user.ID)
	return user, nil
}

// Channel returns the public channel page of username as seen by viewerID.
func (s *UserService) Channel(ctx context.Context, viewerID, username string) (models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return models.ChannelProfile{}, apierrors.Invalid("username is missing")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return models.ChannelProfile{}, storeError("channel", err)
	}

	subscribedTo, err := s.subs.CountSubscribedTo(ctx, user.ID)
	if err != nil {
		return models.ChannelProfile{}, storeError("subscription", err)
	}

	profile, err := s.assembler.ChannelProfile(ctx, viewerID, user, subscribedTo)
	if err != nil {
		return models.ChannelProfile{}, apierrors.Internal("failed to load channel", err)
	}
	return profile, nil
}

// WatchHistory returns the videos userID watched, most recent first.
func (s *UserService) WatchHistory(ctx context.Context, userID string) ([]models.VideoCard, error) {
	ids, err := s.users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, storeError("user", err)
	}

	videos, err := s.videos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("video", err)
	}

	cards, err := s.assembler.VideoCards(ctx, orderedVisible(ids, videos, userID))
	if err != nil {
		return nil, apierrors.Internal("failed to load watch history", err)
	}
	return cards, nil
}

func (s *UserService) verifyCredentials(ctx context.Context, in LoginInput) (models.User, error) {
	user, err := s.users.FindByLogin(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apierrors.NotFound("user does not exist")
		}
		return models.User{}, apierrors.Internal("failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		logging.FromContext(ctx).Warn("password mismatch", "userId", user.ID)
		return models.User{}, apierrors.Unauthorized("invalid user credentials")
	}
	return user, nil
}
