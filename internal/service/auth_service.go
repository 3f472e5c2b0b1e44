package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"inkwell/api/internal/apperrors"
	"inkwell/api/internal/config"
	"inkwell/api/internal/ids"
	"inkwell/api/internal/mail"
	"inkwell/api/internal/models"
	"inkwell/api/internal/repository"
	"inkwell/api/internal/security"
)

type AuthService struct {
	users  repository.UserStore
	mailer mail.Sender
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewAuthService(users repository.UserStore, mailer mail.Sender, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		mailer: mailer,
		cfg:    cfg,
		log:    log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// Register creates the user and issues an access token only. Obtaining a
// refresh token requires a subsequent login; registration does not enter the
// rotation path.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, string, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return models.User{}, "", apperrors.BadRequest("All fields are required!")
	}

	role := input.Role
	if role == "" {
		role = models.RoleReader
	}
	if !role.Valid() {
		return models.User{}, "", apperrors.BadRequest("Invalid role")
	}

	taken, err := s.users.UsernameOrEmailTaken(ctx, input.Username, input.Email)
	if err != nil {
		return models.User{}, "", apperrors.Internal("Error while registering user", err)
	}
	if taken {
		return models.User{}, "", apperrors.BadRequest("Username or email already in use!")
	}

	passwordHash, err := security.HashPassword(input.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		return models.User{}, "", apperrors.Internal("Error while registering user", err)
	}

	user := models.User{
		ID:            ids.New(),
		Username:      input.Username,
		Email:         input.Email,
		PasswordHash:  passwordHash,
		Role:          role,
		RefreshTokens: []string{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, "", apperrors.Internal("Error while registering user", err)
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID, user.Username, user.Email, string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return models.User{}, "", apperrors.Internal("Error while registering user", err)
	}

	return user, accessToken, nil
}

// Login verifies credentials and enters the rotation path to mint a fresh
// access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	if username == "" || password == "" {
		return "", "", apperrors.BadRequest("All credentials are required!")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", apperrors.NotFound("User not found")
		}
		return "", "", apperrors.Internal("Error while logging in", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", "", apperrors.Internal("Error while logging in", err)
	}
	if !ok {
		return "", "", apperrors.Unauthorized("Incorrect password")
	}

	return s.rotateRefreshTokens(ctx, user.ID)
}

// rotateRefreshTokens re-reads the user, drops stored refresh tokens whose
// decoded expiry has passed, appends a freshly signed one and persists the
// token slice. Concurrent rotations for the same user interleave
// last-write-wins; the slice is not guarded by a transaction.
func (s *AuthService) rotateRefreshTokens(ctx context.Context, userID string) (string, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", apperrors.NotFound("User not found")
		}
		return "", "", apperrors.Internal("Error while generating tokens", err)
	}

	now := time.Now()
	live := make([]string, 0, len(user.RefreshTokens)+1)
	for _, token := range user.RefreshTokens {
		if !security.RefreshTokenExpired(token, now) {
			live = append(live, token)
		}
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID, user.Username, user.Email, string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return "", "", apperrors.Internal("Error while generating tokens", err)
	}

	refreshToken, err := security.GenerateRefreshToken(
		s.cfg.Security.JWTRefreshSecret,
		user.ID,
		s.cfg.Security.JWTRefreshTTL,
	)
	if err != nil {
		return "", "", apperrors.Internal("Error while generating tokens", err)
	}

	live = append(live, refreshToken)
	if err := s.users.UpdateRefreshTokens(ctx, user.ID, live); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", apperrors.NotFound("User not found")
		}
		return "", "", apperrors.Internal("Error while generating tokens", err)
	}

	return accessToken, refreshToken, nil
}

// Refresh mints a new access token for a valid, still-stored refresh token.
// Signature validity alone is not enough: the exact token string must still
// be present in the user's stored slice, which is what makes server-side
// revocation possible. The refresh token itself is not rotated here.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.BadRequest("Refresh token is required")
	}

	claims, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		return "", apperrors.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperrors.Forbidden("Refresh token mismatch")
		}
		return "", apperrors.Internal("Error while refreshing token", err)
	}

	if !slices.Contains(user.RefreshTokens, refreshToken) {
		return "", apperrors.Forbidden("Refresh token mismatch")
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID, user.Username, user.Email, string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return "", apperrors.Internal("Error while refreshing token", err)
	}

	return accessToken, nil
}

// ForgotPassword stores a hashed single-use reset token on the user and
// mails the raw value. Mail failures are logged, never surfaced: the token
// is already persisted and the caller learns nothing about delivery.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.BadRequest("Email is required")
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Internal("Error while processing request", err)
	}

	rawToken, tokenHash, err := security.GenerateResetToken()
	if err != nil {
		return apperrors.Internal("Error while processing request", err)
	}

	expires := time.Now().Add(s.cfg.Security.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, tokenHash, expires); err != nil {
		return apperrors.Internal("Error while processing request", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.ClientURL, rawToken)
	body := fmt.Sprintf(
		"You requested a password reset. Click the link below to reset your password:\n\n%s\n\nIf you didn't request this, please ignore this email.",
		resetLink,
	)
	if err := s.mailer.Send(ctx, user.Email, "Password Reset Request", body); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password reset mail failed")
	}

	return nil
}

// ResetPassword redeems a raw reset token. Lookup is by hash and live
// expiry in one query, so a wrong token and an expired one produce the same
// response. The password update clears the reset fields, enforcing single
// use.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" || newPassword == "" {
		return apperrors.BadRequest("Token and new password are required")
	}

	tokenHash := security.HashResetToken(rawToken)
	user, err := s.users.FindByLiveResetToken(ctx, tokenHash, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.BadRequest("Invalid or expired reset token")
		}
		return apperrors.Internal("Error while resetting password", err)
	}

	passwordHash, err := security.HashPassword(newPassword, s.cfg.Security.BcryptCost)
	if err != nil {
		return apperrors.Internal("Error while resetting password", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return apperrors.Internal("Error while resetting password", err)
	}

	return nil
}
