package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"travel-blog-server/auth"
	"travel-blog-server/logging"
	"travel-blog-server/models"
	"travel-blog-server/repository"
	apierrors "travel-blog-server/utils/errors"
	"travel-blog-server/validation"
)

var errInvalidCredentials = apierrors.NewAPIError("INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized)

type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type RegisterInput struct {
	Username        string `json:"username" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// bcrypt rejects passwords longer than this many bytes.
const maxPasswordBytes = 72

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apierrors.Invalid("PASSWORD_TOO_LONG", "Password must be at most 72 bytes")
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	if exists {
		return nil, apierrors.NewAPIError("USER_EXISTS", "User already exists", http.StatusConflict)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierrors.Internal(err, "HASH_ERROR")
	}

	user := &models.User{
		Username:         in.Username,
		Email:            in.Email,
		PasswordHash:     string(passwordHash),
		ProfilePhoto:     models.DefaultProfilePhoto,
		CoverPhoto:       models.DefaultCoverPhoto,
		Interests:        []string{},
		VisitedCountries: []string{},
		BucketList:       []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.NewAPIError("USER_EXISTS", "User already exists", http.StatusConflict)
		}
		return nil, apierrors.Internal(err, "DB_ERROR")
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID.Hex()).Str("username", user.Username).Msg("User registered")
	return user, nil
}

// Login authenticates a user by email and returns a signed token
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		logging.Ctx(ctx).Warn().Str("user_id", user.ID.Hex()).Msg("Failed login attempt")
		return nil, errInvalidCredentials
	}

	token, err := auth.Issue(s.jwtSecret, user.ID.Hex(), user.Username, s.tokenTTL)
	if err != nil {
		return nil, apierrors.Internal(err, "JWT_ERROR")
	}
	return &LoginResult{Token: token, User: user.Summary()}, nil
}
