package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-review/internal/auth"
	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/repository"
	"github.com/qs-lzh/movie-review/internal/service"
)

type SignupInput struct {
	Username       string
	Email          string
	Password       string
	ProfilePicture string
}

type LoginResult struct {
	Token string
	User  model.PublicUser
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	EnsureAdmin(ctx context.Context, username, email, password string) (created bool, err error)
}

type authService struct {
	repo repository.UserRepo
	jwt  *auth.JWTService
}

var _ AuthService = (*authService)(nil)

func NewAuthService(userRepo repository.UserRepo, jwtService *auth.JWTService) *authService {
	return &authService{
		repo: userRepo,
		jwt:  jwtService,
	}
}

var errPasswordTooLong = fmt.Sprintf("Password must be at most %d bytes.", model.MaxPasswordBytes)

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	if v := model.ValidateSignup(in.Username, in.Email, in.Password); !v.Empty() {
		if v.Missing() {
			return nil, service.NewValidationError("Email, password, and username are required.", v)
		}
		return nil, service.NewValidationError(errPasswordTooLong, v)
	}

	email := model.NormalizeEmail(in.Email)
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, &service.ConflictError{Message: "Email is already registered. Please use a different one."}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       strings.TrimSpace(in.Username),
		Email:          email,
		Password:       hashed,
		Role:           model.RoleUser,
		ProfilePicture: strings.TrimSpace(in.ProfilePicture),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &service.ConflictError{Message: "Username or email is already registered."}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, service.NewValidationError("Email & password are required.", nil)
	}

	user, err := s.repo.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &service.NotFoundError{Message: "User not found. Please check your email or register for a new account."}
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if !auth.CheckPassword(password, user.Password) {
		return nil, service.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user.Public()}, nil
}

// EnsureAdmin creates the configured admin account when no admin exists yet.
// Nothing happens when email or password is not configured.
func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	count, err := s.repo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if v := model.ValidatePassword(password); !v.Empty() {
		return false, service.NewValidationError("Admin "+strings.ToLower(errPasswordTooLong), v)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &model.User{
		Username: strings.TrimSpace(username),
		Email:    model.NormalizeEmail(email),
		Password: hashed,
		Role:     model.RoleAdmin,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
