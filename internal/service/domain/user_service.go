package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/repository"
	"github.com/qs-lzh/movie-review/internal/service"
)

// UpdateProfileInput holds the profile fields a user may change. Blank fields are left as they are.
type UpdateProfileInput struct {
	Username       string
	Email          string
	ProfilePicture string
}

type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*model.User, []model.Review, error)
	UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*model.User, error)
	ReviewedMovieIDs(ctx context.Context, userID uint) ([]uint, error)
}

type userService struct {
	repo       repository.UserRepo
	reviewRepo repository.ReviewRepo
}

var _ UserService = (*userService)(nil)

func NewUserService(userRepo repository.UserRepo, reviewRepo repository.ReviewRepo) *userService {
	return &userService{
		repo:       userRepo,
		reviewRepo: reviewRepo,
	}
}

var errUserNotFound = &service.NotFoundError{Message: "User not found"}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*model.User, []model.Review, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errUserNotFound
		}
		return nil, nil, err
	}
	reviews, err := s.reviewRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list reviews: %w", err)
	}
	return user, reviews, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*model.User, error) {
	fields := map[string]any{}
	if v := strings.TrimSpace(in.Username); v != "" {
		fields["username"] = v
	}
	if v := model.NormalizeEmail(in.Email); v != "" {
		fields["email"] = v
	}
	if v := strings.TrimSpace(in.ProfilePicture); v != "" {
		fields["profile_picture"] = v
	}

	user, err := s.repo.Update(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &service.ConflictError{Message: "Username or email is already in use."}
		}
		return nil, err
	}
	return user, nil
}

// ReviewedMovieIDs lists the movies whose review lists show this user.
func (s *userService) ReviewedMovieIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.reviewRepo.ListMovieIDsByUserID(ctx, userID)
}

// ChangesReviewer reports whether the update touches fields shown next to the user's reviews.
func (in UpdateProfileInput) ChangesReviewer() bool {
	return strings.TrimSpace(in.Username) != "" || strings.TrimSpace(in.ProfilePicture) != ""
}
