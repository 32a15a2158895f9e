package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/repository"
	"github.com/qs-lzh/movie-review/internal/service"
)

type AddReviewInput struct {
	MovieID    uint
	UserID     uint
	Rating     int
	ReviewText string
}

type ReviewService interface {
	AddReview(ctx context.Context, in AddReviewInput) (*model.Review, *model.Movie, error)
}

type reviewService struct {
	db        *gorm.DB
	repo      repository.ReviewRepo
	movieRepo repository.MovieRepo
}

var _ ReviewService = (*reviewService)(nil)

func NewReviewService(db *gorm.DB, reviewRepo repository.ReviewRepo, movieRepo repository.MovieRepo) *reviewService {
	return &reviewService{
		db:        db,
		repo:      reviewRepo,
		movieRepo: movieRepo,
	}
}

var errAlreadyReviewed = &service.ConflictError{Message: "You have already reviewed this movie."}

// AddReview stores the review and rewrites the movie's aggregate rating in the
// same transaction. It returns the movie as it is after the update.
func (s *reviewService) AddReview(ctx context.Context, in AddReviewInput) (*model.Review, *model.Movie, error) {
	review := &model.Review{
		UserID:     in.UserID,
		MovieID:    in.MovieID,
		Rating:     in.Rating,
		ReviewText: in.ReviewText,
		Timestamp:  time.Now(),
	}
	if v := review.Validate(); !v.Empty() {
		return nil, nil, service.NewValidationError(
			fmt.Sprintf("Rating must be between %d and %d", model.MinRating, model.MaxRating), v)
	}

	var movie *model.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := s.repo.WithTx(tx)
		movies := s.movieRepo.WithTx(tx)

		// the row lock orders concurrent rating rewrites of this movie
		if _, err := movies.GetByIDForUpdate(ctx, in.MovieID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errMovieNotFound
			}
			return err
		}

		exists, err := reviews.ExistsForUserAndMovie(ctx, in.UserID, in.MovieID)
		if err != nil {
			return err
		}
		if exists {
			return errAlreadyReviewed
		}

		if err := reviews.Create(ctx, review); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyReviewed
			}
			return err
		}
		if err := movies.RecomputeRating(ctx, in.MovieID); err != nil {
			return fmt.Errorf("recompute rating: %w", err)
		}

		movie, err = movies.GetByID(ctx, in.MovieID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return review, movie, nil
}
