package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-review/internal/model"
)

type ReviewRepo interface {
	WithTx(tx *gorm.DB) ReviewRepo
	Create(ctx context.Context, review *model.Review) error
	ExistsForUserAndMovie(ctx context.Context, userID, movieID uint) (bool, error)
	ListByMovieID(ctx context.Context, movieID uint) ([]model.Review, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.Review, error)
	ListMovieIDsByUserID(ctx context.Context, userID uint) ([]uint, error)
}

type reviewRepoGorm struct {
	db *gorm.DB
}

var _ ReviewRepo = (*reviewRepoGorm)(nil)

func NewReviewRepoGorm(db *gorm.DB) *reviewRepoGorm {
	return &reviewRepoGorm{
		db: db,
	}
}

func (r *reviewRepoGorm) WithTx(tx *gorm.DB) ReviewRepo {
	return &reviewRepoGorm{
		db: tx,
	}
}

func (r *reviewRepoGorm) Create(ctx context.Context, review *model.Review) error {
	if err := gorm.G[model.Review](r.db).Create(ctx, review); err != nil {
		return err
	}
	return nil
}

func (r *reviewRepoGorm) ExistsForUserAndMovie(ctx context.Context, userID, movieID uint) (bool, error) {
	n, err := gorm.G[model.Review](r.db).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(ctx, "*")
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByMovieID returns a movie's reviews newest first, each with its reviewer's
// username and profile picture.
func (r *reviewRepoGorm) ListByMovieID(ctx context.Context, movieID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "profile_picture")
		}).
		Where("movie_id = ?", movieID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByUserID returns a user's reviews newest first, each with a movie summary.
func (r *reviewRepoGorm) ListByUserID(ctx context.Context, userID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("Movie", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "poster_url", "average_rating", "release_year")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepoGorm) ListMovieIDsByUserID(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("user_id = ?", userID).
		Pluck("movie_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
