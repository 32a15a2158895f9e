package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/internal/cache"
	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/service"
	"github.com/qs-lzh/movie-review/internal/service/domain"
)

// ReviewWorkflow submits reviews one movie at a time. The per-movie lock keeps
// concurrent submissions from interleaving their rating recomputation.
type ReviewWorkflow struct {
	reviewService domain.ReviewService
	cache         *cache.RedisCache
	publisher     Publisher
	log           *zap.Logger
}

func NewReviewWorkflow(reviewService domain.ReviewService, cache *cache.RedisCache, publisher Publisher, log *zap.Logger) *ReviewWorkflow {
	return &ReviewWorkflow{
		reviewService: reviewService,
		cache:         cache,
		publisher:     publisher,
		log:           log,
	}
}

func (w *ReviewWorkflow) AddReview(ctx context.Context, in domain.AddReviewInput) (*model.Review, *model.Movie, error) {
	unlock, err := w.cache.LockMovieRating(ctx, in.MovieID)
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) {
			return nil, nil, fmt.Errorf("%w: %w", service.ErrBusy, err)
		}
		return nil, nil, fmt.Errorf("lock movie %d: %w", in.MovieID, err)
	}
	review, movie, err := w.reviewService.AddReview(ctx, in)
	if uerr := unlock(); uerr != nil {
		w.log.Warn("failed to release rating lock", zap.Uint("movie_id", in.MovieID), zap.Error(uerr))
	}
	if err != nil {
		return nil, nil, err
	}

	// the review is committed; stale reads are only a cache concern from here
	if err := w.cache.InvalidateMovie(ctx, movie.ID); err != nil {
		w.log.Warn("failed to invalidate movie cache", zap.Uint("movie_id", movie.ID), zap.Error(err))
	}
	if err := w.publisher.ReviewCreated(ctx, review, movie); err != nil {
		w.log.Error("failed to publish review created", zap.Uint("review_id", review.ID), zap.Error(err))
	}

	return review, movie, nil
}
