package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/internal/cache"
	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/service/domain"
)

// UserWorkflow updates profiles and drops the cached movie details that show
// the old username or picture next to the user's reviews.
type UserWorkflow struct {
	userService domain.UserService
	cache       *cache.RedisCache
	log         *zap.Logger
}

func NewUserWorkflow(userService domain.UserService, cache *cache.RedisCache, log *zap.Logger) *UserWorkflow {
	return &UserWorkflow{
		userService: userService,
		cache:       cache,
		log:         log,
	}
}

func (w *UserWorkflow) UpdateProfile(ctx context.Context, userID uint, in domain.UpdateProfileInput) (*model.User, error) {
	user, err := w.userService.UpdateProfile(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if !in.ChangesReviewer() {
		return user, nil
	}

	movieIDs, err := w.userService.ReviewedMovieIDs(ctx, userID)
	if err != nil {
		w.log.Warn("failed to list reviewed movies", zap.Uint("user_id", userID), zap.Error(err))
		return user, nil
	}
	if err := w.cache.InvalidateMovieDetails(ctx, movieIDs...); err != nil {
		w.log.Warn("failed to invalidate reviewed movies",
			zap.Uint("user_id", userID),
			zap.Int("movies", len(movieIDs)),
			zap.Error(err),
		)
	}
	return user, nil
}
