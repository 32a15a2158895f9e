package workflow

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/internal/cache"
	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/service/domain"
)

// MovieWorkflow serves catalog reads through the cache and announces new movies.
// A failing cache never fails a request; reads fall back to the database.
type MovieWorkflow struct {
	movieService domain.MovieService
	cache        *cache.RedisCache
	publisher    Publisher
	log          *zap.Logger
}

func NewMovieWorkflow(movieService domain.MovieService, cache *cache.RedisCache, publisher Publisher, log *zap.Logger) *MovieWorkflow {
	return &MovieWorkflow{
		movieService: movieService,
		cache:        cache,
		publisher:    publisher,
		log:          log,
	}
}

func (w *MovieWorkflow) CreateMovie(ctx context.Context, movie *model.Movie) error {
	if err := w.movieService.CreateMovie(ctx, movie); err != nil {
		return err
	}

	if err := w.cache.InvalidateMovie(ctx, movie.ID); err != nil {
		w.log.Warn("failed to invalidate movie cache", zap.Uint("movie_id", movie.ID), zap.Error(err))
	}
	if err := w.publisher.MovieCreated(ctx, movie); err != nil {
		w.log.Error("failed to publish movie created", zap.Uint("movie_id", movie.ID), zap.Error(err))
	}
	return nil
}

func (w *MovieWorkflow) ListMovies(ctx context.Context, q domain.ListMoviesQuery) (*domain.MoviePage, error) {
	q = q.Normalize()

	version, err := w.cache.ListVersion(ctx)
	if err != nil {
		w.log.Warn("failed to read list version", zap.Error(err))
		return w.movieService.ListMovies(ctx, q)
	}
	key := cache.MakeMovieListKey(version, listQueryKey(q))

	var page domain.MoviePage
	if err := w.cache.Get(ctx, key, &page); err == nil {
		return &page, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		w.log.Warn("failed to read cached movie list", zap.String("key", key), zap.Error(err))
	}

	result, err := w.movieService.ListMovies(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := w.cache.Set(ctx, key, result, cache.ListTTL); err != nil {
		w.log.Warn("failed to cache movie list", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

func (w *MovieWorkflow) GetMovieDetail(ctx context.Context, id uint) (*domain.MovieDetail, error) {
	key := cache.MakeMovieDetailKey(id)

	var detail domain.MovieDetail
	if err := w.cache.Get(ctx, key, &detail); err == nil {
		return &detail, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		w.log.Warn("failed to read cached movie", zap.String("key", key), zap.Error(err))
	}

	result, err := w.movieService.GetMovieDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.cache.Set(ctx, key, result, cache.DetailTTL); err != nil {
		w.log.Warn("failed to cache movie", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// listQueryKey encodes a normalized query; url.Values sorts by key so equal
// queries map to the same cache entry.
func listQueryKey(q domain.ListMoviesQuery) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Filter.Genre != "" {
		v.Set("genre", q.Filter.Genre)
	}
	if q.Filter.Year != 0 {
		v.Set("year", strconv.Itoa(q.Filter.Year))
	}
	if q.Filter.Title != "" {
		v.Set("title", q.Filter.Title)
	}
	return v.Encode()
}
