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

type WatchlistService interface {
	GetWatchlist(ctx context.Context, userID uint) ([]model.WatchlistEntry, error)
	AddToWatchlist(ctx context.Context, userID, movieID uint) (*model.WatchlistEntry, *model.Movie, error)
	// RemoveFromWatchlist deletes the entry and returns the movie's title, or "" when the movie no longer exists.
	RemoveFromWatchlist(ctx context.Context, userID, movieID uint) (string, error)
}

type watchlistService struct {
	repo      repository.WatchlistRepo
	movieRepo repository.MovieRepo
}

var _ WatchlistService = (*watchlistService)(nil)

func NewWatchlistService(watchlistRepo repository.WatchlistRepo, movieRepo repository.MovieRepo) *watchlistService {
	return &watchlistService{
		repo:      watchlistRepo,
		movieRepo: movieRepo,
	}
}

func (s *watchlistService) GetWatchlist(ctx context.Context, userID uint) ([]model.WatchlistEntry, error) {
	entries, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.WatchlistEntry{}
	}
	return entries, nil
}

func (s *watchlistService) AddToWatchlist(ctx context.Context, userID, movieID uint) (*model.WatchlistEntry, *model.Movie, error) {
	entry := &model.WatchlistEntry{
		UserID:    userID,
		MovieID:   movieID,
		DateAdded: time.Now(),
	}
	if v := entry.Validate(); !v.Empty() {
		return nil, nil, service.NewValidationError("movieId is required.", v)
	}

	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &service.NotFoundError{Message: "Movie not found."}
		}
		return nil, nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, &service.ConflictError{Message: "Movie already in watchlist."}
		}
		return nil, nil, fmt.Errorf("create watchlist entry: %w", err)
	}
	return entry, movie, nil
}

func (s *watchlistService) RemoveFromWatchlist(ctx context.Context, userID, movieID uint) (string, error) {
	entry, err := s.repo.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &service.NotFoundError{Message: "Movie not found in watchlist."}
		}
		return "", err
	}
	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		return "", fmt.Errorf("delete watchlist entry: %w", err)
	}

	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		// the entry is gone either way; the title only decorates the message
		return "", nil
	}
	return movie.Title, nil
}
