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

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type ListMoviesQuery struct {
	Page   int
	Limit  int
	Filter repository.MovieFilter
}

// Normalize replaces out of range paging values with the defaults.
func (q ListMoviesQuery) Normalize() ListMoviesQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.Filter.Genre = strings.TrimSpace(q.Filter.Genre)
	q.Filter.Title = strings.TrimSpace(q.Filter.Title)
	return q
}

type MoviePage struct {
	Movies     []model.Movie `json:"movies"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

type MovieDetail struct {
	Movie   *model.Movie   `json:"movie"`
	Reviews []model.Review `json:"reviews"`
}

type MovieService interface {
	CreateMovie(ctx context.Context, movie *model.Movie) error
	GetMovieByID(ctx context.Context, id uint) (*model.Movie, error)
	GetMovieDetail(ctx context.Context, id uint) (*MovieDetail, error)
	ListMovies(ctx context.Context, q ListMoviesQuery) (*MoviePage, error)
	ListMovieReviews(ctx context.Context, id uint) (*model.Movie, []model.Review, error)
}

type movieService struct {
	repo       repository.MovieRepo
	reviewRepo repository.ReviewRepo
}

var _ MovieService = (*movieService)(nil)

func NewMovieService(movieRepo repository.MovieRepo, reviewRepo repository.ReviewRepo) *movieService {
	return &movieService{
		repo:       movieRepo,
		reviewRepo: reviewRepo,
	}
}

var errMovieNotFound = &service.NotFoundError{Message: "Movie not found"}

func (s *movieService) CreateMovie(ctx context.Context, movie *model.Movie) error {
	movie.Title = strings.TrimSpace(movie.Title)
	movie.Genre = compact(movie.Genre)
	movie.Cast = compact(movie.Cast)
	if v := movie.Validate(); !v.Empty() {
		return service.NewValidationError("Title, genre, and release year are required.", v)
	}
	movie.AverageRating = 0
	movie.RatingsCount = 0
	if err := s.repo.Create(ctx, movie); err != nil {
		return fmt.Errorf("create movie: %w", err)
	}
	return nil
}

func (s *movieService) GetMovieByID(ctx context.Context, id uint) (*model.Movie, error) {
	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errMovieNotFound
		}
		return nil, err
	}
	return movie, nil
}

func (s *movieService) GetMovieDetail(ctx context.Context, id uint) (*MovieDetail, error) {
	movie, reviews, err := s.ListMovieReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MovieDetail{Movie: movie, Reviews: reviews}, nil
}

func (s *movieService) ListMovieReviews(ctx context.Context, id uint) (*model.Movie, []model.Review, error) {
	movie, err := s.GetMovieByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := s.reviewRepo.ListByMovieID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list reviews: %w", err)
	}
	return movie, reviews, nil
}

func (s *movieService) ListMovies(ctx context.Context, q ListMoviesQuery) (*MoviePage, error) {
	q = q.Normalize()

	total, err := s.repo.Count(ctx, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}
	movies, err := s.repo.List(ctx, q.Filter, (q.Page-1)*q.Limit, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return &MoviePage{
		Movies:     movies,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: TotalPages(total, q.Limit),
	}, nil
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
