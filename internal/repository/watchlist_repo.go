package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-review/internal/model"
)

type WatchlistRepo interface {
	WithTx(tx *gorm.DB) WatchlistRepo
	Create(ctx context.Context, entry *model.WatchlistEntry) error
	GetByUserAndMovie(ctx context.Context, userID, movieID uint) (*model.WatchlistEntry, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.WatchlistEntry, error)
	Delete(ctx context.Context, id uint) error
}

type watchlistRepoGorm struct {
	db *gorm.DB
}

var _ WatchlistRepo = (*watchlistRepoGorm)(nil)

func NewWatchlistRepoGorm(db *gorm.DB) *watchlistRepoGorm {
	return &watchlistRepoGorm{
		db: db,
	}
}

func (r *watchlistRepoGorm) WithTx(tx *gorm.DB) WatchlistRepo {
	return &watchlistRepoGorm{
		db: tx,
	}
}

func (r *watchlistRepoGorm) Create(ctx context.Context, entry *model.WatchlistEntry) error {
	if err := gorm.G[model.WatchlistEntry](r.db).Create(ctx, entry); err != nil {
		return err
	}
	return nil
}

func (r *watchlistRepoGorm) GetByUserAndMovie(ctx context.Context, userID, movieID uint) (*model.WatchlistEntry, error) {
	entry, err := gorm.G[model.WatchlistEntry](r.db).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByUserID returns the user's entries newest first with a movie summary attached.
func (r *watchlistRepoGorm) ListByUserID(ctx context.Context, userID uint) ([]model.WatchlistEntry, error) {
	var entries []model.WatchlistEntry
	err := r.db.WithContext(ctx).
		Preload("Movie", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "poster_url", "average_rating", "release_year", "genre")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistRepoGorm) Delete(ctx context.Context, id uint) error {
	if _, err := gorm.G[model.WatchlistEntry](r.db).Where("id = ?", id).Delete(ctx); err != nil {
		return err
	}
	return nil
}
