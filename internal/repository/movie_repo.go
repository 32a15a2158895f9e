package repository

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs-lzh/movie-review/internal/model"
)

// MovieFilter narrows a movie listing. Zero values are ignored; set fields AND together.
type MovieFilter struct {
	Genre string
	Year  int
	Title string
}

type MovieRepo interface {
	WithTx(tx *gorm.DB) MovieRepo
	Create(ctx context.Context, movie *model.Movie) error
	GetByID(ctx context.Context, id uint) (*model.Movie, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Movie, error)
	List(ctx context.Context, filter MovieFilter, offset, limit int) ([]model.Movie, error)
	Count(ctx context.Context, filter MovieFilter) (int64, error)
	RecomputeRating(ctx context.Context, id uint) error
}

type movieRepoGorm struct {
	db *gorm.DB
}

var _ MovieRepo = (*movieRepoGorm)(nil)

func NewMovieRepoGorm(db *gorm.DB) *movieRepoGorm {
	return &movieRepoGorm{
		db: db,
	}
}

func (r *movieRepoGorm) WithTx(tx *gorm.DB) MovieRepo {
	return &movieRepoGorm{
		db: tx,
	}
}

func (r *movieRepoGorm) Create(ctx context.Context, movie *model.Movie) error {
	if err := gorm.G[model.Movie](r.db).Create(ctx, movie); err != nil {
		return err
	}
	return nil
}

func (r *movieRepoGorm) GetByID(ctx context.Context, id uint) (*model.Movie, error) {
	movie, err := gorm.G[model.Movie](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetByIDForUpdate reads the movie and holds its row lock until the
// transaction ends. SQLite has no row locks and serializes writers instead.
func (r *movieRepoGorm) GetByIDForUpdate(ctx context.Context, id uint) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		First(&movie).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// List returns one page of movies, newest first.
func (r *movieRepoGorm) List(ctx context.Context, filter MovieFilter, offset, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.WithContext(ctx).
		Scopes(filter.scope).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepoGorm) Count(ctx context.Context, filter MovieFilter) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Movie{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// RecomputeRating rewrites average_rating and ratings_count from the reviews
// table in a single statement.
func (r *movieRepoGorm) RecomputeRating(ctx context.Context, id uint) error {
	avg := r.db.Model(&model.Review{}).
		Select("COALESCE(ROUND(AVG(rating), 1), 0)").
		Where("movie_id = ?", id)
	count := r.db.Model(&model.Review{}).
		Select("COUNT(*)").
		Where("movie_id = ?", id)
	return r.db.WithContext(ctx).
		Model(&model.Movie{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"average_rating": avg,
			"ratings_count":  count,
		}).Error
}

func (f MovieFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Genre != "" {
		// genres are stored as a JSON array, so match the encoded element
		encoded, _ := json.Marshal(f.Genre)
		db = db.Where(containsExpr(db, "genre"), string(encoded))
	}
	if f.Year != 0 {
		db = db.Where("release_year = ?", f.Year)
	}
	if f.Title != "" {
		db = db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Title))+"%")
	}
	return db
}

// containsExpr is a case-sensitive substring test; LIKE folds ASCII case on SQLite.
func containsExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlite" {
		return "instr(" + column + ", ?) > 0"
	}
	return "strpos(" + column + ", ?) > 0"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
