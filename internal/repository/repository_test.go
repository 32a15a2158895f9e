package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/testutil"
)

func createUser(t *testing.T, repo UserRepo, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", Password: "hash", Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepo(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepoGorm(db)
	ctx := context.Background()

	u := createUser(t, repo, "ann")
	got, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Create(ctx, &model.User{Username: "ann", Email: "other@example.com", Password: "x", Role: model.RoleUser})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	updated, err := repo.Update(ctx, u.ID, map[string]any{"profile_picture": "p.png"})
	require.NoError(t, err)
	assert.Equal(t, "p.png", updated.ProfilePicture)
	assert.Equal(t, "ann", updated.Username)

	_, err = repo.Update(ctx, 999, map[string]any{"username": "ghost"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	n, err := repo.CountByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMovieRepoListOrderAndFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovieRepoGorm(db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Create(ctx, &model.Movie{
			Title:       fmt.Sprintf("Movie_%d", i),
			Genre:       []string{"Drama", fmt.Sprintf("G%d", i%2)},
			ReleaseYear: 2000 + i,
		}))
	}

	movies, err := repo.List(ctx, MovieFilter{}, 1, 2)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Movie_4", movies[0].Title)
	assert.Equal(t, "Movie_3", movies[1].Title)

	total, err := repo.Count(ctx, MovieFilter{Genre: "G1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	total, err = repo.Count(ctx, MovieFilter{Title: "movie_"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	// LIKE wildcards in the search text match literally
	total, err = repo.Count(ctx, MovieFilter{Title: "%"})
	require.NoError(t, err)
	assert.Zero(t, total)

	total, err = repo.Count(ctx, MovieFilter{Year: 2003, Genre: "Drama"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// genre matches the whole element with its case
	total, err = repo.Count(ctx, MovieFilter{Genre: "drama"})
	require.NoError(t, err)
	assert.Zero(t, total)
	total, err = repo.Count(ctx, MovieFilter{Genre: "g1"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRecomputeRating(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepoGorm(db)
	movies := NewMovieRepoGorm(db)
	reviews := NewReviewRepoGorm(db)
	ctx := context.Background()

	m := &model.Movie{Title: "Ran", Genre: []string{"Drama"}, ReleaseYear: 1985}
	require.NoError(t, movies.Create(ctx, m))

	require.NoError(t, movies.RecomputeRating(ctx, m.ID))
	got, err := movies.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.RatingsCount)

	for i, rating := range []int{5, 4, 4} {
		u := createUser(t, users, fmt.Sprintf("u%d", i))
		require.NoError(t, reviews.Create(ctx, &model.Review{UserID: u.ID, MovieID: m.ID, Rating: rating, Timestamp: time.Now()}))
	}
	require.NoError(t, movies.RecomputeRating(ctx, m.ID))

	got, err = movies.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.3, got.AverageRating, 1e-9)
	assert.Equal(t, 3, got.RatingsCount)

	exists, err := reviews.ExistsForUserAndMovie(ctx, 1, m.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	err = reviews.Create(ctx, &model.Review{UserID: 1, MovieID: m.ID, Rating: 1, Timestamp: time.Now()})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	ids, err := reviews.ListMovieIDsByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{m.ID}, ids)
}

func TestWatchlistRepo(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepoGorm(db)
	movies := NewMovieRepoGorm(db)
	repo := NewWatchlistRepoGorm(db)
	ctx := context.Background()

	u := createUser(t, users, "kiku")
	m := &model.Movie{Title: "Ikiru", Genre: []string{"Drama"}, ReleaseYear: 1952, PosterURL: "ikiru.jpg"}
	require.NoError(t, movies.Create(ctx, m))

	entry := &model.WatchlistEntry{UserID: u.ID, MovieID: m.ID, DateAdded: time.Now()}
	require.NoError(t, repo.Create(ctx, entry))
	err := repo.Create(ctx, &model.WatchlistEntry{UserID: u.ID, MovieID: m.ID, DateAdded: time.Now()})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	entries, err := repo.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Movie)
	assert.Equal(t, "Ikiru", entries[0].Movie.Title)
	assert.Equal(t, "ikiru.jpg", entries[0].Movie.PosterURL)
	assert.Empty(t, entries[0].Movie.Synopsis)

	found, err := repo.GetByUserAndMovie(ctx, u.ID, m.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, found.ID))

	_, err = repo.GetByUserAndMovie(ctx, u.ID, m.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovieRepoGorm(db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).Create(ctx, &model.Movie{Title: "Kagemusha", Genre: []string{"War"}, ReleaseYear: 1980}); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	total, err := repo.Count(ctx, MovieFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetByIDForUpdateInsideTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	movies := NewMovieRepoGorm(db)
	ctx := context.Background()

	m := &model.Movie{Title: "Dersu Uzala", Genre: []string{"Adventure"}, ReleaseYear: 1975}
	require.NoError(t, movies.Create(ctx, m))

	err := db.Transaction(func(tx *gorm.DB) error {
		got, err := movies.WithTx(tx).GetByIDForUpdate(ctx, m.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Dersu Uzala", got.Title)

		_, err = movies.WithTx(tx).GetByIDForUpdate(ctx, m.ID+100)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		return nil
	})
	require.NoError(t, err)
}
