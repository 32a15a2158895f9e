package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qs-lzh/movie-review/config"
	"github.com/qs-lzh/movie-review/internal/app"
	"github.com/qs-lzh/movie-review/internal/router"
	"github.com/qs-lzh/movie-review/internal/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret:         "client-secret",
		Env:               config.EnvDevelopment,
		CORSOrigins:       []string{"*"},
		AuthRatePerMinute: 600,
		AuthRateBurst:     100,
		AdminUsername:     "admin",
		AdminEmail:        "admin@example.com",
		AdminPassword:     "admin-pw",
	}
	c, _ := testutil.NewCache(t)
	application, err := app.New(cfg, testutil.NewDB(t), c, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, application.Init(context.Background()))

	srv := httptest.NewServer(router.New(application))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFlow(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	admin := New(srv.URL)
	_, err := admin.Login(ctx, "admin@example.com", "admin-pw")
	require.NoError(t, err)
	movie, err := admin.CreateMovie(ctx, CreateMovieRequest{
		Title:       "Arrival",
		Genre:       []string{"Sci-Fi", "Drama"},
		ReleaseYear: 2016,
		Director:    "Denis Villeneuve",
	})
	require.NoError(t, err)
	assert.NotZero(t, movie.ID)

	c := New(srv.URL + "/")
	signup, err := c.Signup(ctx, SignupRequest{Username: "louise", Email: "Louise@Example.com", Password: "heptapod"})
	require.NoError(t, err)
	assert.Equal(t, "louise@example.com", signup.User.Email)
	assert.Empty(t, c.Token(), "signup does not log in")

	login, err := c.Login(ctx, "louise@example.com", "heptapod")
	require.NoError(t, err)
	assert.Equal(t, login.Token, c.Token())
	userID := login.User.ID

	review, err := c.AddReview(ctx, movie.ID, 5, "non-linear")
	require.NoError(t, err)
	assert.Equal(t, 5.0, review.UpdatedAverageRating)
	assert.Equal(t, movie.ID, review.Review.MovieID)

	list, err := c.ListMovies(ctx, ListMoviesParams{Genre: "Drama", Year: 2016})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, 5.0, list.Movies[0].AverageRating)

	detail, err := c.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "louise", detail.Reviews[0].User.Username)

	reviews, err := c.ListMovieReviews(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arrival", reviews.Movie)
	assert.Equal(t, 1, reviews.Count)

	added, err := c.AddToWatchlist(ctx, userID, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arrival added to watchlist.", added.Message)

	watchlist, err := c.GetWatchlist(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, watchlist.Count)

	msg, err := c.RemoveFromWatchlist(ctx, userID, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arrival removed from watchlist.", msg)

	user, err := c.UpdateProfile(ctx, userID, UpdateProfileRequest{ProfilePicture: "https://img/louise.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://img/louise.png", user.ProfilePicture)

	profile, err := c.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "louise", profile.User.Username)
	require.Len(t, profile.Reviews, 1)
	assert.Equal(t, "Arrival", profile.Reviews[0].Movie.Title)
}

func TestClientErrors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := New(srv.URL)

	_, err := c.GetMovie(ctx, 42)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Movie not found", apiErr.Message)

	_, err = c.CreateMovie(ctx, CreateMovieRequest{Title: "x", Genre: []string{"y"}, ReleaseYear: 1})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	c.SetToken("garbage")
	_, err = c.GetProfile(ctx, 1)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	c.Logout()
	assert.Empty(t, c.Token())
}
