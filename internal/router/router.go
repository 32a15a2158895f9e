package router

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/qs-lzh/movie-review/internal/app"
	"github.com/qs-lzh/movie-review/internal/handler"
	"github.com/qs-lzh/movie-review/internal/middleware"
	"github.com/qs-lzh/movie-review/internal/model"
)

const maxBodyBytes = 1 << 20

func New(app *app.App) *gin.Engine {
	if app.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(app.Logger.Named("http")))
	r.Use(middleware.Recovery(app.Logger))
	r.Use(middleware.CORS(app.Config.CORSOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	h := handler.New(app)
	authenticate := middleware.Authenticate(app.JWT)
	self := middleware.RequireSelf("id")
	limiter := middleware.NewRateLimiter(
		rate.Limit(float64(app.Config.AuthRatePerMinute)/60),
		app.Config.AuthRateBurst,
		10*time.Minute,
	)

	r.GET("/healthz", h.HandleHealth)

	users := r.Group("/users")
	{
		users.POST("/signup", limiter.Handler(), h.HandleSignup)
		users.POST("/login", limiter.Handler(), h.HandleLogin)

		me := users.Group("/:id", authenticate, self)
		me.GET("", h.HandleGetProfile)
		me.PUT("", h.HandleUpdateProfile)
		me.GET("/watchlist", h.HandleGetWatchlist)
		me.POST("/watchlist", h.HandleAddToWatchlist)
		me.DELETE("/watchlist/:movieId", h.HandleRemoveFromWatchlist)
	}

	movies := r.Group("/movies")
	{
		movies.GET("", h.HandleListMovies)
		movies.POST("", authenticate, middleware.RequireRole(model.RoleAdmin), h.HandleCreateMovie)
		movies.GET("/:id", h.HandleGetMovie)
		movies.GET("/:id/reviews", h.HandleListMovieReviews)
		movies.POST("/:id/reviews", authenticate, h.HandleAddReview)
	}

	return r
}
