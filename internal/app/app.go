package app

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-review/config"
	"github.com/qs-lzh/movie-review/internal/auth"
	"github.com/qs-lzh/movie-review/internal/cache"
	"github.com/qs-lzh/movie-review/internal/database"
	"github.com/qs-lzh/movie-review/internal/mq"
	"github.com/qs-lzh/movie-review/internal/repository"
	"github.com/qs-lzh/movie-review/internal/service/domain"
	"github.com/qs-lzh/movie-review/internal/service/workflow"
)

type App struct {
	Config *config.Config

	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger
	MQConn *amqp.Connection
	JWT    *auth.JWTService

	AuthService      domain.AuthService
	UserService      domain.UserService
	MovieService     domain.MovieService
	ReviewService    domain.ReviewService
	WatchlistService domain.WatchlistService

	Producer        *mq.Producer
	Publisher       workflow.Publisher
	CatalogWorkflow *workflow.CatalogWorkflow
	MovieWorkflow   *workflow.MovieWorkflow
	ReviewWorkflow  *workflow.ReviewWorkflow
	UserWorkflow    *workflow.UserWorkflow
}

// New wires the application. mqConn may be nil, in which case catalog events
// are handled in-process.
func New(config *config.Config, db *gorm.DB, cache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) (*App, error) {
	jwtService := auth.NewJWTService(config.JWTSecret)

	userRepo := repository.NewUserRepoGorm(db)
	movieRepo := repository.NewMovieRepoGorm(db)
	reviewRepo := repository.NewReviewRepoGorm(db)
	watchlistRepo := repository.NewWatchlistRepoGorm(db)

	authService := domain.NewAuthService(userRepo, jwtService)
	userService := domain.NewUserService(userRepo, reviewRepo)
	movieService := domain.NewMovieService(movieRepo, reviewRepo)
	reviewService := domain.NewReviewService(db, reviewRepo, movieRepo)
	watchlistService := domain.NewWatchlistService(watchlistRepo, movieRepo)

	catalogWorkflow := workflow.NewCatalogWorkflow(cache, logger.Named("catalog"))

	var (
		producer  *mq.Producer
		publisher workflow.Publisher
	)
	if mqConn != nil {
		var err error
		producer, err = mq.NewProducer(mqConn)
		if err != nil {
			return nil, fmt.Errorf("create producer: %w", err)
		}
		publisher = workflow.NewMQPublisher(producer)
	} else {
		publisher = workflow.NewInlinePublisher(catalogWorkflow)
	}

	movieWorkflow := workflow.NewMovieWorkflow(movieService, cache, publisher, logger.Named("movie"))
	reviewWorkflow := workflow.NewReviewWorkflow(reviewService, cache, publisher, logger.Named("review"))
	userWorkflow := workflow.NewUserWorkflow(userService, cache, logger.Named("user"))

	return &App{
		Config:           config,
		DB:               db,
		Cache:            cache,
		Logger:           logger,
		MQConn:           mqConn,
		JWT:              jwtService,
		AuthService:      authService,
		UserService:      userService,
		MovieService:     movieService,
		ReviewService:    reviewService,
		WatchlistService: watchlistService,
		Producer:         producer,
		Publisher:        publisher,
		CatalogWorkflow:  catalogWorkflow,
		MovieWorkflow:    movieWorkflow,
		ReviewWorkflow:   reviewWorkflow,
		UserWorkflow:     userWorkflow,
	}, nil
}

func (app *App) Init(ctx context.Context) error {
	// init database
	if err := database.Migrate(app.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	created, err := app.AuthService.EnsureAdmin(ctx, app.Config.AdminUsername, app.Config.AdminEmail, app.Config.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		app.Logger.Info("admin account created", zap.String("email", app.Config.AdminEmail))
	}

	// init rabbit mq
	if app.MQConn == nil {
		app.Logger.Info("no message broker configured, catalog events are handled inline")
		return nil
	}
	if err := mq.InitQueues(app.MQConn); err != nil {
		return fmt.Errorf("init queues: %w", err)
	}
	if err := app.CatalogWorkflow.Start(app.MQConn); err != nil {
		return fmt.Errorf("start catalog workflow: %w", err)
	}

	return nil
}

func (app *App) Close() error {
	var errs []error
	if app.Producer != nil {
		errs = append(errs, app.Producer.Close())
	}
	if app.MQConn != nil {
		errs = append(errs, app.MQConn.Close())
	}
	if app.Cache != nil {
		errs = append(errs, app.Cache.Close())
	}
	errs = append(errs, database.Close(app.DB))
	return errors.Join(errs...)
}
