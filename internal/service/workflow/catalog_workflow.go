package workflow

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/internal/cache"
	"github.com/qs-lzh/movie-review/internal/mq"
)

// CatalogWorkflow consumes catalog events and retires the cached reads they
// make stale.
type CatalogWorkflow struct {
	cache *cache.RedisCache
	log   *zap.Logger
}

func NewCatalogWorkflow(cache *cache.RedisCache, log *zap.Logger) *CatalogWorkflow {
	return &CatalogWorkflow{
		cache: cache,
		log:   log,
	}
}

func (w *CatalogWorkflow) Start(mqConn *amqp.Connection) error {
	if err := w.ConsumeMovieCreated(mqConn); err != nil {
		return err
	}
	if err := w.ConsumeReviewCreated(mqConn); err != nil {
		return err
	}
	return nil
}

func (w *CatalogWorkflow) ConsumeMovieCreated(conn *amqp.Connection) error {
	return consume(conn, mq.MovieCreatedQueue, w.log, w.HandleMovieCreated)
}

func (w *CatalogWorkflow) ConsumeReviewCreated(conn *amqp.Connection) error {
	return consume(conn, mq.ReviewCreatedQueue, w.log, w.HandleReviewCreated)
}

func (w *CatalogWorkflow) HandleMovieCreated(ctx context.Context, message mq.MovieCreatedMessage) error {
	if err := w.cache.InvalidateMovie(ctx, message.MovieID); err != nil {
		return err
	}
	w.log.Debug("movie created", zap.Uint("movie_id", message.MovieID))
	return nil
}

func (w *CatalogWorkflow) HandleReviewCreated(ctx context.Context, message mq.ReviewCreatedMessage) error {
	if err := w.cache.InvalidateMovie(ctx, message.MovieID); err != nil {
		return err
	}
	w.log.Debug("review created",
		zap.Uint("review_id", message.ReviewID),
		zap.Uint("movie_id", message.MovieID),
		zap.Uint("user_id", message.UserID),
		zap.Int("rating", message.Rating),
		zap.Float64("average_rating", message.AverageRating),
	)
	return nil
}

func consume[T any](conn *amqp.Connection, queue string, log *zap.Logger, handle func(context.Context, T) error) error {
	ch, err := mq.OpenChannel(conn, mq.ConsumerPrefetch)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := handleDelivery(msg, handle); err != nil {
				log.Error("failed to handle message", zap.String("queue", queue), zap.Error(err))
			}
		}
	}()

	return nil
}

func handleDelivery[T any](msg amqp.Delivery, handle func(context.Context, T) error) error {
	var message T
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		msg.Nack(false, false)
		return err
	}

	if err := handle(context.Background(), message); err != nil {
		msg.Nack(false, !msg.Redelivered)
		return err
	}

	msg.Ack(false)

	return nil
}
