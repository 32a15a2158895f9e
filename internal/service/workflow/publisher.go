package workflow

import (
	"context"

	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/mq"
)

// Publisher announces catalog changes to whoever keeps derived state, such as
// cached listings, in step with the database.
type Publisher interface {
	MovieCreated(ctx context.Context, movie *model.Movie) error
	ReviewCreated(ctx context.Context, review *model.Review, movie *model.Movie) error
}

// MQPublisher sends catalog events to RabbitMQ.
type MQPublisher struct {
	producer *mq.Producer
}

var _ Publisher = (*MQPublisher)(nil)

func NewMQPublisher(producer *mq.Producer) *MQPublisher {
	return &MQPublisher{producer: producer}
}

func (p *MQPublisher) MovieCreated(ctx context.Context, movie *model.Movie) error {
	return p.producer.Publish(ctx, mq.MovieCreatedQueue, movieCreatedMessage(movie))
}

func (p *MQPublisher) ReviewCreated(ctx context.Context, review *model.Review, movie *model.Movie) error {
	return p.producer.Publish(ctx, mq.ReviewCreatedQueue, reviewCreatedMessage(review, movie))
}

// InlinePublisher hands events straight to the catalog workflow. It is used
// when no broker is configured.
type InlinePublisher struct {
	catalog *CatalogWorkflow
}

var _ Publisher = (*InlinePublisher)(nil)

func NewInlinePublisher(catalog *CatalogWorkflow) *InlinePublisher {
	return &InlinePublisher{catalog: catalog}
}

func (p *InlinePublisher) MovieCreated(ctx context.Context, movie *model.Movie) error {
	return p.catalog.HandleMovieCreated(ctx, movieCreatedMessage(movie))
}

func (p *InlinePublisher) ReviewCreated(ctx context.Context, review *model.Review, movie *model.Movie) error {
	return p.catalog.HandleReviewCreated(ctx, reviewCreatedMessage(review, movie))
}

func movieCreatedMessage(movie *model.Movie) mq.MovieCreatedMessage {
	return mq.MovieCreatedMessage{MovieID: movie.ID}
}

func reviewCreatedMessage(review *model.Review, movie *model.Movie) mq.ReviewCreatedMessage {
	return mq.ReviewCreatedMessage{
		ReviewID:      review.ID,
		MovieID:       review.MovieID,
		UserID:        review.UserID,
		Rating:        review.Rating,
		AverageRating: movie.AverageRating,
	}
}
