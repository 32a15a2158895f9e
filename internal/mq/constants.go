package mq

// Queue names and message definitions

// immediate queue from the catalog write path to the catalog workflow
// deliver message to notify that a movie was added to the catalog
const (
	MovieCreatedQueue = "catalog.movie.created.immediate"
)

type MovieCreatedMessage struct {
	MovieID uint `json:"movie_id"`
}

// immediate queue from the review workflow to the catalog workflow
// deliver message to notify that a movie's reviews and rating changed
const (
	ReviewCreatedQueue = "catalog.review.created.immediate"
)

type ReviewCreatedMessage struct {
	ReviewID      uint    `json:"review_id"`
	MovieID       uint    `json:"movie_id"`
	UserID        uint    `json:"user_id"`
	Rating        int     `json:"rating"`
	AverageRating float64 `json:"average_rating"`
}

// Queues lists every queue declared at startup.
var Queues = []string{
	MovieCreatedQueue,
	ReviewCreatedQueue,
}
