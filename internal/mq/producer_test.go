package mq

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	p, err := NewPublishing(ReviewCreatedMessage{ReviewID: 1, MovieID: 2, UserID: 3, Rating: 5, AverageRating: 4.5})
	require.NoError(t, err)

	assert.Equal(t, "application/json", p.ContentType)
	assert.Equal(t, amqp.Persistent, p.DeliveryMode)
	assert.False(t, p.Timestamp.IsZero())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(p.Body, &decoded))
	assert.Equal(t, float64(2), decoded["movie_id"])
	assert.Equal(t, 4.5, decoded["average_rating"])
}

func TestNewPublishingRejectsUnencodable(t *testing.T) {
	_, err := NewPublishing(make(chan int))
	assert.Error(t, err)
}

func TestQueuesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, q := range Queues {
		assert.False(t, seen[q], "duplicate queue %s", q)
		seen[q] = true
	}
	assert.Len(t, seen, 2)
}

func TestConnectionConfig(t *testing.T) {
	cfg := connectionConfig("reviews-test")
	assert.Equal(t, Heartbeat, cfg.Heartbeat)
	assert.Equal(t, "reviews-test", cfg.Properties["connection_name"])
}
