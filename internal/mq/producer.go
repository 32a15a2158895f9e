package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func NewPublishing(message any) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	}, nil
}

func SendImmediateMessage(ctx context.Context, ch *amqp.Channel, queueName string, message any) error {
	publishing, err := NewPublishing(message)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to queue %s: %w", queueName, err)
	}

	return nil
}

// Producer publishes on one channel shared by all request goroutines.
type Producer struct {
	mu sync.Mutex
	ch *amqp.Channel
}

func NewProducer(conn *amqp.Connection) (*Producer, error) {
	ch, err := OpenChannel(conn, 0)
	if err != nil {
		return nil, err
	}
	return &Producer{ch: ch}, nil
}

func (p *Producer) Publish(ctx context.Context, queueName string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return SendImmediateMessage(ctx, p.ch, queueName, message)
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
