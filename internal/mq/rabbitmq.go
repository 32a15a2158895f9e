package mq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ConnectionName = "movie-review"
	Heartbeat      = 10 * time.Second

	// ConsumerPrefetch caps unacknowledged deliveries per consumer channel.
	ConsumerPrefetch = 16
)

func InitQueues(conn *amqp.Connection) error {
	ch, err := OpenChannel(conn, 0)
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, queue := range Queues {
		if err := DeclareQueue(ch, queue); err != nil {
			return err
		}
	}
	return nil
}

// Dial connects to the broker under a name that shows up in the management UI.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, connectionConfig(ConnectionName))
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return conn, nil
}

func connectionConfig(name string) amqp.Config {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(name)
	return amqp.Config{
		Heartbeat:  Heartbeat,
		Locale:     "en_US",
		Properties: props,
	}
}

// OpenChannel opens a channel; a positive prefetch limits in-flight deliveries.
func OpenChannel(conn *amqp.Connection, prefetch int) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			ch.Close()
			return nil, fmt.Errorf("set prefetch: %w", err)
		}
	}
	return ch, nil
}

// DeclareQueue declares a durable queue on the default exchange.
func DeclareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}
