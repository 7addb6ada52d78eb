package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hilthontt/ridehail/internal/infrastructure/contracts"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RidesExchange      = "rides"
	DeadLetterExchange = "dlx"

	publishTimeout = 5 * time.Second
)

var ErrConnectionClosed = errors.New("rabbitmq connection closed")

// MessageHandler processes one delivery. A returned error dead-letters it.
type MessageHandler func(ctx context.Context, msg amqp.Delivery) error

type RabbitMQ struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
	logger  logging.Logger

	// amqp channels are not safe for concurrent publishes.
	publishMu sync.Mutex
}

func NewRabbitMQ(uri string, logger logging.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	rmq := &RabbitMQ{
		conn:    conn,
		Channel: ch,
		logger:  logger,
	}

	if err := rmq.setupExchangesAndQueues(); err != nil {
		rmq.Close()
		return nil, fmt.Errorf("failed to setup exchanges and queues: %w", err)
	}

	return rmq, nil
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		r.Channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

func (r *RabbitMQ) IsClosed() bool {
	return r.conn == nil || r.conn.IsClosed()
}

func (r *RabbitMQ) PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	return r.Channel.PublishWithContext(
		publishCtx,
		RidesExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

// ConsumeMessages acks on success and dead-letters on handler error. It
// returns once the consumer is registered; deliveries are handled until ctx
// ends or the channel closes.
func (r *RabbitMQ) ConsumeMessages(ctx context.Context, queueName string, handler MessageHandler) error {
	if err := r.Channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := r.Channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", queueName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					r.logger.Info(logging.RabbitMQ, logging.Consume, "consumer stopped", map[logging.ExtraKey]any{
						"queue": queueName,
					})
					return
				}

				if err := handler(ctx, msg); err != nil {
					r.logger.Error(logging.RabbitMQ, logging.Consume, "failed to handle message", map[logging.ExtraKey]any{
						"queue":              queueName,
						"routing_key":        msg.RoutingKey,
						logging.ErrorMessage: err.Error(),
					})
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func (r *RabbitMQ) setupExchangesAndQueues() error {
	if err := r.Channel.ExchangeDeclare(
		DeadLetterExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", DeadLetterExchange, err)
	}

	dlq, err := r.Channel.QueueDeclare(DeadLetterQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", DeadLetterQueue, err)
	}
	if err := r.Channel.QueueBind(dlq.Name, "", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", DeadLetterQueue, err)
	}

	if err := r.Channel.ExchangeDeclare(
		RidesExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", RidesExchange, err)
	}

	return r.declareAndBindQueue(RideEventsQueue, contracts.RideEvents, RidesExchange)
}

func (r *RabbitMQ) declareAndBindQueue(queueName string, messageTypes []string, exchange string) error {
	// Add dead letter configuration
	args := amqp.Table{
		"x-dead-letter-exchange": DeadLetterExchange,
	}

	q, err := r.Channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		args,      // arguments with DLX config
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	for _, msg := range messageTypes {
		if err := r.Channel.QueueBind(
			q.Name,   // queue name
			msg,      // routing key
			exchange, // exchange
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %w", queueName, err)
		}
	}

	return nil
}
